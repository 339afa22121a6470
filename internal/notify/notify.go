// ABOUTME: Notification dispatch with permission-gated native delivery.
// ABOUTME: Falls back to a caller-supplied in-app channel when native delivery is unavailable.
package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
)

// Permission is the native channel's delivery permission.
type Permission string

const (
	Granted     Permission = "granted"
	Denied      Permission = "denied"
	Default     Permission = "default"
	Unsupported Permission = "unsupported"
)

// Options carries the notification body and an optional grouping tag.
type Options struct {
	Body string
	Tag  string
}

// Fallback delivers a notification in-app.
type Fallback func(title string, opts Options)

// Channel is a native notification transport.
type Channel interface {
	Permission() Permission
	RequestPermission(ctx context.Context) (Permission, error)
	Send(ctx context.Context, title string, opts Options) error
}

// Dispatcher routes notifications to the native channel or the fallback.
type Dispatcher struct {
	channel Channel
	logger  *log.Logger
	mu      sync.Mutex
}

// NewDispatcher wraps channel. A nil channel means native delivery is unsupported.
func NewDispatcher(channel Channel, logger *log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.Default()
	}
	return &Dispatcher{channel: channel, logger: logger}
}

// Permission reports the current native permission.
func (d *Dispatcher) Permission() Permission {
	if d.channel == nil {
		return Unsupported
	}
	return d.channel.Permission()
}

// RequestPermission asks the native channel for permission. It never
// fails: errors and panics are logged and reported as Denied.
func (d *Dispatcher) RequestPermission(ctx context.Context) (p Permission) {
	if d.channel == nil {
		return Unsupported
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if cur := d.channel.Permission(); cur == Granted || cur == Unsupported {
		return cur
	}

	defer func() {
		if r := recover(); r != nil {
			d.logger.Warn("permission request panicked", "panic", r)
			p = Denied
		}
	}()

	p, err := d.channel.RequestPermission(ctx)
	if err != nil {
		d.logger.Warn("permission request failed", "err", err)
		return Denied
	}
	return p
}

// Notify delivers natively when permitted and reports whether it did.
// Otherwise, or when native delivery fails, fallback is invoked.
func (d *Dispatcher) Notify(ctx context.Context, title string, opts Options, fallback Fallback) bool {
	if d.sendNative(ctx, title, opts) {
		return true
	}
	if fallback != nil {
		fallback(title, opts)
	}
	return false
}

func (d *Dispatcher) sendNative(ctx context.Context, title string, opts Options) (ok bool) {
	if d.channel == nil || d.channel.Permission() != Granted {
		return false
	}

	defer func() {
		if r := recover(); r != nil {
			d.logger.Warn("native notification panicked", "panic", r)
			ok = false
		}
	}()

	if err := d.channel.Send(ctx, title, opts); err != nil {
		d.logger.Warn("native notification failed", "title", title, "err", err)
		return false
	}
	return true
}

// Format renders a notification as plain text.
func Format(title string, opts Options) string {
	if opts.Body == "" {
		return title
	}
	return fmt.Sprintf("%s\n%s", title, opts.Body)
}
