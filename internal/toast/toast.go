// ABOUTME: In-app toast queue used as the notification fallback.
// ABOUTME: Toasts expire after their duration unless marked sticky.
package toast

import (
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/harperreed/healhub/internal/notify"
)

// DefaultDuration is used when a toast does not set its own.
const DefaultDuration = 5 * time.Second

// Type is the visual style of a toast.
type Type string

const (
	Success Type = "success"
	Error   Type = "error"
	Info    Type = "info"
	Warning Type = "warning"
)

// Toast is a transient in-app message.
type Toast struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Type        Type          `json:"type"`
	Duration    time.Duration `json:"duration"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// Sticky reports whether the toast stays until removed.
func (t Toast) Sticky() bool {
	return t.Duration < 0
}

// ExpiresAt returns when the toast auto-dismisses.
func (t Toast) ExpiresAt() time.Time {
	return t.CreatedAt.Add(t.Duration)
}

// Queue holds the active toasts.
type Queue struct {
	mu       sync.Mutex
	clock    clockwork.Clock
	duration time.Duration
	toasts   []Toast
	seq      int
	subs     map[int]func([]Toast)
	nextSub  int
}

// NewQueue builds a queue. Zero values pick the real clock and DefaultDuration.
func NewQueue(clock clockwork.Clock, defaultDuration time.Duration) *Queue {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if defaultDuration <= 0 {
		defaultDuration = DefaultDuration
	}
	return &Queue{
		clock:    clock,
		duration: defaultDuration,
		subs:     make(map[int]func([]Toast)),
	}
}

// Add enqueues t and returns its id.
func (q *Queue) Add(t Toast) string {
	q.mu.Lock()
	q.seq++
	t.ID = fmt.Sprintf("toast_%d", q.seq)
	if t.Type == "" {
		t.Type = Info
	}
	if t.Duration == 0 {
		t.Duration = q.duration
	}
	t.CreatedAt = q.clock.Now()
	q.toasts = append(q.toasts, t)
	snapshot := q.activeLocked()
	q.mu.Unlock()

	q.publish(snapshot)
	return t.ID
}

// Remove dismisses a toast. Unknown ids are ignored.
func (q *Queue) Remove(id string) bool {
	q.mu.Lock()
	removed := false
	for i, t := range q.toasts {
		if t.ID == id {
			q.toasts = append(q.toasts[:i:i], q.toasts[i+1:]...)
			removed = true
			break
		}
	}
	snapshot := q.activeLocked()
	q.mu.Unlock()

	if removed {
		q.publish(snapshot)
	}
	return removed
}

// Active returns the toasts that have not expired, oldest first.
func (q *Queue) Active() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.activeLocked()
}

func (q *Queue) activeLocked() []Toast {
	now := q.clock.Now()
	kept := q.toasts[:0]
	for _, t := range q.toasts {
		if t.Sticky() || now.Before(t.ExpiresAt()) {
			kept = append(kept, t)
		}
	}
	q.toasts = kept
	out := make([]Toast, len(kept))
	copy(out, kept)
	return out
}

// Subscribe calls fn with the active toasts after every change.
func (q *Queue) Subscribe(fn func([]Toast)) func() {
	q.mu.Lock()
	id := q.nextSub
	q.nextSub++
	q.subs[id] = fn
	q.mu.Unlock()

	return func() {
		q.mu.Lock()
		delete(q.subs, id)
		q.mu.Unlock()
	}
}

func (q *Queue) publish(active []Toast) {
	q.mu.Lock()
	fns := make([]func([]Toast), 0, len(q.subs))
	for _, fn := range q.subs {
		fns = append(fns, fn)
	}
	q.mu.Unlock()

	for _, fn := range fns {
		fn(active)
	}
}

// Fallback adapts the queue to the notification fallback signature.
func (q *Queue) Fallback() notify.Fallback {
	return func(title string, opts notify.Options) {
		q.Add(Toast{Title: title, Description: opts.Body, Type: Info})
	}
}
