// ABOUTME: Structured logger construction shared by every component.
// ABOUTME: Also adapts the logger to the interface Badger expects.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Options controls logger construction.
type Options struct {
	Level  string
	JSON   bool
	Prefix string
	Output io.Writer
}

// New builds a logger. An unknown level falls back to info.
func New(opts Options) *log.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	level, err := log.ParseLevel(strings.ToLower(opts.Level))
	if err != nil {
		level = log.InfoLevel
	}

	lo := log.Options{
		Level:           level,
		ReportTimestamp: true,
		Prefix:          opts.Prefix,
	}
	if opts.JSON {
		lo.Formatter = log.JSONFormatter
	}
	return log.NewWithOptions(out, lo)
}

// Discard returns a logger that writes nothing. Used by tests.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

// BadgerLogger adapts a charm logger to badger.Logger.
type BadgerLogger struct {
	L *log.Logger
}

func (b BadgerLogger) Errorf(format string, args ...any) {
	b.L.Error(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (b BadgerLogger) Warningf(format string, args ...any) {
	b.L.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (b BadgerLogger) Infof(format string, args ...any) {
	b.L.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (b BadgerLogger) Debugf(format string, args ...any) {
	b.L.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}
