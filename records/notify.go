// ABOUTME: User-facing reporting port for rejected batch items
// ABOUTME: Provides log, collecting, fan-out, and context-scoped notifiers
package records

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Notifier receives messages meant for the user.
type Notifier interface {
	Notify(msg string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(msg string)

func (f NotifierFunc) Notify(msg string) { f(msg) }

// Discard drops every message.
var Discard Notifier = NotifierFunc(func(string) {})

// LogNotifier writes messages as warnings.
type LogNotifier struct {
	Logger *zap.Logger
}

func (l LogNotifier) Notify(msg string) {
	if l.Logger == nil {
		return
	}
	l.Logger.Warn("backend reported a problem", zap.String("message", msg))
}

// Collector keeps messages in arrival order.
type Collector struct {
	mu       sync.Mutex
	messages []string
}

func (c *Collector) Notify(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
}

// Messages returns a copy of the collected messages.
func (c *Collector) Messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.messages))
	copy(out, c.messages)
	return out
}

type multi []Notifier

func (m multi) Notify(msg string) {
	for _, n := range m {
		n.Notify(msg)
	}
}

// Multi fans messages out to every non-nil notifier.
func Multi(notifiers ...Notifier) Notifier {
	var out multi
	for _, n := range notifiers {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

type notifierKey struct{}

// WithNotifier attaches n to ctx so a single request can capture its own
// messages.
func WithNotifier(ctx context.Context, n Notifier) context.Context {
	return context.WithValue(ctx, notifierKey{}, n)
}

// FromContext returns the notifier attached by WithNotifier, or nil.
func FromContext(ctx context.Context) Notifier {
	n, _ := ctx.Value(notifierKey{}).(Notifier)
	return n
}
