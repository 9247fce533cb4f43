package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Listener receives events of type E
type Listener[E any] interface {
	Handle(ctx context.Context, event E) error
}

// ListenerFunc adapts a function to a Listener
type ListenerFunc[E any] func(ctx context.Context, event E) error

// Handle calls f(ctx, event)
func (f ListenerFunc[E]) Handle(ctx context.Context, event E) error {
	return f(ctx, event)
}

// Bus delivers events to every subscribed listener in subscription order.
// Listener failures, including panics, are logged and never reach the publisher.
type Bus[E any] struct {
	name      string
	mu        sync.RWMutex
	listeners []Listener[E]
}

// NewBus creates an empty bus. The name only appears in log records.
func NewBus[E any](name string) *Bus[E] {
	return &Bus[E]{name: name}
}

// Subscribe adds a listener
func (b *Bus[E]) Subscribe(l Listener[E]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, l)
}

// Publish delivers the event synchronously and returns how many listeners handled it without error
func (b *Bus[E]) Publish(ctx context.Context, event E) int {
	b.mu.RLock()
	listeners := make([]Listener[E], len(b.listeners))
	copy(listeners, b.listeners)
	b.mu.RUnlock()

	delivered := 0
	for i, l := range listeners {
		if err := b.deliver(ctx, l, event); err != nil {
			slog.Error("Event listener failed",
				"bus", b.name,
				"listener", i,
				"error", err)
			continue
		}
		delivered++
	}
	return delivered
}

func (*Bus[E]) deliver(ctx context.Context, l Listener[E], event E) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("listener panicked: %v", r)
		}
	}()
	return l.Handle(ctx, event)
}

// NewLogListener returns a listener that records every event at info level
func NewLogListener[E any](msg string) Listener[E] {
	return ListenerFunc[E](func(ctx context.Context, event E) error {
		slog.InfoContext(ctx, msg, "event", event)
		return nil
	})
}
