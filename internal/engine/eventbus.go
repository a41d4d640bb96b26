package engine

import (
	"context"
	"sync"

	"github.com/dcversus/prp-sub007/internal/orchestrator"
)

// EventHandler consumes a lifecycle event.
type EventHandler func(orchestrator.Event)

// EventBus fans lifecycle events out to registered handlers. Handlers are
// invoked synchronously in registration order; slow consumers should hand
// off to their own goroutine.
type EventBus struct {
	mu       sync.RWMutex
	handlers []EventHandler
}

func NewEventBus() *EventBus {
	return &EventBus{}
}

// Subscribe registers a handler for all subsequent events.
func (b *EventBus) Subscribe(handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, handler)
}

// Publish delivers the event to every registered handler.
func (b *EventBus) Publish(event orchestrator.Event) {
	b.mu.RLock()
	handlers := make([]EventHandler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()
	for _, h := range handlers {
		h(event)
	}
}

// Channel returns a buffered channel fed by the bus until ctx is done.
// Events are dropped when the buffer is full.
func (b *EventBus) Channel(ctx context.Context, bufSize int) <-chan orchestrator.Event {
	ch := make(chan orchestrator.Event, bufSize)
	b.Subscribe(func(e orchestrator.Event) {
		select {
		case ch <- e:
		case <-ctx.Done():
		default:
		}
	})
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch
}
