// Package notify delivers engine notifications to external channels.
package notify

import (
	"context"
	"log/slog"
	"sync"
)

// Sender delivers a message to one backend.
type Sender interface {
	Send(ctx context.Context, channel, message string) error
}

// Router routes notifications to per-channel senders, falling back to a
// default sender for unrouted channels. It satisfies the engines'
// notification port.
type Router struct {
	mu       sync.RWMutex
	routes   map[string]Sender
	fallback Sender
}

// NewRouter creates a router with the given fallback sender. A nil
// fallback routes unmatched channels to the console.
func NewRouter(fallback Sender) *Router {
	if fallback == nil {
		fallback = &ConsoleSender{}
	}
	return &Router{routes: make(map[string]Sender), fallback: fallback}
}

// Route directs a channel to a sender.
func (r *Router) Route(channel string, s Sender) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[channel] = s
}

// Send delivers the message via the channel's sender.
func (r *Router) Send(ctx context.Context, channel, message string) error {
	r.mu.RLock()
	s, ok := r.routes[channel]
	r.mu.RUnlock()
	if !ok {
		s = r.fallback
	}
	return s.Send(ctx, channel, message)
}

// ConsoleSender logs notifications instead of delivering them externally.
type ConsoleSender struct{}

func (c *ConsoleSender) Send(_ context.Context, channel, message string) error {
	slog.Info("notification", "channel", channel, "message", message)
	return nil
}
