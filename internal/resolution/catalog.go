// Package resolution implements the signal resolution engine: a
// catalog-driven mapping from signal types to prioritized, conditional
// action sequences with escalation and failure handling.
package resolution

import (
	"context"

	"github.com/dcversus/prp-sub007/internal/orchestrator"
	"github.com/dcversus/prp-sub007/internal/repository/memory"
)

// Catalog maps signal-type strings to resolutions. Entries are mutable at
// runtime; last write wins per key. Built-ins are seeded at construction
// and are ordinary entries, not protected: Add with the same key replaces
// them, and the change is visible to the very next ProcessSignal call.
type Catalog struct {
	entries *memory.Store[*orchestrator.SignalResolution]
}

// NewCatalog creates a catalog seeded with the built-in resolutions.
func NewCatalog() *Catalog {
	c := &Catalog{
		entries: memory.New(func(r *orchestrator.SignalResolution) string { return r.SignalType }),
	}
	ctx := context.Background()
	for _, res := range builtinResolutions() {
		_ = c.entries.Set(ctx, res)
	}
	return c
}

// Add inserts or replaces the resolution for its signal type.
func (c *Catalog) Add(ctx context.Context, res *orchestrator.SignalResolution) {
	_ = c.entries.Set(ctx, res)
}

// Remove deletes the resolution for signalType, reporting whether an entry
// existed.
func (c *Catalog) Remove(ctx context.Context, signalType string) bool {
	return c.entries.Delete(ctx, signalType) == nil
}

// Get returns the resolution for signalType, or false when unknown.
func (c *Catalog) Get(ctx context.Context, signalType string) (*orchestrator.SignalResolution, bool) {
	res, err := c.entries.Get(ctx, signalType)
	if err != nil {
		return nil, false
	}
	return res, true
}

// All returns every catalog entry in arbitrary order.
func (c *Catalog) All(ctx context.Context) []*orchestrator.SignalResolution {
	all, _ := c.entries.All(ctx)
	return all
}
