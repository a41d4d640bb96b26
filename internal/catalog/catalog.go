// Package catalog holds the validated registry of workflow definitions.
package catalog

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dcversus/prp-sub007/internal/orchestrator"
	"github.com/dcversus/prp-sub007/internal/repository/memory"
)

// Catalog is the registry of workflow definitions. Registration validates;
// a successful Register replaces any prior entry with the same id, built-ins
// included. Reads always return the current entry, so mutating a definition
// mid-execution changes behavior for subsequent steps of in-flight
// executions. That is a documented risk, not something the catalog guards.
type Catalog struct {
	defs *memory.Store[*orchestrator.WorkflowDefinition]
}

// New creates a catalog seeded with the built-in workflow definitions.
func New() *Catalog {
	c := &Catalog{
		defs: memory.New(func(d *orchestrator.WorkflowDefinition) string { return d.ID }),
	}
	for _, def := range builtinWorkflows() {
		if err := c.Register(context.Background(), def); err != nil {
			// Built-ins are authored in this package; a validation failure
			// here is a programming error.
			panic(err)
		}
	}
	return c
}

// Register validates def and stores it, replacing any entry with the same id.
func (c *Catalog) Register(ctx context.Context, def *orchestrator.WorkflowDefinition) error {
	if err := Validate(def); err != nil {
		return err
	}

	if warnings := lintGraph(def); len(warnings) > 0 {
		for _, w := range warnings {
			slog.Warn("workflow graph lint", "workflow", def.ID, "warning", w)
		}
	}

	return c.defs.Set(ctx, def)
}

// Unregister removes the definition. It reports whether an entry existed.
func (c *Catalog) Unregister(ctx context.Context, id string) bool {
	return c.defs.Delete(ctx, id) == nil
}

// Get returns the current definition for id.
func (c *Catalog) Get(ctx context.Context, id string) (*orchestrator.WorkflowDefinition, error) {
	def, err := c.defs.Get(ctx, id)
	if errors.Is(err, memory.ErrNotFound) {
		return nil, &orchestrator.NotFoundError{Kind: "workflow", ID: id}
	}
	return def, err
}

// List returns all registered definitions in arbitrary order.
func (c *Catalog) List(ctx context.Context) ([]*orchestrator.WorkflowDefinition, error) {
	return c.defs.All(ctx)
}

// Validate checks the structural invariants of a definition.
func Validate(def *orchestrator.WorkflowDefinition) error {
	if def.ID == "" {
		return &orchestrator.ValidationError{Field: "id", Reason: "required"}
	}
	if def.Name == "" {
		return &orchestrator.ValidationError{Field: "name", Reason: "required"}
	}
	if len(def.States) == 0 {
		return &orchestrator.ValidationError{Field: "states", Reason: "must not be empty"}
	}

	declared := make(map[string]bool, len(def.States))
	var hasStart, hasEnd bool
	for _, s := range def.States {
		declared[s.ID] = true
		switch s.Type {
		case orchestrator.StateTypeStart:
			hasStart = true
		case orchestrator.StateTypeEnd:
			hasEnd = true
		}
	}
	if !hasStart {
		return &orchestrator.ValidationError{Field: "states", Reason: "no start state"}
	}
	if !hasEnd {
		return &orchestrator.ValidationError{Field: "states", Reason: "no end state"}
	}

	for _, t := range def.Transitions {
		if !declared[t.From] {
			return &orchestrator.ValidationError{Field: "transitions", Reason: "from references undeclared state " + t.From}
		}
		if !declared[t.To] {
			return &orchestrator.ValidationError{Field: "transitions", Reason: "to references undeclared state " + t.To}
		}
	}
	return nil
}
