package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/dcversus/prp-sub007/internal/orchestrator"
)

func linearDefinition(id string) *orchestrator.WorkflowDefinition {
	return &orchestrator.WorkflowDefinition{
		ID:   id,
		Name: "linear " + id,
		States: []orchestrator.WorkflowState{
			{ID: "begin", Name: "Begin", Type: orchestrator.StateTypeStart},
			{ID: "finish", Name: "Finish", Type: orchestrator.StateTypeEnd},
		},
		Transitions: []orchestrator.WorkflowTransition{
			{From: "begin", To: "finish", Enabled: true},
		},
	}
}

func TestRegisterAndGet(t *testing.T) {
	c := New()
	ctx := context.Background()

	def := linearDefinition("wf-linear")
	if err := c.Register(ctx, def); err != nil {
		t.Fatalf("register: %v", err)
	}
	got, err := c.Get(ctx, "wf-linear")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != def.Name {
		t.Errorf("name = %q, want %q", got.Name, def.Name)
	}
}

func TestRegisterReplacesSameID(t *testing.T) {
	c := New()
	ctx := context.Background()

	first := linearDefinition("wf-dup")
	if err := c.Register(ctx, first); err != nil {
		t.Fatalf("register: %v", err)
	}
	second := linearDefinition("wf-dup")
	second.Name = "replacement"
	if err := c.Register(ctx, second); err != nil {
		t.Fatalf("register replacement: %v", err)
	}
	got, err := c.Get(ctx, "wf-dup")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "replacement" {
		t.Errorf("replacement not visible, got %q", got.Name)
	}
}

func TestGetUnknownIsNotFound(t *testing.T) {
	c := New()
	_, err := c.Get(context.Background(), "missing")
	var notFound *orchestrator.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("want NotFoundError, got %v", err)
	}
}

func TestUnregister(t *testing.T) {
	c := New()
	ctx := context.Background()
	if err := c.Register(ctx, linearDefinition("wf-gone")); err != nil {
		t.Fatalf("register: %v", err)
	}
	if !c.Unregister(ctx, "wf-gone") {
		t.Error("unregister should report the entry existed")
	}
	if c.Unregister(ctx, "wf-gone") {
		t.Error("second unregister should report missing")
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*orchestrator.WorkflowDefinition)
	}{
		{"missing id", func(d *orchestrator.WorkflowDefinition) { d.ID = "" }},
		{"missing name", func(d *orchestrator.WorkflowDefinition) { d.Name = "" }},
		{"no states", func(d *orchestrator.WorkflowDefinition) { d.States = nil }},
		{"no start state", func(d *orchestrator.WorkflowDefinition) {
			d.States[0].Type = orchestrator.StateTypeTask
		}},
		{"no end state", func(d *orchestrator.WorkflowDefinition) {
			d.States[1].Type = orchestrator.StateTypeTask
		}},
		{"transition from undeclared", func(d *orchestrator.WorkflowDefinition) {
			d.Transitions[0].From = "nowhere"
		}},
		{"transition to undeclared", func(d *orchestrator.WorkflowDefinition) {
			d.Transitions[0].To = "nowhere"
		}},
	}
	for _, tc := range cases {
		def := linearDefinition("wf-bad")
		tc.mutate(def)
		err := Validate(def)
		var validation *orchestrator.ValidationError
		if !errors.As(err, &validation) {
			t.Errorf("%s: want ValidationError, got %v", tc.name, err)
		}
	}
}

func TestBuiltinWorkflowsRegistered(t *testing.T) {
	c := New()
	ctx := context.Background()
	for _, id := range []string{"code-review", "bug-fix", "deployment", "testing"} {
		if _, err := c.Get(ctx, id); err != nil {
			t.Errorf("builtin %q missing: %v", id, err)
		}
	}
}

func TestLintGraphFlagsUnreachableState(t *testing.T) {
	def := linearDefinition("wf-lint")
	def.States = append(def.States, orchestrator.WorkflowState{
		ID: "orphan", Name: "Orphan", Type: orchestrator.StateTypeTask,
	})
	warnings := lintGraph(def)
	if len(warnings) == 0 {
		t.Fatal("expected a lint warning for the unreachable state")
	}
}

func TestLintGraphCleanDefinition(t *testing.T) {
	if warnings := lintGraph(linearDefinition("wf-clean")); len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
}
