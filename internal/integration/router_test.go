package integration

import (
	"context"
	"testing"
	"time"

	"github.com/dcversus/prp-sub007/internal/catalog"
	"github.com/dcversus/prp-sub007/internal/condition"
	"github.com/dcversus/prp-sub007/internal/engine"
	"github.com/dcversus/prp-sub007/internal/orchestrator"
	"github.com/dcversus/prp-sub007/internal/repository"
	"github.com/dcversus/prp-sub007/internal/resolution"
)

func triggeredWorkflow(id, signalType string, priority int) *orchestrator.WorkflowDefinition {
	return &orchestrator.WorkflowDefinition{
		ID:   id,
		Name: id,
		Triggers: []orchestrator.WorkflowTrigger{
			{ID: id + "-trigger", Type: "signal", SignalType: signalType, Priority: priority, Enabled: true},
		},
		States: []orchestrator.WorkflowState{
			{ID: "begin", Name: "Begin", Type: orchestrator.StateTypeStart},
			{ID: "done", Name: "Done", Type: orchestrator.StateTypeEnd},
		},
		Transitions: []orchestrator.WorkflowTransition{
			{From: "begin", To: "done", Enabled: true},
		},
	}
}

func newTestRouter(t *testing.T, defs ...*orchestrator.WorkflowDefinition) (*Router, *engine.Engine) {
	t.Helper()

	cat := catalog.New()
	// Built-ins carry their own signal triggers; drop them so tests
	// control trigger matching precisely.
	for _, builtin := range []string{"code-review", "bug-fix", "deployment", "testing"} {
		cat.Unregister(context.Background(), builtin)
	}
	for _, def := range defs {
		if err := cat.Register(context.Background(), def); err != nil {
			t.Fatalf("register %s: %v", def.ID, err)
		}
	}

	eval := condition.New()
	eng := engine.New(cat, repository.NewMemoryExecutionRepository(), eval, &engine.Dispatcher{}, engine.NewEventBus())
	resolver := resolution.NewEngine(resolution.NewCatalog(), nil, nil, nil, resolution.Options{})
	return NewRouter(cat, eng, resolver, eval), eng
}

func waitForStatus(t *testing.T, eng *engine.Engine, id string, want orchestrator.ExecutionStatus) *orchestrator.WorkflowExecution {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		exec, err := eng.GetExecution(context.Background(), id)
		if err != nil {
			t.Fatalf("get execution: %v", err)
		}
		if exec.Status == want {
			return exec
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("execution %s never reached %s", id, want)
	return nil
}

func TestRouteStartsHighestPriorityTrigger(t *testing.T) {
	router, eng := newTestRouter(t,
		triggeredWorkflow("wf-low", "pr", 1),
		triggeredWorkflow("wf-high", "pr", 10),
	)

	sig := orchestrator.NewSignal("pr", "git", nil)
	result, err := router.Route(context.Background(), sig, nil)
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if result.StartedWorkflow != "wf-high" {
		t.Errorf("started %q, want wf-high", result.StartedWorkflow)
	}
	if result.StartedExecution == "" {
		t.Fatal("no execution id returned")
	}
	waitForStatus(t, eng, result.StartedExecution, orchestrator.ExecutionCompleted)
}

func TestRouteSkipsDisabledAndMismatchedTriggers(t *testing.T) {
	disabled := triggeredWorkflow("wf-off", "pr", 10)
	disabled.Triggers[0].Enabled = false
	router, _ := newTestRouter(t, disabled, triggeredWorkflow("wf-other", "mg", 5))

	result, err := router.Route(context.Background(), orchestrator.NewSignal("pr", "git", nil), nil)
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if result.StartedWorkflow != "" {
		t.Errorf("no workflow should start, got %q", result.StartedWorkflow)
	}
	if result.Resolution == nil {
		t.Error("unmatched signal should fall through to the resolution engine")
	}
}

func TestRouteTriggerCondition(t *testing.T) {
	conditional := triggeredWorkflow("wf-cond", "pr", 5)
	conditional.Triggers[0].Condition = `data.branch == "main"`
	router, _ := newTestRouter(t, conditional)

	offBranch := orchestrator.NewSignal("pr", "git", map[string]any{"branch": "feature"})
	result, err := router.Route(context.Background(), offBranch, nil)
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if result.StartedWorkflow != "" {
		t.Error("condition should reject the feature branch signal")
	}

	onMain := orchestrator.NewSignal("pr", "git", map[string]any{"branch": "main"})
	result, err = router.Route(context.Background(), onMain, nil)
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if result.StartedWorkflow != "wf-cond" {
		t.Errorf("main branch signal should start wf-cond, got %q", result.StartedWorkflow)
	}
}

func TestRouteDeliversToWaitingExecution(t *testing.T) {
	waiting := &orchestrator.WorkflowDefinition{
		ID:   "wf-waiting",
		Name: "Waiting",
		States: []orchestrator.WorkflowState{
			{ID: "begin", Name: "Begin", Type: orchestrator.StateTypeStart},
			{ID: "hold", Name: "Hold", Type: orchestrator.StateTypeWait, WaitEvent: "rv"},
			{ID: "done", Name: "Done", Type: orchestrator.StateTypeEnd},
		},
		Transitions: []orchestrator.WorkflowTransition{
			{From: "begin", To: "hold", Enabled: true},
			{From: "hold", To: "done", Enabled: true},
		},
	}
	router, eng := newTestRouter(t, waiting)
	ctx := context.Background()

	id, err := eng.StartWorkflow(ctx, "wf-waiting", orchestrator.ContextSeed{}, nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	waitForStatus(t, eng, id, orchestrator.ExecutionRunning)
	// Let the drive task reach the wait state.
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		exec, _ := eng.GetExecution(ctx, id)
		if exec.CurrentState == "hold" {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	result, err := router.Route(ctx, orchestrator.NewSignal("rv", "reviewer", nil), nil)
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if len(result.DeliveredTo) != 1 || result.DeliveredTo[0] != id {
		t.Fatalf("delivered to %v, want [%s]", result.DeliveredTo, id)
	}
	if result.Resolution != nil {
		t.Error("a delivered signal should not also hit the resolution engine")
	}
	waitForStatus(t, eng, id, orchestrator.ExecutionCompleted)
}
