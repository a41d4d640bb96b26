package resolution

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dcversus/prp-sub007/internal/condition"
	"github.com/dcversus/prp-sub007/internal/orchestrator"
	"github.com/dcversus/prp-sub007/internal/orchestrator/ports"
)

// DefaultMaxDepth bounds recursive ProcessSignal re-entry through signal
// actions. A self-looping catalog entry becomes a failed action outcome
// once the bound is hit instead of recursing without limit.
const DefaultMaxDepth = 8

// Engine executes signal resolutions. It is safe for concurrent use; the
// catalog it reads is live, so Add/Remove are visible to the next
// ProcessSignal call immediately.
type Engine struct {
	catalog  *Catalog
	tasks    ports.TaskService
	tools    ports.ToolExecutor
	notifier ports.NotificationSender
	tracker  *Tracker
	maxDepth int
}

// Options tunes the engine. Zero values select defaults.
type Options struct {
	MaxDepth          int
	ObservationWindow time.Duration
}

// NewEngine creates a resolution engine over the given catalog and
// collaborators. Collaborators may be nil; actions needing one fail
// individually.
func NewEngine(cat *Catalog, tasks ports.TaskService, tools ports.ToolExecutor, notifier ports.NotificationSender, opts Options) *Engine {
	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Engine{
		catalog:  cat,
		tasks:    tasks,
		tools:    tools,
		notifier: notifier,
		tracker:  NewTracker(opts.ObservationWindow),
		maxDepth: maxDepth,
	}
}

// Catalog exposes the live resolution catalog.
func (e *Engine) Catalog() *Catalog { return e.catalog }

// Tracker exposes the introspection records.
func (e *Engine) Tracker() *Tracker { return e.tracker }

// ProcessSignal resolves and executes the catalog entry for the signal's
// type. It never returns an error: unknown types yield an empty, failed
// result; per-action errors are captured into the results list.
func (e *Engine) ProcessSignal(ctx context.Context, sig *orchestrator.Signal, prp *orchestrator.PRP) *orchestrator.ResolutionResult {
	return e.process(ctx, sig, prp, 0)
}

func (e *Engine) process(ctx context.Context, sig *orchestrator.Signal, prp *orchestrator.PRP, depth int) *orchestrator.ResolutionResult {
	start := time.Now()
	result := &orchestrator.ResolutionResult{
		SignalID: sig.ID,
		Actions:  []orchestrator.ResolutionAction{},
		Results:  []orchestrator.ActionOutcome{},
	}

	res, ok := e.catalog.Get(ctx, sig.Type)
	if !ok {
		// Unknown signal types are not an error.
		slog.Warn("no resolution for signal type", "type", sig.Type, "signal", sig.ID)
		result.Duration = time.Since(start)
		return result
	}

	e.tracker.Begin(sig)
	result.Actions = res.Actions

	// Prerequisites are advisory: unmet ones are logged, never blocking.
	for _, prereq := range res.Prerequisites {
		if !e.prerequisiteMet(prereq, sig, prp) {
			slog.Warn("prerequisite unmet, proceeding anyway",
				"type", sig.Type, "signal", sig.ID, "prerequisite", prereq)
		}
	}

	for i, action := range res.Actions {
		e.tracker.Step(sig.ID, i)

		if !condition.All(action.Conditions, sig, prp) {
			// A failing condition set skips the action, it is not an error.
			result.Results = append(result.Results, orchestrator.ActionOutcome{
				Action:  action,
				Result:  "skipped: conditions not met",
				Success: true,
			})
			continue
		}

		output, err := e.executeAction(ctx, res, action, sig, prp, depth)
		outcome := orchestrator.ActionOutcome{Action: action, Result: output, Success: err == nil}
		if err != nil {
			outcome.Error = err.Error()
			slog.Warn("resolution action failed",
				"type", sig.Type, "signal", sig.ID, "action", action.Type, "err", err)
			e.handleFailure(ctx, res, sig, prp, depth)
		}
		result.Results = append(result.Results, outcome)
	}

	result.Success = e.resolveSuccess(res, result.Results)
	result.Duration = time.Since(start)
	e.tracker.Finish(sig.ID, result.Success)
	return result
}

// executeAction dispatches one resolution action by type.
func (e *Engine) executeAction(ctx context.Context, res *orchestrator.SignalResolution, action orchestrator.ResolutionAction, sig *orchestrator.Signal, prp *orchestrator.PRP, depth int) (any, error) {
	params := action.Parameters

	switch action.Type {
	case orchestrator.ResolutionAgentTask:
		if e.tasks == nil {
			return nil, fmt.Errorf("no task service configured")
		}
		desc := ports.TaskDescriptor{
			AgentType:   stringParam(params, "agent_type"),
			Description: stringParam(params, "task"),
			Priority:    intParam(params, "priority"),
			Context:     map[string]any{"signal_id": sig.ID, "signal_type": sig.Type},
			Timeout:     intParam(params, "timeout"),
			RetryCount:  action.RetryCount,
		}
		if desc.AgentType == "" || desc.Description == "" {
			return nil, fmt.Errorf("agent_task requires agent_type and task parameters")
		}
		taskID, err := e.tasks.CreateTask(ctx, "signal:"+sig.ID, desc)
		if err != nil {
			return nil, err
		}
		return map[string]any{"task_id": taskID}, nil

	case orchestrator.ResolutionSignal:
		signalType := stringParam(params, "signal_type")
		if signalType == "" {
			return nil, fmt.Errorf("signal action requires a signal_type parameter")
		}
		if depth+1 > e.maxDepth {
			return nil, fmt.Errorf("signal recursion depth %d exceeded processing %q", e.maxDepth, signalType)
		}
		data, _ := params["data"].(map[string]any)
		if data == nil {
			data = sig.Data
		}
		derived := orchestrator.NewSignal(signalType, "orchestrator", data)
		derived.RelatedSignals = []string{sig.ID}
		return e.process(ctx, derived, prp, depth+1), nil

	case orchestrator.ResolutionNotification:
		record := map[string]any{
			"success":   true,
			"message":   stringParam(params, "message"),
			"channel":   stringParam(params, "channel"),
			"timestamp": time.Now().UTC(),
		}
		if e.notifier != nil {
			if err := e.notifier.Send(ctx, stringParam(params, "channel"), stringParam(params, "message")); err != nil {
				return nil, err
			}
		}
		return record, nil

	case orchestrator.ResolutionToolCall:
		if e.tools == nil {
			return nil, fmt.Errorf("no tool executor configured")
		}
		toolName := stringParam(params, "tool_name")
		if toolName == "" {
			return nil, fmt.Errorf("tool_call requires a tool_name parameter")
		}
		toolParams, _ := params["parameters"].(map[string]any)
		return e.tools.ExecuteTool(ctx, toolName, toolParams, sig)

	case orchestrator.ResolutionPRPUpdate:
		if prp == nil {
			return nil, fmt.Errorf("prp_update requires a PRP context")
		}
		note := stringParam(params, "note")
		if note == "" {
			note = "signal " + sig.Type + " processed"
		}
		prp.AppendProgress(note)
		return map[string]any{"prp_id": prp.ID, "note": note}, nil

	case orchestrator.ResolutionEscalation:
		// Escalation runs the resolution's own path inline and
		// synchronously. This is distinct from any time-delayed
		// escalation in peripheral messaging systems.
		return e.executeEscalation(ctx, res, sig, prp, depth)

	default:
		return nil, fmt.Errorf("unknown resolution action type %q", action.Type)
	}
}

// executeEscalation runs the escalation path inline. Nested escalation
// actions inside the path are rejected to keep the path finite.
func (e *Engine) executeEscalation(ctx context.Context, res *orchestrator.SignalResolution, sig *orchestrator.Signal, prp *orchestrator.PRP, depth int) (any, error) {
	if len(res.EscalationPath) == 0 {
		return nil, fmt.Errorf("escalation action with no escalation path")
	}

	outcomes := make([]orchestrator.ActionOutcome, 0, len(res.EscalationPath))
	for _, step := range res.EscalationPath {
		if step.Type == orchestrator.ResolutionEscalation {
			outcomes = append(outcomes, orchestrator.ActionOutcome{
				Action: step, Error: "escalation path cannot escalate", Success: false,
			})
			continue
		}
		output, err := e.executeAction(ctx, res, step, sig, prp, depth)
		outcome := orchestrator.ActionOutcome{Action: step, Result: output, Success: err == nil}
		if err != nil {
			outcome.Error = err.Error()
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

// handleFailure attempts each declared failure-handling action best-effort.
// Errors here are logged only.
func (e *Engine) handleFailure(ctx context.Context, res *orchestrator.SignalResolution, sig *orchestrator.Signal, prp *orchestrator.PRP, depth int) {
	for _, action := range res.FailureHandling {
		if _, err := e.executeAction(ctx, res, action, sig, prp, depth); err != nil {
			slog.Warn("failure handling action failed",
				"type", sig.Type, "signal", sig.ID, "action", action.Type, "err", err)
		}
	}
}

// prerequisiteMet checks a prerequisite key against well-known signal data
// keys, falling back to a substring match on the PRP content.
func (e *Engine) prerequisiteMet(prereq string, sig *orchestrator.Signal, prp *orchestrator.PRP) bool {
	if sig.Data != nil {
		if v, ok := sig.Data[prereq]; ok && v != nil && v != false && v != "" {
			return true
		}
	}
	if prp != nil && strings.Contains(prp.Content, prereq) {
		return true
	}
	return false
}

// resolveSuccess derives the overall success flag. Declared success
// criteria are checked against the truthy fields of the merged action
// outputs; without criteria, success means every action succeeded.
func (e *Engine) resolveSuccess(res *orchestrator.SignalResolution, outcomes []orchestrator.ActionOutcome) bool {
	if len(res.SuccessCriteria) > 0 {
		merged := make(map[string]any)
		for _, outcome := range outcomes {
			if fields, ok := outcome.Result.(map[string]any); ok {
				for k, v := range fields {
					merged[k] = v
				}
			}
		}
		for _, criterion := range res.SuccessCriteria {
			v, ok := merged[criterion]
			if !ok || v == nil || v == false || v == "" {
				return false
			}
		}
		return true
	}

	for _, outcome := range outcomes {
		if !outcome.Success {
			return false
		}
	}
	return len(outcomes) > 0
}

func stringParam(params map[string]any, key string) string {
	v, _ := params[key].(string)
	return v
}

func intParam(params map[string]any, key string) int {
	switch v := params[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}
