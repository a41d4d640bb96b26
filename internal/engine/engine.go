// Package engine implements the workflow execution engine: a state-machine
// interpreter that drives executions through their definition's states,
// dispatching actions and recording history.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dcversus/prp-sub007/internal/catalog"
	"github.com/dcversus/prp-sub007/internal/condition"
	"github.com/dcversus/prp-sub007/internal/orchestrator"
	"github.com/dcversus/prp-sub007/internal/orchestrator/ports"
	"github.com/dcversus/prp-sub007/internal/repository"
)

// Engine drives workflow executions. Each active execution is driven by a
// single logical goroutine; the driving set guarantees an execution is
// never driven concurrently, and re-drives of an already-driven execution
// are no-ops.
type Engine struct {
	catalog    *catalog.Catalog
	execs      repository.ExecutionRepository
	eval       *condition.Evaluator
	dispatcher *Dispatcher
	bus        *EventBus
	timers     *TimerService

	mu      sync.Mutex // guards execution records and the driving set
	driving map[string]bool
}

// New creates an engine. The dispatcher's collaborators may be nil; actions
// needing a missing collaborator fail individually.
func New(cat *catalog.Catalog, execs repository.ExecutionRepository, eval *condition.Evaluator, dispatcher *Dispatcher, bus *EventBus) *Engine {
	if dispatcher == nil {
		dispatcher = &Dispatcher{}
	}
	return &Engine{
		catalog:    cat,
		execs:      execs,
		eval:       eval,
		dispatcher: dispatcher,
		bus:        bus,
		timers:     NewTimerService(),
		driving:    make(map[string]bool),
	}
}

// Bus exposes the lifecycle event bus for external subscribers.
func (e *Engine) Bus() *EventBus { return e.bus }

// StartWorkflow creates a pending execution for workflowID and schedules an
// asynchronous drive task. The execution id is returned immediately.
func (e *Engine) StartWorkflow(ctx context.Context, workflowID string, seed orchestrator.ContextSeed, triggerMetadata map[string]any) (string, error) {
	def, err := e.catalog.Get(ctx, workflowID)
	if err != nil {
		return "", err
	}

	start, ok := def.StartState()
	if !ok {
		// Validate rejects definitions without a start state, so only a
		// catalog mutated after registration can get here.
		return "", &orchestrator.ValidationError{Field: "states", Reason: "no start state"}
	}

	variables := make(map[string]any)
	for _, v := range def.Variables {
		if v.Default != nil {
			variables[v.Name] = v.Default
		}
	}
	for k, v := range seed.GlobalVariables {
		variables[k] = v
	}

	execContext := make(map[string]any)
	if seed.Signal != nil {
		execContext["signal"] = map[string]any{
			"id":     seed.Signal.ID,
			"type":   seed.Signal.Type,
			"source": seed.Signal.Source,
			"data":   seed.Signal.Data,
		}
	}
	if seed.PRP != nil {
		execContext["prp_id"] = seed.PRP.ID
	}

	exec := &orchestrator.WorkflowExecution{
		ID:           uuid.NewString(),
		WorkflowID:   workflowID,
		Status:       orchestrator.ExecutionPending,
		CurrentState: start.ID,
		Variables:    variables,
		Context:      execContext,
		StartedAt:    time.Now().UTC(),
		TriggeredBy:  triggerMetadata,
	}
	if err := e.execs.Create(ctx, exec); err != nil {
		return "", err
	}

	e.bus.Publish(orchestrator.NewEvent(orchestrator.EventWorkflowStarted, exec.ID, workflowID, map[string]any{
		"current_state": start.ID,
	}))

	if e.tryStartDriving(exec.ID) {
		go e.drive(context.WithoutCancel(ctx), exec.ID)
	}
	return exec.ID, nil
}

// GetExecution returns a snapshot of the execution record.
func (e *Engine) GetExecution(ctx context.Context, id string) (*orchestrator.WorkflowExecution, error) {
	exec, err := e.execs.Get(ctx, id)
	if err != nil {
		return nil, &orchestrator.NotFoundError{Kind: "execution", ID: id}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	snapshot := *exec
	return &snapshot, nil
}

// ListExecutions returns snapshots of all execution records.
func (e *Engine) ListExecutions(ctx context.Context) ([]*orchestrator.WorkflowExecution, error) {
	execs, err := e.execs.List(ctx)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*orchestrator.WorkflowExecution, len(execs))
	for i, exec := range execs {
		snapshot := *exec
		out[i] = &snapshot
	}
	return out, nil
}

// PauseExecution suspends a running execution. The drive task observes the
// new status at its next step boundary; outstanding timers are cancelled.
func (e *Engine) PauseExecution(ctx context.Context, id string) error {
	exec, err := e.execs.Get(ctx, id)
	if err != nil {
		return &orchestrator.NotFoundError{Kind: "execution", ID: id}
	}

	e.mu.Lock()
	if exec.Status != orchestrator.ExecutionRunning {
		status := exec.Status
		e.mu.Unlock()
		return &orchestrator.StateConflictError{ExecutionID: id, Status: status, Operation: "pause"}
	}
	exec.Status = orchestrator.ExecutionPaused
	e.mu.Unlock()

	e.timers.CancelAll(id)
	return e.execs.Update(ctx, exec)
}

// ResumeExecution flips a paused execution back to running and schedules a
// fresh drive task.
func (e *Engine) ResumeExecution(ctx context.Context, id string) error {
	exec, err := e.execs.Get(ctx, id)
	if err != nil {
		return &orchestrator.NotFoundError{Kind: "execution", ID: id}
	}

	e.mu.Lock()
	if exec.Status != orchestrator.ExecutionPaused {
		status := exec.Status
		e.mu.Unlock()
		return &orchestrator.StateConflictError{ExecutionID: id, Status: status, Operation: "resume"}
	}
	exec.Status = orchestrator.ExecutionRunning
	e.mu.Unlock()

	if err := e.execs.Update(ctx, exec); err != nil {
		return err
	}
	if e.tryStartDriving(id) {
		go e.drive(context.WithoutCancel(ctx), id)
	}
	return nil
}

// CancelExecution terminates a running or paused execution. A non-empty
// reason is retained as the terminal error. All outstanding timers are
// cancelled so no re-drive can resume the cancelled execution.
func (e *Engine) CancelExecution(ctx context.Context, id, reason string) error {
	exec, err := e.execs.Get(ctx, id)
	if err != nil {
		return &orchestrator.NotFoundError{Kind: "execution", ID: id}
	}

	e.mu.Lock()
	if exec.Status != orchestrator.ExecutionRunning && exec.Status != orchestrator.ExecutionPaused {
		status := exec.Status
		e.mu.Unlock()
		return &orchestrator.StateConflictError{ExecutionID: id, Status: status, Operation: "cancel"}
	}
	exec.Status = orchestrator.ExecutionCancelled
	now := time.Now().UTC()
	exec.EndedAt = &now
	if reason != "" {
		exec.Error = &orchestrator.WorkflowError{Code: "cancelled", Message: reason, Recoverable: false}
	}
	e.mu.Unlock()

	e.timers.CancelAll(id)
	if err := e.execs.Update(ctx, exec); err != nil {
		return err
	}

	e.bus.Publish(orchestrator.NewEvent(orchestrator.EventWorkflowCompleted, id, exec.WorkflowID, map[string]any{
		"status": string(orchestrator.ExecutionCancelled),
		"reason": reason,
	}))
	return nil
}

// Redrive re-enters the drive loop of a running execution idling at a
// decision/wait/parallel state. It is a no-op for non-running executions
// or executions currently being driven.
func (e *Engine) Redrive(ctx context.Context, id string) error {
	exec, err := e.execs.Get(ctx, id)
	if err != nil {
		return &orchestrator.NotFoundError{Kind: "execution", ID: id}
	}
	if e.status(exec) != orchestrator.ExecutionRunning {
		return nil
	}
	if e.tryStartDriving(id) {
		go e.drive(context.WithoutCancel(ctx), id)
	}
	return nil
}

// ScheduleRedrive arranges a Redrive after delay. The returned token and
// the execution's timer set both cancel it.
func (e *Engine) ScheduleRedrive(id string, delay time.Duration) *TimerToken {
	return e.timers.Schedule(id, delay, func() {
		if err := e.Redrive(context.Background(), id); err != nil {
			slog.Warn("scheduled redrive failed", "execution", id, "err", err)
		}
	})
}

// DeliverSignal offers a signal to an execution idling on a wait state.
// It reports whether the signal matched the state's wait event.
func (e *Engine) DeliverSignal(ctx context.Context, id string, sig *orchestrator.Signal) (bool, error) {
	exec, err := e.execs.Get(ctx, id)
	if err != nil {
		return false, &orchestrator.NotFoundError{Kind: "execution", ID: id}
	}
	if e.status(exec) != orchestrator.ExecutionRunning {
		return false, nil
	}

	def, err := e.catalog.Get(ctx, exec.WorkflowID)
	if err != nil {
		return false, err
	}

	e.mu.Lock()
	state, ok := def.State(exec.CurrentState)
	if !ok || state.Type != orchestrator.StateTypeWait || state.WaitEvent != sig.Type {
		e.mu.Unlock()
		return false, nil
	}
	if exec.Context == nil {
		exec.Context = make(map[string]any)
	}
	exec.Context[waitEventKey(sig.Type)] = true
	for k, v := range sig.Data {
		exec.Context[k] = v
	}
	exec.Signals = append(exec.Signals, sig.ID)
	e.mu.Unlock()

	if err := e.execs.Update(ctx, exec); err != nil {
		return false, err
	}
	return true, e.Redrive(ctx, id)
}

// OnTaskCompleted is the task collaborator's completion callback. The task
// result is merged into the execution context, which can satisfy a later
// wait condition, then the execution is re-driven.
func (e *Engine) OnTaskCompleted(ctx context.Context, id, taskID string, result map[string]any) error {
	exec, err := e.execs.Get(ctx, id)
	if err != nil {
		return &orchestrator.NotFoundError{Kind: "execution", ID: id}
	}

	e.mu.Lock()
	if exec.Context == nil {
		exec.Context = make(map[string]any)
	}
	for k, v := range result {
		exec.Context[k] = v
	}
	exec.Context["last_completed_task"] = taskID
	e.mu.Unlock()

	if err := e.execs.Update(ctx, exec); err != nil {
		return err
	}
	return e.Redrive(ctx, id)
}

// drive is the execution's single logical drive task. It loops until the
// execution idles, completes, or fails.
func (e *Engine) drive(ctx context.Context, id string) {
	defer e.stopDriving(id)

	exec, err := e.execs.Get(ctx, id)
	if err != nil {
		slog.Error("drive: execution vanished", "execution", id, "err", err)
		return
	}

	e.mu.Lock()
	if exec.Status == orchestrator.ExecutionPending {
		exec.Status = orchestrator.ExecutionRunning
	}
	e.mu.Unlock()

	for e.status(exec) == orchestrator.ExecutionRunning {
		def, err := e.catalog.Get(ctx, exec.WorkflowID)
		if err != nil {
			e.fail(ctx, exec, exec.CurrentState, fmt.Errorf("workflow definition no longer registered: %w", err))
			return
		}
		state, ok := def.State(exec.CurrentState)
		if !ok {
			e.fail(ctx, exec, exec.CurrentState, fmt.Errorf("state %q no longer exists in workflow %q", exec.CurrentState, def.ID))
			return
		}

		stepStart := time.Now()

		// Entry action failure is fatal to the whole execution. Contrast
		// with transition actions below, whose failures are captured
		// per-action; downstream failure handling depends on keeping the
		// non-fatal path non-fatal.
		if _, err := e.dispatcher.ExecuteAll(ctx, exec, state.EntryActions); err != nil {
			e.appendHistory(exec, state, "", stepStart, err)
			e.fail(ctx, exec, state.ID, fmt.Errorf("entry actions: %w", err))
			return
		}

		next, transition, result, err := e.executeState(ctx, def, exec, state)
		if err != nil {
			e.appendHistory(exec, state, result, stepStart, err)
			e.fail(ctx, exec, state.ID, err)
			return
		}

		// Exit actions share the entry contract: fatal on failure.
		if _, err := e.dispatcher.ExecuteAll(ctx, exec, state.ExitActions); err != nil {
			e.appendHistory(exec, state, result, stepStart, err)
			e.fail(ctx, exec, state.ID, fmt.Errorf("exit actions: %w", err))
			return
		}

		e.appendHistory(exec, state, result, stepStart, nil)
		e.persist(ctx, exec)

		if next == exec.CurrentState {
			// Idle: the execution stays running but the drive task ends
			// until an external trigger re-drives it.
			return
		}

		if transition != nil {
			for _, action := range transition.Actions {
				res, aerr := e.dispatcher.Execute(ctx, exec, action)
				if aerr != nil {
					slog.Warn("transition action failed", "execution", exec.ID, "action", action.Type, "err", aerr)
				}
				e.bus.Publish(orchestrator.NewEvent(orchestrator.EventActionExecuted, exec.ID, exec.WorkflowID, map[string]any{
					"action":  string(action.Type),
					"success": res.Success,
					"error":   res.Error,
				}))
			}
		}

		e.mu.Lock()
		exec.CurrentState = next
		e.mu.Unlock()

		e.bus.Publish(orchestrator.NewEvent(orchestrator.EventStateChanged, exec.ID, exec.WorkflowID, map[string]any{
			"from": state.ID,
			"to":   next,
		}))
		e.persist(ctx, exec)
	}
}

// executeState dispatches on the state type and computes the next state.
// A returned next equal to the current state means idle. The returned
// transition, when non-nil, carries the actions to run before advancing.
func (e *Engine) executeState(ctx context.Context, def *orchestrator.WorkflowDefinition, exec *orchestrator.WorkflowExecution, state *orchestrator.WorkflowState) (next string, transition *orchestrator.WorkflowTransition, result string, err error) {
	switch state.Type {
	case orchestrator.StateTypeStart:
		t := e.pickTransition(def, exec, state.ID)
		if t == nil {
			return state.ID, nil, "", fmt.Errorf("no transitions from start state %q", state.ID)
		}
		return t.To, t, "started", nil

	case orchestrator.StateTypeTask:
		if state.AgentRole == "" || state.TaskDescription == "" {
			return state.ID, nil, "", fmt.Errorf("task state %q missing agent role or task description", state.ID)
		}
		if e.dispatcher.Tasks == nil {
			return state.ID, nil, "", fmt.Errorf("task state %q: no task service configured", state.ID)
		}
		taskID, terr := e.dispatcher.Tasks.CreateTask(ctx, exec.ID, taskDescriptor(state, exec))
		if terr != nil {
			return state.ID, nil, "", fmt.Errorf("task state %q: %w", state.ID, terr)
		}
		e.mu.Lock()
		exec.Tasks = append(exec.Tasks, taskID)
		e.mu.Unlock()

		t := e.firstEnabledTransition(def, exec, state.ID)
		if t == nil {
			return state.ID, nil, "task " + taskID + " created", nil
		}
		return t.To, t, "task " + taskID + " created", nil

	case orchestrator.StateTypeDecision:
		env := e.executionEnv(exec)
		for i, opt := range state.DecisionOptions {
			if opt.Condition == "" {
				return opt.TargetState, nil, fmt.Sprintf("option %d matched", i), nil
			}
			matched, cerr := e.eval.Evaluate(opt.Condition, env)
			if cerr != nil {
				slog.Warn("decision condition error", "execution", exec.ID, "state", state.ID, "err", cerr)
				continue
			}
			if matched {
				return opt.TargetState, nil, fmt.Sprintf("option %d matched", i), nil
			}
		}
		return state.ID, nil, "no option matched", nil

	case orchestrator.StateTypeParallel:
		joined, summary := e.runParallel(ctx, def, exec, state)
		if !joined {
			return state.ID, nil, summary, nil
		}
		t := e.pickTransition(def, exec, state.ID)
		if t == nil {
			return state.ID, nil, summary, nil
		}
		return t.To, t, summary, nil

	case orchestrator.StateTypeWait:
		satisfied := false
		if state.WaitCondition != "" {
			ok, cerr := e.eval.Evaluate(state.WaitCondition, e.executionEnv(exec))
			if cerr != nil {
				slog.Warn("wait condition error", "execution", exec.ID, "state", state.ID, "err", cerr)
			}
			satisfied = ok
		}
		if !satisfied && state.WaitEvent != "" {
			e.mu.Lock()
			if marker, ok := exec.Context[waitEventKey(state.WaitEvent)].(bool); ok && marker {
				satisfied = true
				delete(exec.Context, waitEventKey(state.WaitEvent))
			}
			e.mu.Unlock()
		}
		if !satisfied {
			return state.ID, nil, "waiting", nil
		}
		t := e.pickTransition(def, exec, state.ID)
		if t == nil {
			return state.ID, nil, "wait satisfied, no transition", nil
		}
		return t.To, t, "wait satisfied", nil

	case orchestrator.StateTypeEnd:
		e.complete(ctx, exec)
		return state.ID, nil, "completed", nil

	case orchestrator.StateTypeError:
		e.mu.Lock()
		exec.Status = orchestrator.ExecutionFailed
		now := time.Now().UTC()
		exec.EndedAt = &now
		if exec.Error == nil {
			exec.Error = &orchestrator.WorkflowError{
				Code:        "error_state",
				Message:     "workflow reached error state " + state.ID,
				Recoverable: false,
			}
		}
		e.mu.Unlock()
		e.timers.CancelAll(exec.ID)
		e.bus.Publish(orchestrator.NewEvent(orchestrator.EventWorkflowCompleted, exec.ID, exec.WorkflowID, map[string]any{
			"status": string(orchestrator.ExecutionFailed),
		}))
		return state.ID, nil, "error state reached", nil

	default:
		return state.ID, nil, "", fmt.Errorf("unknown state type %q", state.Type)
	}
}

// pickTransition returns the highest-priority enabled transition from
// stateID whose condition holds. nil when none match.
func (e *Engine) pickTransition(def *orchestrator.WorkflowDefinition, exec *orchestrator.WorkflowExecution, stateID string) *orchestrator.WorkflowTransition {
	candidates := def.TransitionsFrom(stateID)
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Priority > candidates[j].Priority
	})
	return e.firstMatching(candidates, exec)
}

// firstEnabledTransition returns the first enabled matching transition in
// declaration order, the advance rule for task states.
func (e *Engine) firstEnabledTransition(def *orchestrator.WorkflowDefinition, exec *orchestrator.WorkflowExecution, stateID string) *orchestrator.WorkflowTransition {
	return e.firstMatching(def.TransitionsFrom(stateID), exec)
}

func (e *Engine) firstMatching(candidates []orchestrator.WorkflowTransition, exec *orchestrator.WorkflowExecution) *orchestrator.WorkflowTransition {
	env := e.executionEnv(exec)
	for i := range candidates {
		t := &candidates[i]
		if t.Condition == "" {
			return t
		}
		matched, err := e.eval.Evaluate(t.Condition, env)
		if err != nil {
			slog.Warn("transition condition error", "execution", exec.ID, "transition", t.From+"->"+t.To, "err", err)
			continue
		}
		if matched {
			return t
		}
	}
	return nil
}

func (e *Engine) complete(ctx context.Context, exec *orchestrator.WorkflowExecution) {
	e.mu.Lock()
	exec.Status = orchestrator.ExecutionCompleted
	now := time.Now().UTC()
	exec.EndedAt = &now
	variables := make(map[string]any, len(exec.Variables))
	for k, v := range exec.Variables {
		variables[k] = v
	}
	e.mu.Unlock()

	e.timers.CancelAll(exec.ID)
	e.persist(ctx, exec)
	e.bus.Publish(orchestrator.NewEvent(orchestrator.EventWorkflowCompleted, exec.ID, exec.WorkflowID, map[string]any{
		"status":    string(orchestrator.ExecutionCompleted),
		"variables": variables,
	}))
}

// fail marks the execution failed with a structured error and cancels its
// timers.
func (e *Engine) fail(ctx context.Context, exec *orchestrator.WorkflowExecution, stateID string, cause error) {
	fault := &orchestrator.ExecutionFault{ExecutionID: exec.ID, StateID: stateID, Err: cause}
	slog.Error("execution faulted", "execution", exec.ID, "state", stateID, "err", cause)

	e.mu.Lock()
	exec.Status = orchestrator.ExecutionFailed
	now := time.Now().UTC()
	exec.EndedAt = &now
	exec.Error = &orchestrator.WorkflowError{
		Code:        "execution_fault",
		Message:     cause.Error(),
		Recoverable: false,
		SuggestedActions: []string{
			"inspect the execution history",
			"fix the workflow definition and start a new execution",
		},
	}
	e.mu.Unlock()

	e.timers.CancelAll(exec.ID)
	e.persist(ctx, exec)
	e.bus.Publish(orchestrator.NewEvent(orchestrator.EventWorkflowError, exec.ID, exec.WorkflowID, map[string]any{
		"error": fault.Error(),
		"state": stateID,
	}))
}

func (e *Engine) appendHistory(exec *orchestrator.WorkflowExecution, state *orchestrator.WorkflowState, result string, stepStart time.Time, stepErr error) {
	entry := orchestrator.HistoryEntry{
		Timestamp: time.Now().UTC(),
		ToState:   state.ID,
		Action:    "execute_state_" + string(state.Type),
		Result:    result,
		Duration:  time.Since(stepStart),
	}
	if stepErr != nil {
		entry.Error = stepErr.Error()
	}
	e.mu.Lock()
	exec.History = append(exec.History, entry)
	e.mu.Unlock()
}

func (e *Engine) persist(ctx context.Context, exec *orchestrator.WorkflowExecution) {
	if err := e.execs.Update(ctx, exec); err != nil {
		slog.Warn("persist execution failed", "execution", exec.ID, "err", err)
	}
}

func (e *Engine) executionEnv(exec *orchestrator.WorkflowExecution) map[string]any {
	e.mu.Lock()
	defer e.mu.Unlock()
	env := make(map[string]any, len(exec.Variables)+len(exec.Context))
	for k, v := range exec.Variables {
		env[k] = v
	}
	for k, v := range exec.Context {
		env[k] = v
	}
	return env
}

func (e *Engine) status(exec *orchestrator.WorkflowExecution) orchestrator.ExecutionStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return exec.Status
}

func (e *Engine) tryStartDriving(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.driving[id] {
		return false
	}
	e.driving[id] = true
	return true
}

func (e *Engine) stopDriving(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.driving, id)
}

func taskDescriptor(state *orchestrator.WorkflowState, exec *orchestrator.WorkflowExecution) ports.TaskDescriptor {
	return ports.TaskDescriptor{
		AgentType:    state.AgentRole,
		Description:  state.TaskDescription,
		Instructions: state.TaskInstructions,
		Context:      exec.Context,
	}
}

func waitEventKey(signalType string) string {
	return "__event_" + signalType
}
