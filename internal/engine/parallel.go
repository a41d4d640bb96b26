package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dcversus/prp-sub007/internal/orchestrator"
)

// branchResult is one branch's settlement. Each branch runs against a
// scratch copy of the execution so concurrent branches never share mutable
// state; the drive goroutine merges scratches after the join.
type branchResult struct {
	branchID string
	entries  []orchestrator.HistoryEntry
	scratch  *orchestrator.WorkflowExecution
	err      error
}

// runParallel drives every branch of a parallel state and applies the
// state's join condition. It returns whether the join succeeded and a
// summary for the history record.
func (e *Engine) runParallel(ctx context.Context, def *orchestrator.WorkflowDefinition, exec *orchestrator.WorkflowExecution, state *orchestrator.WorkflowState) (bool, string) {
	branches := state.ParallelBranches
	if len(branches) == 0 {
		return true, "parallel state with no branches"
	}

	join := state.JoinCondition
	if join == "" {
		join = orchestrator.JoinAll
	}

	switch join {
	case orchestrator.JoinAll:
		return e.joinAll(ctx, def, exec, branches)
	case orchestrator.JoinAny, orchestrator.JoinFirst:
		return e.joinFirst(ctx, def, exec, branches, join)
	default:
		return false, fmt.Sprintf("unknown join condition %q", state.JoinCondition)
	}
}

// joinAll settles only when every branch has settled; any branch error
// fails the join.
func (e *Engine) joinAll(ctx context.Context, def *orchestrator.WorkflowDefinition, exec *orchestrator.WorkflowExecution, branches []orchestrator.ParallelBranch) (bool, string) {
	results := make([]branchResult, len(branches))
	g, gctx := errgroup.WithContext(ctx)
	for i, branch := range branches {
		i, branch := i, branch
		g.Go(func() error {
			results[i] = e.runBranch(gctx, def, exec, branch)
			return results[i].err
		})
	}
	err := g.Wait()

	for _, res := range results {
		if res.err == nil && res.scratch != nil {
			e.mergeBranch(exec, res)
		}
	}
	if err != nil {
		return false, fmt.Sprintf("parallel join all failed: %v", err)
	}
	return true, fmt.Sprintf("parallel join all: %d branches settled", len(branches))
}

// joinFirst advances on the first settlement without waiting on the rest.
// Laggard branches keep running detached; their side effects on external
// collaborators stand, but they no longer touch this execution.
func (e *Engine) joinFirst(ctx context.Context, def *orchestrator.WorkflowDefinition, exec *orchestrator.WorkflowExecution, branches []orchestrator.ParallelBranch, join orchestrator.JoinCondition) (bool, string) {
	settled := make(chan branchResult, len(branches))
	for _, branch := range branches {
		branch := branch
		go func() {
			settled <- e.runBranch(ctx, def, exec, branch)
		}()
	}

	select {
	case first := <-settled:
		if first.err != nil {
			return false, fmt.Sprintf("parallel join %s: branch %s failed: %v", join, first.branchID, first.err)
		}
		e.mergeBranch(exec, first)
		return true, fmt.Sprintf("parallel join %s: branch %s settled", join, first.branchID)
	case <-ctx.Done():
		return false, fmt.Sprintf("parallel join %s interrupted: %v", join, ctx.Err())
	}
}

// runBranch drives a branch's linear state chain against a scratch copy of
// the execution.
func (e *Engine) runBranch(ctx context.Context, def *orchestrator.WorkflowDefinition, exec *orchestrator.WorkflowExecution, branch orchestrator.ParallelBranch) branchResult {
	result := branchResult{branchID: branch.ID, scratch: e.scratchCopy(exec)}

	for _, stateID := range branch.States {
		state, ok := def.State(stateID)
		if !ok {
			result.err = fmt.Errorf("branch %s references undeclared state %q", branch.ID, stateID)
			return result
		}

		stepStart := time.Now()
		if err := e.runBranchState(ctx, def, result.scratch, state); err != nil {
			result.entries = append(result.entries, branchHistoryEntry(state, branch.ID, stepStart, err))
			result.err = fmt.Errorf("branch %s state %s: %w", branch.ID, stateID, err)
			return result
		}
		result.entries = append(result.entries, branchHistoryEntry(state, branch.ID, stepStart, nil))
	}
	return result
}

// runBranchState executes one state inside a branch. Branch chains are
// linear: states execute in order with no transition lookup.
func (e *Engine) runBranchState(ctx context.Context, def *orchestrator.WorkflowDefinition, scratch *orchestrator.WorkflowExecution, state *orchestrator.WorkflowState) error {
	if _, err := e.dispatcher.ExecuteAll(ctx, scratch, state.EntryActions); err != nil {
		return fmt.Errorf("entry actions: %w", err)
	}

	switch state.Type {
	case orchestrator.StateTypeTask:
		if state.AgentRole == "" || state.TaskDescription == "" {
			return fmt.Errorf("task state missing agent role or task description")
		}
		if e.dispatcher.Tasks == nil {
			return fmt.Errorf("no task service configured")
		}
		taskID, err := e.dispatcher.Tasks.CreateTask(ctx, scratch.ID, taskDescriptor(state, scratch))
		if err != nil {
			return err
		}
		scratch.Tasks = append(scratch.Tasks, taskID)

	case orchestrator.StateTypeWait:
		if state.WaitCondition != "" {
			env := make(map[string]any, len(scratch.Variables)+len(scratch.Context))
			for k, v := range scratch.Variables {
				env[k] = v
			}
			for k, v := range scratch.Context {
				env[k] = v
			}
			ok, err := e.eval.Evaluate(state.WaitCondition, env)
			if err != nil {
				return fmt.Errorf("wait condition: %w", err)
			}
			if !ok {
				return fmt.Errorf("wait condition not satisfied")
			}
		}

	case orchestrator.StateTypeParallel:
		return fmt.Errorf("nested parallel states are not supported")

	case orchestrator.StateTypeDecision, orchestrator.StateTypeStart, orchestrator.StateTypeEnd, orchestrator.StateTypeError:
		// Inert inside a branch chain; the chain itself defines the order.
		slog.Debug("branch state has no branch-level behavior", "state", state.ID, "type", state.Type)
	}

	if _, err := e.dispatcher.ExecuteAll(ctx, scratch, state.ExitActions); err != nil {
		return fmt.Errorf("exit actions: %w", err)
	}
	return nil
}

// scratchCopy clones the execution's mutable collections for one branch.
func (e *Engine) scratchCopy(exec *orchestrator.WorkflowExecution) *orchestrator.WorkflowExecution {
	e.mu.Lock()
	defer e.mu.Unlock()

	scratch := &orchestrator.WorkflowExecution{
		ID:         exec.ID,
		WorkflowID: exec.WorkflowID,
		Status:     exec.Status,
		Variables:  make(map[string]any, len(exec.Variables)),
		Context:    make(map[string]any, len(exec.Context)),
	}
	for k, v := range exec.Variables {
		scratch.Variables[k] = v
	}
	for k, v := range exec.Context {
		scratch.Context[k] = v
	}
	return scratch
}

// mergeBranch folds a settled branch's scratch state back into the
// execution. Runs on the drive goroutine only.
func (e *Engine) mergeBranch(exec *orchestrator.WorkflowExecution, res branchResult) {
	e.mu.Lock()
	if exec.Context == nil {
		exec.Context = make(map[string]any)
	}
	for k, v := range res.scratch.Context {
		exec.Context[k] = v
	}
	exec.Tasks = append(exec.Tasks, res.scratch.Tasks...)
	exec.Agents = append(exec.Agents, res.scratch.Agents...)
	exec.Signals = append(exec.Signals, res.scratch.Signals...)
	exec.History = append(exec.History, res.entries...)
	e.mu.Unlock()
}

func branchHistoryEntry(state *orchestrator.WorkflowState, branchID string, stepStart time.Time, err error) orchestrator.HistoryEntry {
	entry := orchestrator.HistoryEntry{
		Timestamp: time.Now().UTC(),
		ToState:   state.ID,
		Action:    "execute_branch_state_" + string(state.Type),
		Result:    "branch " + branchID,
		Duration:  time.Since(stepStart),
	}
	if err != nil {
		entry.Error = err.Error()
	}
	return entry
}
