package orchestrator

import "fmt"

// ValidationError reports an invalid workflow definition at registration.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Reason
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

// NotFoundError reports an unknown workflow or execution id.
type NotFoundError struct {
	Kind string // "workflow" | "execution" | "resolution"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// StateConflictError reports a lifecycle operation against the wrong status.
type StateConflictError struct {
	ExecutionID string
	Status      ExecutionStatus
	Operation   string
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("cannot %s execution %s in status %q", e.Operation, e.ExecutionID, e.Status)
}

// ActionExecutionError is a per-action failure. It is captured into the
// action's result and never aborts the surrounding execution.
type ActionExecutionError struct {
	ActionType string
	Err        error
}

func (e *ActionExecutionError) Error() string {
	return fmt.Sprintf("action %s: %v", e.ActionType, e.Err)
}

func (e *ActionExecutionError) Unwrap() error { return e.Err }

// ExecutionFault is an uncaught fault inside state dispatch or entry/exit
// actions. It is fatal: the execution transitions to failed.
type ExecutionFault struct {
	ExecutionID string
	StateID     string
	Err         error
}

func (e *ExecutionFault) Error() string {
	return fmt.Sprintf("execution %s faulted at state %q: %v", e.ExecutionID, e.StateID, e.Err)
}

func (e *ExecutionFault) Unwrap() error { return e.Err }
