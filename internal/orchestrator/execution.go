package orchestrator

import "time"

// ExecutionStatus is the lifecycle state of a WorkflowExecution.
type ExecutionStatus string

const (
	ExecutionPending   ExecutionStatus = "pending"
	ExecutionRunning   ExecutionStatus = "running"
	ExecutionPaused    ExecutionStatus = "paused"
	ExecutionCompleted ExecutionStatus = "completed"
	ExecutionFailed    ExecutionStatus = "failed"
	ExecutionCancelled ExecutionStatus = "cancelled"
)

// Terminal reports whether the status is permanent.
func (s ExecutionStatus) Terminal() bool {
	return s == ExecutionCompleted || s == ExecutionFailed || s == ExecutionCancelled
}

// WorkflowExecution is one running instance of a workflow. WorkflowID is a
// weak reference into the catalog: the definition is not snapshotted, so a
// catalog mutation changes behavior for subsequent steps. Executions are
// owned exclusively by the execution store.
type WorkflowExecution struct {
	ID           string          `json:"id"`
	WorkflowID   string          `json:"workflow_id"`
	Status       ExecutionStatus `json:"status"`
	CurrentState string          `json:"current_state"`
	History      []HistoryEntry  `json:"history,omitempty"`
	Variables    map[string]any  `json:"variables,omitempty"`
	Context      map[string]any  `json:"context,omitempty"`
	StartedAt    time.Time       `json:"started_at"`
	EndedAt      *time.Time      `json:"ended_at,omitempty"`
	Error        *WorkflowError  `json:"error,omitempty"`
	Agents       []string        `json:"agents,omitempty"`
	Tasks        []string        `json:"tasks,omitempty"`
	Signals      []string        `json:"signals,omitempty"`
	TriggeredBy  map[string]any  `json:"triggered_by,omitempty"`
}

// HistoryEntry records one executed state. History is append-only.
type HistoryEntry struct {
	Timestamp time.Time     `json:"timestamp"`
	ToState   string        `json:"to_state"`
	Action    string        `json:"action"`
	Result    string        `json:"result,omitempty"`
	Duration  time.Duration `json:"duration"`
	Error     string        `json:"error,omitempty"`
}

// WorkflowError is the structured terminal error retained on a failed
// execution.
type WorkflowError struct {
	Code             string   `json:"code"`
	Message          string   `json:"message"`
	Recoverable      bool     `json:"recoverable"`
	SuggestedActions []string `json:"suggested_actions,omitempty"`
}

func (e *WorkflowError) Error() string { return e.Code + ": " + e.Message }

// ActionResult is the captured outcome of a single dispatched action.
type ActionResult struct {
	ActionType string        `json:"action_type"`
	Success    bool          `json:"success"`
	Output     any           `json:"output,omitempty"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// ContextSeed carries caller-supplied context into StartWorkflow.
type ContextSeed struct {
	Signal          *Signal        `json:"signal,omitempty"`
	PRP             *PRP           `json:"prp,omitempty"`
	GlobalVariables map[string]any `json:"global_variables,omitempty"`
}
