package orchestrator

import "time"

// Event is a lifecycle notification emitted by the engines for external
// integration layers (agent assignment, task tracking, notifications).
type Event struct {
	Type        string         `json:"type"`
	ExecutionID string         `json:"execution_id,omitempty"`
	WorkflowID  string         `json:"workflow_id,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
	Payload     map[string]any `json:"payload,omitempty"`
}

// Lifecycle event type constants.
const (
	EventWorkflowStarted   = "workflow_started"
	EventStateChanged      = "state_changed"
	EventActionExecuted    = "action_executed"
	EventWorkflowCompleted = "workflow_completed"
	EventWorkflowError     = "workflow_error"
)

// NewEvent creates an event stamped with the current UTC time.
func NewEvent(eventType, executionID, workflowID string, payload map[string]any) Event {
	return Event{
		Type:        eventType,
		ExecutionID: executionID,
		WorkflowID:  workflowID,
		Timestamp:   time.Now().UTC(),
		Payload:     payload,
	}
}
