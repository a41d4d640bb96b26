package orchestrator

import "time"

// ResolutionActionType tags a ResolutionAction.
type ResolutionActionType string

const (
	ResolutionAgentTask    ResolutionActionType = "agent_task"
	ResolutionSignal       ResolutionActionType = "signal"
	ResolutionNotification ResolutionActionType = "notification"
	ResolutionToolCall     ResolutionActionType = "tool_call"
	ResolutionPRPUpdate    ResolutionActionType = "prp_update"
	ResolutionEscalation   ResolutionActionType = "escalation"
)

// SignalResolution maps one signal type to its ordered action sequence.
// Priority ranks cross-signal scheduling for external callers; the engine
// itself never reorders by it.
type SignalResolution struct {
	SignalType      string             `json:"signal_type" yaml:"signal_type"`
	Category        string             `json:"category,omitempty" yaml:"category,omitempty"`
	Description     string             `json:"description,omitempty" yaml:"description,omitempty"`
	Priority        int                `json:"priority" yaml:"priority"`
	Actions         []ResolutionAction `json:"actions" yaml:"actions"`
	EscalationPath  []ResolutionAction `json:"escalation_path,omitempty" yaml:"escalation_path,omitempty"`
	Prerequisites   []string           `json:"prerequisites,omitempty" yaml:"prerequisites,omitempty"`
	SuccessCriteria []string           `json:"success_criteria,omitempty" yaml:"success_criteria,omitempty"`
	FailureHandling []ResolutionAction `json:"failure_handling,omitempty" yaml:"failure_handling,omitempty"`
}

// ResolutionAction is one step of a resolution. Timeout and RetryCount are
// metadata for the dispatching collaborator, not auto-enforced here.
type ResolutionAction struct {
	Type       ResolutionActionType `json:"type" yaml:"type"`
	Conditions []ActionCondition    `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	Parameters map[string]any       `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Timeout    time.Duration        `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	RetryCount int                  `json:"retry_count,omitempty" yaml:"retry_count,omitempty"`
}

// ConditionOperator is one of the supported field comparisons.
type ConditionOperator string

const (
	OpEquals      ConditionOperator = "equals"
	OpContains    ConditionOperator = "contains"
	OpGreaterThan ConditionOperator = "greater_than"
	OpLessThan    ConditionOperator = "less_than"
	OpExists      ConditionOperator = "exists"
	OpNotExists   ConditionOperator = "not_exists"
)

// ActionCondition gates a resolution action. All conditions on an action
// must hold (AND). Field uses the addressing scheme "data.*", "metadata.*",
// "prp.*", or a bare signal field name.
type ActionCondition struct {
	Field    string            `json:"field" yaml:"field"`
	Operator ConditionOperator `json:"operator" yaml:"operator"`
	Value    any               `json:"value,omitempty" yaml:"value,omitempty"`
}

// ActionOutcome is one entry of a resolution result's results list. A
// thrown action error is captured here, never rethrown to the caller.
type ActionOutcome struct {
	Action  ResolutionAction `json:"action"`
	Result  any              `json:"result,omitempty"`
	Error   string           `json:"error,omitempty"`
	Success bool             `json:"success"`
}

// ResolutionResult is the synchronous return of ProcessSignal.
type ResolutionResult struct {
	SignalID string           `json:"signal_id"`
	Success  bool             `json:"success"`
	Actions  []ResolutionAction `json:"actions"`
	Results  []ActionOutcome  `json:"results"`
	Duration time.Duration    `json:"duration"`
}
