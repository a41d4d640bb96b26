package orchestrator

import "time"

// StateType tags a WorkflowState with its dispatch behavior.
type StateType string

const (
	StateTypeStart    StateType = "start"
	StateTypeTask     StateType = "task"
	StateTypeDecision StateType = "decision"
	StateTypeParallel StateType = "parallel"
	StateTypeWait     StateType = "wait"
	StateTypeEnd      StateType = "end"
	StateTypeError    StateType = "error"
)

// JoinCondition determines when a parallel state's branches are settled.
type JoinCondition string

const (
	JoinAll   JoinCondition = "all"
	JoinAny   JoinCondition = "any"
	JoinFirst JoinCondition = "first"
)

// WorkflowDefinition is a reusable state-machine template. Definitions are
// immutable once registered; re-registering the same id replaces the entry.
type WorkflowDefinition struct {
	ID          string               `json:"id" yaml:"id"`
	Name        string               `json:"name" yaml:"name"`
	Description string               `json:"description,omitempty" yaml:"description,omitempty"`
	Category    string               `json:"category,omitempty" yaml:"category,omitempty"`
	Triggers    []WorkflowTrigger    `json:"triggers,omitempty" yaml:"triggers,omitempty"`
	States      []WorkflowState      `json:"states" yaml:"states"`
	Transitions []WorkflowTransition `json:"transitions,omitempty" yaml:"transitions,omitempty"`
	Variables   []VariableDefinition `json:"variables,omitempty" yaml:"variables,omitempty"`
	Timeout     time.Duration        `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	RetryPolicy *RetryPolicy         `json:"retry_policy,omitempty" yaml:"retry_policy,omitempty"`
	Metadata    map[string]any       `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// StartState returns the initial state per the tie-break rule: the first
// start-typed state in declaration order. ok is false if none exists.
func (d *WorkflowDefinition) StartState() (*WorkflowState, bool) {
	for i := range d.States {
		if d.States[i].Type == StateTypeStart {
			return &d.States[i], true
		}
	}
	return nil, false
}

// State returns the state with the given id, or false if undeclared.
func (d *WorkflowDefinition) State(id string) (*WorkflowState, bool) {
	for i := range d.States {
		if d.States[i].ID == id {
			return &d.States[i], true
		}
	}
	return nil, false
}

// TransitionsFrom returns all enabled transitions leaving the given state,
// in declaration order.
func (d *WorkflowDefinition) TransitionsFrom(stateID string) []WorkflowTransition {
	var out []WorkflowTransition
	for _, t := range d.Transitions {
		if t.From == stateID && t.Enabled {
			out = append(out, t)
		}
	}
	return out
}

// WorkflowTrigger matches incoming signals against a workflow. Matching is
// performed by the signal integration layer, not the engine itself.
type WorkflowTrigger struct {
	ID         string `json:"id" yaml:"id"`
	Type       string `json:"type" yaml:"type"` // "signal"
	SignalType string `json:"signal_type" yaml:"signal_type"`
	Condition  string `json:"condition,omitempty" yaml:"condition,omitempty"`
	Priority   int    `json:"priority" yaml:"priority"`
	Enabled    bool   `json:"enabled" yaml:"enabled"`
}

// WorkflowState is one node of the state machine. The payload fields used
// depend on Type; unused fields are left zero.
type WorkflowState struct {
	ID   string    `json:"id" yaml:"id"`
	Name string    `json:"name,omitempty" yaml:"name,omitempty"`
	Type StateType `json:"type" yaml:"type"`

	// task payload
	AgentRole        string `json:"agent_role,omitempty" yaml:"agent_role,omitempty"`
	TaskDescription  string `json:"task_description,omitempty" yaml:"task_description,omitempty"`
	TaskInstructions string `json:"task_instructions,omitempty" yaml:"task_instructions,omitempty"`

	// decision payload, evaluated in array order
	DecisionOptions []DecisionOption `json:"decision_options,omitempty" yaml:"decision_options,omitempty"`

	// parallel payload
	ParallelBranches []ParallelBranch `json:"parallel_branches,omitempty" yaml:"parallel_branches,omitempty"`
	JoinCondition    JoinCondition    `json:"join_condition,omitempty" yaml:"join_condition,omitempty"`

	// wait payload
	WaitCondition string `json:"wait_condition,omitempty" yaml:"wait_condition,omitempty"`
	WaitEvent     string `json:"wait_event,omitempty" yaml:"wait_event,omitempty"`

	EntryActions []WorkflowAction `json:"entry_actions,omitempty" yaml:"entry_actions,omitempty"`
	ExitActions  []WorkflowAction `json:"exit_actions,omitempty" yaml:"exit_actions,omitempty"`
	Timeout      time.Duration    `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	RetryPolicy  *RetryPolicy     `json:"retry_policy,omitempty" yaml:"retry_policy,omitempty"`
}

// DecisionOption is one branch of a decision state. Priority is
// informational only; options are evaluated in array order.
type DecisionOption struct {
	Condition   string `json:"condition,omitempty" yaml:"condition,omitempty"`
	TargetState string `json:"target_state" yaml:"target_state"`
	Priority    int    `json:"priority,omitempty" yaml:"priority,omitempty"`
}

// ParallelBranch is a linear chain of state ids driven concurrently with
// its sibling branches.
type ParallelBranch struct {
	ID     string   `json:"id" yaml:"id"`
	States []string `json:"states" yaml:"states"`
}

// WorkflowTransition is an edge of the state machine. Multiple enabled
// transitions from the same state are tried in descending-priority order.
type WorkflowTransition struct {
	ID        string           `json:"id,omitempty" yaml:"id,omitempty"`
	From      string           `json:"from" yaml:"from"`
	To        string           `json:"to" yaml:"to"`
	Condition string           `json:"condition,omitempty" yaml:"condition,omitempty"`
	Actions   []WorkflowAction `json:"actions,omitempty" yaml:"actions,omitempty"`
	Priority  int              `json:"priority" yaml:"priority"`
	Enabled   bool             `json:"enabled" yaml:"enabled"`
}

// ActionType tags a WorkflowAction.
type ActionType string

const (
	ActionAssignAgent    ActionType = "assign_agent"
	ActionSendSignal     ActionType = "send_signal"
	ActionExecuteCommand ActionType = "execute_command"
	ActionCreateTask     ActionType = "create_task"
	ActionUpdateContext  ActionType = "update_context"
	ActionWait           ActionType = "wait"
	ActionEscalate       ActionType = "escalate"
	ActionNotify         ActionType = "notify"
)

// WorkflowAction is a side effect attached to states and transitions.
// RetryPolicy and Timeout are metadata for the dispatch layer; the engine
// does not auto-enforce them.
type WorkflowAction struct {
	ID          string         `json:"id,omitempty" yaml:"id,omitempty"`
	Type        ActionType     `json:"type" yaml:"type"`
	Parameters  map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	RetryPolicy *RetryPolicy   `json:"retry_policy,omitempty" yaml:"retry_policy,omitempty"`
	Timeout     time.Duration  `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	Async       bool           `json:"async,omitempty" yaml:"async,omitempty"`
}

// VariableDefinition declares a workflow variable with its default.
type VariableDefinition struct {
	Name     string `json:"name" yaml:"name"`
	Type     string `json:"type,omitempty" yaml:"type,omitempty"`
	Default  any    `json:"default,omitempty" yaml:"default,omitempty"`
	Required bool   `json:"required,omitempty" yaml:"required,omitempty"`
}

// RetryPolicy describes how failed work should be retried. Declarative
// policies on definitions and states are metadata only.
type RetryPolicy struct {
	MaxRetries    int           `json:"max_retries" yaml:"max_retries"`
	InitialDelay  time.Duration `json:"initial_delay" yaml:"initial_delay"`
	MaxDelay      time.Duration `json:"max_delay" yaml:"max_delay"`
	BackoffFactor float64       `json:"backoff_factor" yaml:"backoff_factor"`
}

// DefaultRetryPolicy returns a sensible default retry policy.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:    3,
		InitialDelay:  time.Second,
		MaxDelay:      5 * time.Minute,
		BackoffFactor: 2.0,
	}
}
