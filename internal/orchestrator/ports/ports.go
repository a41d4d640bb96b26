// Package ports defines the narrow capability interfaces the core engines
// consume. Their implementations are external collaborators; the engines
// depend on these interfaces, never on concrete services.
package ports

import (
	"context"

	"github.com/dcversus/prp-sub007/internal/orchestrator"
)

// TaskDescriptor is the payload handed to the task collaborator when a
// task-typed state or agent_task action creates work.
type TaskDescriptor struct {
	AgentType    string         `json:"agent_type"`
	Description  string         `json:"description"`
	Instructions string         `json:"instructions,omitempty"`
	Priority     int            `json:"priority,omitempty"`
	Context      map[string]any `json:"context,omitempty"`
	Timeout      int            `json:"timeout,omitempty"`
	RetryCount   int            `json:"retry_count,omitempty"`
	DependsOn    []string       `json:"depends_on,omitempty"`
}

// TaskService tracks units of work. Task completion is asynchronous and
// out-of-band; the engine never blocks on it.
type TaskService interface {
	CreateTask(ctx context.Context, executionID string, desc TaskDescriptor) (string, error)
	UpdateTaskStatus(ctx context.Context, taskID, status string, progress int) error
	CheckDependencies(ctx context.Context, taskID string) (bool, error)
}

// AgentService assigns opaque external workers to executions.
type AgentService interface {
	AssignAgent(ctx context.Context, executionID, role, task string) (string, error)
	Available(ctx context.Context, role string) (int, error)
}

// ToolExecutor runs a named tool with parameters on behalf of a tool_call
// resolution action.
type ToolExecutor interface {
	ExecuteTool(ctx context.Context, toolName string, parameters map[string]any, signalContext *orchestrator.Signal) (any, error)
}

// NotificationSender delivers a message to a channel. Delivery failure is
// an action failure, never fatal to the surrounding execution.
type NotificationSender interface {
	Send(ctx context.Context, channel, message string) error
}

// CommandRunner executes an external command for execute_command actions.
type CommandRunner interface {
	RunCommand(ctx context.Context, command string, args []string, env map[string]string) (string, error)
}
