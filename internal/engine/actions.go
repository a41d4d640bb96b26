package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/dcversus/prp-sub007/internal/orchestrator"
	"github.com/dcversus/prp-sub007/internal/orchestrator/ports"
)

// SignalProcessor re-enters the signal resolution engine for send_signal
// actions. It is an interface here to keep the two engines decoupled.
type SignalProcessor interface {
	ProcessSignal(ctx context.Context, sig *orchestrator.Signal, prp *orchestrator.PRP) *orchestrator.ResolutionResult
}

// Dispatcher executes workflow actions against the external collaborators.
// Collaborators may be nil; dispatching an action whose collaborator is
// missing fails that action only.
type Dispatcher struct {
	Tasks    ports.TaskService
	Agents   ports.AgentService
	Notifier ports.NotificationSender
	Commands ports.CommandRunner
	Signals  SignalProcessor
}

// Execute runs one action synchronously and captures its outcome. The
// returned error mirrors result.Error so callers can choose the fatal
// (entry/exit) or non-fatal (transition) contract.
func (d *Dispatcher) Execute(ctx context.Context, exec *orchestrator.WorkflowExecution, action orchestrator.WorkflowAction) (*orchestrator.ActionResult, error) {
	start := time.Now()
	output, err := d.dispatch(ctx, exec, action)
	result := &orchestrator.ActionResult{
		ActionType: string(action.Type),
		Success:    err == nil,
		Output:     output,
		Duration:   time.Since(start),
	}
	if err != nil {
		result.Error = err.Error()
		return result, &orchestrator.ActionExecutionError{ActionType: string(action.Type), Err: err}
	}
	return result, nil
}

// ExecuteAll runs actions sequentially, awaiting each, and stops at the
// first failure.
func (d *Dispatcher) ExecuteAll(ctx context.Context, exec *orchestrator.WorkflowExecution, actions []orchestrator.WorkflowAction) ([]*orchestrator.ActionResult, error) {
	results := make([]*orchestrator.ActionResult, 0, len(actions))
	for _, action := range actions {
		result, err := d.Execute(ctx, exec, action)
		results = append(results, result)
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

func (d *Dispatcher) dispatch(ctx context.Context, exec *orchestrator.WorkflowExecution, action orchestrator.WorkflowAction) (any, error) {
	params := action.Parameters

	switch action.Type {
	case orchestrator.ActionAssignAgent:
		if d.Agents == nil {
			return nil, fmt.Errorf("no agent service configured")
		}
		role := stringParam(params, "role")
		task := stringParam(params, "task")
		if role == "" {
			return nil, fmt.Errorf("assign_agent requires a role parameter")
		}
		agentID, err := d.Agents.AssignAgent(ctx, exec.ID, role, task)
		if err != nil {
			return nil, err
		}
		exec.Agents = append(exec.Agents, agentID)
		return map[string]any{"agent_id": agentID}, nil

	case orchestrator.ActionSendSignal:
		if d.Signals == nil {
			return nil, fmt.Errorf("no signal processor configured")
		}
		signalType := stringParam(params, "signal_type")
		if signalType == "" {
			return nil, fmt.Errorf("send_signal requires a signal_type parameter")
		}
		data, _ := params["data"].(map[string]any)
		sig := orchestrator.NewSignal(signalType, "workflow:"+exec.WorkflowID, data)
		exec.Signals = append(exec.Signals, sig.ID)
		return d.Signals.ProcessSignal(ctx, sig, nil), nil

	case orchestrator.ActionExecuteCommand:
		if d.Commands == nil {
			return nil, fmt.Errorf("no command runner configured")
		}
		command := stringParam(params, "command")
		if command == "" {
			return nil, fmt.Errorf("execute_command requires a command parameter")
		}
		args := stringSliceParam(params, "args")
		env, _ := params["env"].(map[string]string)
		return d.Commands.RunCommand(ctx, command, args, env)

	case orchestrator.ActionCreateTask:
		if d.Tasks == nil {
			return nil, fmt.Errorf("no task service configured")
		}
		desc := ports.TaskDescriptor{
			AgentType:    stringParam(params, "agent_type"),
			Description:  stringParam(params, "description"),
			Instructions: stringParam(params, "instructions"),
			Priority:     intParam(params, "priority"),
			Context:      exec.Context,
		}
		if desc.Description == "" {
			return nil, fmt.Errorf("create_task requires a description parameter")
		}
		taskID, err := d.Tasks.CreateTask(ctx, exec.ID, desc)
		if err != nil {
			return nil, err
		}
		exec.Tasks = append(exec.Tasks, taskID)
		return map[string]any{"task_id": taskID}, nil

	case orchestrator.ActionUpdateContext:
		updates, _ := params["updates"].(map[string]any)
		if updates == nil {
			updates = params
		}
		if exec.Context == nil {
			exec.Context = make(map[string]any)
		}
		for k, v := range updates {
			exec.Context[k] = v
		}
		return map[string]any{"updated": len(updates)}, nil

	case orchestrator.ActionWait:
		delay := durationParam(params, "duration", time.Second)
		select {
		case <-time.After(delay):
			return map[string]any{"waited": delay.String()}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}

	case orchestrator.ActionEscalate:
		if exec.Context == nil {
			exec.Context = make(map[string]any)
		}
		exec.Context["escalated"] = true
		message := stringParam(params, "message")
		if message == "" {
			message = "execution " + exec.ID + " escalated"
		}
		if d.Notifier != nil {
			if err := d.Notifier.Send(ctx, "escalations", message); err != nil {
				return nil, err
			}
		}
		return map[string]any{"escalated": true}, nil

	case orchestrator.ActionNotify:
		if d.Notifier == nil {
			return nil, fmt.Errorf("no notification sender configured")
		}
		channel := stringParam(params, "channel")
		message := stringParam(params, "message")
		if message == "" {
			return nil, fmt.Errorf("notify requires a message parameter")
		}
		if err := d.Notifier.Send(ctx, channel, message); err != nil {
			return nil, err
		}
		return map[string]any{"channel": channel}, nil

	default:
		return nil, fmt.Errorf("unknown action type %q", action.Type)
	}
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

func stringSliceParam(params map[string]any, key string) []string {
	switch v := params[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func durationParam(params map[string]any, key string, fallback time.Duration) time.Duration {
	switch v := params[key].(type) {
	case string:
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	case float64:
		return time.Duration(v) * time.Millisecond
	case int:
		return time.Duration(v) * time.Millisecond
	}
	return fallback
}
