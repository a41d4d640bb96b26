package tasks

import (
	"context"
	"testing"

	"github.com/dcversus/prp-sub007/internal/orchestrator/ports"
)

func TestCreateAndGet(t *testing.T) {
	s := NewService()
	ctx := context.Background()

	id, err := s.CreateTask(ctx, "exec-1", ports.TaskDescriptor{
		AgentType:   "developer",
		Description: "write the migration",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	task, ok := s.Get(id)
	if !ok {
		t.Fatal("task not found")
	}
	if task.Status != StatusPending {
		t.Errorf("status = %q, want pending", task.Status)
	}
	if task.ExecutionID != "exec-1" {
		t.Errorf("execution id = %q", task.ExecutionID)
	}
}

func TestCreateRequiresDescription(t *testing.T) {
	s := NewService()
	if _, err := s.CreateTask(context.Background(), "exec-1", ports.TaskDescriptor{AgentType: "developer"}); err == nil {
		t.Fatal("expected an error for an empty description")
	}
}

func TestCompletionHookFiresOnTerminalStatus(t *testing.T) {
	s := NewService()
	ctx := context.Background()

	var gotExecution, gotStatus string
	s.OnCompletion(func(executionID, _ string, status string) {
		gotExecution = executionID
		gotStatus = status
	})

	id, _ := s.CreateTask(ctx, "exec-1", ports.TaskDescriptor{Description: "x"})

	if err := s.UpdateTaskStatus(ctx, id, StatusInProgress, 50); err != nil {
		t.Fatalf("update: %v", err)
	}
	if gotExecution != "" {
		t.Error("hook must not fire on a non-terminal status")
	}

	if err := s.UpdateTaskStatus(ctx, id, StatusCompleted, 100); err != nil {
		t.Fatalf("update: %v", err)
	}
	if gotExecution != "exec-1" || gotStatus != StatusCompleted {
		t.Errorf("hook got (%q, %q)", gotExecution, gotStatus)
	}
}

func TestCompletionHookSkipsSignalTasks(t *testing.T) {
	s := NewService()
	ctx := context.Background()

	fired := false
	s.OnCompletion(func(string, string, string) { fired = true })

	id, _ := s.CreateTask(ctx, "signal:sig-1", ports.TaskDescriptor{Description: "triage"})
	s.UpdateTaskStatus(ctx, id, StatusCompleted, 100)
	if fired {
		t.Error("resolution-created tasks must not re-enter the workflow engine")
	}
}

func TestUpdateUnknownTask(t *testing.T) {
	s := NewService()
	if err := s.UpdateTaskStatus(context.Background(), "ghost", StatusCompleted, 0); err == nil {
		t.Fatal("expected an error for an unknown task")
	}
}

func TestCheckDependencies(t *testing.T) {
	s := NewService()
	ctx := context.Background()

	dep, _ := s.CreateTask(ctx, "exec-1", ports.TaskDescriptor{Description: "dep"})
	id, _ := s.CreateTask(ctx, "exec-1", ports.TaskDescriptor{Description: "main", DependsOn: []string{dep}})

	ready, err := s.CheckDependencies(ctx, id)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if ready {
		t.Error("pending dependency should block")
	}

	s.UpdateTaskStatus(ctx, dep, StatusCompleted, 100)
	ready, _ = s.CheckDependencies(ctx, id)
	if !ready {
		t.Error("completed dependency should unblock")
	}
}

func TestListByExecution(t *testing.T) {
	s := NewService()
	ctx := context.Background()

	s.CreateTask(ctx, "exec-1", ports.TaskDescriptor{Description: "a"})
	s.CreateTask(ctx, "exec-1", ports.TaskDescriptor{Description: "b"})
	s.CreateTask(ctx, "exec-2", ports.TaskDescriptor{Description: "c"})

	if got := len(s.ListByExecution("exec-1")); got != 2 {
		t.Errorf("exec-1 tasks = %d, want 2", got)
	}
}
