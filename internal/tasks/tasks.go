// Package tasks provides the in-memory task collaborator. Tasks are
// created by the engines and completed out-of-band; a completion hook lets
// the wiring re-enter the workflow engine when a task settles.
package tasks

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dcversus/prp-sub007/internal/orchestrator/ports"
)

// Task statuses.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Task is one tracked unit of work.
type Task struct {
	ID          string               `json:"id"`
	ExecutionID string               `json:"execution_id"`
	Descriptor  ports.TaskDescriptor `json:"descriptor"`
	Status      string               `json:"status"`
	Progress    int                  `json:"progress"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// CompletionHook is invoked when a task reaches a terminal status. The
// executionID is empty for tasks created outside a workflow execution
// (e.g. by signal resolutions).
type CompletionHook func(executionID, taskID, status string)

// Service is the in-memory ports.TaskService implementation.
type Service struct {
	mu     sync.Mutex
	tasks  map[string]*Task
	onDone CompletionHook
}

func NewService() *Service {
	return &Service{tasks: make(map[string]*Task)}
}

// OnCompletion registers the terminal-status hook.
func (s *Service) OnCompletion(hook CompletionHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onDone = hook
}

// CreateTask records a new pending task and returns its id.
func (s *Service) CreateTask(_ context.Context, executionID string, desc ports.TaskDescriptor) (string, error) {
	if desc.Description == "" {
		return "", fmt.Errorf("task descriptor missing description")
	}
	task := &Task{
		ID:          uuid.NewString(),
		ExecutionID: executionID,
		Descriptor:  desc,
		Status:      StatusPending,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	s.mu.Lock()
	s.tasks[task.ID] = task
	s.mu.Unlock()
	return task.ID, nil
}

// UpdateTaskStatus sets a task's status and progress. Terminal statuses
// fire the completion hook.
func (s *Service) UpdateTaskStatus(_ context.Context, taskID, status string, progress int) error {
	s.mu.Lock()
	task, ok := s.tasks[taskID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("unknown task %q", taskID)
	}
	task.Status = status
	if progress > 0 {
		task.Progress = progress
	}
	task.UpdatedAt = time.Now().UTC()
	hook := s.onDone
	executionID := task.ExecutionID
	s.mu.Unlock()

	if hook != nil && (status == StatusCompleted || status == StatusFailed) {
		// Tasks created by resolutions carry a "signal:" execution ref;
		// only real execution ids re-enter the workflow engine.
		if executionID != "" && !strings.HasPrefix(executionID, "signal:") {
			hook(executionID, taskID, status)
		}
	}
	return nil
}

// CheckDependencies reports whether every task the given task depends on
// has completed.
func (s *Service) CheckDependencies(_ context.Context, taskID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[taskID]
	if !ok {
		return false, fmt.Errorf("unknown task %q", taskID)
	}
	for _, dep := range task.Descriptor.DependsOn {
		depTask, ok := s.tasks[dep]
		if !ok || depTask.Status != StatusCompleted {
			return false, nil
		}
	}
	return true, nil
}

// Get returns a copy of the task record.
func (s *Service) Get(taskID string) (*Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[taskID]
	if !ok {
		return nil, false
	}
	snapshot := *task
	return &snapshot, true
}

// ListByExecution returns copies of all tasks created for an execution.
func (s *Service) ListByExecution(executionID string) []*Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Task
	for _, task := range s.tasks {
		if task.ExecutionID == executionID {
			snapshot := *task
			out = append(out, &snapshot)
		}
	}
	return out
}
