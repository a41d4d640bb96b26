// Package repository defines storage interfaces for execution records.
package repository

import (
	"context"
	"errors"

	"github.com/dcversus/prp-sub007/internal/orchestrator"
)

// ErrNotFound is returned when a requested execution does not exist.
var ErrNotFound = errors.New("execution not found")

// ExecutionRepository abstracts execution persistence. The execution store
// is the exclusive owner of WorkflowExecution records: every mutation goes
// through Update so status guards and history appends stay in one place.
type ExecutionRepository interface {
	Create(ctx context.Context, exec *orchestrator.WorkflowExecution) error
	Get(ctx context.Context, id string) (*orchestrator.WorkflowExecution, error)
	Update(ctx context.Context, exec *orchestrator.WorkflowExecution) error
	List(ctx context.Context) ([]*orchestrator.WorkflowExecution, error)
	ListByWorkflow(ctx context.Context, workflowID string) ([]*orchestrator.WorkflowExecution, error)
	ListByStatus(ctx context.Context, status orchestrator.ExecutionStatus) ([]*orchestrator.WorkflowExecution, error)
}
