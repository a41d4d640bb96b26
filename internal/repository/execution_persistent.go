package repository

import (
	"context"
	"log/slog"

	"github.com/dcversus/prp-sub007/internal/db"
	"github.com/dcversus/prp-sub007/internal/orchestrator"
)

// PersistentExecutionRepository wraps a MemoryExecutionRepository with a
// PostgreSQL archive. Writes go to both stores (archive failure is logged
// but non-fatal). Reads try memory first, falling back to the archive.
type PersistentExecutionRepository struct {
	mem *MemoryExecutionRepository
	db  *db.DB
}

// NewPersistent creates a repository backed by both memory and PostgreSQL.
func NewPersistent(mem *MemoryExecutionRepository, database *db.DB) *PersistentExecutionRepository {
	return &PersistentExecutionRepository{mem: mem, db: database}
}

func (r *PersistentExecutionRepository) Create(ctx context.Context, exec *orchestrator.WorkflowExecution) error {
	if err := r.mem.Create(ctx, exec); err != nil {
		return err
	}
	if err := r.db.UpsertExecution(ctx, exec); err != nil {
		slog.Warn("db archive execution failed, in-memory only", "execution", exec.ID, "err", err)
	}
	return nil
}

func (r *PersistentExecutionRepository) Get(ctx context.Context, id string) (*orchestrator.WorkflowExecution, error) {
	exec, err := r.mem.Get(ctx, id)
	if err == nil {
		return exec, nil
	}

	archived, dbErr := r.db.GetExecution(ctx, id)
	if dbErr != nil {
		return nil, err // return original ErrNotFound
	}
	return archived, nil
}

func (r *PersistentExecutionRepository) Update(ctx context.Context, exec *orchestrator.WorkflowExecution) error {
	if err := r.mem.Update(ctx, exec); err != nil {
		return err
	}
	if err := r.db.UpsertExecution(ctx, exec); err != nil {
		slog.Warn("db archive execution failed, in-memory only", "execution", exec.ID, "err", err)
	}
	return nil
}

func (r *PersistentExecutionRepository) List(ctx context.Context) ([]*orchestrator.WorkflowExecution, error) {
	return r.mem.List(ctx)
}

func (r *PersistentExecutionRepository) ListByWorkflow(ctx context.Context, workflowID string) ([]*orchestrator.WorkflowExecution, error) {
	return r.mem.ListByWorkflow(ctx, workflowID)
}

func (r *PersistentExecutionRepository) ListByStatus(ctx context.Context, status orchestrator.ExecutionStatus) ([]*orchestrator.WorkflowExecution, error) {
	return r.mem.ListByStatus(ctx, status)
}
