package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/dcversus/prp-sub007/internal/orchestrator"
)

const maxExecutionRecords = 1000

// MemoryExecutionRepository stores executions in memory with FIFO eviction
// of terminal records once the cap is reached. In-flight executions are
// never evicted.
type MemoryExecutionRepository struct {
	mu      sync.RWMutex
	records map[string]*orchestrator.WorkflowExecution
	order   []string // insertion order, used for eviction
}

func NewMemoryExecutionRepository() *MemoryExecutionRepository {
	return &MemoryExecutionRepository{
		records: make(map[string]*orchestrator.WorkflowExecution),
	}
}

func (r *MemoryExecutionRepository) Create(_ context.Context, exec *orchestrator.WorkflowExecution) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.order) >= maxExecutionRecords {
		r.evictOldestTerminal()
	}

	r.records[exec.ID] = exec
	r.order = append(r.order, exec.ID)
	return nil
}

// evictOldestTerminal removes the oldest terminal record. Caller holds the
// write lock.
func (r *MemoryExecutionRepository) evictOldestTerminal() {
	for i, id := range r.order {
		rec, ok := r.records[id]
		if !ok || rec.Status.Terminal() {
			r.order = append(r.order[:i], r.order[i+1:]...)
			delete(r.records, id)
			return
		}
	}
}

func (r *MemoryExecutionRepository) Get(_ context.Context, id string) (*orchestrator.WorkflowExecution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return rec, nil
}

func (r *MemoryExecutionRepository) Update(_ context.Context, exec *orchestrator.WorkflowExecution) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[exec.ID]; !ok {
		return ErrNotFound
	}
	r.records[exec.ID] = exec
	return nil
}

func (r *MemoryExecutionRepository) List(_ context.Context) ([]*orchestrator.WorkflowExecution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(*orchestrator.WorkflowExecution) bool { return true }), nil
}

func (r *MemoryExecutionRepository) ListByWorkflow(_ context.Context, workflowID string) ([]*orchestrator.WorkflowExecution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(e *orchestrator.WorkflowExecution) bool { return e.WorkflowID == workflowID }), nil
}

func (r *MemoryExecutionRepository) ListByStatus(_ context.Context, status orchestrator.ExecutionStatus) ([]*orchestrator.WorkflowExecution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(e *orchestrator.WorkflowExecution) bool { return e.Status == status }), nil
}

// collect returns matching records sorted newest first. Caller holds at
// least the read lock.
func (r *MemoryExecutionRepository) collect(pred func(*orchestrator.WorkflowExecution) bool) []*orchestrator.WorkflowExecution {
	out := make([]*orchestrator.WorkflowExecution, 0, len(r.records))
	for _, rec := range r.records {
		if pred(rec) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	return out
}
