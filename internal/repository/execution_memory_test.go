package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dcversus/prp-sub007/internal/orchestrator"
)

func execRecord(id string, status orchestrator.ExecutionStatus, started time.Time) *orchestrator.WorkflowExecution {
	return &orchestrator.WorkflowExecution{
		ID:         id,
		WorkflowID: "wf",
		Status:     status,
		StartedAt:  started,
	}
}

func TestCreateGetUpdate(t *testing.T) {
	r := NewMemoryExecutionRepository()
	ctx := context.Background()

	exec := execRecord("e1", orchestrator.ExecutionPending, time.Now())
	if err := r.Create(ctx, exec); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := r.Get(ctx, "e1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != orchestrator.ExecutionPending {
		t.Errorf("status = %s", got.Status)
	}

	exec.Status = orchestrator.ExecutionRunning
	if err := r.Update(ctx, exec); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = r.Get(ctx, "e1")
	if got.Status != orchestrator.ExecutionRunning {
		t.Errorf("update not visible, status = %s", got.Status)
	}
}

func TestGetMissingIsErrNotFound(t *testing.T) {
	r := NewMemoryExecutionRepository()
	if _, err := r.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestUpdateMissingIsErrNotFound(t *testing.T) {
	r := NewMemoryExecutionRepository()
	exec := execRecord("ghost", orchestrator.ExecutionRunning, time.Now())
	if err := r.Update(context.Background(), exec); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	r := NewMemoryExecutionRepository()
	ctx := context.Background()
	base := time.Now()

	r.Create(ctx, execRecord("old", orchestrator.ExecutionCompleted, base.Add(-time.Hour)))
	r.Create(ctx, execRecord("new", orchestrator.ExecutionRunning, base))

	out, err := r.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out) != 2 || out[0].ID != "new" {
		t.Errorf("list order wrong: %+v", out)
	}
}

func TestListByStatusAndWorkflow(t *testing.T) {
	r := NewMemoryExecutionRepository()
	ctx := context.Background()

	a := execRecord("a", orchestrator.ExecutionRunning, time.Now())
	b := execRecord("b", orchestrator.ExecutionCompleted, time.Now())
	b.WorkflowID = "other"
	r.Create(ctx, a)
	r.Create(ctx, b)

	running, _ := r.ListByStatus(ctx, orchestrator.ExecutionRunning)
	if len(running) != 1 || running[0].ID != "a" {
		t.Errorf("by status: %+v", running)
	}
	other, _ := r.ListByWorkflow(ctx, "other")
	if len(other) != 1 || other[0].ID != "b" {
		t.Errorf("by workflow: %+v", other)
	}
}

func TestEvictionSkipsInFlight(t *testing.T) {
	r := NewMemoryExecutionRepository()
	ctx := context.Background()

	// First insert an in-flight record, then fill to the cap with
	// terminal ones. The next create must evict a terminal record,
	// never the in-flight one.
	r.Create(ctx, execRecord("inflight", orchestrator.ExecutionRunning, time.Now()))
	for i := 1; i < maxExecutionRecords; i++ {
		r.Create(ctx, execRecord(fmt.Sprintf("t%d", i), orchestrator.ExecutionCompleted, time.Now()))
	}

	r.Create(ctx, execRecord("overflow", orchestrator.ExecutionPending, time.Now()))

	if _, err := r.Get(ctx, "inflight"); err != nil {
		t.Fatalf("in-flight record was evicted: %v", err)
	}
	if _, err := r.Get(ctx, "t1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("oldest terminal record should have been evicted, got %v", err)
	}
}
