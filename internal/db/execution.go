package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dcversus/prp-sub007/internal/orchestrator"
)

// UpsertExecution stores or replaces an execution record. The full record
// is kept as JSONB; the indexed columns exist for querying only.
func (d *DB) UpsertExecution(ctx context.Context, e *orchestrator.WorkflowExecution) error {
	record, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal execution: %w", err)
	}

	_, err = d.Pool.ExecContext(ctx,
		`INSERT INTO executions (id, workflow_id, status, current_state, record, started_at, ended_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE SET
		   status = EXCLUDED.status,
		   current_state = EXCLUDED.current_state,
		   record = EXCLUDED.record,
		   ended_at = EXCLUDED.ended_at`,
		e.ID, e.WorkflowID, string(e.Status), e.CurrentState, record, e.StartedAt, e.EndedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert execution: %w", err)
	}
	return nil
}

// GetExecution retrieves an execution record by id.
func (d *DB) GetExecution(ctx context.Context, id string) (*orchestrator.WorkflowExecution, error) {
	var record []byte
	err := d.Pool.QueryRowContext(ctx,
		`SELECT record FROM executions WHERE id = $1`, id,
	).Scan(&record)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("execution not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get execution: %w", err)
	}

	e := &orchestrator.WorkflowExecution{}
	if err := json.Unmarshal(record, e); err != nil {
		return nil, fmt.Errorf("unmarshal execution: %w", err)
	}
	return e, nil
}
