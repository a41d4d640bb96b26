package resolution

import (
	"sync"
	"time"

	"github.com/dcversus/prp-sub007/internal/orchestrator"
)

// TrackingRecord is the ephemeral per-signal processing record kept for a
// fixed observation window after completion. It exists for introspection
// only: nothing replays or resumes from it.
type TrackingRecord struct {
	Signal      *orchestrator.Signal `json:"signal"`
	SignalType  string               `json:"signal_type"`
	StartTime   time.Time            `json:"start_time"`
	CurrentStep int                  `json:"current_step"`
	Status      string               `json:"status"` // "running" | "completed" | "failed"
}

// Tracker holds tracking records and evicts them after the observation
// window elapses.
type Tracker struct {
	mu      sync.Mutex
	records map[string]*TrackingRecord
	window  time.Duration
}

// NewTracker creates a tracker with the given post-completion observation
// window.
func NewTracker(window time.Duration) *Tracker {
	if window <= 0 {
		window = time.Minute
	}
	return &Tracker{
		records: make(map[string]*TrackingRecord),
		window:  window,
	}
}

// Begin registers a record for a signal being processed.
func (t *Tracker) Begin(sig *orchestrator.Signal) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records[sig.ID] = &TrackingRecord{
		Signal:     sig,
		SignalType: sig.Type,
		StartTime:  time.Now().UTC(),
		Status:     "running",
	}
}

// Step advances the record's current step counter.
func (t *Tracker) Step(signalID string, step int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if rec, ok := t.records[signalID]; ok {
		rec.CurrentStep = step
	}
}

// Finish marks the record completed or failed and schedules its eviction
// once the observation window elapses.
func (t *Tracker) Finish(signalID string, success bool) {
	t.mu.Lock()
	if rec, ok := t.records[signalID]; ok {
		if success {
			rec.Status = "completed"
		} else {
			rec.Status = "failed"
		}
	}
	t.mu.Unlock()

	time.AfterFunc(t.window, func() {
		t.mu.Lock()
		delete(t.records, signalID)
		t.mu.Unlock()
	})
}

// Get returns the record for a signal id, if still within the window.
func (t *Tracker) Get(signalID string) (*TrackingRecord, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.records[signalID]
	return rec, ok
}

// Snapshot returns a copy of all live records.
func (t *Tracker) Snapshot() []*TrackingRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*TrackingRecord, 0, len(t.records))
	for _, rec := range t.records {
		snapshot := *rec
		out = append(out, &snapshot)
	}
	return out
}
