// Package orchestrator defines the domain types shared by the workflow
// execution engine and the signal resolution engine.
package orchestrator

import (
	"time"

	"github.com/google/uuid"
)

// Signal is a typed event flowing through the system. Signal types are
// short codes ("bb" = blocker, "pr" = pull request opened, ...); the full
// vocabulary lives in the resolution catalog.
type Signal struct {
	ID             string         `json:"id"`
	Type           string         `json:"type"`
	Source         string         `json:"source"`
	Timestamp      time.Time      `json:"timestamp"`
	Data           map[string]any `json:"data,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	Priority       int            `json:"priority,omitempty"`
	RelatedSignals []string       `json:"related_signals,omitempty"`
}

// NewSignal creates a signal with a fresh id and a UTC timestamp.
func NewSignal(signalType, source string, data map[string]any) *Signal {
	return &Signal{
		ID:        uuid.NewString(),
		Type:      signalType,
		Source:    source,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// PRP is the Product Requirement Prompt document associated with a unit of
// work. The core consumes it opaquely: prp_update actions append progress
// lines, prerequisite checks fall back to substring matches on Content.
type PRP struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	Progress  []string  `json:"progress,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AppendProgress adds a timestamped progress line.
func (p *PRP) AppendProgress(line string) {
	now := time.Now().UTC()
	p.Progress = append(p.Progress, now.Format(time.RFC3339)+" "+line)
	p.UpdatedAt = now
}
