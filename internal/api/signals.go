package api

import (
	"encoding/json"
	"net/http"

	"github.com/dcversus/prp-sub007/internal/orchestrator"
)

type submitSignalRequest struct {
	Type     string            `json:"type"`
	Source   string            `json:"source"`
	Data     map[string]any    `json:"data,omitempty"`
	Metadata map[string]any    `json:"metadata,omitempty"`
	Priority int               `json:"priority,omitempty"`
	PRP      *orchestrator.PRP `json:"prp,omitempty"`
}

// submitSignal routes a signal through trigger matching, wait-state
// delivery, and the resolution engine.
func (s *Server) submitSignal(w http.ResponseWriter, r *http.Request) {
	var req submitSignalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Type == "" {
		http.Error(w, "signal type is required", http.StatusBadRequest)
		return
	}
	if req.Source == "" {
		req.Source = "api"
	}

	sig := orchestrator.NewSignal(req.Type, req.Source, req.Data)
	sig.Metadata = req.Metadata
	sig.Priority = req.Priority

	result, err := s.router.Route(r.Context(), sig, req.PRP)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"signal_id": sig.ID,
		"result":    result,
	})
}
