package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dcversus/prp-sub007/internal/orchestrator"
)

func (s *Server) registerWorkflow(w http.ResponseWriter, r *http.Request) {
	var def orchestrator.WorkflowDefinition
	if err := json.NewDecoder(r.Body).Decode(&def); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.catalog.Register(r.Context(), &def); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, def)
}

func (s *Server) listWorkflows(w http.ResponseWriter, r *http.Request) {
	defs, err := s.catalog.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, defs)
}

func (s *Server) getWorkflow(w http.ResponseWriter, r *http.Request) {
	def, err := s.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, def)
}

func (s *Server) unregisterWorkflow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.catalog.Unregister(r.Context(), id) {
		writeError(w, &orchestrator.NotFoundError{Kind: "workflow", ID: id})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type startWorkflowRequest struct {
	Signal    *orchestrator.Signal `json:"signal,omitempty"`
	PRP       *orchestrator.PRP    `json:"prp,omitempty"`
	Variables map[string]any       `json:"variables,omitempty"`
}

func (s *Server) startWorkflow(w http.ResponseWriter, r *http.Request) {
	var req startWorkflowRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	seed := orchestrator.ContextSeed{
		Signal:          req.Signal,
		PRP:             req.PRP,
		GlobalVariables: req.Variables,
	}
	execID, err := s.engine.StartWorkflow(r.Context(), chi.URLParam(r, "id"), seed, nil)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"execution_id": execID})
}
