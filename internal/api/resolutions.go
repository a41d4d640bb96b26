package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dcversus/prp-sub007/internal/orchestrator"
)

func (s *Server) addResolution(w http.ResponseWriter, r *http.Request) {
	var res orchestrator.SignalResolution
	if err := json.NewDecoder(r.Body).Decode(&res); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if res.SignalType == "" {
		http.Error(w, "signal_type is required", http.StatusBadRequest)
		return
	}
	s.resolutions.Add(r.Context(), &res)
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) listResolutions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.resolutions.All(r.Context()))
}

func (s *Server) getResolution(w http.ResponseWriter, r *http.Request) {
	signalType := chi.URLParam(r, "signalType")
	res, ok := s.resolutions.Get(r.Context(), signalType)
	if !ok {
		writeError(w, &orchestrator.NotFoundError{Kind: "resolution", ID: signalType})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) removeResolution(w http.ResponseWriter, r *http.Request) {
	signalType := chi.URLParam(r, "signalType")
	if !s.resolutions.Remove(r.Context(), signalType) {
		writeError(w, &orchestrator.NotFoundError{Kind: "resolution", ID: signalType})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
