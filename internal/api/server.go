// Package api exposes the orchestrator over HTTP: workflow catalog
// management, execution lifecycle, signal intake, and the resolution
// catalog.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dcversus/prp-sub007/internal/catalog"
	"github.com/dcversus/prp-sub007/internal/engine"
	"github.com/dcversus/prp-sub007/internal/integration"
	"github.com/dcversus/prp-sub007/internal/orchestrator"
	"github.com/dcversus/prp-sub007/internal/resolution"
)

type Server struct {
	catalog     *catalog.Catalog
	engine      *engine.Engine
	resolutions *resolution.Catalog
	router      *integration.Router
}

func NewServer(cat *catalog.Catalog, eng *engine.Engine, resolutions *resolution.Catalog, router *integration.Router) *Server {
	return &Server{
		catalog:     cat,
		engine:      eng,
		resolutions: resolutions,
		router:      router,
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	}))
	r.Route("/api", func(r chi.Router) {
		r.Route("/workflows", func(r chi.Router) {
			r.Post("/", s.registerWorkflow)
			r.Get("/", s.listWorkflows)
			r.Get("/{id}", s.getWorkflow)
			r.Delete("/{id}", s.unregisterWorkflow)
			r.Post("/{id}/start", s.startWorkflow)
		})
		r.Route("/executions", func(r chi.Router) {
			r.Get("/", s.listExecutions)
			r.Get("/{id}", s.getExecution)
			r.Post("/{id}/pause", s.pauseExecution)
			r.Post("/{id}/resume", s.resumeExecution)
			r.Post("/{id}/cancel", s.cancelExecution)
			r.Post("/{id}/redrive", s.redriveExecution)
		})
		r.Post("/signals", s.submitSignal)
		r.Route("/resolutions", func(r chi.Router) {
			r.Post("/", s.addResolution)
			r.Get("/", s.listResolutions)
			r.Get("/{signalType}", s.getResolution)
			r.Delete("/{signalType}", s.removeResolution)
		})
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	var validation *orchestrator.ValidationError
	var notFound *orchestrator.NotFoundError
	var conflict *orchestrator.StateConflictError
	switch {
	case errors.As(err, &validation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &notFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &conflict):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
