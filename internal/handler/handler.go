// Package handler implements the HTTP API.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/costpilot/backend/internal/analysis"
	"github.com/costpilot/backend/internal/jobs"
	"github.com/costpilot/backend/internal/provider"
)

// Handler serves the API over the analysis service, the provider registry
// and the job scheduler.
type Handler struct {
	analysis  *analysis.Service
	registry  *provider.Registry
	scheduler *jobs.Scheduler
	logger    *slog.Logger
	started   time.Time
	version   string
}

// New creates an API handler.
func New(svc *analysis.Service, registry *provider.Registry, scheduler *jobs.Scheduler, version string, logger *slog.Logger) *Handler {
	return &Handler{
		analysis:  svc,
		registry:  registry,
		scheduler: scheduler,
		logger:    logger,
		started:   time.Now(),
		version:   version,
	}
}

// Routes mounts every API route on a fresh sub-router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/recommendations", h.ListRecommendations)
	r.Get("/recommendations/summary", h.GetSummary)
	r.Post("/run", h.TriggerRun)
	r.Get("/runs", h.ListRuns)
	r.Get("/resources", h.ListResources)
	r.Get("/costs", h.GetCosts)
	r.Get("/export", h.Export)
	r.Get("/providers/health", h.ProviderHealth)
	r.Get("/jobs", h.ListJobs)
	r.Post("/jobs/{name}/run", h.RunJob)

	return r
}

// Health reports liveness, mounted outside the versioned API.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": h.version,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
	})
}

// ProviderHealth reports connectivity per registered provider.
func (h *Handler) ProviderHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.registry.HealthAll(r.Context()))
}
