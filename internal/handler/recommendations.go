package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/costpilot/backend/internal/analysis"
	"github.com/costpilot/backend/internal/apierrors"
	"github.com/costpilot/backend/internal/model"
)

// ListRecommendations returns the latest run's recommendations, optionally
// filtered by type, confidence, provider or a minimum savings floor. The
// underlying list is already sorted by savings, and filtering preserves
// that order.
func (h *Handler) ListRecommendations(w http.ResponseWriter, r *http.Request) {
	recs, err := h.analysis.Recommendations()
	if err != nil {
		h.writeResultError(w, r, err)
		return
	}

	q := r.URL.Query()
	typeFilter := q.Get("type")
	confidenceFilter := q.Get("confidence")
	providerFilter := q.Get("provider")
	minSavings := 0.0
	if v := q.Get("min_savings"); v != "" {
		minSavings, err = strconv.ParseFloat(v, 64)
		if err != nil {
			apierrors.NewBadRequestError("min_savings must be a number").Write(w, r)
			return
		}
	}

	filtered := make([]model.Recommendation, 0, len(recs))
	for _, rec := range recs {
		if typeFilter != "" && string(rec.Type) != typeFilter {
			continue
		}
		if confidenceFilter != "" && string(rec.Confidence) != confidenceFilter {
			continue
		}
		if providerFilter != "" && string(rec.Provider) != providerFilter {
			continue
		}
		if rec.EstimatedMonthlySavings < minSavings {
			continue
		}
		filtered = append(filtered, rec)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  filtered,
		"total": len(filtered),
	})
}

// GetSummary returns aggregate counts and savings for the latest run.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	recs, err := h.analysis.Recommendations()
	if err != nil {
		h.writeResultError(w, r, err)
		return
	}
	run, err := h.analysis.LastRun()
	if err != nil {
		h.writeResultError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"summary": model.Summarize(recs),
		"run":     run,
	})
}

// TriggerRun starts an analysis run and responds when it completes. A run
// already in flight yields 409.
func (h *Handler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.analysis.Run(r.Context())
	if err != nil {
		if errors.Is(err, analysis.ErrRunInProgress) {
			apierrors.NewConflictError("an analysis run is already in progress").Write(w, r)
			return
		}
		h.logger.Error("analysis run failed", "error", err)
		apierrors.NewInternalError("analysis run failed").Write(w, r)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// ListRuns returns recent run records.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	runs := h.analysis.History()
	writeJSON(w, http.StatusOK, map[string]any{
		"data":  runs,
		"total": len(runs),
	})
}

// writeResultError maps result-access errors onto API errors.
func (h *Handler) writeResultError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, analysis.ErrNoResults) {
		apierrors.NewNotFoundError("analysis results", "latest").Write(w, r)
		return
	}
	apierrors.FromError(err).Write(w, r)
}
