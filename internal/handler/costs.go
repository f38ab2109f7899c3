package handler

import (
	"net/http"
	"time"

	"github.com/costpilot/backend/internal/apierrors"
	"github.com/costpilot/backend/internal/model"
)

// GetCosts queries billed spend per owner scope from every provider's cost
// backend. Unlike recommendations this hits the cloud APIs live; scope
// failures are reported inline rather than failing the whole response.
func (h *Handler) GetCosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	end := time.Now().UTC().Truncate(24 * time.Hour)
	start := end.AddDate(0, -1, 0)

	var err error
	if v := q.Get("start"); v != "" {
		start, err = time.Parse("2006-01-02", v)
		if err != nil {
			apierrors.NewBadRequestError("start must be YYYY-MM-DD").Write(w, r)
			return
		}
	}
	if v := q.Get("end"); v != "" {
		end, err = time.Parse("2006-01-02", v)
		if err != nil {
			apierrors.NewBadRequestError("end must be YYYY-MM-DD").Write(w, r)
			return
		}
	}
	if !start.Before(end) {
		apierrors.NewValidationError("start must be before end", map[string]string{
			"start": start.Format("2006-01-02"),
			"end":   end.Format("2006-01-02"),
		}).Write(w, r)
		return
	}

	var summaries []*model.CostSummary
	scopeErrors := make(map[string]string)
	for _, prov := range h.registry.All() {
		scopes, err := prov.Scopes(r.Context())
		if err != nil {
			scopeErrors[prov.Name()] = err.Error()
			continue
		}
		for _, scope := range scopes {
			summary, err := prov.CostSummary(r.Context(), scope, start, end)
			if err != nil {
				h.logger.Warn("cost summary failed", "scope", scope, "error", err)
				scopeErrors[scope] = err.Error()
				continue
			}
			summaries = append(summaries, summary)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":         summaries,
		"scope_errors": scopeErrors,
	})
}
