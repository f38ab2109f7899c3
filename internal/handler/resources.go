package handler

import (
	"net/http"

	"github.com/costpilot/backend/internal/model"
)

// resourceView is a resource joined with its utilization sample, when one
// was collected.
type resourceView struct {
	model.ComputeResource
	AvgCPU  *float64 `json:"avg_cpu,omitempty"`
	Sampled bool     `json:"sampled"`
}

// ListResources returns the latest snapshot's inventory, optionally
// filtered by provider, region or power state.
func (h *Handler) ListResources(w http.ResponseWriter, r *http.Request) {
	snap, err := h.analysis.Snapshot()
	if err != nil {
		h.writeResultError(w, r, err)
		return
	}

	q := r.URL.Query()
	providerFilter := q.Get("provider")
	regionFilter := q.Get("region")
	stateFilter := q.Get("power_state")

	views := make([]resourceView, 0, len(snap.Resources))
	for _, res := range snap.Resources {
		if providerFilter != "" && string(res.Provider) != providerFilter {
			continue
		}
		if regionFilter != "" && res.Region != regionFilter {
			continue
		}
		if stateFilter != "" && string(res.PowerState) != stateFilter {
			continue
		}
		view := resourceView{ComputeResource: res}
		if sample, ok := snap.Sample(res.ID); ok {
			avg := sample.AvgCPU
			view.AvgCPU = &avg
			view.Sampled = true
		}
		views = append(views, view)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"taken_at":     snap.TakenAt,
		"data":         views,
		"total":        len(views),
		"scope_errors": snap.ScopeErrors,
	})
}
