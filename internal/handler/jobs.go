package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/costpilot/backend/internal/apierrors"
)

type jobView struct {
	Name     string `json:"name"`
	Schedule string `json:"schedule"`
}

// ListJobs returns the scheduler's registered jobs.
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs := h.scheduler.ListJobs()
	views := make([]jobView, 0, len(jobs))
	for _, job := range jobs {
		views = append(views, jobView{Name: job.Name, Schedule: job.Schedule})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  views,
		"total": len(views),
	})
}

// RunJob triggers a registered job immediately, off its cron schedule. The
// job runs in the background; 202 only acknowledges the trigger.
func (h *Handler) RunJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.scheduler.RunNow(name); err != nil {
		apierrors.NewNotFoundError("job", name).Write(w, r)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"status": "triggered",
		"job":    name,
	})
}
