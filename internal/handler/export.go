package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/costpilot/backend/internal/apierrors"
	"github.com/costpilot/backend/internal/report"
)

// Export streams the latest recommendation list as a downloadable CSV or
// HTML report.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	recs, err := h.analysis.Recommendations()
	if err != nil {
		h.writeResultError(w, r, err)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	stamp := time.Now().UTC().Format("2006-01-02")

	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="costpilot-recommendations-%s.csv"`, stamp))
		if err := report.WriteCSV(w, recs); err != nil {
			h.logger.Error("csv export failed", "error", err)
		}
	case "html":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := report.WriteHTML(w, recs); err != nil {
			h.logger.Error("html export failed", "error", err)
		}
	default:
		apierrors.NewBadRequestError("format must be csv or html").Write(w, r)
	}
}
