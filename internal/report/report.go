// Package report renders recommendation lists for export.
package report

import (
	"encoding/csv"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/costpilot/backend/internal/model"
)

// WriteCSV writes the recommendation list as CSV, one row per
// recommendation, in list order.
func WriteCSV(w io.Writer, recs []model.Recommendation) error {
	cw := csv.NewWriter(w)
	header := []string{
		"resource_id", "resource_name", "provider", "owner_scope", "region",
		"recommendation_type", "estimated_monthly_savings", "currency",
		"confidence", "details",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, rec := range recs {
		row := []string{
			rec.ResourceID,
			rec.ResourceName,
			string(rec.Provider),
			rec.OwnerScope,
			rec.Region,
			string(rec.Type),
			fmt.Sprintf("%.2f", rec.EstimatedMonthlySavings),
			string(rec.Currency),
			string(rec.Confidence),
			rec.Details,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>CostPilot Report</title>
<style>
body { font-family: -apple-system, Helvetica, Arial, sans-serif; margin: 2em; color: #222; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; }
th, td { text-align: left; padding: 6px 10px; border-bottom: 1px solid #ddd; font-size: 0.9em; }
th { background: #f5f5f5; }
td.num { text-align: right; font-variant-numeric: tabular-nums; }
.confidence-high { color: #1b7f3b; }
.confidence-medium { color: #b07d00; }
.confidence-low { color: #888; }
</style>
</head>
<body>
<h1>Cost Optimization Report</h1>
<p>Generated {{.GeneratedAt.Format "2006-01-02 15:04 MST"}} &mdash;
{{.Summary.TotalCount}} recommendations, estimated ${{printf "%.2f" .Summary.TotalMonthlySavings}}/month in savings.</p>
<table>
<tr>
<th>Resource</th><th>Provider</th><th>Region</th><th>Type</th>
<th>Monthly Savings</th><th>Confidence</th><th>Details</th>
</tr>
{{range .Recommendations}}
<tr>
<td>{{.ResourceName}}</td>
<td>{{.Provider}}</td>
<td>{{.Region}}</td>
<td>{{.Type}}</td>
<td class="num">${{printf "%.2f" .EstimatedMonthlySavings}}</td>
<td class="confidence-{{.Confidence}}">{{.Confidence}}</td>
<td>{{.Details}}</td>
</tr>
{{end}}
</table>
</body>
</html>
`))

type htmlData struct {
	GeneratedAt     time.Time
	Summary         model.RecommendationSummary
	Recommendations []model.Recommendation
}

// WriteHTML writes the recommendation list as a standalone HTML report.
func WriteHTML(w io.Writer, recs []model.Recommendation) error {
	return htmlTemplate.Execute(w, htmlData{
		GeneratedAt:     time.Now().UTC(),
		Summary:         model.Summarize(recs),
		Recommendations: recs,
	})
}
