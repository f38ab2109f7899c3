package notification

import (
	"context"
	"fmt"

	"github.com/costpilot/backend/internal/model"
)

// SendAnalysisReport sends a run-completion summary. Runs whose total
// estimated savings fall below the configured floor are skipped.
func (s *Service) SendAnalysisReport(ctx context.Context, run model.AnalysisRun, summary model.RecommendationSummary) error {
	if !s.Enabled() {
		return nil
	}
	if summary.TotalMonthlySavings < s.cfg.MinSavings {
		s.logger.Debug("skipping analysis notification below savings floor",
			"savings", summary.TotalMonthlySavings, "floor", s.cfg.MinSavings)
		return nil
	}

	return s.Send(ctx, Message{
		EventType: EventAnalysisCompleted,
		Title:     "Cost Optimization Report",
		Body: fmt.Sprintf("Analyzed %d resources across %d scopes and found %d recommendations worth $%.2f/month.",
			run.ResourceCount, run.ScopesAnalyzed, summary.TotalCount, summary.TotalMonthlySavings),
		Data: map[string]any{
			"Resources":       run.ResourceCount,
			"Recommendations": summary.TotalCount,
			"Monthly Savings": fmt.Sprintf("$%.2f", summary.TotalMonthlySavings),
			"Failed Scopes":   run.ScopesFailed,
		},
	})
}

// SendAnalysisFailure reports a run that could not complete.
func (s *Service) SendAnalysisFailure(ctx context.Context, err error) error {
	if !s.Enabled() {
		return nil
	}
	return s.Send(ctx, Message{
		EventType: EventAnalysisFailed,
		Title:     "Cost Analysis Failed",
		Body:      fmt.Sprintf("The scheduled cost analysis run failed: %v", err),
		Severity:  "high",
	})
}
