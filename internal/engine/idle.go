package engine

import (
	"fmt"

	"github.com/costpilot/backend/internal/model"
)

// idleRecommendations proposes stopping running resources whose CPU
// utilization sits below the idle threshold. The savings estimate is the
// resource's full monthly compute cost; when the size has no price the
// recommendation is suppressed rather than emitted with zero savings.
func (e *Engine) idleRecommendations(snap *model.Snapshot) []model.Recommendation {
	bound := e.idleBound()

	var recs []model.Recommendation
	for _, res := range snap.Resources {
		if !res.PowerState.IsRunning() {
			continue
		}
		sample, ok := snap.Sample(res.ID)
		if !ok {
			continue
		}
		if sample.AvgCPU >= bound {
			continue
		}

		monthly, ok := e.catalog.MonthlyCost(res.Size, res.Region)
		if !ok || monthly <= 0 {
			e.logger.Debug("skipping stop-idle, no price for size",
				"resource", res.ID, "size", res.Size)
			continue
		}

		recs = append(recs, model.Recommendation{
			ResourceID:    res.ID,
			ResourceName:  res.Name,
			Provider:      res.Provider,
			OwnerScope:    res.OwnerScope,
			ResourceGroup: res.ResourceGroup,
			Region:        res.Region,
			Type:          model.RecommendationTypeStopIdle,
			CurrentState: map[string]any{
				"size":                res.Size,
				"avg_cpu_utilization": sample.AvgCPU,
				"power_state":         res.PowerState,
			},
			RecommendedState: map[string]any{
				"power_state": model.PowerStateDeallocated,
			},
			EstimatedMonthlySavings: monthly,
			Currency:                model.CurrencyUSD,
			Confidence:              e.confidence(sample.AvgCPU, bound),
			Details: fmt.Sprintf(
				"Average CPU utilization of %.1f%% over the last %d days is below the %.1f%% idle threshold. Stopping this resource saves $%.2f/month.",
				sample.AvgCPU, sample.WindowDays, bound, monthly),
		})
	}
	return recs
}
