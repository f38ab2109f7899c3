package engine

import (
	"fmt"

	"github.com/costpilot/backend/internal/model"
	"github.com/costpilot/backend/internal/pricing"
)

// rightsizingRecommendations proposes moving underutilized running resources
// one size down within their family. Resources without a utilization sample,
// with an unknown size, or where the price delta is not positive are skipped.
func (e *Engine) rightsizingRecommendations(snap *model.Snapshot) []model.Recommendation {
	var recs []model.Recommendation
	for _, res := range snap.Resources {
		if !res.PowerState.IsRunning() {
			continue
		}
		sample, ok := snap.Sample(res.ID)
		if !ok {
			continue
		}
		if e.classify(sample.AvgCPU) == BandRightSized {
			continue
		}

		smaller, ok := e.advisor.RecommendSize(res.Size, sample.AvgCPU)
		if !ok {
			continue
		}

		currentHourly, ok := e.catalog.HourlyCost(res.Size, res.Region)
		if !ok {
			e.logger.Debug("skipping rightsize, no price for size",
				"resource", res.ID, "size", res.Size)
			continue
		}
		smallerHourly, ok := e.catalog.HourlyCost(smaller, res.Region)
		if !ok {
			e.logger.Debug("skipping rightsize, no price for target size",
				"resource", res.ID, "size", smaller)
			continue
		}

		savings := (currentHourly - smallerHourly) * pricing.HoursPerMonth
		if savings <= 0 {
			continue
		}

		recs = append(recs, model.Recommendation{
			ResourceID:    res.ID,
			ResourceName:  res.Name,
			Provider:      res.Provider,
			OwnerScope:    res.OwnerScope,
			ResourceGroup: res.ResourceGroup,
			Region:        res.Region,
			Type:          model.RecommendationTypeRightsize,
			CurrentState: map[string]any{
				"size":                res.Size,
				"avg_cpu_utilization": sample.AvgCPU,
				"power_state":         res.PowerState,
			},
			RecommendedState: map[string]any{
				"size":                     smaller,
				"expected_cpu_utilization": sample.AvgCPU * 2,
			},
			EstimatedMonthlySavings: savings,
			Currency:                model.CurrencyUSD,
			Confidence:              e.confidence(sample.AvgCPU, e.cfg.UnderutilizedThreshold),
			Details: fmt.Sprintf(
				"Average CPU utilization of %.1f%% over the last %d days is below the %.1f%% threshold. Downsizing from %s to %s saves $%.2f/month.",
				sample.AvgCPU, sample.WindowDays, e.cfg.UnderutilizedThreshold,
				res.Size, smaller, savings),
		})
	}
	return recs
}
