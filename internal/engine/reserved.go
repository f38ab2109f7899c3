package engine

import (
	"fmt"

	"github.com/costpilot/backend/internal/model"
	"github.com/costpilot/backend/internal/pricing"
)

// fleet is a group of running resources sharing a size and region, the unit
// a reserved-capacity purchase applies to.
type fleet struct {
	size      string
	region    string
	resources []model.ComputeResource
}

// reservedCapacityRecommendations proposes reserved-term purchases for
// (size, region) fleets of at least MinGroupSize running resources. Fleets
// larger than LongTermMinCount get a 3-year term at the deeper discount and
// high confidence; smaller fleets get a 1-year term at medium confidence.
// One recommendation is emitted per fleet, anchored on its first resource.
//
// Utilization samples are not required here: a running resource without
// metrics still pays for compute and still benefits from a reservation.
func (e *Engine) reservedCapacityRecommendations(snap *model.Snapshot) []model.Recommendation {
	// Group in discovery order so output order is deterministic.
	groups := make(map[string]*fleet)
	var order []string
	for _, res := range snap.Resources {
		if !res.PowerState.IsRunning() {
			continue
		}
		key := res.Size + "|" + res.Region
		g, ok := groups[key]
		if !ok {
			g = &fleet{size: res.Size, region: res.Region}
			groups[key] = g
			order = append(order, key)
		}
		g.resources = append(g.resources, res)
	}

	var recs []model.Recommendation
	for _, key := range order {
		g := groups[key]
		count := len(g.resources)
		if count < e.cfg.MinGroupSize {
			continue
		}

		hourly, ok := e.catalog.HourlyCost(g.size, g.region)
		if !ok || hourly <= 0 {
			e.logger.Debug("skipping reserved capacity, no price for size",
				"size", g.size, "region", g.region, "count", count)
			continue
		}
		onDemandMonthly := hourly * pricing.HoursPerMonth * float64(count)

		term := "1-year"
		discount := e.cfg.OneYearDiscount
		confidence := model.ConfidenceMedium
		if count >= e.cfg.LongTermMinCount {
			term = "3-year"
			discount = e.cfg.ThreeYearDiscount
			confidence = model.ConfidenceHigh
		}
		savings := onDemandMonthly * discount

		first := g.resources[0]
		recs = append(recs, model.Recommendation{
			ResourceID:    first.ID,
			ResourceName:  first.Name,
			Provider:      first.Provider,
			OwnerScope:    first.OwnerScope,
			ResourceGroup: first.ResourceGroup,
			Region:        g.region,
			Type:          model.RecommendationTypeReservedCapacity,
			CurrentState: map[string]any{
				"size":           g.size,
				"instance_count": count,
				"pricing_model":  "on_demand",
				"monthly_cost":   onDemandMonthly,
			},
			RecommendedState: map[string]any{
				"size":           g.size,
				"instance_count": count,
				"pricing_model":  "reserved",
				"term":           term,
			},
			EstimatedMonthlySavings: savings,
			Currency:                model.CurrencyUSD,
			Confidence:              confidence,
			Details: fmt.Sprintf(
				"%d running instances of size %s in %s. Purchasing a %s reserved term at a %.0f%% discount saves $%.2f/month across the fleet.",
				count, g.size, g.region, term, discount*100, savings),
		})
	}
	return recs
}
