package model

import "time"

// ServiceCost is the spend attributed to one cloud service over a period.
type ServiceCost struct {
	Service string  `json:"service"`
	Amount  float64 `json:"amount"`
}

// CostSummary holds billed spend for one owner scope over a period, broken
// down by service. Produced by the provider cost backends for reporting;
// the recommendation engine does not consume it.
type CostSummary struct {
	Provider   CloudProvider `json:"provider"`
	OwnerScope string        `json:"owner_scope"`
	Start      time.Time     `json:"start"`
	End        time.Time     `json:"end"`
	Total      float64       `json:"total"`
	Currency   Currency      `json:"currency"`
	ByService  []ServiceCost `json:"by_service"`
}
