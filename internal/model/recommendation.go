package model

// RecommendationType represents types of recommendations.
type RecommendationType string

const (
	RecommendationTypeRightsize        RecommendationType = "rightsize"
	RecommendationTypeStopIdle         RecommendationType = "stop_idle"
	RecommendationTypeReservedCapacity RecommendationType = "purchase_reserved_capacity"
)

// Recommendation is a single cost optimization action with its quantified
// savings. Recommendations are pure computed values: re-running the engine
// over the same snapshot yields the same list in the same order, and they
// carry no identity beyond one run.
type Recommendation struct {
	ResourceID    string             `json:"resource_id"`
	ResourceName  string             `json:"resource_name"`
	Provider      CloudProvider      `json:"provider"`
	OwnerScope    string             `json:"owner_scope"`
	ResourceGroup string             `json:"resource_group,omitempty"`
	Region        string             `json:"region"`
	Type          RecommendationType `json:"recommendation_type"`

	// CurrentState and RecommendedState describe the resource before and
	// after the proposed action (size, utilization, power state, term).
	CurrentState     map[string]any `json:"current_state"`
	RecommendedState map[string]any `json:"recommended_state"`

	EstimatedMonthlySavings float64    `json:"estimated_monthly_savings"`
	Currency                Currency   `json:"currency"`
	Confidence              Confidence `json:"confidence"`

	// Details is a human-readable explanation embedding the numbers that
	// justified the recommendation. The report layer renders it as-is.
	Details string `json:"details"`
}

// RecommendationSummary aggregates a recommendation list for the API.
type RecommendationSummary struct {
	TotalCount          int                        `json:"total_count"`
	TotalMonthlySavings float64                    `json:"total_monthly_savings"`
	ByType              map[RecommendationType]int `json:"by_type"`
	ByConfidence        map[Confidence]int         `json:"by_confidence"`
	Currency            Currency                   `json:"currency"`
}

// Summarize computes summary counts over a recommendation list.
func Summarize(recs []Recommendation) RecommendationSummary {
	s := RecommendationSummary{
		ByType:       make(map[RecommendationType]int),
		ByConfidence: make(map[Confidence]int),
		Currency:     CurrencyUSD,
	}
	for _, rec := range recs {
		s.TotalCount++
		s.TotalMonthlySavings += rec.EstimatedMonthlySavings
		s.ByType[rec.Type]++
		s.ByConfidence[rec.Confidence]++
	}
	return s
}
