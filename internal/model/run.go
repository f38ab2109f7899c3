package model

import (
	"time"

	"github.com/google/uuid"
)

// AnalysisRun records metadata about one engine run. The recommendation list
// itself is identity-free; the run ID exists for logs and the API only.
type AnalysisRun struct {
	ID          uuid.UUID `json:"id"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`

	ScopesAnalyzed      int               `json:"scopes_analyzed"`
	ScopesFailed        int               `json:"scopes_failed"`
	ResourceCount       int               `json:"resource_count"`
	SampledCount        int               `json:"sampled_count"`
	RecommendationCount int               `json:"recommendation_count"`
	ScopeErrors         map[string]string `json:"scope_errors,omitempty"`
}

// NewAnalysisRun creates a run record with a fresh ID.
func NewAnalysisRun() AnalysisRun {
	return AnalysisRun{
		ID:        uuid.New(),
		StartedAt: time.Now().UTC(),
	}
}
