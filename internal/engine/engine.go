// Package engine implements the recommendation engine: a pure, single-pass
// computation that turns an immutable inventory snapshot into a ranked list
// of cost optimization recommendations.
package engine

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/costpilot/backend/internal/model"
	"github.com/costpilot/backend/internal/pricing"
	"github.com/costpilot/backend/internal/sizing"
)

// Config holds the engine's analysis thresholds. All breakpoints are
// configuration rather than hardcoded policy.
type Config struct {
	// IdleThreshold is the percent CPU below which a resource is idle.
	// Effective value is clamped to UnderutilizedThreshold so the idle
	// band is always inside the underutilized band.
	IdleThreshold float64

	// UnderutilizedThreshold is the percent CPU below which a resource
	// is a rightsizing candidate.
	UnderutilizedThreshold float64

	// HighConfidenceRatio scales a threshold down to its high-confidence
	// bound.
	HighConfidenceRatio float64

	// MinGroupSize is the smallest (size, region) fleet that justifies a
	// reserved-capacity recommendation.
	MinGroupSize int

	// LongTermMinCount is the fleet size at which a 3-year term is
	// recommended over 1-year.
	LongTermMinCount int

	OneYearDiscount   float64
	ThreeYearDiscount float64
}

// Engine generates recommendations over resource snapshots. It performs no
// I/O, holds no mutable state between runs, and is safe for concurrent use.
type Engine struct {
	cfg     Config
	catalog *pricing.Catalog
	advisor *sizing.Advisor
	logger  *slog.Logger
}

// New creates a recommendation engine.
func New(cfg Config, catalog *pricing.Catalog, advisor *sizing.Advisor, logger *slog.Logger) *Engine {
	return &Engine{
		cfg:     cfg,
		catalog: catalog,
		advisor: advisor,
		logger:  logger,
	}
}

// Generate runs the rightsizing, idle and reserved-capacity analyzers over
// the snapshot and returns their merged output ordered by estimated monthly
// savings, highest first. The sort is stable: ties keep analyzer-then-
// discovery order, so identical snapshots always produce identical lists.
//
// Resources with missing utilization samples or unpriced sizes are skipped
// by the analyzers that need that data; they never fail the run.
func (e *Engine) Generate(snap *model.Snapshot) []model.Recommendation {
	generators := []func(*model.Snapshot) []model.Recommendation{
		e.rightsizingRecommendations,
		e.idleRecommendations,
		e.reservedCapacityRecommendations,
	}

	// Generators only read the snapshot, so they can run in parallel;
	// results are collected per generator and combined in fixed order.
	results := make([][]model.Recommendation, len(generators))
	var wg sync.WaitGroup
	for i, gen := range generators {
		wg.Add(1)
		go func(i int, gen func(*model.Snapshot) []model.Recommendation) {
			defer wg.Done()
			results[i] = gen(snap)
		}(i, gen)
	}
	wg.Wait()

	var recs []model.Recommendation
	for _, r := range results {
		recs = append(recs, r...)
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].EstimatedMonthlySavings > recs[j].EstimatedMonthlySavings
	})

	e.logger.Info("recommendation run complete",
		"resources", len(snap.Resources),
		"recommendations", len(recs),
	)
	return recs
}

// idleBound returns the effective idle threshold, never above the
// underutilization threshold.
func (e *Engine) idleBound() float64 {
	if e.cfg.IdleThreshold > e.cfg.UnderutilizedThreshold {
		return e.cfg.UnderutilizedThreshold
	}
	return e.cfg.IdleThreshold
}

// confidence grades a utilization reading against a threshold: readings
// below threshold*ratio earn high confidence, the rest medium.
func (e *Engine) confidence(avgCPU, threshold float64) model.Confidence {
	if avgCPU < threshold*e.cfg.HighConfidenceRatio {
		return model.ConfidenceHigh
	}
	return model.ConfidenceMedium
}
