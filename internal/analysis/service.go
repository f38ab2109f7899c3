// Package analysis orchestrates recommendation runs: collect a snapshot,
// run the engine over it, keep the latest results for the API and notify
// configured channels.
package analysis

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/costpilot/backend/internal/collector"
	"github.com/costpilot/backend/internal/engine"
	"github.com/costpilot/backend/internal/model"
	"github.com/costpilot/backend/internal/notification"
)

// ErrRunInProgress is returned when a run is requested while another is
// still collecting or analyzing.
var ErrRunInProgress = errors.New("analysis run already in progress")

// ErrNoResults is returned by result accessors before the first completed
// run.
var ErrNoResults = errors.New("no analysis run has completed yet")

// Service owns the analysis lifecycle and the latest run's results.
type Service struct {
	collector *collector.Collector
	engine    *engine.Engine
	notifier  *notification.Service
	logger    *slog.Logger

	mu       sync.RWMutex
	running  bool
	snapshot *model.Snapshot
	recs     []model.Recommendation
	lastRun  *model.AnalysisRun
	history  []model.AnalysisRun
}

// maxHistory bounds the in-memory run history.
const maxHistory = 50

// NewService creates an analysis service.
func NewService(c *collector.Collector, e *engine.Engine, n *notification.Service, logger *slog.Logger) *Service {
	return &Service{
		collector: c,
		engine:    e,
		notifier:  n,
		logger:    logger,
	}
}

// Run executes one full analysis: snapshot collection, recommendation
// generation, result publication and notification. Only one run executes at
// a time; concurrent callers get ErrRunInProgress.
func (s *Service) Run(ctx context.Context) (model.AnalysisRun, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return model.AnalysisRun{}, ErrRunInProgress
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	run := model.NewAnalysisRun()
	s.logger.Info("analysis run started", "run_id", run.ID)

	snap, err := s.collector.Collect(ctx)
	if err != nil {
		s.logger.Error("analysis run failed", "run_id", run.ID, "error", err)
		if s.notifier != nil {
			if nerr := s.notifier.SendAnalysisFailure(ctx, err); nerr != nil {
				s.logger.Warn("failed to send failure notification", "error", nerr)
			}
		}
		return model.AnalysisRun{}, err
	}

	recs := s.engine.Generate(snap)

	run.CompletedAt = time.Now().UTC()
	run.ScopesFailed = len(snap.ScopeErrors)
	run.ScopesAnalyzed = countScopes(snap)
	run.ResourceCount = len(snap.Resources)
	run.SampledCount = len(snap.Utilization)
	run.RecommendationCount = len(recs)
	run.ScopeErrors = snap.ScopeErrors

	s.mu.Lock()
	s.snapshot = snap
	s.recs = recs
	s.lastRun = &run
	s.history = append(s.history, run)
	if len(s.history) > maxHistory {
		s.history = s.history[len(s.history)-maxHistory:]
	}
	s.mu.Unlock()

	if s.notifier != nil {
		if err := s.notifier.SendAnalysisReport(ctx, run, model.Summarize(recs)); err != nil {
			s.logger.Warn("failed to send analysis notification", "error", err)
		}
	}

	s.logger.Info("analysis run completed",
		"run_id", run.ID,
		"duration", run.CompletedAt.Sub(run.StartedAt),
		"recommendations", len(recs),
	)
	return run, nil
}

// Recommendations returns the latest run's recommendation list.
func (s *Service) Recommendations() ([]model.Recommendation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastRun == nil {
		return nil, ErrNoResults
	}
	return s.recs, nil
}

// Snapshot returns the latest run's resource snapshot.
func (s *Service) Snapshot() (*model.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil, ErrNoResults
	}
	return s.snapshot, nil
}

// LastRun returns the latest run record.
func (s *Service) LastRun() (model.AnalysisRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastRun == nil {
		return model.AnalysisRun{}, ErrNoResults
	}
	return *s.lastRun, nil
}

// History returns recent run records, newest last.
func (s *Service) History() []model.AnalysisRun {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.AnalysisRun(nil), s.history...)
}

// countScopes counts the distinct owner scopes present in the snapshot.
func countScopes(snap *model.Snapshot) int {
	seen := make(map[string]bool)
	for _, res := range snap.Resources {
		seen[res.OwnerScope] = true
	}
	return len(seen)
}
