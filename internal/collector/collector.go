// Package collector builds analysis snapshots by pulling inventory and
// utilization metrics from every registered provider.
package collector

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/costpilot/backend/internal/model"
	"github.com/costpilot/backend/internal/provider"
)

const defaultMetricWorkers = 8

// Config holds collection settings.
type Config struct {
	// LookbackDays is the trailing utilization window passed to metrics
	// providers.
	LookbackDays int

	// MinUptimeHours excludes freshly launched resources from metrics
	// collection. They stay in the inventory, so fleet analysis still
	// counts them.
	MinUptimeHours int

	// Regions is an include-list per provider type. Empty means all
	// regions.
	Regions map[model.CloudProvider][]string

	// MetricWorkers bounds the concurrent per-resource metric queries.
	MetricWorkers int
}

// Collector assembles immutable snapshots for the recommendation engine.
type Collector struct {
	registry *provider.Registry
	cfg      Config
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a collector over the provider registry.
func New(registry *provider.Registry, cfg Config, logger *slog.Logger) *Collector {
	if cfg.MetricWorkers <= 0 {
		cfg.MetricWorkers = defaultMetricWorkers
	}
	return &Collector{
		registry: registry,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// scopeTask is one (provider, owner scope) inventory unit.
type scopeTask struct {
	prov  provider.Provider
	scope string
}

// Collect pulls inventory from every provider scope and utilization metrics
// for every eligible resource, and returns them as one snapshot. Scope
// failures are recorded and skipped so one broken account never sinks the
// run; only when every scope errors and nothing could be listed does
// Collect fail. The snapshot preserves provider registration order and
// per-scope listing order regardless of collection concurrency.
func (c *Collector) Collect(ctx context.Context) (*model.Snapshot, error) {
	snap := &model.Snapshot{
		TakenAt:     c.now().UTC(),
		Utilization: make(map[string]model.UtilizationSample),
		ScopeErrors: make(map[string]string),
	}

	var tasks []scopeTask
	for _, prov := range c.registry.All() {
		scopes, err := prov.Scopes(ctx)
		if err != nil {
			c.logger.Error("failed to resolve provider scopes",
				"provider", prov.Name(), "error", err)
			snap.ScopeErrors[prov.Name()] = err.Error()
			continue
		}
		for _, scope := range scopes {
			tasks = append(tasks, scopeTask{prov: prov, scope: scope})
		}
	}

	// Inventory fan-out: one goroutine per scope, results kept in task
	// order so the snapshot is deterministic.
	results := make([][]model.ComputeResource, len(tasks))
	var listed int
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task scopeTask) {
			defer wg.Done()
			resources, err := task.prov.ListResources(ctx, task.scope)
			if err != nil {
				c.logger.Error("failed to list resources, skipping scope",
					"provider", task.prov.Name(), "scope", task.scope, "error", err)
				mu.Lock()
				snap.ScopeErrors[task.scope] = err.Error()
				mu.Unlock()
				return
			}
			mu.Lock()
			listed++
			mu.Unlock()
			results[i] = c.filterRegions(task.prov.Type(), resources)
		}(i, task)
	}
	wg.Wait()

	if listed == 0 && len(snap.ScopeErrors) > 0 {
		return nil, fmt.Errorf("collection failed: all %d provider scopes errored", len(snap.ScopeErrors))
	}

	providerOf := make(map[string]provider.Provider)
	for i, task := range tasks {
		snap.Resources = append(snap.Resources, results[i]...)
		for _, res := range results[i] {
			providerOf[res.ID] = task.prov
		}
	}

	c.collectMetrics(ctx, snap, providerOf)

	c.logger.Info("snapshot collected",
		"scopes", len(tasks),
		"scope_errors", len(snap.ScopeErrors),
		"resources", len(snap.Resources),
		"sampled", len(snap.Utilization),
	)
	return snap, nil
}

// collectMetrics queries average CPU for every running resource that has
// been up long enough, using a bounded worker pool. A metrics failure only
// costs that resource its sample.
func (c *Collector) collectMetrics(ctx context.Context, snap *model.Snapshot, providerOf map[string]provider.Provider) {
	now := c.now()

	var eligible []model.ComputeResource
	for _, res := range snap.Resources {
		if !res.PowerState.IsRunning() {
			continue
		}
		if !res.UptimeAtLeast(c.cfg.MinUptimeHours, now) {
			c.logger.Debug("resource too new for utilization analysis",
				"resource", res.ID, "launched", res.LaunchTime)
			continue
		}
		eligible = append(eligible, res)
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	work := make(chan model.ComputeResource)
	for i := 0; i < c.cfg.MetricWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for res := range work {
				prov := providerOf[res.ID]
				avg, ok, err := prov.AverageCPUUtilization(ctx, res, c.cfg.LookbackDays)
				if err != nil {
					c.logger.Warn("failed to collect utilization",
						"resource", res.ID, "error", err)
					continue
				}
				if !ok {
					continue
				}
				mu.Lock()
				snap.Utilization[res.ID] = model.UtilizationSample{
					ResourceID: res.ID,
					AvgCPU:     avg,
					WindowDays: c.cfg.LookbackDays,
				}
				mu.Unlock()
			}
		}()
	}
	for _, res := range eligible {
		work <- res
	}
	close(work)
	wg.Wait()
}

// filterRegions drops resources outside the provider's region include-list.
func (c *Collector) filterRegions(typ model.CloudProvider, resources []model.ComputeResource) []model.ComputeResource {
	include := c.cfg.Regions[typ]
	if len(include) == 0 {
		return resources
	}
	allowed := make(map[string]bool, len(include))
	for _, region := range include {
		allowed[region] = true
	}
	var out []model.ComputeResource
	for _, res := range resources {
		if allowed[res.Region] {
			out = append(out, res)
		}
	}
	return out
}
