// Package fake provides an in-memory provider backed by fixture data, for
// tests and local development without cloud credentials.
package fake

import (
	"context"
	"fmt"
	"time"

	"github.com/costpilot/backend/internal/model"
	"github.com/costpilot/backend/internal/provider"
)

// Provider serves fixture inventory and metrics. The zero value is usable;
// populate Resources and CPU before handing it to a collector.
type Provider struct {
	ProviderName string
	ProviderType model.CloudProvider

	// ScopeList is the set of owner scopes, in order. Defaults to the
	// distinct scopes found in Resources.
	ScopeList []string

	// Resources is the full fixture inventory across all scopes.
	Resources []model.ComputeResource

	// CPU maps resource ID to average CPU percentage. Resources missing
	// from the map have no utilization sample.
	CPU map[string]float64

	// Summaries maps owner scope to a canned cost summary.
	Summaries map[string]*model.CostSummary

	// ScopeErr maps owner scope to a forced inventory failure.
	ScopeErr map[string]error

	// MetricErr maps resource ID to a forced metrics failure.
	MetricErr map[string]error

	closed bool
}

// Name returns the provider name.
func (p *Provider) Name() string {
	if p.ProviderName == "" {
		return "fake"
	}
	return p.ProviderName
}

// Type returns the provider type.
func (p *Provider) Type() model.CloudProvider {
	if p.ProviderType == "" {
		return model.CloudProviderAzure
	}
	return p.ProviderType
}

// Scopes returns the fixture scopes.
func (p *Provider) Scopes(ctx context.Context) ([]string, error) {
	if len(p.ScopeList) > 0 {
		return p.ScopeList, nil
	}
	var scopes []string
	seen := make(map[string]bool)
	for _, res := range p.Resources {
		if !seen[res.OwnerScope] {
			seen[res.OwnerScope] = true
			scopes = append(scopes, res.OwnerScope)
		}
	}
	return scopes, nil
}

// ListResources returns the fixture resources belonging to one scope.
func (p *Provider) ListResources(ctx context.Context, ownerScope string) ([]model.ComputeResource, error) {
	if err := p.ScopeErr[ownerScope]; err != nil {
		return nil, err
	}
	var out []model.ComputeResource
	for _, res := range p.Resources {
		if res.OwnerScope == ownerScope {
			out = append(out, res)
		}
	}
	return out, nil
}

// AverageCPUUtilization returns the canned CPU reading for a resource.
func (p *Provider) AverageCPUUtilization(ctx context.Context, res model.ComputeResource, windowDays int) (float64, bool, error) {
	if err := p.MetricErr[res.ID]; err != nil {
		return 0, false, err
	}
	avg, ok := p.CPU[res.ID]
	return avg, ok, nil
}

// CostSummary returns the canned summary for a scope.
func (p *Provider) CostSummary(ctx context.Context, ownerScope string, start, end time.Time) (*model.CostSummary, error) {
	if s, ok := p.Summaries[ownerScope]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("no cost summary fixture for scope %s", ownerScope)
}

// Health always reports healthy.
func (p *Provider) Health(ctx context.Context) provider.HealthStatus {
	return provider.HealthStatus{
		Healthy:     true,
		Message:     "fake provider healthy",
		LastChecked: time.Now(),
	}
}

// Close marks the provider closed.
func (p *Provider) Close() error {
	p.closed = true
	return nil
}

// Closed reports whether Close was called.
func (p *Provider) Closed() bool {
	return p.closed
}

var _ provider.Provider = (*Provider)(nil)
