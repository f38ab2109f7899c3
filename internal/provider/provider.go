// Package provider defines the cloud provider interface and registry.
package provider

import (
	"context"
	"time"

	"github.com/costpilot/backend/internal/model"
)

// Provider is a cloud backend the collector can pull inventory, utilization
// metrics and billing summaries from.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// Type returns the provider type (aws, azure).
	Type() model.CloudProvider

	// Scopes returns the owner scopes this provider covers: AWS account
	// IDs or Azure subscription IDs.
	Scopes(ctx context.Context) ([]string, error)

	// ListResources returns every compute resource in one owner scope,
	// including stopped instances.
	ListResources(ctx context.Context, ownerScope string) ([]model.ComputeResource, error)

	// AverageCPUUtilization returns the mean CPU percentage for a resource
	// over the trailing window. ok is false when the provider has no
	// datapoints for the resource, which is distinct from 0% utilization.
	AverageCPUUtilization(ctx context.Context, res model.ComputeResource, windowDays int) (avg float64, ok bool, err error)

	// CostSummary returns billed spend for one owner scope over a period,
	// broken down by service.
	CostSummary(ctx context.Context, ownerScope string, start, end time.Time) (*model.CostSummary, error)

	// Health checks provider connectivity.
	Health(ctx context.Context) HealthStatus

	// Close cleans up provider resources.
	Close() error
}

// HealthStatus represents provider health.
type HealthStatus struct {
	Healthy     bool           `json:"healthy"`
	Message     string         `json:"message"`
	LastChecked time.Time      `json:"last_checked"`
	Details     map[string]any `json:"details,omitempty"`
}

// Registry manages registered providers. Iteration order is registration
// order, so collection runs visit providers deterministically.
type Registry struct {
	providers map[string]Provider
	order     []string
}

// NewRegistry creates a new provider registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
	}
}

// Register adds a provider to the registry.
func (r *Registry) Register(name string, provider Provider) {
	if _, ok := r.providers[name]; !ok {
		r.order = append(r.order, name)
	}
	r.providers[name] = provider
}

// Get retrieves a provider by name.
func (r *Registry) Get(name string) (Provider, bool) {
	p, ok := r.providers[name]
	return p, ok
}

// All returns all registered providers in registration order.
func (r *Registry) All() []Provider {
	out := make([]Provider, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.providers[name])
	}
	return out
}

// Names returns all provider names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// HealthAll checks health of all providers.
func (r *Registry) HealthAll(ctx context.Context) map[string]HealthStatus {
	health := make(map[string]HealthStatus)
	for _, name := range r.order {
		health[name] = r.providers[name].Health(ctx)
	}
	return health
}

// Close closes all providers.
func (r *Registry) Close() error {
	for _, provider := range r.providers {
		provider.Close()
	}
	return nil
}
