package collector

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/costpilot/backend/internal/model"
	"github.com/costpilot/backend/internal/provider"
	"github.com/costpilot/backend/internal/provider/fake"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixtureVM(id, scope, region string, state model.PowerState) model.ComputeResource {
	return model.ComputeResource{
		ID:         id,
		Name:       id,
		Provider:   model.CloudProviderAzure,
		OwnerScope: scope,
		Region:     region,
		Size:       "Standard_D2s_v3",
		PowerState: state,
	}
}

func TestCollectBuildsSnapshot(t *testing.T) {
	prov := &fake.Provider{
		Resources: []model.ComputeResource{
			fixtureVM("vm-1", "sub-1", "eastus", model.PowerStateRunning),
			fixtureVM("vm-2", "sub-1", "eastus", model.PowerStateDeallocated),
			fixtureVM("vm-3", "sub-2", "westus", model.PowerStateRunning),
		},
		CPU: map[string]float64{"vm-1": 3.5, "vm-2": 0.0, "vm-3": 60.0},
	}
	registry := provider.NewRegistry()
	registry.Register(prov.Name(), prov)

	c := New(registry, Config{LookbackDays: 30, MinUptimeHours: 168}, discard())
	snap, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	if len(snap.Resources) != 3 {
		t.Errorf("expected 3 resources, got %d", len(snap.Resources))
	}
	// Only running resources are sampled.
	if len(snap.Utilization) != 2 {
		t.Errorf("expected 2 samples, got %d", len(snap.Utilization))
	}
	if _, ok := snap.Sample("vm-2"); ok {
		t.Error("deallocated resource should not be sampled")
	}
	sample, ok := snap.Sample("vm-1")
	if !ok || sample.AvgCPU != 3.5 || sample.WindowDays != 30 {
		t.Errorf("unexpected sample for vm-1: %+v ok=%v", sample, ok)
	}
}

func TestCollectSkipsFailedScope(t *testing.T) {
	prov := &fake.Provider{
		ScopeList: []string{"sub-bad", "sub-good"},
		Resources: []model.ComputeResource{
			fixtureVM("vm-1", "sub-good", "eastus", model.PowerStateRunning),
		},
		CPU:      map[string]float64{"vm-1": 10.0},
		ScopeErr: map[string]error{"sub-bad": errors.New("403 forbidden")},
	}
	registry := provider.NewRegistry()
	registry.Register(prov.Name(), prov)

	c := New(registry, Config{LookbackDays: 30}, discard())
	snap, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	if len(snap.Resources) != 1 {
		t.Errorf("expected 1 resource from healthy scope, got %d", len(snap.Resources))
	}
	if _, ok := snap.ScopeErrors["sub-bad"]; !ok {
		t.Error("expected failed scope recorded in ScopeErrors")
	}
}

func TestCollectMetricsFailureOnlyDropsSample(t *testing.T) {
	prov := &fake.Provider{
		Resources: []model.ComputeResource{
			fixtureVM("vm-1", "sub-1", "eastus", model.PowerStateRunning),
			fixtureVM("vm-2", "sub-1", "eastus", model.PowerStateRunning),
		},
		CPU:       map[string]float64{"vm-1": 2.0, "vm-2": 2.0},
		MetricErr: map[string]error{"vm-2": errors.New("throttled")},
	}
	registry := provider.NewRegistry()
	registry.Register(prov.Name(), prov)

	c := New(registry, Config{LookbackDays: 30}, discard())
	snap, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	if len(snap.Resources) != 2 {
		t.Errorf("expected both resources in inventory, got %d", len(snap.Resources))
	}
	if _, ok := snap.Sample("vm-2"); ok {
		t.Error("resource with failed metrics should have no sample")
	}
	if _, ok := snap.Sample("vm-1"); !ok {
		t.Error("healthy resource should keep its sample")
	}
}

func TestCollectExcludesFreshResourcesFromSampling(t *testing.T) {
	fresh := fixtureVM("vm-new", "sub-1", "eastus", model.PowerStateRunning)
	fresh.LaunchTime = time.Now().Add(-2 * time.Hour)

	prov := &fake.Provider{
		Resources: []model.ComputeResource{fresh},
		CPU:       map[string]float64{"vm-new": 0.1},
	}
	registry := provider.NewRegistry()
	registry.Register(prov.Name(), prov)

	c := New(registry, Config{LookbackDays: 30, MinUptimeHours: 168}, discard())
	snap, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	if len(snap.Resources) != 1 {
		t.Errorf("fresh resource should stay in inventory, got %d resources", len(snap.Resources))
	}
	if _, ok := snap.Sample("vm-new"); ok {
		t.Error("fresh resource should not be sampled")
	}
}

func TestCollectRegionIncludeList(t *testing.T) {
	prov := &fake.Provider{
		Resources: []model.ComputeResource{
			fixtureVM("vm-east", "sub-1", "eastus", model.PowerStateRunning),
			fixtureVM("vm-west", "sub-1", "westus", model.PowerStateRunning),
		},
		CPU: map[string]float64{"vm-east": 5.0, "vm-west": 5.0},
	}
	registry := provider.NewRegistry()
	registry.Register(prov.Name(), prov)

	c := New(registry, Config{
		LookbackDays: 30,
		Regions: map[model.CloudProvider][]string{
			model.CloudProviderAzure: {"eastus"},
		},
	}, discard())
	snap, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	if len(snap.Resources) != 1 || snap.Resources[0].ID != "vm-east" {
		t.Errorf("expected only eastus resource, got %+v", snap.Resources)
	}
}

func TestCollectPreservesInventoryOrder(t *testing.T) {
	prov := &fake.Provider{
		ScopeList: []string{"sub-1", "sub-2"},
		Resources: []model.ComputeResource{
			fixtureVM("vm-a", "sub-1", "eastus", model.PowerStateRunning),
			fixtureVM("vm-b", "sub-1", "eastus", model.PowerStateRunning),
			fixtureVM("vm-c", "sub-2", "eastus", model.PowerStateRunning),
		},
		CPU: map[string]float64{},
	}
	registry := provider.NewRegistry()
	registry.Register(prov.Name(), prov)

	c := New(registry, Config{LookbackDays: 30}, discard())
	for i := 0; i < 5; i++ {
		snap, err := c.Collect(context.Background())
		if err != nil {
			t.Fatalf("Collect: %v", err)
		}
		got := make([]string, len(snap.Resources))
		for j, res := range snap.Resources {
			got[j] = res.ID
		}
		want := []string{"vm-a", "vm-b", "vm-c"}
		for j := range want {
			if got[j] != want[j] {
				t.Fatalf("run %d: inventory order %v, want %v", i, got, want)
			}
		}
	}
}

func TestCollectFailsWhenAllScopesError(t *testing.T) {
	prov := &fake.Provider{
		ScopeList: []string{"sub-1", "sub-2"},
		ScopeErr: map[string]error{
			"sub-1": errors.New("401 unauthorized"),
			"sub-2": errors.New("403 forbidden"),
		},
	}
	registry := provider.NewRegistry()
	registry.Register(prov.Name(), prov)

	c := New(registry, Config{LookbackDays: 30}, discard())
	if _, err := c.Collect(context.Background()); err == nil {
		t.Fatal("expected error when every scope fails")
	}
}
