package model

import "time"

// PowerState represents the provisioning/power state of a compute resource.
type PowerState string

const (
	PowerStateRunning     PowerState = "running"
	PowerStateStopped     PowerState = "stopped"
	PowerStateDeallocated PowerState = "deallocated"
	PowerStateUnknown     PowerState = "unknown"
)

// IsRunning reports whether the resource is billed as running compute.
func (p PowerState) IsRunning() bool {
	return p == PowerStateRunning
}

// ComputeResource is a single provisioned instance as reported by an
// inventory provider. Resources are read-only inputs to the analysis; the
// engine never mutates them.
type ComputeResource struct {
	// ID is the provider-native resource identifier (ARN or Azure
	// resource ID). Unique within an owner scope.
	ID   string `json:"id"`
	Name string `json:"name"`

	Provider CloudProvider `json:"provider"`

	// OwnerScope is the billing boundary the resource belongs to: an AWS
	// account ID or an Azure subscription ID. All metrics lookups and
	// groupings are scoped by it.
	OwnerScope string `json:"owner_scope"`

	// ResourceGroup is the Azure resource group, or the account alias for
	// AWS. Reporting metadata only.
	ResourceGroup string `json:"resource_group,omitempty"`

	Region string `json:"region"`

	// Size is the provider SKU, e.g. "Standard_D2s_v3" or "m5.xlarge".
	Size string `json:"size"`

	OSType     string     `json:"os_type,omitempty"`
	Tags       Tags       `json:"tags,omitempty"`
	PowerState PowerState `json:"power_state"`

	// LaunchTime is used to exclude freshly launched resources from
	// utilization analysis. Zero when the provider does not report it.
	LaunchTime time.Time `json:"launch_time,omitempty"`
}

// UptimeAtLeast reports whether the resource has been provisioned for at
// least the given number of hours. Resources without a launch time are
// assumed old enough.
func (r ComputeResource) UptimeAtLeast(hours int, now time.Time) bool {
	if r.LaunchTime.IsZero() {
		return true
	}
	return now.Sub(r.LaunchTime) >= time.Duration(hours)*time.Hour
}

// UtilizationSample is the average CPU utilization of one resource over the
// configured lookback window, as a percentage in [0, 100]. Samples are
// produced by a metrics provider; the engine never sees raw time series.
type UtilizationSample struct {
	ResourceID string  `json:"resource_id"`
	AvgCPU     float64 `json:"avg_cpu"`
	WindowDays int     `json:"window_days"`
}

// Snapshot is the immutable input to one analysis run: the full resource
// inventory plus whatever utilization samples could be collected. A resource
// without an entry in Utilization has no sample, which is distinct from a
// sample of zero.
type Snapshot struct {
	TakenAt     time.Time                    `json:"taken_at"`
	Resources   []ComputeResource            `json:"resources"`
	Utilization map[string]UtilizationSample `json:"utilization"`

	// ScopeErrors records owner scopes that failed during collection and
	// were skipped. Informational; a partial snapshot is still analyzed.
	ScopeErrors map[string]string `json:"scope_errors,omitempty"`
}

// Sample returns the utilization sample for a resource, if one was collected.
func (s *Snapshot) Sample(resourceID string) (UtilizationSample, bool) {
	u, ok := s.Utilization[resourceID]
	return u, ok
}
