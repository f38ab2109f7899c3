// Package azure implements the Azure provider over the ARM compute, monitor
// and cost management APIs.
package azure

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/monitor/azquery"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v5"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/costmanagement/armcostmanagement"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armsubscriptions"

	"github.com/costpilot/backend/internal/config"
	"github.com/costpilot/backend/internal/model"
	"github.com/costpilot/backend/internal/provider"
)

// Provider implements provider.Provider for Azure.
type Provider struct {
	name            string
	cred            azcore.TokenCredential
	subscriptionIDs []string
	metrics         *azquery.MetricsClient
	costs           *armcostmanagement.QueryClient
	subscriptions   *armsubscriptions.Client
	logger          *slog.Logger
}

// NewProvider creates an Azure provider from service configuration. The
// "cli" auth method uses the default credential chain (CLI login, managed
// identity, environment); "service_principal" uses an explicit client secret.
func NewProvider(cfg config.AzureConfig, logger *slog.Logger) (*Provider, error) {
	var cred azcore.TokenCredential
	var err error
	switch cfg.AuthMethod {
	case "service_principal":
		cred, err = azidentity.NewClientSecretCredential(cfg.TenantID, cfg.ClientID, cfg.ClientSecret, nil)
	default:
		cred, err = azidentity.NewDefaultAzureCredential(nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}

	metrics, err := azquery.NewMetricsClient(cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics client: %w", err)
	}
	costs, err := armcostmanagement.NewQueryClient(cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cost query client: %w", err)
	}
	subscriptions, err := armsubscriptions.NewClient(cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create subscriptions client: %w", err)
	}

	return &Provider{
		name:            "azure",
		cred:            cred,
		subscriptionIDs: cfg.SubscriptionIDs,
		metrics:         metrics,
		costs:           costs,
		subscriptions:   subscriptions,
		logger:          logger,
	}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return p.name
}

// Type returns the provider type.
func (p *Provider) Type() model.CloudProvider {
	return model.CloudProviderAzure
}

// Scopes returns the configured subscription IDs, or discovers every
// subscription visible to the credential when none are configured.
func (p *Provider) Scopes(ctx context.Context) ([]string, error) {
	if len(p.subscriptionIDs) > 0 {
		return p.subscriptionIDs, nil
	}

	var ids []string
	pager := p.subscriptions.NewListPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list subscriptions: %w", err)
		}
		for _, sub := range page.Value {
			if sub.SubscriptionID != nil {
				ids = append(ids, *sub.SubscriptionID)
			}
		}
	}
	return ids, nil
}

// ListResources returns every virtual machine in one subscription, with
// power state resolved from the inline instance view.
func (p *Provider) ListResources(ctx context.Context, ownerScope string) ([]model.ComputeResource, error) {
	client, err := armcompute.NewVirtualMachinesClient(ownerScope, p.cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create compute client: %w", err)
	}

	var resources []model.ComputeResource
	pager := client.NewListAllPager(&armcompute.VirtualMachinesClientListAllOptions{
		StatusOnly: to.Ptr("true"),
	})
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list virtual machines: %w", err)
		}
		for _, vm := range page.Value {
			resources = append(resources, p.toResource(vm, ownerScope))
		}
	}

	p.logger.Debug("listed virtual machines",
		"subscription", ownerScope, "count", len(resources))
	return resources, nil
}

func (p *Provider) toResource(vm *armcompute.VirtualMachine, ownerScope string) model.ComputeResource {
	res := model.ComputeResource{
		ID:         deref(vm.ID),
		Name:       deref(vm.Name),
		Provider:   model.CloudProviderAzure,
		OwnerScope: ownerScope,
		Region:     deref(vm.Location),
		PowerState: model.PowerStateUnknown,
	}
	res.ResourceGroup = extractResourceGroup(res.ID)

	if len(vm.Tags) > 0 {
		res.Tags = make(model.Tags, len(vm.Tags))
		for k, v := range vm.Tags {
			res.Tags[k] = deref(v)
		}
	}

	if props := vm.Properties; props != nil {
		if props.HardwareProfile != nil && props.HardwareProfile.VMSize != nil {
			res.Size = string(*props.HardwareProfile.VMSize)
		}
		if props.StorageProfile != nil && props.StorageProfile.OSDisk != nil &&
			props.StorageProfile.OSDisk.OSType != nil {
			res.OSType = string(*props.StorageProfile.OSDisk.OSType)
		}
		if props.TimeCreated != nil {
			res.LaunchTime = *props.TimeCreated
		}
		if props.InstanceView != nil {
			res.PowerState = powerState(props.InstanceView.Statuses)
		}
	}
	return res
}

// powerState resolves the domain power state from instance view status
// codes of the form "PowerState/running".
func powerState(statuses []*armcompute.InstanceViewStatus) model.PowerState {
	for _, status := range statuses {
		code := deref(status.Code)
		if !strings.HasPrefix(code, "PowerState/") {
			continue
		}
		switch strings.TrimPrefix(code, "PowerState/") {
		case "running", "starting":
			return model.PowerStateRunning
		case "stopped", "stopping":
			return model.PowerStateStopped
		case "deallocated", "deallocating":
			return model.PowerStateDeallocated
		}
	}
	return model.PowerStateUnknown
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// extractResourceGroup pulls the resource group name out of an ARM resource
// ID.
func extractResourceGroup(resourceID string) string {
	parts := strings.Split(resourceID, "/")
	for i, part := range parts {
		if strings.EqualFold(part, "resourceGroups") && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	return ""
}

// AverageCPUUtilization queries Azure Monitor's "Percentage CPU" metric for
// a VM and averages the daily datapoints over the window. ok is false when
// the platform has no datapoints for the resource.
func (p *Provider) AverageCPUUtilization(ctx context.Context, res model.ComputeResource, windowDays int) (float64, bool, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -windowDays)
	timespan := azquery.TimeInterval(fmt.Sprintf("%s/%s",
		start.Format(time.RFC3339), end.Format(time.RFC3339)))

	resp, err := p.metrics.QueryResource(ctx, res.ID, &azquery.MetricsClientQueryResourceOptions{
		MetricNames: to.Ptr("Percentage CPU"),
		Timespan:    to.Ptr(timespan),
		Interval:    to.Ptr("P1D"),
		Aggregation: []*azquery.AggregationType{to.Ptr(azquery.AggregationTypeAverage)},
	})
	if err != nil {
		return 0, false, fmt.Errorf("failed to query CPU metrics for %s: %w", res.Name, err)
	}

	var sum float64
	var count int
	for _, metric := range resp.Value {
		for _, series := range metric.TimeSeries {
			for _, point := range series.Data {
				if point.Average == nil {
					continue
				}
				sum += *point.Average
				count++
			}
		}
	}
	if count == 0 {
		return 0, false, nil
	}
	return sum / float64(count), true, nil
}

// CostSummary queries actual cost for one subscription over a period,
// grouped by service name.
func (p *Provider) CostSummary(ctx context.Context, ownerScope string, start, end time.Time) (*model.CostSummary, error) {
	scope := "/subscriptions/" + ownerScope
	resp, err := p.costs.Usage(ctx, scope, armcostmanagement.QueryDefinition{
		Type:      to.Ptr(armcostmanagement.ExportTypeActualCost),
		Timeframe: to.Ptr(armcostmanagement.TimeframeTypeCustom),
		TimePeriod: &armcostmanagement.QueryTimePeriod{
			From: to.Ptr(start),
			To:   to.Ptr(end),
		},
		Dataset: &armcostmanagement.QueryDataset{
			Granularity: to.Ptr(armcostmanagement.GranularityType("None")),
			Aggregation: map[string]*armcostmanagement.QueryAggregation{
				"totalCost": {
					Name:     to.Ptr("Cost"),
					Function: to.Ptr(armcostmanagement.FunctionTypeSum),
				},
			},
			Grouping: []*armcostmanagement.QueryGrouping{
				{
					Type: to.Ptr(armcostmanagement.QueryColumnTypeDimension),
					Name: to.Ptr("ServiceName"),
				},
			},
		},
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query costs: %w", err)
	}

	summary := &model.CostSummary{
		Provider:   model.CloudProviderAzure,
		OwnerScope: ownerScope,
		Start:      start,
		End:        end,
		Currency:   model.CurrencyUSD,
	}

	costIdx, serviceIdx := -1, -1
	for i, col := range resp.Properties.Columns {
		switch deref(col.Name) {
		case "Cost", "totalCost", "PreTaxCost":
			costIdx = i
		case "ServiceName":
			serviceIdx = i
		}
	}
	if costIdx < 0 {
		return summary, nil
	}

	for _, row := range resp.Properties.Rows {
		if costIdx >= len(row) {
			continue
		}
		amount, ok := row[costIdx].(float64)
		if !ok {
			continue
		}
		service := ""
		if serviceIdx >= 0 && serviceIdx < len(row) {
			service, _ = row[serviceIdx].(string)
		}
		summary.ByService = append(summary.ByService, model.ServiceCost{
			Service: service,
			Amount:  amount,
		})
		summary.Total += amount
	}
	sort.Slice(summary.ByService, func(i, j int) bool {
		return summary.ByService[i].Amount > summary.ByService[j].Amount
	})
	return summary, nil
}

// Health checks Azure connectivity by listing subscriptions.
func (p *Provider) Health(ctx context.Context) provider.HealthStatus {
	status := provider.HealthStatus{
		LastChecked: time.Now(),
	}

	pager := p.subscriptions.NewListPager(nil)
	if _, err := pager.NextPage(ctx); err != nil {
		status.Message = fmt.Sprintf("Azure health check failed: %v", err)
		return status
	}
	status.Healthy = true
	status.Message = "Azure provider healthy"
	return status
}

// Close cleans up provider resources.
func (p *Provider) Close() error {
	return nil
}
