// Package aws implements the AWS provider over EC2, CloudWatch and Cost
// Explorer.
package aws

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	cetypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/costpilot/backend/internal/config"
	"github.com/costpilot/backend/internal/model"
	"github.com/costpilot/backend/internal/provider"
)

// Provider implements provider.Provider for AWS.
type Provider struct {
	name         string
	cfg          aws.Config
	regions      []string
	accountIDs   []string
	sts          *sts.Client
	costExplorer *costexplorer.Client
	logger       *slog.Logger
}

// NewProvider creates an AWS provider from service configuration. Explicit
// static credentials take precedence over the default chain; an assume-role
// ARN layers on top of either.
func NewProvider(cfg config.AWSConfig, logger *slog.Logger) (*Provider, error) {
	ctx := context.Background()

	baseRegion := "us-east-1"
	if len(cfg.Regions) > 0 {
		baseRegion = cfg.Regions[0]
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(baseRegion),
	}
	if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	if cfg.AssumeRoleARN != "" {
		stsClient := sts.NewFromConfig(awsCfg)
		creds := stscreds.NewAssumeRoleProvider(stsClient, cfg.AssumeRoleARN, func(o *stscreds.AssumeRoleOptions) {
			if cfg.ExternalID != "" {
				o.ExternalID = aws.String(cfg.ExternalID)
			}
		})
		awsCfg.Credentials = aws.NewCredentialsCache(creds)
	}

	return &Provider{
		name:         "aws",
		cfg:          awsCfg,
		regions:      cfg.Regions,
		accountIDs:   cfg.AccountIDs,
		sts:          sts.NewFromConfig(awsCfg),
		costExplorer: costexplorer.NewFromConfig(awsCfg),
		logger:       logger,
	}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return p.name
}

// Type returns the provider type.
func (p *Provider) Type() model.CloudProvider {
	return model.CloudProviderAWS
}

// Scopes returns the configured account IDs, falling back to the caller
// identity's account when none are configured.
func (p *Provider) Scopes(ctx context.Context) ([]string, error) {
	if len(p.accountIDs) > 0 {
		return p.accountIDs, nil
	}
	out, err := p.sts.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve caller identity: %w", err)
	}
	return []string{aws.ToString(out.Account)}, nil
}

// ListResources returns every EC2 instance across the configured regions.
// Stopped instances are included; terminated instances are not.
func (p *Provider) ListResources(ctx context.Context, ownerScope string) ([]model.ComputeResource, error) {
	regions := p.regions
	if len(regions) == 0 {
		regions = []string{p.cfg.Region}
	}

	var resources []model.ComputeResource
	for _, region := range regions {
		client := ec2.NewFromConfig(p.cfg, func(o *ec2.Options) {
			o.Region = region
		})

		paginator := ec2.NewDescribeInstancesPaginator(client, &ec2.DescribeInstancesInput{})
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to describe instances in %s: %w", region, err)
			}
			for _, reservation := range page.Reservations {
				for _, inst := range reservation.Instances {
					res, ok := p.toResource(inst, ownerScope, region)
					if !ok {
						continue
					}
					resources = append(resources, res)
				}
			}
		}
	}

	p.logger.Debug("listed EC2 instances",
		"account", ownerScope, "count", len(resources))
	return resources, nil
}

func (p *Provider) toResource(inst ec2types.Instance, ownerScope, region string) (model.ComputeResource, bool) {
	state := powerState(inst.State)
	if state == "" {
		return model.ComputeResource{}, false
	}

	tags := make(model.Tags, len(inst.Tags))
	name := aws.ToString(inst.InstanceId)
	for _, tag := range inst.Tags {
		key, value := aws.ToString(tag.Key), aws.ToString(tag.Value)
		tags[key] = value
		if key == "Name" && value != "" {
			name = value
		}
	}

	res := model.ComputeResource{
		ID:         aws.ToString(inst.InstanceId),
		Name:       name,
		Provider:   model.CloudProviderAWS,
		OwnerScope: ownerScope,
		Region:     region,
		Size:       string(inst.InstanceType),
		OSType:     string(inst.Platform),
		Tags:       tags,
		PowerState: state,
	}
	if inst.LaunchTime != nil {
		res.LaunchTime = *inst.LaunchTime
	}
	return res, true
}

// powerState maps an EC2 instance state to the domain power state. The empty
// string means the instance should be dropped from inventory.
func powerState(state *ec2types.InstanceState) model.PowerState {
	if state == nil {
		return model.PowerStateUnknown
	}
	switch state.Name {
	case ec2types.InstanceStateNameRunning, ec2types.InstanceStateNamePending:
		return model.PowerStateRunning
	case ec2types.InstanceStateNameStopped, ec2types.InstanceStateNameStopping:
		return model.PowerStateStopped
	case ec2types.InstanceStateNameTerminated, ec2types.InstanceStateNameShuttingDown:
		return ""
	default:
		return model.PowerStateUnknown
	}
}

// AverageCPUUtilization reads CloudWatch's CPUUtilization metric for an
// instance and averages the daily datapoints over the window. ok is false
// when CloudWatch has no datapoints, e.g. for a freshly launched instance.
func (p *Provider) AverageCPUUtilization(ctx context.Context, res model.ComputeResource, windowDays int) (float64, bool, error) {
	client := cloudwatch.NewFromConfig(p.cfg, func(o *cloudwatch.Options) {
		o.Region = res.Region
	})

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -windowDays)

	out, err := client.GetMetricStatistics(ctx, &cloudwatch.GetMetricStatisticsInput{
		Namespace:  aws.String("AWS/EC2"),
		MetricName: aws.String("CPUUtilization"),
		Dimensions: []cwtypes.Dimension{
			{Name: aws.String("InstanceId"), Value: aws.String(res.ID)},
		},
		StartTime:  aws.Time(start),
		EndTime:    aws.Time(end),
		Period:     aws.Int32(86400),
		Statistics: []cwtypes.Statistic{cwtypes.StatisticAverage},
	})
	if err != nil {
		return 0, false, fmt.Errorf("failed to get CPU metrics for %s: %w", res.ID, err)
	}
	if len(out.Datapoints) == 0 {
		return 0, false, nil
	}

	var sum float64
	for _, dp := range out.Datapoints {
		sum += aws.ToFloat64(dp.Average)
	}
	return sum / float64(len(out.Datapoints)), true, nil
}

// CostSummary returns unblended spend for one account over a period, grouped
// by service.
func (p *Provider) CostSummary(ctx context.Context, ownerScope string, start, end time.Time) (*model.CostSummary, error) {
	out, err := p.costExplorer.GetCostAndUsage(ctx, &costexplorer.GetCostAndUsageInput{
		TimePeriod: &cetypes.DateInterval{
			Start: aws.String(start.Format("2006-01-02")),
			End:   aws.String(end.Format("2006-01-02")),
		},
		Granularity: cetypes.GranularityMonthly,
		Metrics:     []string{"UnblendedCost"},
		GroupBy: []cetypes.GroupDefinition{
			{Type: cetypes.GroupDefinitionTypeDimension, Key: aws.String("SERVICE")},
		},
		Filter: &cetypes.Expression{
			Dimensions: &cetypes.DimensionValues{
				Key:    cetypes.DimensionLinkedAccount,
				Values: []string{ownerScope},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get cost data: %w", err)
	}

	summary := &model.CostSummary{
		Provider:   model.CloudProviderAWS,
		OwnerScope: ownerScope,
		Start:      start,
		End:        end,
		Currency:   model.CurrencyUSD,
	}
	byService := make(map[string]float64)
	for _, result := range out.ResultsByTime {
		for _, group := range result.Groups {
			if len(group.Keys) == 0 {
				continue
			}
			metric, ok := group.Metrics["UnblendedCost"]
			if !ok || metric.Amount == nil {
				continue
			}
			amount, err := strconv.ParseFloat(aws.ToString(metric.Amount), 64)
			if err != nil {
				continue
			}
			byService[group.Keys[0]] += amount
			summary.Total += amount
		}
	}
	for service, amount := range byService {
		summary.ByService = append(summary.ByService, model.ServiceCost{
			Service: service,
			Amount:  amount,
		})
	}
	sort.Slice(summary.ByService, func(i, j int) bool {
		return summary.ByService[i].Amount > summary.ByService[j].Amount
	})
	return summary, nil
}

// Health checks AWS connectivity via the caller identity.
func (p *Provider) Health(ctx context.Context) provider.HealthStatus {
	status := provider.HealthStatus{
		LastChecked: time.Now(),
		Details:     map[string]any{"region": p.cfg.Region},
	}

	out, err := p.sts.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		status.Message = fmt.Sprintf("AWS health check failed: %v", err)
		return status
	}
	status.Healthy = true
	status.Message = "AWS provider healthy"
	status.Details["account"] = aws.ToString(out.Account)
	return status
}

// Close cleans up provider resources.
func (p *Provider) Close() error {
	return nil
}
