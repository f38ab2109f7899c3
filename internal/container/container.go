// Package container provides dependency injection.
package container

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/costpilot/backend/internal/analysis"
	"github.com/costpilot/backend/internal/collector"
	"github.com/costpilot/backend/internal/config"
	"github.com/costpilot/backend/internal/engine"
	"github.com/costpilot/backend/internal/jobs"
	"github.com/costpilot/backend/internal/model"
	"github.com/costpilot/backend/internal/notification"
	"github.com/costpilot/backend/internal/pricing"
	"github.com/costpilot/backend/internal/provider"
	"github.com/costpilot/backend/internal/provider/aws"
	"github.com/costpilot/backend/internal/provider/azure"
	"github.com/costpilot/backend/internal/repository"
	"github.com/costpilot/backend/internal/sizing"
)

// jobTimeout bounds one scheduled analysis run end to end.
const jobTimeout = 30 * time.Minute

// Container holds all application dependencies.
type Container struct {
	cfg    *config.Config
	logger *slog.Logger

	db          *sql.DB
	pricingRepo repository.PricingRepository

	catalog          *pricing.Catalog
	advisor          *sizing.Advisor
	providerRegistry *provider.Registry
	collector        *collector.Collector
	engine           *engine.Engine
	notifService     *notification.Service
	analysisService  *analysis.Service
	scheduler        *jobs.Scheduler
}

// New creates a new dependency container.
func New(cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{
		cfg:    cfg,
		logger: logger,
	}

	// The pricing database is optional; without it the built-in catalog
	// plus the optional price file serve all lookups.
	if cfg.Database.Enabled {
		db, err := sql.Open("pgx", cfg.Database.DSN())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.Database.MaxLifetime)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}

		c.db = db
		c.pricingRepo = repository.NewPostgresPricingRepository(db)
		logger.Info("database connected", "host", cfg.Database.Host, "database", cfg.Database.Name)
	}

	catalog, err := c.buildCatalog()
	if err != nil {
		return nil, err
	}
	c.catalog = catalog
	logger.Info("pricing catalog loaded", "sizes", catalog.Len())

	c.advisor = sizing.DefaultAdvisor(cfg.Analysis.MinCPUUtilization)

	var webhookURLs []string
	if cfg.Notification.WebhookURLs != "" {
		webhookURLs = strings.Split(cfg.Notification.WebhookURLs, ",")
	}
	c.notifService = notification.NewService(notification.Config{
		SlackWebhookURL: cfg.Notification.SlackWebhookURL,
		WebhookURLs:     webhookURLs,
		MinSavings:      cfg.Notification.MinSavings,
	}, logger)

	c.providerRegistry = provider.NewRegistry()
	if cfg.AWS.Enabled {
		awsProvider, err := aws.NewProvider(cfg.AWS, logger)
		if err != nil {
			logger.Warn("failed to initialize AWS provider", "error", err)
		} else {
			c.providerRegistry.Register("aws", awsProvider)
			logger.Info("AWS provider registered", "regions", cfg.AWS.Regions)
		}
	}
	if cfg.Azure.Enabled {
		azureProvider, err := azure.NewProvider(cfg.Azure, logger)
		if err != nil {
			logger.Warn("failed to initialize Azure provider", "error", err)
		} else {
			c.providerRegistry.Register("azure", azureProvider)
			logger.Info("Azure provider registered", "auth", cfg.Azure.AuthMethod)
		}
	}
	if len(c.providerRegistry.Names()) == 0 {
		return nil, fmt.Errorf("no cloud provider could be initialized")
	}

	c.collector = collector.New(c.providerRegistry, collector.Config{
		LookbackDays:   cfg.Analysis.LookbackDays,
		MinUptimeHours: cfg.Analysis.MinUptimeHours,
		Regions: map[model.CloudProvider][]string{
			model.CloudProviderAWS:   cfg.AWS.Regions,
			model.CloudProviderAzure: cfg.Azure.Regions,
		},
	}, logger)

	c.engine = engine.New(engine.Config{
		IdleThreshold:          cfg.Analysis.IdleCPUUtilization,
		UnderutilizedThreshold: cfg.Analysis.MinCPUUtilization,
		HighConfidenceRatio:    cfg.Analysis.HighConfidenceRatio,
		MinGroupSize:           cfg.Reserved.MinGroupSize,
		LongTermMinCount:       cfg.Reserved.LongTermMinCount,
		OneYearDiscount:        cfg.Reserved.OneYearDiscount,
		ThreeYearDiscount:      cfg.Reserved.ThreeYearDiscount,
	}, c.catalog, c.advisor, logger)

	c.analysisService = analysis.NewService(c.collector, c.engine, c.notifService, logger)

	c.scheduler = jobs.NewScheduler(jobTimeout, logger)

	return c, nil
}

// buildCatalog layers the price sources: built-in defaults, then the
// optional JSON file, then the optional database table. Later layers win.
func (c *Container) buildCatalog() (*pricing.Catalog, error) {
	catalog := pricing.DefaultCatalog()

	if path := c.cfg.Pricing.FilePath; path != "" {
		overrides, err := pricing.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load price file: %w", err)
		}
		catalog = catalog.Merge(overrides)
		c.logger.Info("price file loaded", "path", path, "sizes", len(overrides))
	}

	if c.pricingRepo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		rates, err := c.pricingRepo.Rates(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load pricing table: %w", err)
		}
		catalog = catalog.Merge(rates)
		c.logger.Info("database price table loaded", "sizes", len(rates))
	}

	return catalog, nil
}

// Start registers and starts background jobs.
func (c *Container) Start(ctx context.Context) error {
	err := c.scheduler.Register("analysis", c.cfg.Jobs.AnalysisSchedule, func(ctx context.Context) error {
		_, err := c.analysisService.Run(ctx)
		return err
	})
	if err != nil {
		return err
	}

	c.scheduler.Start()
	return nil
}

// Stop gracefully stops all components.
func (c *Container) Stop(ctx context.Context) error {
	c.logger.Info("stopping container components")

	if c.scheduler != nil {
		c.scheduler.Stop()
	}
	if c.providerRegistry != nil {
		c.providerRegistry.Close()
	}
	if c.db != nil {
		c.db.Close()
	}

	return nil
}

// Accessors

func (c *Container) Config() *config.Config               { return c.cfg }
func (c *Container) Logger() *slog.Logger                 { return c.logger }
func (c *Container) DB() *sql.DB                          { return c.db }
func (c *Container) ProviderRegistry() *provider.Registry { return c.providerRegistry }
func (c *Container) Catalog() *pricing.Catalog            { return c.catalog }
func (c *Container) AnalysisService() *analysis.Service   { return c.analysisService }
func (c *Container) Scheduler() *jobs.Scheduler           { return c.scheduler }
