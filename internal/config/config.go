// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Azure authentication methods.
const (
	AzureAuthCLI              = "cli"
	AzureAuthServicePrincipal = "service_principal"
)

// Config holds all application configuration.
type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	AWS          AWSConfig
	Azure        AzureConfig
	Analysis     AnalysisConfig
	Reserved     ReservedConfig
	Pricing      PricingConfig
	Jobs         JobsConfig
	Logging      LoggingConfig
	Notification NotificationConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds the optional pricing catalog database settings.
// The service runs without a database using the built-in or file catalog.
type DatabaseConfig struct {
	Enabled      bool
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// AWSConfig holds AWS provider settings.
type AWSConfig struct {
	Enabled       bool
	Regions       []string // region include-list; first entry is the SDK home region
	AccountIDs    []string // owner scopes; empty means the caller's own account
	AccessKeyID   string
	SecretKey     string
	AssumeRoleARN string
	ExternalID    string
}

// AzureConfig holds Azure provider settings.
type AzureConfig struct {
	Enabled         bool
	AuthMethod      string // cli or service_principal
	TenantID        string
	ClientID        string
	ClientSecret    string
	SubscriptionIDs []string // owner scopes; empty means discover all visible
	Regions         []string // region include-list; empty means all
}

// AnalysisConfig holds utilization analysis thresholds.
type AnalysisConfig struct {
	// LookbackDays is the metrics averaging window, applied uniformly to
	// every resource in a run.
	LookbackDays int

	// MinCPUUtilization is the underutilization threshold in percent;
	// resources averaging below it are rightsizing candidates.
	MinCPUUtilization float64

	// IdleCPUUtilization is the idle threshold in percent; it is clamped
	// to MinCPUUtilization so the idle band is always a subset of the
	// underutilized band.
	IdleCPUUtilization float64

	// MinUptimeHours excludes freshly launched resources from
	// utilization analysis.
	MinUptimeHours int

	// HighConfidenceRatio scales a threshold down to its high-confidence
	// bound (utilization below threshold*ratio upgrades confidence).
	HighConfidenceRatio float64
}

// ReservedConfig holds reserved-capacity analysis settings.
type ReservedConfig struct {
	// MinGroupSize is the smallest (size, region) fleet worth a reserved
	// purchase recommendation.
	MinGroupSize int

	// LongTermMinCount is the fleet size at which the 3-year term (and
	// high confidence) is recommended instead of 1-year.
	LongTermMinCount int

	OneYearDiscount   float64
	ThreeYearDiscount float64
}

// PricingConfig holds pricing catalog settings.
type PricingConfig struct {
	// FilePath optionally points at a JSON price table that overrides the
	// built-in defaults.
	FilePath string
}

// JobsConfig holds background job settings.
type JobsConfig struct {
	AnalysisSchedule string
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string
	Format string
}

// NotificationConfig holds notification settings.
type NotificationConfig struct {
	SlackWebhookURL string
	WebhookURLs     string // comma-separated
	MinSavings      float64
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Enabled:      getEnvBool("DB_ENABLED", false),
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnvInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "costpilot"),
			Password:     getEnv("DB_PASSWORD", ""),
			Name:         getEnv("DB_NAME", "costpilot"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 2),
			MaxLifetime:  getEnvDuration("DB_MAX_LIFETIME", 5*time.Minute),
		},
		AWS: AWSConfig{
			Enabled:       getEnvBool("AWS_ENABLED", false),
			Regions:       getEnvList("AWS_REGIONS", []string{"us-east-1"}),
			AccountIDs:    getEnvList("AWS_ACCOUNT_IDS", nil),
			AccessKeyID:   getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretKey:     getEnv("AWS_SECRET_ACCESS_KEY", ""),
			AssumeRoleARN: getEnv("AWS_ASSUME_ROLE_ARN", ""),
			ExternalID:    getEnv("AWS_EXTERNAL_ID", ""),
		},
		Azure: AzureConfig{
			Enabled:         getEnvBool("AZURE_ENABLED", false),
			AuthMethod:      getEnv("AZURE_AUTH_METHOD", AzureAuthCLI),
			TenantID:        getEnv("AZURE_TENANT_ID", ""),
			ClientID:        getEnv("AZURE_CLIENT_ID", ""),
			ClientSecret:    getEnv("AZURE_CLIENT_SECRET", ""),
			SubscriptionIDs: getEnvList("AZURE_SUBSCRIPTION_IDS", nil),
			Regions:         getEnvList("AZURE_REGIONS", nil),
		},
		Analysis: AnalysisConfig{
			LookbackDays:        getEnvInt("LOOKBACK_DAYS", 30),
			MinCPUUtilization:   getEnvFloat("MIN_CPU_UTILIZATION", 5.0),
			IdleCPUUtilization:  getEnvFloat("IDLE_CPU_UTILIZATION", 1.0),
			MinUptimeHours:      getEnvInt("MIN_UPTIME_HOURS", 168),
			HighConfidenceRatio: getEnvFloat("HIGH_CONFIDENCE_RATIO", 0.5),
		},
		Reserved: ReservedConfig{
			MinGroupSize:      getEnvInt("RESERVED_MIN_GROUP_SIZE", 2),
			LongTermMinCount:  getEnvInt("RESERVED_LONG_TERM_MIN_COUNT", 6),
			OneYearDiscount:   getEnvFloat("RESERVED_ONE_YEAR_DISCOUNT", 0.35),
			ThreeYearDiscount: getEnvFloat("RESERVED_THREE_YEAR_DISCOUNT", 0.60),
		},
		Pricing: PricingConfig{
			FilePath: getEnv("PRICING_FILE", ""),
		},
		Jobs: JobsConfig{
			AnalysisSchedule: getEnv("JOB_ANALYSIS", "0 3 * * *"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Notification: NotificationConfig{
			SlackWebhookURL: getEnv("NOTIFICATION_SLACK_WEBHOOK", ""),
			WebhookURLs:     getEnv("NOTIFICATION_WEBHOOK_URLS", ""),
			MinSavings:      getEnvFloat("NOTIFICATION_MIN_SAVINGS", 0),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration. Validation failures are fatal at
// startup, before any analysis runs.
func (c *Config) Validate() error {
	if !c.AWS.Enabled && !c.Azure.Enabled {
		return fmt.Errorf("at least one cloud provider must be enabled (AWS_ENABLED or AZURE_ENABLED)")
	}
	if c.Azure.Enabled {
		switch c.Azure.AuthMethod {
		case AzureAuthCLI:
		case AzureAuthServicePrincipal:
			if c.Azure.TenantID == "" || c.Azure.ClientID == "" || c.Azure.ClientSecret == "" {
				return fmt.Errorf("azure service_principal auth requires AZURE_TENANT_ID, AZURE_CLIENT_ID and AZURE_CLIENT_SECRET")
			}
		default:
			return fmt.Errorf("unsupported azure auth method: %q", c.Azure.AuthMethod)
		}
	}
	if c.Database.Enabled && c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required when DB_ENABLED is set")
	}
	if c.Analysis.LookbackDays <= 0 {
		return fmt.Errorf("LOOKBACK_DAYS must be positive, got %d", c.Analysis.LookbackDays)
	}
	if c.Analysis.MinCPUUtilization <= 0 || c.Analysis.MinCPUUtilization > 100 {
		return fmt.Errorf("MIN_CPU_UTILIZATION must be in (0, 100], got %g", c.Analysis.MinCPUUtilization)
	}
	if c.Analysis.IdleCPUUtilization <= 0 || c.Analysis.IdleCPUUtilization > 100 {
		return fmt.Errorf("IDLE_CPU_UTILIZATION must be in (0, 100], got %g", c.Analysis.IdleCPUUtilization)
	}
	if c.Analysis.HighConfidenceRatio <= 0 || c.Analysis.HighConfidenceRatio > 1 {
		return fmt.Errorf("HIGH_CONFIDENCE_RATIO must be in (0, 1], got %g", c.Analysis.HighConfidenceRatio)
	}
	if c.Reserved.MinGroupSize < 2 {
		return fmt.Errorf("RESERVED_MIN_GROUP_SIZE must be at least 2, got %d", c.Reserved.MinGroupSize)
	}
	for name, d := range map[string]float64{
		"RESERVED_ONE_YEAR_DISCOUNT":   c.Reserved.OneYearDiscount,
		"RESERVED_THREE_YEAR_DISCOUNT": c.Reserved.ThreeYearDiscount,
	} {
		if d < 0 || d >= 1 {
			return fmt.Errorf("%s must be in [0, 1), got %g", name, d)
		}
	}
	return nil
}

// DSN returns the database connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// Helper functions

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
