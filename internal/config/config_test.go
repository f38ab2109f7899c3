package config

import (
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		AWS: AWSConfig{Enabled: true, Regions: []string{"us-east-1"}},
		Analysis: AnalysisConfig{
			LookbackDays:        30,
			MinCPUUtilization:   5.0,
			IdleCPUUtilization:  1.0,
			MinUptimeHours:      168,
			HighConfidenceRatio: 0.5,
		},
		Reserved: ReservedConfig{
			MinGroupSize:      2,
			LongTermMinCount:  6,
			OneYearDiscount:   0.35,
			ThreeYearDiscount: 0.60,
		},
	}
}

func TestValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no provider enabled", func(c *Config) { c.AWS.Enabled = false }},
		{"unsupported azure auth", func(c *Config) {
			c.Azure.Enabled = true
			c.Azure.AuthMethod = "managed_identity"
		}},
		{"service principal missing secret", func(c *Config) {
			c.Azure.Enabled = true
			c.Azure.AuthMethod = AzureAuthServicePrincipal
			c.Azure.TenantID = "t"
			c.Azure.ClientID = "c"
		}},
		{"db enabled without password", func(c *Config) { c.Database.Enabled = true }},
		{"zero lookback", func(c *Config) { c.Analysis.LookbackDays = 0 }},
		{"negative threshold", func(c *Config) { c.Analysis.MinCPUUtilization = -1 }},
		{"threshold above 100", func(c *Config) { c.Analysis.IdleCPUUtilization = 150 }},
		{"confidence ratio above 1", func(c *Config) { c.Analysis.HighConfidenceRatio = 2 }},
		{"group of one", func(c *Config) { c.Reserved.MinGroupSize = 1 }},
		{"discount of 100 percent", func(c *Config) { c.Reserved.OneYearDiscount = 1.0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error, got nil")
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AWS_ENABLED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Analysis.LookbackDays != 30 {
		t.Errorf("LookbackDays = %d, want 30", cfg.Analysis.LookbackDays)
	}
	if cfg.Analysis.MinCPUUtilization != 5.0 {
		t.Errorf("MinCPUUtilization = %g, want 5.0", cfg.Analysis.MinCPUUtilization)
	}
	if cfg.Analysis.IdleCPUUtilization != 1.0 {
		t.Errorf("IdleCPUUtilization = %g, want 1.0", cfg.Analysis.IdleCPUUtilization)
	}
	if cfg.Analysis.MinUptimeHours != 168 {
		t.Errorf("MinUptimeHours = %d, want 168", cfg.Analysis.MinUptimeHours)
	}
	if cfg.Reserved.OneYearDiscount != 0.35 || cfg.Reserved.ThreeYearDiscount != 0.60 {
		t.Errorf("reserved discounts = %g/%g, want 0.35/0.60",
			cfg.Reserved.OneYearDiscount, cfg.Reserved.ThreeYearDiscount)
	}
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("ReadTimeout = %v, want 30s", cfg.Server.ReadTimeout)
	}
}

func TestGetEnvList(t *testing.T) {
	t.Setenv("TEST_LIST", "eastus, westus ,,northeurope")

	got := getEnvList("TEST_LIST", nil)
	want := []string{"eastus", "westus", "northeurope"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
