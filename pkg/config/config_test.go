package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"osrs-toolkit/pkg/market"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadConfigForScanDefaults(t *testing.T) {
	t.Setenv("GE_USER_AGENT", "test-agent - test@example.com")

	cfg, err := LoadConfigForScan("")
	if err != nil {
		t.Fatalf("LoadConfigForScan: %v", err)
	}

	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("logging defaults = %s/%s", cfg.Logging.Level, cfg.Logging.Format)
	}
	if cfg.LLM.BaseURL != "http://localhost:11434" {
		t.Errorf("llm base url = %s", cfg.LLM.BaseURL)
	}
	if cfg.Feeds.UserAgent != "test-agent - test@example.com" {
		t.Errorf("user agent = %s", cfg.Feeds.UserAgent)
	}
}

func TestLoadConfigRequiresUserAgent(t *testing.T) {
	t.Setenv("GE_USER_AGENT", "")

	if _, err := LoadConfigForScan(""); err == nil {
		t.Error("expected validation error without a user agent")
	}
}

func TestLoadConfigFromYAML(t *testing.T) {
	t.Setenv("GE_USER_AGENT", "")
	path := writeConfig(t, `
feeds:
  user_agent: "yaml-agent"
market:
  min_roi_percent: 2.5
jobs:
  - name: morning-flips
    strategy: flip
    risk: low
    budget_gp: 10000000
    enabled: true
  - name: alch-watch
    strategy: alch
    enabled: false
schedules:
  - job_name: morning-flips
    cron: "0 0 8 * * *"
    enabled: true
`)

	cfg, err := LoadConfigForScan(path)
	if err != nil {
		t.Fatalf("LoadConfigForScan: %v", err)
	}

	if cfg.Feeds.UserAgent != "yaml-agent" {
		t.Errorf("user agent = %s", cfg.Feeds.UserAgent)
	}
	if len(cfg.Jobs) != 2 || len(cfg.Schedules) != 1 {
		t.Fatalf("jobs = %d, schedules = %d", len(cfg.Jobs), len(cfg.Schedules))
	}
	if got := cfg.Market.Tuning().MinROIPercent; got != 2.5 {
		t.Errorf("min roi = %v", got)
	}

	enabled := cfg.EnabledJobs()
	if len(enabled) != 1 || enabled[0].Name != "morning-flips" {
		t.Errorf("enabled jobs = %v", enabled)
	}
}

func TestEnvironmentOverridesYAML(t *testing.T) {
	t.Setenv("GE_USER_AGENT", "env-agent")
	t.Setenv("LOG_LEVEL", "debug")
	path := writeConfig(t, `
feeds:
  user_agent: "yaml-agent"
logging:
  level: warn
`)

	cfg, err := LoadConfigForScan(path)
	if err != nil {
		t.Fatalf("LoadConfigForScan: %v", err)
	}
	if cfg.Feeds.UserAgent != "env-agent" {
		t.Errorf("user agent = %s, env should win", cfg.Feeds.UserAgent)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %s, env should win", cfg.Logging.Level)
	}
}

func TestLoadConfigRequiresDiscord(t *testing.T) {
	t.Setenv("GE_USER_AGENT", "test-agent")
	t.Setenv("DISCORD_TOKEN", "")
	t.Setenv("DISCORD_CHANNEL_ID", "")

	if _, err := LoadConfig(""); err == nil {
		t.Error("expected error without discord credentials")
	}

	t.Setenv("DISCORD_TOKEN", "token")
	if _, err := LoadConfig(""); err == nil {
		t.Error("expected error without a channel ID")
	}

	t.Setenv("DISCORD_CHANNEL_ID", "12345")
	if _, err := LoadConfig(""); err != nil {
		t.Errorf("LoadConfig: %v", err)
	}
}

func TestValidateRejectsUnknownStrategy(t *testing.T) {
	t.Setenv("GE_USER_AGENT", "test-agent")
	path := writeConfig(t, `
jobs:
  - name: broken
    strategy: arbitrage
    enabled: true
`)

	if _, err := LoadConfigForScan(path); err == nil {
		t.Error("expected validation error for unknown strategy")
	}
}

func TestMarketTuningDefaults(t *testing.T) {
	var m MarketConfig
	tuning := m.Tuning()

	def := market.DefaultTuning()
	if tuning != def {
		t.Errorf("empty section should produce defaults, got %+v", tuning)
	}

	m.StalenessSeconds = 600
	m.TaxCapGP = 1_000_000
	tuning = m.Tuning()
	if tuning.StalenessWindow != 10*time.Minute {
		t.Errorf("staleness = %v", tuning.StalenessWindow)
	}
	if tuning.TaxCapGP != 1_000_000 {
		t.Errorf("tax cap = %d", tuning.TaxCapGP)
	}
	if tuning.MinROIPercent != def.MinROIPercent {
		t.Errorf("unset fields should keep defaults, min roi = %v", tuning.MinROIPercent)
	}
}

func TestJobSettingsMapping(t *testing.T) {
	job := JobConfig{
		Name:       "f2p-flips",
		Strategy:   "flip",
		Risk:       "low",
		Membership: "f2p",
		BudgetGP:   5_000_000,
	}

	settings := job.Settings()
	if settings.Strategy != market.StrategyFlip {
		t.Errorf("strategy = %s", settings.Strategy)
	}
	if settings.Risk != market.RiskLow {
		t.Errorf("risk = %s", settings.Risk)
	}
	if settings.Membership != market.MembershipF2P {
		t.Errorf("membership = %s", settings.Membership)
	}
	if settings.ResultCount != 10 {
		t.Errorf("result count should default to 10, got %d", settings.ResultCount)
	}

	loose := JobConfig{Strategy: "alch"}
	settings = loose.Settings()
	if settings.Risk != market.RiskHigh {
		t.Errorf("unset risk should mean high, got %s", settings.Risk)
	}
	if settings.Membership != market.MembershipAll {
		t.Errorf("unset membership should mean all, got %s", settings.Membership)
	}
}

func TestGetJobByName(t *testing.T) {
	cfg := &Config{Jobs: []JobConfig{{Name: "a"}, {Name: "b"}}}

	if job := cfg.GetJobByName("b"); job == nil || job.Name != "b" {
		t.Errorf("got %v", job)
	}
	if job := cfg.GetJobByName("missing"); job != nil {
		t.Errorf("expected nil, got %v", job)
	}
}
