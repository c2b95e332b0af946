package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"osrs-toolkit/pkg/llm"
	"osrs-toolkit/pkg/market"

	"gopkg.in/yaml.v3"
)

// Config holds the complete application configuration
type Config struct {
	Feeds     FeedsConfig      `yaml:"feeds"`
	Market    MarketConfig     `yaml:"market"`
	Discord   DiscordConfig    `yaml:"discord"`
	LLM       LLMConfig        `yaml:"llm"`
	Logging   LoggingConfig    `yaml:"logging"`
	Jobs      []JobConfig      `yaml:"jobs"`
	Schedules []ScheduleConfig `yaml:"schedules,omitempty"`
}

// FeedsConfig holds upstream feed configuration
type FeedsConfig struct {
	UserAgent       string `yaml:"user_agent" env:"GE_USER_AGENT"`
	EquipmentURL    string `yaml:"equipment_url"`
	HiscoresBaseURL string `yaml:"hiscores_base_url,omitempty"`
}

// MarketConfig exposes the analyzer constants. Zero values fall back to
// the standard defaults, so an empty section behaves like live tuning.
type MarketConfig struct {
	StalenessSeconds     int     `yaml:"staleness_seconds,omitempty"`
	TaxCapGP             int     `yaml:"tax_cap_gp,omitempty"`
	MaxSpreadMultiple    int     `yaml:"max_spread_multiple,omitempty"`
	MinROIPercent        float64 `yaml:"min_roi_percent,omitempty"`
	RiskLimitLow         int     `yaml:"risk_limit_low,omitempty"`
	RiskLimitMedium      int     `yaml:"risk_limit_medium,omitempty"`
	NatureRuneItemID     int     `yaml:"nature_rune_item_id,omitempty"`
	NatureRuneFallbackGP int     `yaml:"nature_rune_fallback_gp,omitempty"`
	TrendThresholdPct    float64 `yaml:"trend_threshold_pct,omitempty"`
}

// DiscordConfig holds Discord bot configuration
type DiscordConfig struct {
	Token     string `yaml:"token" env:"DISCORD_TOKEN"`
	ChannelID string `yaml:"channel_id" env:"DISCORD_CHANNEL_ID"`
	GuildID   string `yaml:"guild_id,omitempty" env:"DISCORD_GUILD_ID"`
}

// LLMConfig holds optional commentary model configuration
type LLMConfig struct {
	Enabled bool   `yaml:"enabled"`
	BaseURL string `yaml:"base_url" env:"LLM_BASE_URL"`
	Model   string `yaml:"model" env:"LLM_MODEL"`
	Timeout string `yaml:"timeout" env:"LLM_TIMEOUT"`
	NumCtx  int    `yaml:"num_ctx" env:"LLM_NUM_CTX"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

// JobConfig is a named analysis preset run on a schedule or on demand
type JobConfig struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Strategy    string `yaml:"strategy"`
	Risk        string `yaml:"risk,omitempty"`
	Membership  string `yaml:"membership,omitempty"`
	BudgetGP    int    `yaml:"budget_gp,omitempty"`
	ResultCount int    `yaml:"result_count,omitempty"`
	Commentary  bool   `yaml:"commentary,omitempty"`
	Enabled     bool   `yaml:"enabled"`
}

// ScheduleConfig defines when jobs run
type ScheduleConfig struct {
	JobName string `yaml:"job_name"`
	Cron    string `yaml:"cron"`
	Enabled bool   `yaml:"enabled"`
}

// LoadConfig loads configuration from file and environment for the bot,
// which needs a working Discord setup.
func LoadConfig(configPath string) (*Config, error) {
	config, err := loadShared(configPath)
	if err != nil {
		return nil, err
	}

	if config.Discord.Token == "" {
		return nil, fmt.Errorf("config validation failed: discord token is required (set DISCORD_TOKEN)")
	}
	if config.Discord.ChannelID == "" {
		return nil, fmt.Errorf("config validation failed: discord channel ID is required (set DISCORD_CHANNEL_ID)")
	}

	return config, nil
}

// LoadConfigForScan loads configuration for the one-shot scanner, which
// runs without Discord.
func LoadConfigForScan(configPath string) (*Config, error) {
	return loadShared(configPath)
}

func loadShared(configPath string) (*Config, error) {
	config := &Config{
		LLM: LLMConfig{
			BaseURL: "http://localhost:11434",
			Model:   "qwen3:14b",
			NumCtx:  8000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if configPath != "" {
		if err := loadYAMLFile(configPath, config); err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
			}
		}
	}

	loadEnvironmentVariables(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func loadYAMLFile(path string, config *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, config)
}

func loadEnvironmentVariables(config *Config) {
	if userAgent := os.Getenv("GE_USER_AGENT"); userAgent != "" {
		config.Feeds.UserAgent = userAgent
	}
	if token := os.Getenv("DISCORD_TOKEN"); token != "" {
		config.Discord.Token = token
	}
	if channelID := os.Getenv("DISCORD_CHANNEL_ID"); channelID != "" {
		config.Discord.ChannelID = channelID
	}
	if guildID := os.Getenv("DISCORD_GUILD_ID"); guildID != "" {
		config.Discord.GuildID = guildID
	}
	if baseURL := os.Getenv("LLM_BASE_URL"); baseURL != "" {
		config.LLM.BaseURL = baseURL
	}
	if model := os.Getenv("LLM_MODEL"); model != "" {
		config.LLM.Model = model
	}
	if timeout := os.Getenv("LLM_TIMEOUT"); timeout != "" {
		config.LLM.Timeout = timeout
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
}

func validateConfig(config *Config) error {
	if config.Feeds.UserAgent == "" {
		return fmt.Errorf("a user agent string must be configured (the price API requires one)")
	}
	for _, job := range config.Jobs {
		switch job.Strategy {
		case "flip", "alch":
		default:
			return fmt.Errorf("job %s: unknown strategy %q", job.Name, job.Strategy)
		}
	}
	return nil
}

// Tuning converts the market section into analyzer tuning, filling every
// unset field with its default.
func (m *MarketConfig) Tuning() market.Tuning {
	t := market.DefaultTuning()
	if m.StalenessSeconds > 0 {
		t.StalenessWindow = time.Duration(m.StalenessSeconds) * time.Second
	}
	if m.TaxCapGP > 0 {
		t.TaxCapGP = m.TaxCapGP
	}
	if m.MaxSpreadMultiple > 0 {
		t.MaxSpreadMultiple = m.MaxSpreadMultiple
	}
	if m.MinROIPercent > 0 {
		t.MinROIPercent = m.MinROIPercent
	}
	if m.RiskLimitLow > 0 {
		t.RiskLimitLow = m.RiskLimitLow
	}
	if m.RiskLimitMedium > 0 {
		t.RiskLimitMedium = m.RiskLimitMedium
	}
	if m.NatureRuneItemID > 0 {
		t.NatureRuneItemID = m.NatureRuneItemID
	}
	if m.NatureRuneFallbackGP > 0 {
		t.NatureRuneFallbackGP = m.NatureRuneFallbackGP
	}
	if m.TrendThresholdPct > 0 {
		t.TrendThresholdPct = m.TrendThresholdPct
	}
	return t
}

// Settings converts a job preset into analyzer settings
func (j *JobConfig) Settings() market.Settings {
	settings := market.Settings{
		BudgetGP:    j.BudgetGP,
		Strategy:    market.Strategy(j.Strategy),
		Risk:        market.RiskHigh,
		Membership:  market.MembershipAll,
		ResultCount: j.ResultCount,
	}
	switch j.Risk {
	case "low":
		settings.Risk = market.RiskLow
	case "medium":
		settings.Risk = market.RiskMedium
	}
	if j.Membership == "f2p" {
		settings.Membership = market.MembershipF2P
	}
	if settings.ResultCount == 0 {
		settings.ResultCount = 10
	}
	return settings
}

// GetTimeout parses the LLM timeout string and returns a duration
func (c *LLMConfig) GetTimeout() time.Duration {
	if c.Timeout == "" {
		return 5 * time.Minute
	}
	duration, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 5 * time.Minute
	}
	return duration
}

// ModelConfig builds the effective model configuration for commentary
func (c *LLMConfig) ModelConfig() llm.ModelConfig {
	cfg := llm.DefaultModelConfig(c.Model)
	if c.NumCtx > 0 {
		cfg.Options.NumCtx = c.NumCtx
	}
	return cfg
}

// GetJobByName returns a job configuration by name, or nil if not found
func (c *Config) GetJobByName(name string) *JobConfig {
	for i := range c.Jobs {
		if c.Jobs[i].Name == name {
			return &c.Jobs[i]
		}
	}
	return nil
}

// EnabledJobs returns the enabled job presets
func (c *Config) EnabledJobs() []JobConfig {
	var out []JobConfig
	for _, job := range c.Jobs {
		if job.Enabled {
			out = append(out, job)
		}
	}
	return out
}
