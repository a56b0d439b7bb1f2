package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/joelyuhas/papertrader/market"
)

// Config is the complete runtime configuration. Everything is explicit and
// passed into constructors; there is no process-wide path table.
type Config struct {
	Account  AccountConfig       `json:"account" yaml:"account"`
	Source   market.SourceConfig `json:"source" yaml:"source"`
	Policy   PolicyConfig        `json:"policy" yaml:"policy"`
	Observer ObserverConfig      `json:"observer" yaml:"observer"`
}

// AccountConfig locates one account's storage.
type AccountConfig struct {
	Number string `json:"number" yaml:"number"`
	Dir    string `json:"dir" yaml:"dir"`
}

// PolicyConfig parameterizes the rise/fall trading policy.
type PolicyConfig struct {
	Ticker      string  `json:"ticker" yaml:"ticker"`
	RisePercent float64 `json:"rise_percent" yaml:"rise_percent"`
	FallPercent float64 `json:"fall_percent" yaml:"fall_percent"`
	Interval    string  `json:"interval" yaml:"interval"` // e.g. "5m"

	// MarketHoursOnly gates policy cycles to the regular session.
	MarketHoursOnly bool `json:"market_hours_only" yaml:"market_hours_only"`

	// ResetDailyExtremes re-seeds positions' daily high/low at each session
	// open. Historically the extremes were never reset; enable to get
	// per-session extremes.
	ResetDailyExtremes bool `json:"reset_daily_extremes" yaml:"reset_daily_extremes"`
}

// ParseInterval converts the polling interval to a duration.
func (p PolicyConfig) ParseInterval() (time.Duration, error) {
	if p.Interval == "" {
		return 5 * time.Minute, nil
	}
	return time.ParseDuration(p.Interval)
}

// ObserverConfig parameterizes the background sampler.
type ObserverConfig struct {
	Tickers  []string `json:"tickers" yaml:"tickers"`
	DBDir    string   `json:"db_dir" yaml:"db_dir"`
	Schedule string   `json:"schedule" yaml:"schedule"` // cron spec, e.g. "@every 5m"
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes the configuration as YAML (or JSON for .json paths).
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".json") {
		data, err = json.MarshalIndent(c, "", "  ")
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Account.Number == "" {
		return fmt.Errorf("account.number is required")
	}
	if c.Account.Dir == "" {
		return fmt.Errorf("account.dir is required")
	}
	switch c.Source.Type {
	case "direct":
	case "observer":
		if c.Source.DBDir == "" {
			return fmt.Errorf("source.db_dir required for observer source")
		}
	case "replay":
		if c.Source.ReplayFile == "" {
			return fmt.Errorf("source.replay_file required for replay source")
		}
	default:
		return fmt.Errorf("source.type must be 'direct', 'observer' or 'replay'")
	}
	if c.Policy.Ticker == "" {
		return fmt.Errorf("policy.ticker is required")
	}
	if c.Policy.RisePercent <= 0 {
		return fmt.Errorf("policy.rise_percent must be positive")
	}
	if c.Policy.FallPercent <= 0 {
		return fmt.Errorf("policy.fall_percent must be positive")
	}
	d, err := c.Policy.ParseInterval()
	if err != nil {
		return fmt.Errorf("policy.interval: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("policy.interval must be positive, got %s", d)
	}
	return nil
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			Number: "1",
			Dir:    "./accounts/1",
		},
		Source: market.SourceConfig{
			Type:  "observer",
			DBDir: "./prices",
		},
		Policy: PolicyConfig{
			Ticker:          "AAPL",
			RisePercent:     2,
			FallPercent:     2,
			Interval:        "5m",
			MarketHoursOnly: true,
		},
		Observer: ObserverConfig{
			Tickers:  []string{"AAPL"},
			DBDir:    "./prices",
			Schedule: "@every 5m",
		},
	}
}
