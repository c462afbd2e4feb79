// Package config loads tradecore's configuration with viper: a YAML
// file with server/matching/commission/logging/metrics sections,
// overridable by environment variables and by explicit CLI flag
// overrides.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config is the full process configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Matching   MatchingConfig   `mapstructure:"matching"`
	Commission CommissionConfig `mapstructure:"commission"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// ServerConfig controls the transport's bind address.
type ServerConfig struct {
	Bind string `mapstructure:"bind"`
}

// MatchingConfig controls synthetic liquidity seeding.
type MatchingConfig struct {
	SpreadBps   float64 `mapstructure:"spread_bps"`
	DepthLevels int     `mapstructure:"depth_levels"`
	QtyPerLevel float64 `mapstructure:"qty_per_level"`
	AutoSeedBook bool   `mapstructure:"auto_seed_book"`
}

// CommissionConfig controls commission charged on fills.
type CommissionConfig struct {
	Rate float64 `mapstructure:"rate"`
	Min  float64 `mapstructure:"min"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// MetricsConfig controls the Prometheus metrics endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Bind    string `mapstructure:"bind"`
}

// Overrides carries CLI flag values that take precedence over the
// config file when set. A zero value means "not set on the CLI".
type Overrides struct {
	Bind           string
	LogLevel       string
	CommissionRate float64
	SpreadBps      float64
}

// Load reads configPath (or searches default locations if empty),
// applies defaults matching the original engine's out-of-the-box
// behavior, and layers overrides on top.
func Load(configPath string, overrides Overrides) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("tradecore")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/tradecore")
	}

	v.SetEnvPrefix("TRADECORE")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("config: reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshaling: %w", err)
	}

	applyOverrides(&cfg, overrides)

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.bind", ":5555")

	v.SetDefault("matching.spread_bps", 10)
	v.SetDefault("matching.depth_levels", 5)
	v.SetDefault("matching.qty_per_level", 1000)
	v.SetDefault("matching.auto_seed_book", true)

	v.SetDefault("commission.rate", 0.001)
	v.SetDefault("commission.min", 0)

	v.SetDefault("logging.level", "info")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.bind", ":9090")
}

func applyOverrides(cfg *Config, o Overrides) {
	if o.Bind != "" {
		cfg.Server.Bind = o.Bind
	}
	if o.LogLevel != "" {
		cfg.Logging.Level = o.LogLevel
	}
	if o.CommissionRate != 0 {
		cfg.Commission.Rate = o.CommissionRate
	}
	if o.SpreadBps != 0 {
		cfg.Matching.SpreadBps = o.SpreadBps
	}
}
