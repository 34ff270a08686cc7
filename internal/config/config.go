// Package config defines all configuration for the trading core. Config is
// sourced primarily from the environment (prefix OKX_) with an optional YAML
// file for local overrides, matching the spec's environment-sourced
// key/value surface.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level configuration.
type Config struct {
	Okx                   OkxConfig      `mapstructure:"okx"`
	Store                 StoreConfig    `mapstructure:"store"`
	Strategy              StrategyConfig `mapstructure:"strategy"`
	Logging               LoggingConfig  `mapstructure:"logging"`
	API                   APIConfig      `mapstructure:"api"`
	Instruments           []string       `mapstructure:"instruments"`
	InstrumentProfilePath string         `mapstructure:"instrument_profile_path"`
}

// OkxConfig holds venue credentials and connection parameters.
// HeartbeatInterval/HeartbeatTimeout are recognized in milliseconds, per
// spec section 6, and converted to time.Duration on load.
type OkxConfig struct {
	APIKey            string        `mapstructure:"api_key"`
	SecretKey         string        `mapstructure:"secret_key"`
	Passphrase        string        `mapstructure:"passphrase"`
	Demo              bool          `mapstructure:"demo"`
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
	HeartbeatTimeout  time.Duration `mapstructure:"heartbeat_timeout"`
}

// StoreConfig points at the persisted-history store.
// PgHost is a full Postgres connection string, not just a hostname, despite
// the spec's key name.
type StoreConfig struct {
	PgHost string `mapstructure:"pg_host"`
}

// StrategyConfig tunes the OFI-momentum signaler and its limit executor.
type StrategyConfig struct {
	WindowOfiMs     uint64  `mapstructure:"window_ofi_ms"`
	WindowEmaMs     uint64  `mapstructure:"window_ema_ms"`
	Theta           float64 `mapstructure:"theta"`
	Notional        float64 `mapstructure:"notional"`
	PriceOffset     float64 `mapstructure:"price_offset"`
	HoldingMs       uint64  `mapstructure:"holding_ms"`
	EventIntervalMs uint64  `mapstructure:"event_interval_ms"`
	OrderIDTag      uint32  `mapstructure:"order_id_tag"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// APIConfig controls the read-only HTTP monitoring surface.
type APIConfig struct {
	Enabled        bool     `mapstructure:"enabled"`
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads config primarily from the environment (prefix OKX_, "."
// replaced with "_"), with an optional YAML file at path contributing
// defaults for anything the environment leaves unset. path may be empty,
// in which case only the environment and built-in defaults apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("OKX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("okx.demo", false)
	v.SetDefault("okx.heartbeat_interval", 15*time.Second)
	v.SetDefault("okx.heartbeat_timeout", 10*time.Second)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("api.enabled", false)
	v.SetDefault("api.port", 8090)
	v.SetDefault("instrument_profile_path", "configs/instrument_profiles.yaml")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	// Heartbeat values given as bare numbers (YAML ints, env strings) are
	// milliseconds; the built-in defaults are already durations.
	for _, key := range []string{"okx.heartbeat_interval", "okx.heartbeat_timeout"} {
		switch raw := v.Get(key).(type) {
		case int:
			v.Set(key, time.Duration(raw)*time.Millisecond)
		case string:
			if ms, err := strconv.ParseUint(raw, 10, 64); err == nil {
				v.Set(key, time.Duration(ms)*time.Millisecond)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Sensitive fields get explicit env-var overrides, mirroring the
	// teacher's POLY_PRIVATE_KEY handling, in case AutomaticEnv's key
	// derivation from the nested mapstructure tags ever misses them.
	if key := os.Getenv("OKX_API_KEY"); key != "" {
		cfg.Okx.APIKey = key
	}
	if secret := os.Getenv("OKX_SECRET_KEY"); secret != "" {
		cfg.Okx.SecretKey = secret
	}
	if pass := os.Getenv("OKX_PASSPHRASE"); pass != "" {
		cfg.Okx.Passphrase = pass
	}
	if host := os.Getenv("OKX_PG_HOST"); host != "" {
		cfg.Store.PgHost = host
	}

	return &cfg, nil
}

// Validate checks all required fields. Configuration errors are fatal at
// startup per the spec's error handling policy.
func (c *Config) Validate() error {
	if c.Okx.APIKey == "" {
		return fmt.Errorf("okx.api_key is required (set OKX_API_KEY)")
	}
	if c.Okx.SecretKey == "" {
		return fmt.Errorf("okx.secret_key is required (set OKX_SECRET_KEY)")
	}
	if c.Okx.Passphrase == "" {
		return fmt.Errorf("okx.passphrase is required (set OKX_PASSPHRASE)")
	}
	if c.Okx.HeartbeatInterval <= 0 {
		return fmt.Errorf("okx.heartbeat_interval must be > 0")
	}
	if c.Okx.HeartbeatTimeout <= 0 {
		return fmt.Errorf("okx.heartbeat_timeout must be > 0")
	}
	if c.Store.PgHost == "" {
		return fmt.Errorf("store.pg_host is required (set OKX_PG_HOST)")
	}
	if len(c.Instruments) == 0 {
		return fmt.Errorf("instruments must list at least one instrument id")
	}
	if c.InstrumentProfilePath == "" {
		return fmt.Errorf("instrument_profile_path is required")
	}
	if c.Strategy.Notional <= 0 {
		return fmt.Errorf("strategy.notional must be > 0")
	}
	return nil
}
