// Package config provides configuration management for the hitter splits application.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	envPrefix         = "HITTER_SPLITS"
	defaultConfigPath = "config/config.yaml"
)

// Load reads and parses the configuration from file and environment variables
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	// Read the configuration file
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()

	// Expand environment variables in the configuration (${VAR} syntax)
	expanded := os.ExpandEnv(string(data))
	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return unmarshal(v)
}

// LoadWithDefaults loads configuration with default values for optional fields
// A missing file is not an error: defaults and environment variables apply
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	v := newViper()

	// Read and expand the configuration file if it exists
	if data, err := os.ReadFile(configPath); err == nil {
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return unmarshal(v)
}

// ResolvePath returns the explicit path if set, then HITTER_SPLITS_CONFIG_PATH, then the default
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if envPath := os.Getenv(envPrefix + "_CONFIG_PATH"); envPath != "" {
		return envPath
	}
	return defaultConfigPath
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	// Set environment variable prefix
	v.SetEnvPrefix(envPrefix)

	// Enable automatic binding of environment variables
	v.AutomaticEnv()

	// Replace dots with underscores in environment variable names
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "hitter-splits")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("provider.name", "mlb_stats_api")
	v.SetDefault("provider.base_url", "https://statsapi.mlb.com/api/v1")
	v.SetDefault("provider.api_key", "")
	v.SetDefault("provider.timeout_seconds", 30)
	v.SetDefault("provider.max_retries", 3)
	v.SetDefault("provider.retry_wait_min_ms", 200)
	v.SetDefault("provider.retry_wait_max_ms", 5000)
	v.SetDefault("provider.rate_limit", 5.0)
	v.SetDefault("provider.circuit_breaker_max", 5)
	v.SetDefault("provider.circuit_breaker_cooldown_seconds", 30)
	v.SetDefault("provider.boxscore_timeout_seconds", 8)
	v.SetDefault("provider.boxscore_cache_ttl_minutes", 360)
	v.SetDefault("provider.season", 0)

	v.SetDefault("job.windows", []int{7, 14, 30})
	v.SetDefault("job.progress_interval", 10)
	v.SetDefault("job.schedule", "0 6 * * *")
	v.SetDefault("job.run_on_start", false)

	v.SetDefault("checkpoint.backend", "file")
	v.SetDefault("checkpoint.output_dir", "data")
	v.SetDefault("checkpoint.sqlite_path", "data/checkpoints.db")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "hitter_splits")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.max_idle_connections", 2)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("stats_server.port", 8000)
	v.SetDefault("stats_server.teams_ttl_hours", 24)
	v.SetDefault("stats_server.team_stats_ttl_hours", 6)
	v.SetDefault("stats_server.roster_ttl_hours", 6)
	v.SetDefault("stats_server.player_stats_ttl_hours", 12)
	v.SetDefault("stats_server.cleanup_minutes", 10)

	v.SetDefault("secrets.enabled", false)
	v.SetDefault("secrets.region", "")
	v.SetDefault("secrets.secret_name", "")
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}
