// Package config provides configuration management for the hitter splits application.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App         AppConfig         `mapstructure:"app" validate:"required"`
	Provider    ProviderConfig    `mapstructure:"provider" validate:"required"`
	Job         JobConfig         `mapstructure:"job" validate:"required"`
	Checkpoint  CheckpointConfig  `mapstructure:"checkpoint" validate:"required"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Metrics     MetricsConfig     `mapstructure:"metrics" validate:"required"`
	StatsServer StatsServerConfig `mapstructure:"stats_server" validate:"required"`
	Secrets     SecretsConfig     `mapstructure:"secrets"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// ProviderConfig represents the remote statistics provider configuration
type ProviderConfig struct {
	Name                          string  `mapstructure:"name" validate:"required,oneof=mlb_stats_api"`
	BaseURL                       string  `mapstructure:"base_url" validate:"required,url"`
	APIKey                        string  `mapstructure:"api_key"`
	TimeoutSeconds                int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	MaxRetries                    int     `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	RetryWaitMinMs                int     `mapstructure:"retry_wait_min_ms" validate:"required,gt=0"`
	RetryWaitMaxMs                int     `mapstructure:"retry_wait_max_ms" validate:"required,gt=0"`
	RateLimit                     float64 `mapstructure:"rate_limit" validate:"required,gt=0"`
	CircuitBreakerMax             int     `mapstructure:"circuit_breaker_max" validate:"required,gt=0"`
	CircuitBreakerCooldownSeconds int     `mapstructure:"circuit_breaker_cooldown_seconds" validate:"gte=0"`
	BoxscoreTimeoutSeconds        int     `mapstructure:"boxscore_timeout_seconds" validate:"required,gt=0"`
	BoxscoreCacheTTLMinutes       int     `mapstructure:"boxscore_cache_ttl_minutes" validate:"required,gt=0"`
	TeamIDs                       []int64 `mapstructure:"team_ids" validate:"omitempty,dive,gt=0"`
	Season                        int     `mapstructure:"season" validate:"omitempty,gte=1876,lte=2100"`
}

// JobConfig represents the splits job configuration
type JobConfig struct {
	Windows          []int  `mapstructure:"windows" validate:"required,min=1,dive,gt=0,lte=366"`
	ProgressInterval int    `mapstructure:"progress_interval" validate:"required,gt=0"`
	Schedule         string `mapstructure:"schedule" validate:"required"`
	RunOnStart       bool   `mapstructure:"run_on_start"`
}

// CheckpointConfig represents checkpoint storage configuration
type CheckpointConfig struct {
	Backend    string `mapstructure:"backend" validate:"required,backend"`
	OutputDir  string `mapstructure:"output_dir" validate:"required"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name               string `mapstructure:"name"`
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"omitempty,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"omitempty,gt=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// StatsServerConfig represents the caching stats server configuration
type StatsServerConfig struct {
	Port                int `mapstructure:"port" validate:"required,min=1,max=65535"`
	TeamsTTLHours       int `mapstructure:"teams_ttl_hours" validate:"required,gt=0"`
	TeamStatsTTLHours   int `mapstructure:"team_stats_ttl_hours" validate:"required,gt=0"`
	RosterTTLHours      int `mapstructure:"roster_ttl_hours" validate:"required,gt=0"`
	PlayerStatsTTLHours int `mapstructure:"player_stats_ttl_hours" validate:"required,gt=0"`
	CleanupMinutes      int `mapstructure:"cleanup_minutes" validate:"required,gt=0"`
}

// SecretsConfig represents the AWS Secrets Manager overlay configuration
type SecretsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Region     string `mapstructure:"region"`
	SecretName string `mapstructure:"secret_name"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// BoxscoreTimeout returns the per-lookup boxscore timeout
func (p ProviderConfig) BoxscoreTimeout() time.Duration {
	return time.Duration(p.BoxscoreTimeoutSeconds) * time.Second
}

// BoxscoreCacheTTL returns how long fetched boxscores are kept
func (p ProviderConfig) BoxscoreCacheTTL() time.Duration {
	return time.Duration(p.BoxscoreCacheTTLMinutes) * time.Minute
}
