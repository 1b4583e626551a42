package datasource

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/hitter-splits/internal/config"
)

// SourceType represents the type of data source
type SourceType string

const (
	// MLBStatsAPISourceType is the public MLB Stats API
	MLBStatsAPISourceType SourceType = mlbStatsAPISourceName
)

// Factory creates StatsProvider implementations based on configuration
type Factory struct {
	logger *logrus.Logger
	config config.ProviderConfig
}

// NewFactory creates a new data source factory
func NewFactory(cfg config.ProviderConfig, logger *logrus.Logger) *Factory {
	return &Factory{
		logger: logger,
		config: cfg,
	}
}

// NewMLBStatsClient builds the configured MLB client with its own rate-limited HTTP client
func (f *Factory) NewMLBStatsClient() (*MLBStatsClient, error) {
	if SourceType(f.config.Name) != MLBStatsAPISourceType {
		return nil, fmt.Errorf("unknown data source: %s", f.config.Name)
	}
	httpClient := NewRateLimitedHTTPClient(HTTPClientConfigFromProvider(f.config), f.logger)
	return NewMLBStatsClient(httpClient, f.config.BaseURL, f.config.APIKey, f.logger), nil
}

// NewStatsProvider creates the configured provider wrapped with the boxscore cache
func (f *Factory) NewStatsProvider() (*CachedStatsProvider, error) {
	client, err := f.NewMLBStatsClient()
	if err != nil {
		return nil, fmt.Errorf("failed to create data source %s: %w", f.config.Name, err)
	}

	if f.logger != nil {
		f.logger.WithField("source", client.Name()).Info("Created data source")
	}
	return NewCachedStatsProvider(client, f.config.BoxscoreCacheTTL(), f.logger), nil
}

// ListAvailableSources returns a list of available source types
func (f *Factory) ListAvailableSources() []SourceType {
	return []SourceType{MLBStatsAPISourceType}
}
