package datasource

import (
	"context"
	"strconv"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/hitter-splits/internal/logger"
	"github.com/yourusername/hitter-splits/internal/metrics"
)

const boxscoreCacheName = "boxscore"

// CachedStatsProvider wraps a StatsProvider with an in-memory boxscore cache.
// Teammates share games, so most boxscores are requested once per run.
type CachedStatsProvider struct {
	StatsProvider
	boxscores *cache.Cache
	ttl       time.Duration
	logger    *logrus.Entry
}

// NewCachedStatsProvider creates a new cached provider
func NewCachedStatsProvider(provider StatsProvider, ttl time.Duration, log *logrus.Logger) *CachedStatsProvider {
	if log == nil {
		log = logger.Discard()
	}
	return &CachedStatsProvider{
		StatsProvider: provider,
		boxscores:     cache.New(ttl, ttl*2),
		ttl:           ttl,
		logger:        log.WithField("component", "boxscore_cache"),
	}
}

// FetchBoxscore returns a cached boxscore or fetches and caches it.
// Failed lookups are not cached.
func (c *CachedStatsProvider) FetchBoxscore(ctx context.Context, gameID int64) (*Boxscore, error) {
	key := strconv.FormatInt(gameID, 10)

	if cached, found := c.boxscores.Get(key); found {
		if box, ok := cached.(*Boxscore); ok {
			metrics.RecordCacheHit(boxscoreCacheName)
			return box, nil
		}
	}

	metrics.RecordCacheMiss(boxscoreCacheName)
	c.logger.WithField("game_id", gameID).Debug("Cache miss, fetching boxscore")

	box, err := c.StatsProvider.FetchBoxscore(ctx, gameID)
	if err != nil {
		return nil, err
	}

	c.boxscores.Set(key, box, c.ttl)
	return box, nil
}

// ItemCount returns the number of cached boxscores
func (c *CachedStatsProvider) ItemCount() int {
	return c.boxscores.ItemCount()
}

// Flush drops every cached boxscore
func (c *CachedStatsProvider) Flush() {
	c.boxscores.Flush()
}
