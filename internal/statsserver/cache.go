package statsserver

import (
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/yourusername/hitter-splits/internal/config"
	"github.com/yourusername/hitter-splits/internal/metrics"
)

// Cache categories, each with its own TTL
const (
	CategoryTeams       = "teams"
	CategoryTeamStats   = "team_stats"
	CategoryRoster      = "roster"
	CategoryPlayerStats = "player_stats"
)

// TTLs holds the lifetime of cached responses per category
type TTLs struct {
	Teams       time.Duration
	TeamStats   time.Duration
	Roster      time.Duration
	PlayerStats time.Duration
}

// DefaultTTLs mirrors the configuration defaults
var DefaultTTLs = TTLs{
	Teams:       24 * time.Hour,
	TeamStats:   6 * time.Hour,
	Roster:      6 * time.Hour,
	PlayerStats: 12 * time.Hour,
}

// TTLsFromConfig converts configured hours to durations
func TTLsFromConfig(cfg config.StatsServerConfig) TTLs {
	return TTLs{
		Teams:       time.Duration(cfg.TeamsTTLHours) * time.Hour,
		TeamStats:   time.Duration(cfg.TeamStatsTTLHours) * time.Hour,
		Roster:      time.Duration(cfg.RosterTTLHours) * time.Hour,
		PlayerStats: time.Duration(cfg.PlayerStatsTTLHours) * time.Hour,
	}
}

func (t TTLs) forCategory(category string) time.Duration {
	switch category {
	case CategoryTeams:
		return t.Teams
	case CategoryTeamStats:
		return t.TeamStats
	case CategoryRoster:
		return t.Roster
	case CategoryPlayerStats:
		return t.PlayerStats
	default:
		return time.Hour
	}
}

// responseCache stores encoded responses keyed by category and request parameters
type responseCache struct {
	items *cache.Cache
	ttls  TTLs
}

func newResponseCache(ttls TTLs, cleanup time.Duration) *responseCache {
	if cleanup <= 0 {
		cleanup = 10 * time.Minute
	}
	return &responseCache{
		items: cache.New(cache.NoExpiration, cleanup),
		ttls:  ttls,
	}
}

func (c *responseCache) get(category, key string) (interface{}, bool) {
	v, ok := c.items.Get(category + ":" + key)
	if ok {
		metrics.RecordCacheHit(category)
	} else {
		metrics.RecordCacheMiss(category)
	}
	return v, ok
}

func (c *responseCache) set(category, key string, v interface{}) {
	c.items.Set(category+":"+key, v, c.ttls.forCategory(category))
	metrics.UpdateStatsServerCacheEntries(c.items.ItemCount())
}

// flush empties the cache and returns the remaining size
func (c *responseCache) flush() int {
	c.items.Flush()
	n := c.items.ItemCount()
	metrics.UpdateStatsServerCacheEntries(n)
	return n
}

func (c *responseCache) size() int {
	return c.items.ItemCount()
}
