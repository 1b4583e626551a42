package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	StatsServerRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hitter_splits",
		Name:      "stats_server_requests_total",
		Help:      "Total number of stats server requests by route and cache result",
	}, []string{"route", "cache"})

	StatsServerCacheEntries = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "hitter_splits",
		Name:      "stats_server_cache_entries",
		Help:      "Number of entries held in the stats server cache",
	})
)

// RecordStatsServerRequest records a served request and whether it came from cache.
func RecordStatsServerRequest(route string, cached bool) {
	result := "miss"
	if cached {
		result = "hit"
	}
	StatsServerRequestsTotal.WithLabelValues(route, result).Inc()
}

// UpdateStatsServerCacheEntries updates the stats server cache size gauge.
func UpdateStatsServerCacheEntries(count int) {
	StatsServerCacheEntries.Set(float64(count))
}
