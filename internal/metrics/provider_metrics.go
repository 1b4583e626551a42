package metrics

import "github.com/prometheus/client_golang/prometheus"

// Provider counter vectors
var (
	ProviderRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hitter_splits",
		Name:      "provider_requests_total",
		Help:      "Total number of stats provider requests by endpoint and outcome",
	}, []string{"endpoint", "outcome"})

	CacheLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hitter_splits",
		Name:      "cache_lookups_total",
		Help:      "Total number of cache lookups by cache and result",
	}, []string{"cache", "result"})
)

// Provider histogram vectors
var (
	ProviderRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hitter_splits",
		Name:      "provider_request_duration_seconds",
		Help:      "Latency of stats provider requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint"})
)

// RecordProviderRequest records a provider request.
// outcome should be one of: "success", "not_found", "error"
func RecordProviderRequest(endpoint, outcome string, durationSeconds float64) {
	ProviderRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
	ProviderRequestDuration.WithLabelValues(endpoint).Observe(durationSeconds)
}

// RecordCacheHit records a cache hit.
func RecordCacheHit(cache string) {
	CacheLookupsTotal.WithLabelValues(cache, "hit").Inc()
}

// RecordCacheMiss records a cache miss.
func RecordCacheMiss(cache string) {
	CacheLookupsTotal.WithLabelValues(cache, "miss").Inc()
}
