// Package metrics provides centralized Prometheus metrics registry for the hitter splits job.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	JobRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hitter_splits",
		Name:      "job_runs_total",
		Help:      "Total number of splits job runs by status",
	}, []string{"status"})
	HittersTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hitter_splits",
		Name:      "hitters_total",
		Help:      "Total number of hitters handled by outcome",
	}, []string{"outcome"})
	GameLogFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "hitter_splits",
		Name:      "game_log_failures_total",
		Help:      "Total number of game log fetches that failed and were filled with zero games",
	})
	GamesDroppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "hitter_splits",
		Name:      "games_dropped_total",
		Help:      "Total number of raw game entries dropped during normalization",
	})
	HandTaggingTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hitter_splits",
		Name:      "hand_tagging_total",
		Help:      "Total number of pitcher hand lookups by result",
	}, []string{"result"})
	CircuitBreakerTripsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "hitter_splits",
		Name:      "circuit_breaker_trips_total",
		Help:      "Total number of provider circuit breaker trips",
	})
)

// Gauge metrics
var (
	CheckpointHitters = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "hitter_splits",
		Name:      "checkpoint_hitters",
		Help:      "Number of hitters in the most recently persisted checkpoint",
	})
	LastRunTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "hitter_splits",
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time of the last completed run",
	})
)

// Histogram metrics
var (
	JobRunDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "hitter_splits",
		Name:      "job_run_duration_seconds",
		Help:      "Duration of splits job runs in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600, 1800, 3600},
	})
	HitterProcessingDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "hitter_splits",
		Name:      "hitter_processing_duration_seconds",
		Help:      "Duration of processing a single hitter in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(JobRunsTotal)
		registry.MustRegister(HittersTotal)
		registry.MustRegister(GameLogFailuresTotal)
		registry.MustRegister(GamesDroppedTotal)
		registry.MustRegister(HandTaggingTotal)
		registry.MustRegister(CircuitBreakerTripsTotal)

		// Register gauge metrics
		registry.MustRegister(CheckpointHitters)
		registry.MustRegister(LastRunTimestamp)

		// Register histogram metrics
		registry.MustRegister(JobRunDuration)
		registry.MustRegister(HitterProcessingDuration)

		// Register provider metrics
		registry.MustRegister(ProviderRequestsTotal)
		registry.MustRegister(ProviderRequestDuration)
		registry.MustRegister(CacheLookupsTotal)

		// Register stats server metrics
		registry.MustRegister(StatsServerRequestsTotal)
		registry.MustRegister(StatsServerCacheEntries)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordJobRun records a finished run.
// status should be one of: "success", "failure", "cancelled"
func RecordJobRun(status string, durationSeconds float64) {
	JobRunsTotal.WithLabelValues(status).Inc()
	JobRunDuration.Observe(durationSeconds)
}

// RecordHitter records a hitter outcome ("processed" or "skipped").
func RecordHitter(outcome string) {
	HittersTotal.WithLabelValues(outcome).Inc()
}

// RecordHitterDuration records how long one hitter took.
func RecordHitterDuration(durationSeconds float64) {
	HitterProcessingDuration.Observe(durationSeconds)
}

// RecordGameLogFailure records a failed game log fetch.
func RecordGameLogFailure() {
	GameLogFailuresTotal.Inc()
}

// RecordGamesDropped records raw entries dropped by the normalizer.
func RecordGamesDropped(count int) {
	GamesDroppedTotal.Add(float64(count))
}

// RecordHandTagging records one pitcher hand lookup result ("tagged" or "unresolved").
func RecordHandTagging(result string) {
	HandTaggingTotal.WithLabelValues(result).Inc()
}

// RecordCircuitBreakerTrip records a circuit breaker trip event.
func RecordCircuitBreakerTrip() {
	CircuitBreakerTripsTotal.Inc()
}

// UpdateCheckpointHitters updates the persisted checkpoint size gauge.
func UpdateCheckpointHitters(count int) {
	CheckpointHitters.Set(float64(count))
}

// UpdateLastRunTimestamp updates the last completed run gauge.
func UpdateLastRunTimestamp(unixSeconds float64) {
	LastRunTimestamp.Set(unixSeconds)
}
