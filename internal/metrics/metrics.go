// Package metrics holds the Prometheus collectors shared across cinetrack.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinetrack_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	StatsCalculations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinetrack_stats_calculations_total",
			Help: "Yearly statistics calculations by outcome",
		},
		[]string{"outcome"}, // "success", "error"
	)

	StatsCalculationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cinetrack_stats_calculation_duration_seconds",
			Help:    "Time spent computing one yearly statistics row",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	MetadataRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinetrack_metadata_requests_total",
			Help: "Requests sent to the metadata API by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cinetrack_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinetrack_cache_hits_total",
			Help: "Redis cache hits by namespace",
		},
		[]string{"namespace"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinetrack_cache_misses_total",
			Help: "Redis cache misses by namespace",
		},
		[]string{"namespace"},
	)

	FeedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cinetrack_feed_websocket_clients",
			Help: "Connected live feed websocket clients",
		},
	)

	TVUpdateChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinetrack_tv_update_checks_total",
			Help: "TV show update checks by result",
		},
		[]string{"result"}, // "unchanged", "new_episodes", "first_seen", "error"
	)
)

// ObserveStats records one statistics run.
func ObserveStats(start time.Time, err error) {
	StatsCalculationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		StatsCalculations.WithLabelValues("error").Inc()
		return
	}
	StatsCalculations.WithLabelValues("success").Inc()
}

// GinMiddleware records request latency labelled by the matched route template.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the default registry for /metrics.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
