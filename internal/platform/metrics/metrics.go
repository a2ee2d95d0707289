// Package metrics holds the Prometheus collectors shared by the poetry service.
//
// Collectors are registered on the default registry at init time and exposed
// through promhttp on /metrics by httpserver.SetupRouter.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "poetry_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "poetry_db_query_duration_seconds",
			Help:    "Duration of store queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poetry_db_query_errors_total",
			Help: "Total number of failed store queries",
		},
		[]string{"operation"},
	)

	// AIAttempts counts generateContent attempts by outcome ("success", "failure").
	AIAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poetry_ai_attempts_total",
			Help: "Total number of AI generation attempts",
		},
		[]string{"outcome"},
	)

	// Recommendations counts resolved recommendation requests by result kind
	// ("detail", "recommendation", "exhausted", "unavailable").
	Recommendations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poetry_recommendations_total",
			Help: "Total number of resolved recommendation requests",
		},
		[]string{"kind"},
	)

	RecommendationCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "poetry_recommendation_cache_hits_total",
			Help: "Total number of AI responses served from cache",
		},
	)

	RecommendationCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "poetry_recommendation_cache_misses_total",
			Help: "Total number of AI responses not found in cache",
		},
	)

	CommentTreeRoots = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "poetry_comment_tree_roots",
			Help:    "Number of top-level comments per built tree",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
		},
	)
)

// ObserveHTTP records one served request.
func ObserveHTTP(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// ObserveQuery records the latency of one store operation and counts it as failed when err != nil.
func ObserveQuery(operation string, start time.Time, err error) {
	DBQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation).Inc()
	}
}
