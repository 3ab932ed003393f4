// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "book_discovery_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "book_discovery_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	SuggestionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "book_discovery_suggestions_total",
			Help: "Suggestion requests by mood and outcome",
		},
		[]string{"mood", "outcome"}, // outcome: ok, invalid, error
	)

	SuggestionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "book_discovery_suggestion_duration_seconds",
			Help:    "Time to select, score and persist recommendations",
			Buckets: prometheus.DefBuckets,
		},
	)

	SuggestionCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "book_discovery_suggestion_candidates",
			Help:    "Number of candidate books scored per suggestion",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "book_discovery_cache_hits_total",
			Help: "Redis cache hits by cache name",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "book_discovery_cache_misses_total",
			Help: "Redis cache misses by cache name",
		},
		[]string{"cache"},
	)

	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "book_discovery_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
	)

	CatalogImported = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "book_discovery_catalog_imported_total",
			Help: "Catalog records upserted by imports",
		},
		[]string{"kind"}, // genre, author, book
	)
)

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordSuggestion records the outcome of a suggestion call.
func RecordSuggestion(mood, outcome string, candidates int, duration time.Duration) {
	SuggestionsTotal.WithLabelValues(mood, outcome).Inc()
	SuggestionDuration.Observe(duration.Seconds())
	if outcome == "ok" {
		SuggestionCandidates.Observe(float64(candidates))
	}
}

func RecordCacheHit(cache string) {
	CacheHits.WithLabelValues(cache).Inc()
}

func RecordCacheMiss(cache string) {
	CacheMisses.WithLabelValues(cache).Inc()
}

func RecordRateLimited() {
	RateLimited.Inc()
}

// RecordImport adds an import's upsert counts.
func RecordImport(genres, authors, books int) {
	CatalogImported.WithLabelValues("genre").Add(float64(genres))
	CatalogImported.WithLabelValues("author").Add(float64(authors))
	CatalogImported.WithLabelValues("book").Add(float64(books))
}
