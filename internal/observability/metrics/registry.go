package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Request series. The path label is the matched ServeMux pattern.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration tracks request latency with buckets tuned for
	// page-render calls that may wait on the upstream feed.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_size_bytes",
			Help:    "HTTP request size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being served",
		},
	)
)

// Feed ingestion.
var (
	FeedFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_fetch_total",
			Help: "Total number of feed fetches by result",
		},
		[]string{"result"}, // result: success, transport, http_status, parse
	)

	FeedFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feed_fetch_duration_seconds",
			Help:    "Time taken to fetch and parse the feed",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8, 16},
		},
	)

	// FeedEntriesSkippedTotal counts items dropped for a missing title, link
	// or date.
	FeedEntriesSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_entries_skipped_total",
			Help: "Total number of feed entries skipped during normalization",
		},
		[]string{"reason"},
	)

	PostsServed = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "posts_served",
			Help:    "Number of post summaries returned per fetch",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		},
	)

	PostsCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "posts_cache_total",
			Help: "Total number of posts cache lookups",
		},
		[]string{"result"}, // result: hit, miss
	)
)

// Forms and the email provider.
var (
	FormSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "form_submissions_total",
			Help: "Total number of form submissions",
		},
		[]string{"form", "outcome"}, // outcome: success, bad_request, invalid, honeypot, failed
	)

	ProviderRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "email_provider_requests_total",
			Help: "Total number of email provider requests",
		},
		[]string{"operation", "result"},
	)

	ProviderRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "email_provider_request_duration_seconds",
			Help:    "Email provider request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 9),
		},
		[]string{"operation"},
	)
)

// RecordHTTPRequest records one served request. Zero sizes are not observed.
func RecordHTTPRequest(method, path, status string, duration time.Duration, requestSize, responseSize int) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())

	if requestSize > 0 {
		HTTPRequestSize.WithLabelValues(method, path).Observe(float64(requestSize))
	}
	if responseSize > 0 {
		HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}

// CircuitBreakerState reports the state of each circuit breaker
// (0 closed, 1 half-open, 2 open).
var CircuitBreakerState = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "circuit_breaker_state",
		Help: "Current circuit breaker state (0 closed, 1 half-open, 2 open)",
	},
	[]string{"name"},
)
