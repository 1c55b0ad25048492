package http

import (
	"net/http"
	"strconv"
	"time"

	"leafline-site/internal/handler/http/responsewriter"
	"leafline-site/internal/observability/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// unmatchedRoute labels requests no ServeMux pattern matched, so probing
// for random paths cannot grow the label set.
const unmatchedRoute = "unmatched"

// MetricsMiddleware records HTTP request metrics: in-flight gauge, duration,
// request and response sizes and status codes.
//
// The path label is the ServeMux pattern that matched (e.g. "POST /contact").
// The middleware must wrap the mux directly, or sit behind middleware that
// passes the request through unchanged, for the pattern to be visible.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		start := time.Now()
		wrapped := responsewriter.Wrap(w)

		next.ServeHTTP(wrapped, r)

		route := r.Pattern
		if route == "" {
			route = unmatchedRoute
		}

		requestSize := 0
		if r.ContentLength > 0 {
			requestSize = int(r.ContentLength)
		}

		metrics.RecordHTTPRequest(
			r.Method,
			route,
			strconv.Itoa(wrapped.StatusCode()),
			time.Since(start),
			requestSize,
			wrapped.BytesWritten(),
		)
	})
}

// MetricsHandler returns the Prometheus scrape handler.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
