// Package http holds the site's HTTP plumbing: health probes, the metrics
// endpoint and the middleware shared by every route. Route handlers live in
// the posts and form subpackages.
package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"leafline-site/internal/resilience/circuitbreaker"

	"github.com/sony/gobreaker"
)

// HealthResponse represents the JSON response for health check endpoints.
type HealthResponse struct {
	Status    string                 `json:"status"`    // "healthy" or "degraded"
	Timestamp string                 `json:"timestamp"` // ISO 8601 format
	Checks    map[string]CheckStatus `json:"checks"`
	Version   string                 `json:"version"`
}

// CheckStatus represents the status of a single health check.
type CheckStatus struct {
	Status  string         `json:"status"` // "healthy", "degraded" or "unhealthy"
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// CSPHealthInfo contains health information for the CSP middleware.
type CSPHealthInfo struct {
	Enabled    bool `json:"enabled"`
	ReportOnly bool `json:"report_only"`
}

// HealthHandler reports the state of the outbound dependencies.
// The site keeps serving while a dependency is down (the posts list degrades
// to empty, forms answer with a generic failure), so a failing check makes
// the response "degraded" rather than 503.
type HealthHandler struct {
	Version string

	// Breakers guarding the feed and email provider clients.
	Breakers []*circuitbreaker.CircuitBreaker

	// MailMissing lists absent email provider settings; empty when configured.
	MailMissing []string

	CSPEnabled    bool
	CSPReportOnly bool
}

// ServeHTTP writes the health report.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]CheckStatus)
	degraded := false

	for _, cb := range h.Breakers {
		check := checkBreaker(cb)
		checks["circuit_breaker:"+cb.Name()] = check
		if check.Status != "healthy" {
			degraded = true
		}
	}

	mailCheck := h.checkMail()
	checks["email_provider"] = mailCheck
	if mailCheck.Status != "healthy" {
		degraded = true
	}

	if h.CSPEnabled {
		checks["csp"] = CheckStatus{
			Status: "healthy",
			Details: map[string]any{"config": CSPHealthInfo{
				Enabled:    h.CSPEnabled,
				ReportOnly: h.CSPReportOnly,
			}},
		}
	}

	status := "healthy"
	if degraded {
		status = "degraded"
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("health: failed to encode response", slog.Any("error", err))
	}
}

func checkBreaker(cb *circuitbreaker.CircuitBreaker) CheckStatus {
	state := cb.State()
	details := map[string]any{
		"state":                state.String(),
		"consecutive_failures": cb.ConsecutiveFailures(),
	}

	switch state {
	case gobreaker.StateOpen:
		return CheckStatus{Status: "unhealthy", Message: "circuit open", Details: details}
	case gobreaker.StateHalfOpen:
		return CheckStatus{Status: "degraded", Message: "circuit half-open", Details: details}
	default:
		return CheckStatus{Status: "healthy", Details: details}
	}
}

// checkMail reports missing setting names only, never their values.
func (h *HealthHandler) checkMail() CheckStatus {
	if len(h.MailMissing) == 0 {
		return CheckStatus{Status: "healthy"}
	}
	return CheckStatus{
		Status:  "degraded",
		Message: "not configured",
		Details: map[string]any{"missing": h.MailMissing},
	}
}

// ReadyHandler handles readiness probe requests.
// The instance is not ready while any guarded dependency has an open circuit.
type ReadyHandler struct {
	Breakers []*circuitbreaker.CircuitBreaker
}

// ServeHTTP returns 200 OK if ready, or 503 Service Unavailable naming the
// first open circuit.
func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	for _, cb := range h.Breakers {
		if cb.IsOpen() {
			http.Error(w, "circuit open: "+cb.Name(), http.StatusServiceUnavailable)
			return
		}
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ready")); err != nil {
		slog.Error("ready: failed to write response", slog.Any("error", err))
	}
}

// LiveHandler handles liveness probe requests.
type LiveHandler struct{}

// ServeHTTP always returns 200 OK while the process can respond.
func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("alive")); err != nil {
		slog.Error("alive: failed to write response", slog.Any("error", err))
	}
}
