package http

import (
	"net/http"

	"leafline-site/pkg/security/csp"
)

// CSPConfig configures the CSP middleware.
type CSPConfig struct {
	Enabled    bool
	ReportOnly bool
	Policy     *csp.Builder
}

// CSP returns middleware that sets the Content-Security-Policy header (or its
// report-only variant) on every response. The header value is built once.
func CSP(cfg CSPConfig) func(http.Handler) http.Handler {
	value := ""
	if cfg.Enabled && cfg.Policy != nil {
		value = cfg.Policy.Build()
	}
	header := csp.HeaderName(cfg.ReportOnly)

	return func(next http.Handler) http.Handler {
		if value == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(header, value)
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	}
}
