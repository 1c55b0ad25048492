// Package observability groups what the site emits about itself: structured
// logs (logging), Prometheus series served on /metrics (metrics) and
// OpenTelemetry spans whose trace IDs tie the two together (tracing).
package observability
