package tracing

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope and service name of every span.
const TracerName = "leafline-site"

// GetTracer looks the tracer up on the global provider at call time, so a
// provider installed after package init is honoured.
func GetTracer() trace.Tracer {
	return otel.Tracer(TracerName)
}
