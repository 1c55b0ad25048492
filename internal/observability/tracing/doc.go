// Package tracing wires OpenTelemetry into the site backend.
//
// Install sets the process-wide provider and propagator. Middleware opens a
// server span per request; feed fetches and email provider calls open child
// spans through GetTracer, so one trace covers a form post from the handler
// down to the provider call.
package tracing
