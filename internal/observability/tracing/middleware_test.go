package tracing

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"leafline-site/internal/handler/http/requestid"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// installExporter routes spans to an in-memory exporter for one test.
func installExporter(t *testing.T) (*tracetest.InMemoryExporter, *sdktrace.TracerProvider) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(sdktrace.NewTracerProvider()) })
	return exporter, tp
}

func attrValue(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, a := range attrs {
		if string(a.Key) == key {
			return a.Value, true
		}
	}
	return attribute.Value{}, false
}

func onlySpan(t *testing.T, exporter *tracetest.InMemoryExporter, tp *sdktrace.TracerProvider) tracetest.SpanStub {
	t.Helper()
	_ = tp.ForceFlush(context.Background())
	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	return spans[0]
}

func TestMiddleware_SpanAttributes(t *testing.T) {
	exporter, tp := installExporter(t)

	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"posts":[]}`)
	}))

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	req = req.WithContext(requestid.WithRequestID(req.Context(), "req-1"))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	span := onlySpan(t, exporter, tp)
	if span.Name != "GET" {
		t.Errorf("unrouted span name = %q, want GET", span.Name)
	}
	if span.SpanKind.String() != "server" {
		t.Errorf("span kind = %s, want server", span.SpanKind)
	}

	want := map[string]any{
		"http.request.method":       "GET",
		"url.path":                  "/posts",
		"http.response.status_code": int64(200),
		"http.response.body.size":   int64(12),
		"request.id":                "req-1",
	}
	for key, expected := range want {
		v, ok := attrValue(span.Attributes, key)
		if !ok {
			t.Errorf("missing attribute %s", key)
			continue
		}
		if got := v.AsInterface(); got != expected {
			t.Errorf("%s = %v, want %v", key, got, expected)
		}
	}
	if _, ok := attrValue(span.Attributes, "http.route"); ok {
		t.Error("http.route set without a matched pattern")
	}
}

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	exporter, tp := installExporter(t)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /contact", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	Middleware(mux).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/contact", nil))

	span := onlySpan(t, exporter, tp)
	if span.Name != "POST /contact" {
		t.Errorf("expected span named after pattern, got %q", span.Name)
	}
	if v, ok := attrValue(span.Attributes, "http.route"); !ok || v.AsString() != "POST /contact" {
		t.Errorf("http.route = %v", v.Emit())
	}
}

func TestMiddleware_AddsTraceIDToResponse(t *testing.T) {
	installExporter(t)

	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/live", nil))

	if traceID := rr.Header().Get(TraceIDHeader); len(traceID) != 32 {
		t.Errorf("expected 32 character trace ID, got %q", traceID)
	}
}

func TestMiddleware_PropagatesTraceContext(t *testing.T) {
	exporter, tp := installExporter(t)
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).ServeHTTP(httptest.NewRecorder(), req)

	span := onlySpan(t, exporter, tp)
	if got := span.SpanContext.TraceID().String(); got != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("expected propagated trace ID, got %s", got)
	}
	if got := span.Parent.SpanID().String(); got != "00f067aa0ba902b7" {
		t.Errorf("parent span = %s", got)
	}
}

func TestMiddleware_ErrorStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   codes.Code
	}{
		{name: "5xx marks error", status: http.StatusBadGateway, want: codes.Error},
		{name: "4xx does not", status: http.StatusTooManyRequests, want: codes.Unset},
		{name: "2xx does not", status: http.StatusOK, want: codes.Unset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exporter, tp := installExporter(t)

			handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/newsletter", nil))

			span := onlySpan(t, exporter, tp)
			if span.Status.Code != tt.want {
				t.Errorf("status code = %v, want %v", span.Status.Code, tt.want)
			}
		})
	}
}
