package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"mercator-hq/jimmybridge/pkg/config"
	"mercator-hq/jimmybridge/pkg/telemetry/logging"
	"mercator-hq/jimmybridge/pkg/telemetry/tracing"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func newTestTracer(t *testing.T) (*tracing.Tracer, *tracetest.InMemoryExporter) {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tracer, err := tracing.NewWithExporter(&config.TracingConfig{
		Enabled:     true,
		Sampler:     tracing.SamplerAlways,
		ServiceName: "test",
	}, "test", exporter)
	if err != nil {
		t.Fatalf("failed to create tracer: %v", err)
	}
	t.Cleanup(func() { _ = tracer.Shutdown(context.Background()) })
	return tracer, exporter
}

func TestTracingMiddleware(t *testing.T) {
	tracer, exporter := newTestTracer(t)

	var handlerTraceID string
	r := chi.NewRouter()
	r.Use(RequestIDMiddleware)
	r.Use(TracingMiddleware(tracer))
	r.Get("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		handlerTraceID = tracing.TraceID(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/models", nil))

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	span := spans[0]

	if span.Name != "GET /v1/models" {
		t.Errorf("expected %q, got %q", "GET /v1/models", span.Name)
	}
	if span.SpanKind != trace.SpanKindServer {
		t.Errorf("expected %v, got %v", trace.SpanKindServer, span.SpanKind)
	}
	traceID := span.SpanContext.TraceID().String()
	if got := rr.Header().Get(tracing.TraceIDHeader); got != traceID {
		t.Errorf("expected %q, got %q", traceID, got)
	}
	if handlerTraceID != traceID {
		t.Errorf("expected handler to see trace %q, got %q", traceID, handlerTraceID)
	}

	var requestID string
	for _, kv := range span.Attributes {
		if kv.Key == tracing.AttrRequestID {
			requestID = kv.Value.AsString()
		}
	}
	if requestID == "" || requestID != rr.Header().Get(RequestIDHeader) {
		t.Errorf("expected request ID %q on span, got %q", rr.Header().Get(RequestIDHeader), requestID)
	}

	exporter.Reset()
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))
	if spans := exporter.GetSpans(); len(spans) != 1 || spans[0].Status.Code != codes.Error {
		t.Errorf("expected an error span for a 502, got %+v", spans)
	}
}

func TestTracingMiddleware_ContinuesTrace(t *testing.T) {
	tracer, exporter := newTestTracer(t)

	handler := TracingMiddleware(tracer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if got := spans[0].SpanContext.TraceID().String(); got != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("expected %q, got %q", "4bf92f3577b34da6a3ce929d0e0e4736", got)
	}
	if got := spans[0].Parent.SpanID().String(); got != "00f067aa0ba902b7" {
		t.Errorf("expected %q, got %q", "00f067aa0ba902b7", got)
	}
	if spans[0].Name != "POST unmatched" {
		t.Errorf("expected %q, got %q", "POST unmatched", spans[0].Name)
	}
}

func TestTracingMiddleware_Disabled(t *testing.T) {
	for _, tracer := range []*tracing.Tracer{nil, tracing.Disabled()} {
		called := false
		handler := TracingMiddleware(tracer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			if logging.GetRequestID(r.Context()) != "" {
				t.Error("expected untouched context")
			}
		}))

		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		if !called {
			t.Error("expected handler to be called")
		}
		if rr.Header().Get(tracing.TraceIDHeader) != "" {
			t.Error("expected no trace header when tracing is disabled")
		}
	}
}
