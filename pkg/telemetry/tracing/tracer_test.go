package tracing

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"mercator-hq/jimmybridge/pkg/config"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func testConfig(sampler string) *config.TracingConfig {
	return &config.TracingConfig{
		Enabled:     true,
		Sampler:     sampler,
		SampleRatio: 1.0,
		ServiceName: "jimmybridge-test",
	}
}

func newTestTracer(t *testing.T, sampler string) (*Tracer, *tracetest.InMemoryExporter) {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tracer, err := NewWithExporter(testConfig(sampler), "test", exporter)
	if err != nil {
		t.Fatalf("failed to create tracer: %v", err)
	}
	t.Cleanup(func() { _ = tracer.Shutdown(context.Background()) })
	return tracer, exporter
}

func TestNew_Disabled(t *testing.T) {
	tracer, err := New(&config.TracingConfig{Enabled: false}, "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tracer.Enabled() {
		t.Error("expected disabled tracer")
	}

	_, span := tracer.Start(context.Background(), "noop")
	if span.SpanContext().IsValid() {
		t.Error("expected noop span without a valid span context")
	}
	span.End()

	if err := tracer.Shutdown(context.Background()); err != nil {
		t.Errorf("expected no error shutting down a disabled tracer, got %v", err)
	}
}

func TestNew_NilConfig(t *testing.T) {
	if _, err := New(nil, "test"); err == nil {
		t.Error("expected error for nil config")
	}
}

func TestNewWithExporter_RecordsSpans(t *testing.T) {
	tracer, exporter := newTestTracer(t, SamplerAlways)

	ctx, parent := tracer.Start(context.Background(), "parent")
	_, child := StartSpan(ctx, "child")
	child.End()
	parent.End()

	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Name != "child" || spans[1].Name != "parent" {
		t.Errorf("expected child then parent, got %q then %q", spans[0].Name, spans[1].Name)
	}
	if spans[0].Parent.SpanID() != spans[1].SpanContext.SpanID() {
		t.Error("expected child to be parented on the request span")
	}
	if got := spans[1].Resource.String(); got == "" {
		t.Error("expected a service resource")
	}
}

func TestNewWithExporter_NeverSampler(t *testing.T) {
	tracer, exporter := newTestTracer(t, SamplerNever)

	_, span := tracer.Start(context.Background(), "dropped")
	span.End()

	if n := len(exporter.GetSpans()); n != 0 {
		t.Errorf("expected no exported spans, got %d", n)
	}
}

func TestNewWithExporter_InvalidSampler(t *testing.T) {
	cfg := testConfig("sometimes")
	if _, err := NewWithExporter(cfg, "test", tracetest.NewInMemoryExporter()); err == nil {
		t.Error("expected error for unknown sampler")
	}
}

func TestStartSpan_WithoutParent(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "orphan")
	defer span.End()

	if span.IsRecording() {
		t.Error("expected a noop span without a recording parent")
	}
	if TraceID(ctx) != "" {
		t.Errorf("expected empty trace ID, got %q", TraceID(ctx))
	}
}

func TestExtract_TraceParent(t *testing.T) {
	headers := http.Header{}
	headers.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")

	ctx := Extract(context.Background(), headers)
	if got := TraceID(ctx); got != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("expected %q, got %q", "4bf92f3577b34da6a3ce929d0e0e4736", got)
	}

	tracer, exporter := newTestTracer(t, SamplerNever)
	_, span := tracer.Start(ctx, "continued")
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected the sampled parent to override the never sampler, got %d spans", len(spans))
	}
	if spans[0].SpanContext.TraceID().String() != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("expected trace to continue, got %s", spans[0].SpanContext.TraceID())
	}
}

func TestSetStatus(t *testing.T) {
	tracer, exporter := newTestTracer(t, SamplerAlways)

	_, ok := tracer.Start(context.Background(), "ok")
	SetStatus(ok, nil)
	ok.End()

	_, failed := tracer.Start(context.Background(), "failed")
	SetStatus(failed, errors.New("upstream rejected request"))
	failed.End()

	spans := exporter.GetSpans()
	if spans[0].Status.Code != codes.Ok {
		t.Errorf("expected %v, got %v", codes.Ok, spans[0].Status.Code)
	}
	if spans[1].Status.Code != codes.Error {
		t.Errorf("expected %v, got %v", codes.Error, spans[1].Status.Code)
	}
	if len(spans[1].Events) != 1 || spans[1].Events[0].Name != "exception" {
		t.Errorf("expected an exception event, got %v", spans[1].Events)
	}
}

func TestSetResultAttributes(t *testing.T) {
	tracer, exporter := newTestTracer(t, SamplerAlways)

	_, span := tracer.Start(context.Background(), "chat.completion", trace.WithSpanKind(trace.SpanKindInternal))
	SetCompletionAttributes(span, "chatcmpl-abc", "llama3.1-8B", true, 2)
	SetResultAttributes(span, "ok", 3, 4, 11, true)
	span.End()

	attrs := map[string]any{}
	for _, kv := range exporter.GetSpans()[0].Attributes {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}

	checks := map[string]any{
		string(AttrCompletionID):    "chatcmpl-abc",
		string(AttrModel):           "llama3.1-8B",
		string(AttrStream):          true,
		string(AttrUpstreamOutcome): "ok",
		string(AttrFrames):          int64(3),
		string(AttrContentBytes):    int64(11),
		string(AttrTrailerStripped): true,
	}
	for key, want := range checks {
		if attrs[key] != want {
			t.Errorf("expected %s=%v, got %v", key, want, attrs[key])
		}
	}
}

func TestCreateSampler(t *testing.T) {
	tests := []struct {
		strategy string
		ratio    float64
		wantErr  bool
	}{
		{strategy: SamplerAlways},
		{strategy: SamplerNever},
		{strategy: SamplerRatio, ratio: 0.5},
		{strategy: SamplerRatio, ratio: 1.5, wantErr: true},
		{strategy: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.strategy, func(t *testing.T) {
			_, err := createSampler(tt.strategy, tt.ratio)
			if (err != nil) != tt.wantErr {
				t.Errorf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}
