// Package tracing provides OpenTelemetry distributed tracing for jimmybridge.
//
// # Overview
//
// When telemetry.tracing.enabled is set, every HTTP request gets a server
// span and each chat completion a child span describing the upstream
// exchange. Spans are exported over OTLP/gRPC to telemetry.tracing.endpoint.
// Log records written with a request context carry the trace_id and span_id
// of the active span.
//
// # Trace Context Propagation
//
// Incoming traceparent and tracestate headers (W3C Trace Context) are
// honored, so a caller's trace continues through the proxy. The trace ID is
// echoed in the X-Trace-ID response header.
//
// # Sampling
//
// New traces are sampled per telemetry.tracing.sampler:
//
//	telemetry:
//	  tracing:
//	    enabled: true
//	    endpoint: "otel-collector:4317"
//	    sampler: ratio
//	    sample_ratio: 0.1
//
// # Usage
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing, version)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
// Code running below the HTTP middleware starts child spans with StartSpan,
// which needs no Tracer:
//
//	ctx, span := tracing.StartSpan(ctx, "upstream.chat")
//	defer span.End()
package tracing
