// Package telemetry groups the observability packages of jimmybridge.
//
// # Components
//
//   - logging: slog setup with request-scoped attributes and secret redaction
//   - metrics: Prometheus collectors for requests, upstream calls and streams
//   - tracing: OpenTelemetry spans exported over OTLP/gRPC
//
// # Usage
//
//	logger, err := logging.New(logging.ConfigFrom(cfg.Telemetry.Logging))
//	if err != nil {
//		return err
//	}
//	slog.SetDefault(logger.Logger)
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing, version)
//	if err != nil {
//		return err
//	}
//	defer tracer.Shutdown(ctx)
//
// Request handlers log with the *Context slog functions so that request_id,
// trace_id and span_id are attached automatically.
package telemetry
