// Package metrics provides Prometheus metrics collection for jimmybridge.
//
// # Overview
//
// The Collector owns a Prometheus registry and exposes small recording
// methods for the three places where the proxy does interesting work: the
// HTTP layer, the upstream call and the SSE stream.
//
// # Metrics Categories
//
//   - Request Metrics: requests_total, request_duration_seconds
//   - Upstream Metrics: upstream_requests_total, upstream_latency_seconds, upstream_healthy
//   - Stream Metrics: stream_frames_total, stream_bytes_total, stats_trailers_total, active_streams
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//
//	collector.StreamStarted()
//	defer collector.StreamFinished()
//	collector.RecordFrame("content", len(text))
//	collector.RecordRequest("/v1/chat/completions", 200, true, time.Since(start))
//
// A nil or disabled Collector ignores every call.
//
// # Prometheus Endpoint
//
// Handler serves the registry in the Prometheus exposition format:
//
//	# HELP jimmybridge_requests_total Total number of HTTP requests handled
//	# TYPE jimmybridge_requests_total counter
//	jimmybridge_requests_total{endpoint="/v1/models",status="200",stream="false"} 12
//
// # Cardinality Management
//
// Endpoint labels are route patterns, never raw paths. A CardinalityLimiter
// folds anything past the first 64 distinct values into "other".
package metrics
