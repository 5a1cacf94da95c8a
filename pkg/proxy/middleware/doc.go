// Package middleware provides HTTP middleware for cross-cutting concerns.
//
// This package implements the middleware that wraps every jimmybridge
// route, from request IDs and tracing to CORS and per-route deadlines.
//
// # Middleware Chain
//
// The server installs the chain outermost first:
//
//	RequestID -> Tracing -> Recovery -> Logging -> Metrics -> CORS -> router
//
// RequestID runs first so that every later log line, the panic log
// included, carries the request ID. Tracing comes next so log lines also
// carry the trace ID. CORS runs before auth so preflight
// requests are answered without credentials.
//
// # Request ID
//
// RequestIDMiddleware reuses a well-formed client X-Request-ID or generates
// a UUID v4:
//
//	X-Request-ID: 550e8400-e29b-41d4-a716-446655440000
//
// The ID is stored with logging.WithRequestID, so any slog call made with
// the request context includes it.
//
// # Logging
//
// LoggingMiddleware writes one structured line per request:
//
//	{
//	  "level": "INFO",
//	  "msg": "request completed",
//	  "method": "POST",
//	  "path": "/v1/chat/completions",
//	  "status": 200,
//	  "latency_ms": 1250,
//	  "request_id": "550e8400-e29b-41d4-a716-446655440000"
//	}
//
// The wrapped writer forwards Flush, so SSE frames are not held back.
//
// # Tracing
//
// TracingMiddleware starts a server span per request when tracing is
// enabled, continuing a caller's traceparent, and returns X-Trace-ID.
//
// # CORS
//
// CORSMiddleware is configured from the proxy.cors section:
//
//	proxy:
//	  cors:
//	    enabled: true
//	    allowed_origins: ["*"]
//	    allowed_methods: ["GET", "POST", "OPTIONS"]
//	    max_age: 86400
//
// # Recovery
//
// RecoveryMiddleware converts a panic into a 500 OpenAI error envelope:
//
//	{"error":{"message":"Internal server error","type":"server_error","code":"internal_error"}}
//
// The stack trace is logged but never sent to the client.
//
// # Timeout
//
// TimeoutMiddleware only attaches a deadline to the request context. The
// handler still owns the response and reports the timeout itself.
package middleware
