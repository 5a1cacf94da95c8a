package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// LoggingMiddleware writes one access log line per request once the
// handler returns, which for a stream is after the last frame. The level
// follows the status: Info below 400, Warn for 4xx, Error for 5xx. The
// request and trace IDs come from the context.
//
//	{"level":"INFO","msg":"request completed","method":"POST",
//	 "path":"/v1/chat/completions","route":"/v1/chat/completions",
//	 "status":200,"latency_ms":1250,"bytes":5120,"flushes":42,
//	 "request_id":"550e8400-e29b-41d4-a716-446655440000"}
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()
		rw := newResponseWriter(w)

		slog.DebugContext(ctx, "request started",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)

		next.ServeHTTP(rw, r)

		level := slog.LevelInfo
		switch {
		case rw.statusCode >= 500:
			level = slog.LevelError
		case rw.statusCode >= 400:
			level = slog.LevelWarn
		}

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"route", routePattern(r),
			"status", rw.statusCode,
			"latency_ms", time.Since(start).Milliseconds(),
			"bytes", rw.bytes,
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		}
		if rw.flushes > 0 {
			attrs = append(attrs, "flushes", rw.flushes)
		}
		slog.Log(ctx, level, "request completed", attrs...)
	})
}
