package middleware

import (
	"net/http"
	"time"

	"mercator-hq/jimmybridge/pkg/telemetry/metrics"

	"github.com/go-chi/chi/v5"
)

// unmatchedRoute labels requests that matched no route.
const unmatchedRoute = "unmatched"

// MetricsMiddleware records request count and duration per route pattern.
// A response is counted as streamed when it was sent as text/event-stream.
//
// It must run inside a chi router so the matched pattern is available once
// the handler returns.
//
// Example usage:
//
//	router.Use(MetricsMiddleware(collector))
func MetricsMiddleware(collector *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			startTime := time.Now()
			rw := newResponseWriter(w)

			next.ServeHTTP(rw, r)

			stream := rw.Header().Get("Content-Type") == "text/event-stream"
			collector.RecordRequest(routePattern(r), rw.statusCode, stream, time.Since(startTime))
		})
	}
}

func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return unmatchedRoute
	}
	if pattern := rctx.RoutePattern(); pattern != "" {
		return pattern
	}
	return unmatchedRoute
}
