package middleware

import (
	"context"
	"net/http"
	"time"
)

// TimeoutMiddleware attaches a deadline to the request context. It does
// not write a response itself: the handler sees ctx.Err() and reports the
// timeout through its usual error path. Running the handler inline keeps
// streamed responses single-writer.
//
// A non-positive timeout disables the middleware.
//
// Example usage:
//
//	router.With(TimeoutMiddleware(30 * time.Second)).Get("/models", handler)
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if timeout <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
