package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"mercator-hq/jimmybridge/pkg/proxy"
	"mercator-hq/jimmybridge/pkg/proxy/types"
)

// MessageInternalServerError is returned to clients when a handler panics.
const MessageInternalServerError = "Internal server error"

// RecoveryMiddleware recovers from panics in HTTP handlers and returns a 500
// Internal Server Error response in OpenAI error format. It logs the panic
// with stack trace for debugging but does not expose internal details to clients.
//
// If the response has already started, as with an SSE stream, nothing more
// is written. http.ErrAbortHandler is re-raised so net/http can abort the
// connection.
//
// Example usage:
//
//	handler = RecoveryMiddleware(handler)
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := newResponseWriter(w)

		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			slog.ErrorContext(r.Context(), "panic in handler",
				"error", rec,
				"method", r.Method,
				"path", r.URL.Path,
				"stack", string(debug.Stack()),
			)

			if rw.written {
				return
			}

			// Ignore encoding errors at this point.
			_ = proxy.WriteErrorResponse(rw, types.NewServerError(MessageInternalServerError))
		}()

		next.ServeHTTP(rw, r)
	})
}
