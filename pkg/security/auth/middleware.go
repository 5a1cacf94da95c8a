package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"mercator-hq/jimmybridge/pkg/proxy"
	"mercator-hq/jimmybridge/pkg/proxy/types"
)

// MessageInvalidAPIKey is returned with every authentication failure.
const MessageInvalidAPIKey = "Invalid API key"

// BearerMiddleware is HTTP middleware for bearer token authentication.
type BearerMiddleware struct {
	store TokenStore
}

// NewBearerMiddleware creates a new bearer token authentication middleware.
func NewBearerMiddleware(store TokenStore) *BearerMiddleware {
	return &BearerMiddleware{store: store}
}

// Handle wraps an HTTP handler with bearer token authentication. When the
// store has no token configured, requests pass through unchecked.
//
// A rejected request gets a 401 OpenAI error envelope and a
// "WWW-Authenticate: Bearer" header.
func (m *BearerMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.store.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		if err := m.store.Validate(proxy.ExtractBearerToken(r)); err != nil {
			reason := "invalid"
			if errors.Is(err, ErrMissingToken) {
				reason = "missing"
			}
			slog.WarnContext(r.Context(), "authentication failed",
				"reason", reason,
				"remote_addr", r.RemoteAddr,
				"path", r.URL.Path,
			)

			w.Header().Set("WWW-Authenticate", "Bearer")
			if err := proxy.WriteErrorResponse(w, types.NewAuthenticationError(MessageInvalidAPIKey)); err != nil {
				slog.ErrorContext(r.Context(), "failed to write error response", "error", err)
			}
			return
		}

		next.ServeHTTP(w, r)
	})
}
