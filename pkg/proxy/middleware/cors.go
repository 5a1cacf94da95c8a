package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"mercator-hq/jimmybridge/pkg/config"
)

// CORSMiddleware adds Cross-Origin Resource Sharing (CORS) headers to responses.
// It answers preflight OPTIONS requests with 204 before they reach any
// later middleware, auth included.
//
// When AllowedHeaders is empty the preflight echoes the headers the browser
// asked for in Access-Control-Request-Headers.
//
// Configuration:
//
//	cfg := config.CORSConfig{
//	    Enabled:        true,
//	    AllowedOrigins: []string{"https://example.com"},
//	    AllowedMethods: []string{"GET", "POST", "OPTIONS"},
//	    MaxAge:         3600,
//	}
//	handler = CORSMiddleware(cfg)(handler)
func CORSMiddleware(cfg config.CORSConfig) func(http.Handler) http.Handler {
	allowedMethods := strings.Join(cfg.AllowedMethods, ", ")
	allowedHeaders := strings.Join(cfg.AllowedHeaders, ", ")
	exposedHeaders := strings.Join(cfg.ExposedHeaders, ", ")
	wildcard := contains(cfg.AllowedOrigins, "*")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			origin := r.Header.Get("Origin")
			h := w.Header()

			switch {
			case wildcard && !cfg.AllowCredentials:
				h.Set("Access-Control-Allow-Origin", "*")
			case origin != "" && isOriginAllowed(origin, cfg.AllowedOrigins):
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
				if cfg.AllowCredentials {
					h.Set("Access-Control-Allow-Credentials", "true")
				}
			default:
				// Disallowed origin: no CORS headers, the browser blocks it.
				if r.Method != http.MethodOptions {
					next.ServeHTTP(w, r)
					return
				}
			}

			if exposedHeaders != "" && h.Get("Access-Control-Allow-Origin") != "" {
				h.Set("Access-Control-Expose-Headers", exposedHeaders)
			}

			if r.Method == http.MethodOptions {
				if allowedMethods != "" {
					h.Set("Access-Control-Allow-Methods", allowedMethods)
				}

				if allowedHeaders != "" {
					h.Set("Access-Control-Allow-Headers", allowedHeaders)
				} else if requested := r.Header.Get("Access-Control-Request-Headers"); requested != "" {
					h.Set("Access-Control-Allow-Headers", requested)
					h.Add("Vary", "Access-Control-Request-Headers")
				}

				if cfg.MaxAge > 0 {
					h.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
				}

				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// isOriginAllowed checks if an origin is in the allowed list.
func isOriginAllowed(origin string, allowedOrigins []string) bool {
	for _, allowed := range allowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// contains checks if a slice contains a string.
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
