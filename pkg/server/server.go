package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"mercator-hq/jimmybridge/pkg/config"
	"mercator-hq/jimmybridge/pkg/proxy"
	"mercator-hq/jimmybridge/pkg/proxy/handlers"
	"mercator-hq/jimmybridge/pkg/proxy/middleware"
	"mercator-hq/jimmybridge/pkg/proxy/types"
	"mercator-hq/jimmybridge/pkg/security/auth"
	"mercator-hq/jimmybridge/pkg/telemetry/metrics"
	"mercator-hq/jimmybridge/pkg/telemetry/tracing"

	"github.com/go-chi/chi/v5"
)

// Upstream is the upstream chat service the server forwards to.
type Upstream = handlers.Upstream

// Server is the main HTTP proxy server.
type Server struct {
	config     *config.Config
	upstream   Upstream
	metrics    *metrics.Collector
	tokens     *auth.TokenValidator
	tracer     *tracing.Tracer
	tlsConfig  *tls.Config
	httpServer *http.Server

	mu        sync.RWMutex
	isRunning bool
	addr      net.Addr
}

// Option configures optional server collaborators.
type Option func(*Server)

// WithTracer records a server span per request with tracer.
func WithTracer(tracer *tracing.Tracer) Option {
	return func(s *Server) {
		s.tracer = tracer
	}
}

// WithTLS serves HTTPS with tlsConfig instead of plain HTTP.
func WithTLS(tlsConfig *tls.Config) Option {
	return func(s *Server) {
		s.tlsConfig = tlsConfig
	}
}

// NewServer creates a new proxy server. collector may be nil, in which case
// no metrics are recorded and /metrics is not mounted.
func NewServer(cfg *config.Config, up Upstream, collector *metrics.Collector, tokens *auth.TokenValidator, opts ...Option) *Server {
	if tokens == nil {
		tokens = auth.NewTokenValidator(cfg.Auth.APIKey)
	}
	s := &Server{
		config:   cfg,
		upstream: up,
		metrics:  collector,
		tokens:   tokens,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start listens on the configured address and serves until ctx is canceled,
// then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Proxy.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Proxy.ListenAddress, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is canceled, then shuts down
// gracefully within proxy.shutdown_timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		_ = ln.Close()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.addr = ln.Addr()
	if s.tlsConfig != nil {
		ln = tls.NewListener(ln, s.tlsConfig)
	}
	s.httpServer = &http.Server{
		Handler:        s.Handler(),
		ReadTimeout:    s.config.Proxy.ReadTimeout,
		WriteTimeout:   s.config.Proxy.WriteTimeout,
		IdleTimeout:    s.config.Proxy.IdleTimeout,
		MaxHeaderBytes: s.config.Proxy.MaxHeaderBytes,
		BaseContext:    func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}
	httpServer := s.httpServer
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting proxy server",
			"address", ln.Addr().String(),
			"upstream", s.config.Upstream.URL,
			"auth_enabled", s.tokens.Enabled(),
			"tracing_enabled", s.tracer.Enabled(),
			"tls_enabled", s.tlsConfig != nil,
		)

		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err, ok := <-errChan:
		s.setStopped()
		if ok {
			return err
		}
		return nil
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	httpServer := s.httpServer
	running := s.isRunning
	s.mu.RUnlock()

	if !running || httpServer == nil {
		return nil
	}

	slog.Info("initiating graceful shutdown", "timeout", s.config.Proxy.ShutdownTimeout.String())

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Proxy.ShutdownTimeout)
	defer cancel()

	var shutdownErr error
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("error during server shutdown", "error", err)
		shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		// Streams still open past the deadline are cut.
		_ = httpServer.Close()
	}

	s.setStopped()
	slog.Info("proxy server stopped")

	return shutdownErr
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Addr returns the address the server listens on, or nil before Serve.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}

// Tokens returns the validator guarding /v1, for rotating the API key.
func (s *Server) Tokens() *auth.TokenValidator {
	return s.tokens
}

func (s *Server) setStopped() {
	s.mu.Lock()
	s.isRunning = false
	s.mu.Unlock()
}

// Handler builds the router with its middleware chain.
//
// Chain, outermost first: RequestID, Tracing, Recovery, Logging, Metrics,
// CORS. The /v1 group adds bearer auth.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.TracingMiddleware(s.tracer))
	r.Use(middleware.RecoveryMiddleware)
	r.Use(middleware.LoggingMiddleware)
	if s.metrics != nil {
		r.Use(middleware.MetricsMiddleware(s.metrics))
	}
	r.Use(middleware.CORSMiddleware(s.config.Proxy.CORS))

	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	chatHandler := handlers.NewChatHandler(s.upstream, s.metrics, handlers.ChatConfig{
		DefaultModel:      s.config.Upstream.DefaultModel,
		TopK:              s.config.Upstream.TopK,
		CompletionTimeout: s.config.Proxy.CompletionTimeout,
		MaxResponseBytes:  s.config.Upstream.MaxResponseBytes,
	})
	modelsHandler := handlers.NewModelsHandler(s.config.Upstream.DefaultModel)

	r.Route("/v1", func(v1 chi.Router) {
		v1.Use(auth.NewBearerMiddleware(s.tokens).Handle)

		v1.With(middleware.TimeoutMiddleware(s.config.Proxy.ReadTimeout)).Method(http.MethodGet, "/models", modelsHandler)
		v1.Method(http.MethodPost, "/chat/completions", chatHandler)
	})

	r.Method(http.MethodGet, "/health", handlers.NewHealthHandler(s.upstream))

	if s.metrics != nil && s.config.Telemetry.Metrics.Enabled {
		r.Method(http.MethodGet, s.config.Telemetry.Metrics.Path, s.metrics.Handler())
	}

	return r
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeRouteError(w, r, types.NewNotFoundError(fmt.Sprintf("Unknown request URL: %s %s", r.Method, r.URL.Path)))
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeRouteError(w, r, types.NewMethodNotAllowedError(fmt.Sprintf("Method %s not allowed for %s", r.Method, r.URL.Path)))
}

func writeRouteError(w http.ResponseWriter, r *http.Request, errResp *types.ErrorResponse) {
	if err := proxy.WriteErrorResponse(w, errResp); err != nil {
		slog.ErrorContext(r.Context(), "failed to write error response", "error", err)
	}
}
