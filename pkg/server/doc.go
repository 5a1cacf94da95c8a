// Package server provides the HTTP server that exposes the OpenAI-compatible
// API in front of the ChatJimmy upstream.
//
// The server ties the handlers, middleware and authentication together on a
// chi router and manages the listener lifecycle including graceful shutdown.
//
// # Routes
//
//	GET  /v1/models            model listing (bearer auth)
//	POST /v1/chat/completions  JSON or SSE completion (bearer auth)
//	GET  /health               upstream health snapshot
//	GET  /metrics              Prometheus exposition, when enabled
//
// Unknown paths and wrong methods get OpenAI error envelopes with codes
// unknown_url and method_not_allowed.
//
// # Middleware
//
// Every request passes, outermost first, through request ID, tracing,
// panic recovery, access logging, metrics and CORS. CORS answers preflight
// requests with 204 before the /v1 auth middleware runs.
//
// # Basic Usage
//
//	client := upstream.NewClient(upstream.Config{URL: cfg.Upstream.URL})
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	srv := server.NewServer(cfg, client, collector, auth.NewTokenValidator(cfg.Auth.APIKey))
//
//	ctx := cli.SetupSignalHandler()
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// WithTracer and WithTLS attach an OpenTelemetry tracer and a listener TLS
// configuration.
//
// Start blocks until ctx is canceled and then drains in-flight requests for
// up to proxy.shutdown_timeout. Streams still open after that are closed.
package server
