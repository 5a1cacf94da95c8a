package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"mercator-hq/jimmybridge/pkg/cli"
	"mercator-hq/jimmybridge/pkg/config"
	"mercator-hq/jimmybridge/pkg/security/auth"
	tlsconfig "mercator-hq/jimmybridge/pkg/security/tls"
	"mercator-hq/jimmybridge/pkg/server"
	"mercator-hq/jimmybridge/pkg/telemetry/logging"
	"mercator-hq/jimmybridge/pkg/telemetry/metrics"
	"mercator-hq/jimmybridge/pkg/telemetry/tracing"
	"mercator-hq/jimmybridge/pkg/upstream"

	"github.com/spf13/cobra"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
	watch         bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the jimmybridge proxy server",
	Long: `Start the jimmybridge proxy server with the specified configuration.

The server listens on the configured address and translates OpenAI chat
completion requests into ChatJimmy calls.

Examples:
  # Start with default config
  jimmybridge run

  # Start with custom config and reload it on change
  jimmybridge run --config /etc/jimmybridge/config.yaml --watch

  # Override listen address
  jimmybridge run --listen 0.0.0.0:8080

  # Validate config without starting server
  jimmybridge run --dry-run`,
	Args: cobra.NoArgs,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
	runCmd.Flags().BoolVar(&runFlags.watch, "watch", false, "reload the API key and log level when the config file changes")
}

func runServer(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Proxy.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if err := config.Validate(cfg); err != nil {
		return cli.NewConfigError("", err.Error())
	}

	logger, err := logging.New(logging.ConfigFrom(cfg.Telemetry.Logging))
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger.Logger)

	if runFlags.dryRun {
		fmt.Fprintln(out, "✓ Configuration valid")
		return nil
	}

	printBanner(out, cfg)

	client := upstream.NewClient(upstreamConfig(cfg.Upstream))
	defer client.Close()

	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	}

	tracer, err := tracing.New(&cfg.Telemetry.Tracing, Version)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer shutdownTracer(tracer, cfg.Proxy.ShutdownTimeout)

	tokens := auth.NewTokenValidator(cfg.Auth.APIKey)
	if !tokens.Enabled() {
		slog.Warn("no API key configured, /v1 endpoints accept unauthenticated requests")
	}

	ctx := cli.SetupSignalHandler()

	opts := []server.Option{server.WithTracer(tracer)}
	scheme := "http"
	if cfg.Proxy.TLS.Enabled {
		tlsConfig, err := tlsconfig.NewServerConfig(ctx, tlsconfig.Config{
			CertFile:       cfg.Proxy.TLS.CertFile,
			KeyFile:        cfg.Proxy.TLS.KeyFile,
			MinVersion:     cfg.Proxy.TLS.MinVersion,
			ReloadInterval: cfg.Proxy.TLS.ReloadInterval,
		})
		if err != nil {
			return cli.NewConfigError("proxy.tls", err.Error())
		}
		opts = append(opts, server.WithTLS(tlsConfig))
		scheme = "https"
	}

	srv := server.NewServer(cfg, client, collector, tokens, opts...)

	if runFlags.watch {
		if err := startWatcher(ctx, logger, tokens); err != nil {
			return cli.NewCommandError("run", err)
		}
	}

	ln, err := net.Listen("tcp", cfg.Proxy.ListenAddress)
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("failed to listen on %s: %w", cfg.Proxy.ListenAddress, err))
	}

	addr := ln.Addr().String()
	fmt.Fprintln(out)
	fmt.Fprintf(out, "✓ Server listening on %s\n", addr)
	fmt.Fprintf(out, "✓ Health endpoint: %s://%s/health\n", scheme, addr)
	if collector != nil {
		fmt.Fprintf(out, "✓ Metrics endpoint: %s://%s%s\n", scheme, addr, cfg.Telemetry.Metrics.Path)
	}
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	if err := srv.Serve(ctx, ln); err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Fprintln(out, "✓ Server stopped")
	return nil
}

// startWatcher reloads cfgFile on change. Only the API key and log level
// take effect without a restart.
func startWatcher(ctx context.Context, logger *logging.Logger, tokens *auth.TokenValidator) error {
	watcher, err := config.NewWatcher(cfgFile, config.DefaultWatchDebounce, func(cfg *config.Config) {
		applyReload(cfg, logger, tokens)
	}, logger.Logger)
	if err != nil {
		return err
	}

	go func() {
		if err := watcher.Watch(ctx); err != nil {
			slog.Error("config watcher failed", "error", err)
		}
	}()
	return nil
}

// applyReload applies the hot-reloadable settings of cfg. A --log-level flag
// keeps precedence over the file.
func applyReload(cfg *config.Config, logger *logging.Logger, tokens *auth.TokenValidator) {
	tokens.SetToken(cfg.Auth.APIKey)

	if runFlags.logLevel == "" {
		if err := logger.SetLevel(cfg.Telemetry.Logging.Level); err != nil {
			slog.Warn("ignoring reloaded log level", "level", cfg.Telemetry.Logging.Level, "error", err)
		}
	}

	slog.Info("configuration reloaded",
		"auth_enabled", tokens.Enabled(),
		"log_level", logger.Level().String(),
	)
}

// shutdownTracer flushes pending spans once the server has drained.
func shutdownTracer(tracer *tracing.Tracer, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := tracer.Shutdown(ctx); err != nil {
		slog.Warn("failed to flush traces", "error", err)
	}
}

func upstreamConfig(cfg config.UpstreamConfig) upstream.Config {
	return upstream.Config{
		URL:                   cfg.URL,
		ConnectTimeout:        cfg.ConnectTimeout,
		ResponseHeaderTimeout: cfg.ResponseHeaderTimeout,
		IdleChunkTimeout:      cfg.IdleChunkTimeout,
		UserAgent:             cfg.UserAgent,
	}
}

func printBanner(w io.Writer, cfg *config.Config) {
	fmt.Fprintf(w, "jimmybridge v%s\n", Version)
	fmt.Fprintf(w, "Loading configuration from: %s\n", cfgFile)
	fmt.Fprintln(w, "✓ Configuration loaded")
	fmt.Fprintf(w, "✓ Upstream: %s (model %s)\n", cfg.Upstream.URL, cfg.Upstream.DefaultModel)

	slog.Debug("effective configuration",
		"listen_address", cfg.Proxy.ListenAddress,
		"completion_timeout", cfg.Proxy.CompletionTimeout.String(),
		"cors_enabled", cfg.Proxy.CORS.Enabled,
		"metrics_enabled", cfg.Telemetry.Metrics.Enabled,
		"tracing_enabled", cfg.Telemetry.Tracing.Enabled,
		"tls_enabled", cfg.Proxy.TLS.Enabled,
	)
}
