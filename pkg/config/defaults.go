package config

import "time"

// Default values for configuration fields.
const (
	// Proxy defaults
	DefaultListenAddress     = "127.0.0.1:8080"
	DefaultReadTimeout       = 30 * time.Second
	DefaultWriteTimeout      = time.Duration(0)
	DefaultIdleTimeout       = 120 * time.Second
	DefaultShutdownTimeout   = 30 * time.Second
	DefaultCompletionTimeout = 120 * time.Second
	DefaultMaxHeaderBytes    = 1048576 // 1MB

	// TLS defaults
	DefaultTLSMinVersion     = "1.2"
	DefaultTLSReloadInterval = 5 * time.Minute

	// CORS defaults
	DefaultCORSEnabled = true
	DefaultCORSMaxAge  = 86400 // 1 day

	// Upstream defaults
	DefaultUpstreamURL              = "https://chatjimmy.ai/api/chat"
	DefaultUpstreamModel            = "llama3.1-8B"
	DefaultUpstreamTopK             = 8
	DefaultUpstreamConnectTimeout   = 10 * time.Second
	DefaultUpstreamHeaderTimeout    = 30 * time.Second
	DefaultUpstreamIdleChunkTimeout = 60 * time.Second
	DefaultUpstreamUserAgent        = "jimmybridge"
	DefaultUpstreamMaxResponseBytes = 8 << 20 // 8MB

	// Telemetry defaults
	DefaultLoggingLevel         = "info"
	DefaultLoggingFormat        = "json"
	DefaultLoggingRedactSecrets = true
	DefaultMetricsEnabled       = true
	DefaultPrometheusPath       = "/metrics"
	DefaultMetricsNamespace     = "jimmybridge"
	DefaultTracingSampler       = "ratio"
	DefaultTracingSampleRatio   = 0.1
	DefaultTracingEndpoint      = "localhost:4317"
	DefaultTracingServiceName   = "jimmybridge"
	DefaultTracingInsecure      = true
	DefaultTracingTimeout       = 10 * time.Second
)

// DefaultRequestDurationBuckets cover quick model listings up to long
// non-streaming completions.
var DefaultRequestDurationBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120}

// NewDefaultConfig returns a configuration with every field at its default.
// LoadConfig decodes YAML on top of it, so boolean fields that default to
// true stay true unless the file sets them to false.
func NewDefaultConfig() *Config {
	cfg := &Config{
		Proxy: ProxyConfig{
			CORS: CORSConfig{Enabled: DefaultCORSEnabled},
		},
		Telemetry: TelemetryConfig{
			Logging: LoggingConfig{RedactSecrets: DefaultLoggingRedactSecrets},
			Metrics: MetricsConfig{Enabled: DefaultMetricsEnabled},
			Tracing: TracingConfig{Insecure: DefaultTracingInsecure},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults applies default values to a Config struct.
// It fills every zero-valued field except booleans, whose zero value is a
// valid setting. This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Proxy defaults
	if cfg.Proxy.ListenAddress == "" {
		cfg.Proxy.ListenAddress = DefaultListenAddress
	}
	if cfg.Proxy.ReadTimeout == 0 {
		cfg.Proxy.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Proxy.IdleTimeout == 0 {
		cfg.Proxy.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Proxy.ShutdownTimeout == 0 {
		cfg.Proxy.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Proxy.CompletionTimeout == 0 {
		cfg.Proxy.CompletionTimeout = DefaultCompletionTimeout
	}
	if cfg.Proxy.MaxHeaderBytes == 0 {
		cfg.Proxy.MaxHeaderBytes = DefaultMaxHeaderBytes
	}

	applyCORSDefaults(&cfg.Proxy.CORS)
	if cfg.Proxy.TLS.MinVersion == "" {
		cfg.Proxy.TLS.MinVersion = DefaultTLSMinVersion
	}
	if cfg.Proxy.TLS.ReloadInterval == 0 {
		cfg.Proxy.TLS.ReloadInterval = DefaultTLSReloadInterval
	}

	// Upstream defaults
	if cfg.Upstream.URL == "" {
		cfg.Upstream.URL = DefaultUpstreamURL
	}
	if cfg.Upstream.DefaultModel == "" {
		cfg.Upstream.DefaultModel = DefaultUpstreamModel
	}
	if cfg.Upstream.TopK == 0 {
		cfg.Upstream.TopK = DefaultUpstreamTopK
	}
	if cfg.Upstream.ConnectTimeout == 0 {
		cfg.Upstream.ConnectTimeout = DefaultUpstreamConnectTimeout
	}
	if cfg.Upstream.ResponseHeaderTimeout == 0 {
		cfg.Upstream.ResponseHeaderTimeout = DefaultUpstreamHeaderTimeout
	}
	if cfg.Upstream.IdleChunkTimeout == 0 {
		cfg.Upstream.IdleChunkTimeout = DefaultUpstreamIdleChunkTimeout
	}
	if cfg.Upstream.UserAgent == "" {
		cfg.Upstream.UserAgent = DefaultUpstreamUserAgent
	}
	if cfg.Upstream.MaxResponseBytes == 0 {
		cfg.Upstream.MaxResponseBytes = DefaultUpstreamMaxResponseBytes
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultPrometheusPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if len(cfg.Telemetry.Metrics.RequestDurationBuckets) == 0 {
		cfg.Telemetry.Metrics.RequestDurationBuckets = append([]float64(nil), DefaultRequestDurationBuckets...)
	}
	applyTracingDefaults(&cfg.Telemetry.Tracing)
}

// applyTracingDefaults applies default values to tracing configuration.
// A zero SampleRatio with the ratio sampler is taken as unset.
func applyTracingDefaults(tracing *TracingConfig) {
	if tracing.Sampler == "" {
		tracing.Sampler = DefaultTracingSampler
	}
	if tracing.SampleRatio == 0 && tracing.Sampler == DefaultTracingSampler {
		tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if tracing.Endpoint == "" {
		tracing.Endpoint = DefaultTracingEndpoint
	}
	if tracing.ServiceName == "" {
		tracing.ServiceName = DefaultTracingServiceName
	}
	if tracing.Timeout == 0 {
		tracing.Timeout = DefaultTracingTimeout
	}
}

// applyCORSDefaults applies default values to CORS configuration.
// AllowedHeaders stays empty so that requested headers are echoed.
func applyCORSDefaults(cors *CORSConfig) {
	if len(cors.AllowedOrigins) == 0 {
		cors.AllowedOrigins = []string{"*"}
	}
	if len(cors.AllowedMethods) == 0 {
		cors.AllowedMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cors.ExposedHeaders) == 0 {
		cors.ExposedHeaders = []string{"X-Request-ID"}
	}
	if cors.MaxAge == 0 {
		cors.MaxAge = DefaultCORSMaxAge
	}
}
