package config

import "time"

// Config is the root configuration structure for jimmybridge.
// It contains all configuration sections for the proxy server, the
// upstream chat service, client authentication and telemetry.
type Config struct {
	// Proxy contains HTTP server configuration including listen address,
	// timeouts and CORS.
	Proxy ProxyConfig `yaml:"proxy"`

	// Upstream contains configuration for the ChatJimmy chat endpoint.
	Upstream UpstreamConfig `yaml:"upstream"`

	// Auth contains inbound client authentication settings.
	Auth AuthConfig `yaml:"auth"`

	// Telemetry contains configuration for logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ProxyConfig contains configuration for the HTTP proxy server.
type ProxyConfig struct {
	// ListenAddress is the address and port for the proxy to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8080", "0.0.0.0:8080").
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout bounds writing a response. Streams can run for minutes,
	// so zero (no timeout) is the default.
	// Default: 0
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for in-flight
	// requests during graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// CompletionTimeout bounds a whole non-streaming completion, from the
	// upstream call to the last byte accumulated. Streams are not bounded.
	// Default: 120s
	CompletionTimeout time.Duration `yaml:"completion_timeout"`

	// MaxHeaderBytes limits the size of request headers.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`

	// TLS serves the API over HTTPS when enabled.
	TLS TLSConfig `yaml:"tls"`
}

// TLSConfig contains listener TLS configuration.
type TLSConfig struct {
	// Enabled serves HTTPS instead of plain HTTP.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// CertFile is the path to the PEM-encoded certificate chain.
	CertFile string `yaml:"cert_file"`

	// KeyFile is the path to the PEM-encoded private key.
	KeyFile string `yaml:"key_file"`

	// MinVersion is the lowest accepted protocol version.
	// Options: "1.2", "1.3"
	// Default: "1.2"
	MinVersion string `yaml:"min_version"`

	// ReloadInterval is how often the certificate files are checked for
	// changes. Renewed certificates are picked up without a restart.
	// Default: 5m
	ReloadInterval time.Duration `yaml:"reload_interval"`
}

// CORSConfig contains CORS (Cross-Origin Resource Sharing) configuration.
type CORSConfig struct {
	// Enabled controls whether CORS headers are written.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins is a list of allowed origins for CORS requests.
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods is a list of allowed HTTP methods for CORS requests.
	// Default: ["GET", "POST", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders is a list of allowed request headers. When empty, the
	// headers named in Access-Control-Request-Headers are echoed back.
	// Default: []
	AllowedHeaders []string `yaml:"allowed_headers"`

	// ExposedHeaders is a list of headers that are exposed to the client.
	// Default: ["X-Request-ID"]
	ExposedHeaders []string `yaml:"exposed_headers"`

	// MaxAge is the maximum age (in seconds) for preflight request cache.
	// Default: 86400 (1 day)
	MaxAge int `yaml:"max_age"`

	// AllowCredentials controls whether credentials are allowed.
	// It cannot be combined with a "*" origin.
	// Default: false
	AllowCredentials bool `yaml:"allow_credentials"`
}

// UpstreamConfig contains configuration for the upstream chat service.
type UpstreamConfig struct {
	// URL is the upstream chat endpoint.
	// Default: "https://chatjimmy.ai/api/chat"
	URL string `yaml:"url"`

	// DefaultModel is sent when a request names no model, and is the only
	// entry of the models listing.
	// Default: "llama3.1-8B"
	DefaultModel string `yaml:"default_model"`

	// TopK is sent as chatOptions.topK with every request.
	// Default: 8
	TopK int `yaml:"top_k"`

	// ConnectTimeout bounds dialing and the TLS handshake.
	// Default: 10s
	ConnectTimeout time.Duration `yaml:"connect_timeout"`

	// ResponseHeaderTimeout bounds the wait for response headers.
	// Default: 30s
	ResponseHeaderTimeout time.Duration `yaml:"response_header_timeout"`

	// IdleChunkTimeout bounds the gap between two body reads.
	// Default: 60s
	IdleChunkTimeout time.Duration `yaml:"idle_chunk_timeout"`

	// UserAgent is sent with every upstream request.
	// Default: "jimmybridge"
	UserAgent string `yaml:"user_agent"`

	// MaxResponseBytes caps the text accumulated for one non-streaming
	// completion.
	// Default: 8388608 (8MB)
	MaxResponseBytes int `yaml:"max_response_bytes"`
}

// AuthConfig contains inbound client authentication settings.
type AuthConfig struct {
	// APIKey is the bearer token every /v1 request must present. When empty,
	// authentication is disabled. Reloaded without restart.
	APIKey string `yaml:"api_key"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains OpenTelemetry tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit. Reloaded without restart.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactSecrets masks bearer tokens and API keys in log attributes.
	// Default: true
	RedactSecrets bool `yaml:"redact_secrets"`

	// RedactPatterns contains additional redaction patterns.
	RedactPatterns []RedactPattern `yaml:"redact_patterns"`
}

// RedactPattern defines a custom redaction pattern.
type RedactPattern struct {
	// Name is a descriptive name for the pattern.
	Name string `yaml:"name"`

	// Pattern is the regular expression to match.
	Pattern string `yaml:"pattern"`

	// Replacement is the string to replace matches with.
	Replacement string `yaml:"replacement"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected and exposed.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "jimmybridge"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: ""
	Subsystem string `yaml:"subsystem"`

	// RequestDurationBuckets defines histogram buckets for request duration (seconds).
	// Default: [0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120]
	RequestDurationBuckets []float64 `yaml:"request_duration_buckets"`
}

// TracingConfig contains OpenTelemetry tracing configuration. Spans are
// exported over OTLP/gRPC.
type TracingConfig struct {
	// Enabled controls whether spans are recorded and exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy for new traces. Incoming
	// traceparent decisions are always honored.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Only used when Sampler is "ratio".
	// Default: 0.1 (10%)
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP/gRPC collector address.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service.name resource attribute.
	// Default: "jimmybridge"
	ServiceName string `yaml:"service_name"`

	// Insecure disables TLS for the collector connection.
	// Default: true
	Insecure bool `yaml:"insecure"`

	// Timeout bounds each export.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}
