package config

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "proxy.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateProxy(&cfg.Proxy)...)
	errs = append(errs, validateUpstream(&cfg.Upstream)...)
	errs = append(errs, validateAuth(&cfg.Auth)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateProxy validates proxy configuration.
func validateProxy(cfg *ProxyConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "proxy.listen_address",
			Message: "listen address is required",
		})
	} else if _, _, err := net.SplitHostPort(cfg.ListenAddress); err != nil {
		errs = append(errs, FieldError{
			Field:   "proxy.listen_address",
			Message: fmt.Sprintf("invalid host:port %q", cfg.ListenAddress),
		})
	}

	// Timeouts are zero or positive.
	timeouts := map[string]int64{
		"proxy.read_timeout":       int64(cfg.ReadTimeout),
		"proxy.write_timeout":      int64(cfg.WriteTimeout),
		"proxy.idle_timeout":       int64(cfg.IdleTimeout),
		"proxy.shutdown_timeout":   int64(cfg.ShutdownTimeout),
		"proxy.completion_timeout": int64(cfg.CompletionTimeout),
	}
	for field, value := range timeouts {
		if value < 0 {
			errs = append(errs, FieldError{
				Field:   field,
				Message: "timeout must not be negative",
			})
		}
	}

	if cfg.MaxHeaderBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "proxy.max_header_bytes",
			Message: "max header bytes must be non-negative",
		})
	}
	if cfg.MaxHeaderBytes > 10*1024*1024 { // 10MB is excessive
		errs = append(errs, FieldError{
			Field:   "proxy.max_header_bytes",
			Message: "max header bytes exceeds reasonable limit (10MB)",
		})
	}

	if cfg.CORS.Enabled && cfg.CORS.AllowCredentials {
		for _, origin := range cfg.CORS.AllowedOrigins {
			if origin == "*" {
				errs = append(errs, FieldError{
					Field:   "proxy.cors.allow_credentials",
					Message: "credentials cannot be allowed with a wildcard origin",
				})
				break
			}
		}
	}
	if cfg.CORS.MaxAge < 0 {
		errs = append(errs, FieldError{
			Field:   "proxy.cors.max_age",
			Message: "max age must be non-negative",
		})
	}

	errs = append(errs, validateTLS(&cfg.TLS)...)

	return errs
}

// validateTLS validates listener TLS configuration. File contents are checked
// when the listener starts.
func validateTLS(cfg *TLSConfig) []FieldError {
	var errs []FieldError

	switch cfg.MinVersion {
	case "", "1.2", "1.3":
	default:
		errs = append(errs, FieldError{
			Field:   "proxy.tls.min_version",
			Message: fmt.Sprintf("unsupported TLS version %q (supported: 1.2, 1.3)", cfg.MinVersion),
		})
	}
	if cfg.ReloadInterval < 0 {
		errs = append(errs, FieldError{
			Field:   "proxy.tls.reload_interval",
			Message: "reload interval must not be negative",
		})
	}

	if !cfg.Enabled {
		return errs
	}
	if cfg.CertFile == "" {
		errs = append(errs, FieldError{
			Field:   "proxy.tls.cert_file",
			Message: "cert file is required when TLS is enabled",
		})
	}
	if cfg.KeyFile == "" {
		errs = append(errs, FieldError{
			Field:   "proxy.tls.key_file",
			Message: "key file is required when TLS is enabled",
		})
	}

	return errs
}

// validateUpstream validates upstream configuration.
func validateUpstream(cfg *UpstreamConfig) []FieldError {
	var errs []FieldError

	if cfg.URL == "" {
		errs = append(errs, FieldError{
			Field:   "upstream.url",
			Message: "upstream URL is required",
		})
	} else if u, err := url.Parse(cfg.URL); err != nil {
		errs = append(errs, FieldError{
			Field:   "upstream.url",
			Message: fmt.Sprintf("invalid URL format: %v", err),
		})
	} else if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, FieldError{
			Field:   "upstream.url",
			Message: fmt.Sprintf("URL %q must be absolute http or https", cfg.URL),
		})
	}

	if strings.TrimSpace(cfg.DefaultModel) == "" {
		errs = append(errs, FieldError{
			Field:   "upstream.default_model",
			Message: "default model is required",
		})
	}

	if cfg.TopK < 1 {
		errs = append(errs, FieldError{
			Field:   "upstream.top_k",
			Message: "top_k must be at least 1",
		})
	}

	if cfg.ConnectTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "upstream.connect_timeout",
			Message: "timeout must not be negative",
		})
	}
	if cfg.ResponseHeaderTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "upstream.response_header_timeout",
			Message: "timeout must not be negative",
		})
	}
	if cfg.IdleChunkTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "upstream.idle_chunk_timeout",
			Message: "timeout must not be negative",
		})
	}

	if cfg.MaxResponseBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "upstream.max_response_bytes",
			Message: "max response bytes must be non-negative",
		})
	}

	return errs
}

// validateAuth validates authentication configuration.
func validateAuth(cfg *AuthConfig) []FieldError {
	var errs []FieldError

	if cfg.APIKey != strings.TrimSpace(cfg.APIKey) {
		errs = append(errs, FieldError{
			Field:   "auth.api_key",
			Message: "API key must not have leading or trailing whitespace",
		})
	}

	return errs
}

// validateTelemetry validates telemetry configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if cfg.Logging.Level == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: "logging level is required",
		})
	} else if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if cfg.Logging.Format == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: "logging format is required",
		})
	} else if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json' or 'text'", cfg.Logging.Format),
		})
	}

	for i, p := range cfg.Logging.RedactPatterns {
		if _, err := regexp.Compile(p.Pattern); err != nil {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("telemetry.logging.redact_patterns[%d].pattern", i),
				Message: fmt.Sprintf("invalid regular expression: %v", err),
			})
		}
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Path == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.path",
				Message: "metrics path is required when metrics are enabled",
			})
		} else if !strings.HasPrefix(cfg.Metrics.Path, "/") {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.path",
				Message: "metrics path must start with '/'",
			})
		} else if strings.HasPrefix(cfg.Metrics.Path, "/v1/") || cfg.Metrics.Path == "/health" {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.path",
				Message: fmt.Sprintf("metrics path %q collides with an API route", cfg.Metrics.Path),
			})
		}
	}

	for i := 1; i < len(cfg.Metrics.RequestDurationBuckets); i++ {
		if cfg.Metrics.RequestDurationBuckets[i] <= cfg.Metrics.RequestDurationBuckets[i-1] {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.request_duration_buckets",
				Message: "buckets must be strictly increasing",
			})
			break
		}
	}

	errs = append(errs, validateTracing(&cfg.Tracing)...)

	return errs
}

// validateTracing validates tracing configuration.
func validateTracing(cfg *TracingConfig) []FieldError {
	var errs []FieldError

	switch cfg.Sampler {
	case "always", "never", "ratio":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sampler",
			Message: fmt.Sprintf("invalid sampler %q: must be 'always', 'never', or 'ratio'", cfg.Sampler),
		})
	}

	if cfg.SampleRatio < 0 || cfg.SampleRatio > 1.0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}

	if cfg.Enabled {
		if cfg.Endpoint == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.endpoint",
				Message: "endpoint is required when tracing is enabled",
			})
		} else if _, _, err := net.SplitHostPort(cfg.Endpoint); err != nil {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.endpoint",
				Message: fmt.Sprintf("endpoint must be host:port: %v", err),
			})
		}
	}

	if cfg.Timeout < 0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.timeout",
			Message: "timeout must not be negative",
		})
	}

	return errs
}
