package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable override.
const EnvPrefix = "JIMMYBRIDGE_"

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// The configuration is not modified by environment variables; use LoadConfigWithEnvOverrides
// for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention JIMMYBRIDGE_SECTION_FIELD (e.g., JIMMYBRIDGE_PROXY_LISTEN_ADDRESS).
// Environment variables always take precedence over file-based configuration.
//
// An empty path, or a path that does not exist, yields the defaults plus
// environment overrides, so the proxy can run without any file.
//
// The loading sequence is:
// 1. Load YAML from file (if present) on top of the defaults
// 2. Apply environment variable overrides
// 3. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg := NewDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// Defaults plus environment.
		case err != nil:
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		default:
			if cfg, err = parse(data); err != nil {
				return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
			}
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// parse decodes YAML on top of the defaults. Unknown keys are rejected so
// that typos surface at startup instead of being silently ignored.
func parse(data []byte) (*Config, error) {
	cfg := NewDefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	ApplyDefaults(cfg)
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables use the format JIMMYBRIDGE_SECTION_FIELD. Values that
// fail to parse are reported rather than ignored.
func applyEnvOverrides(cfg *Config) error {
	var errs []FieldError

	str := func(name string, dst *string) {
		if val, ok := os.LookupEnv(EnvPrefix + name); ok {
			*dst = val
		}
	}
	dur := func(name string, dst *time.Duration) {
		if val := os.Getenv(EnvPrefix + name); val != "" {
			d, err := time.ParseDuration(val)
			if err != nil {
				errs = append(errs, FieldError{Field: EnvPrefix + name, Message: fmt.Sprintf("invalid duration %q", val)})
				return
			}
			*dst = d
		}
	}
	integer := func(name string, dst *int) {
		if val := os.Getenv(EnvPrefix + name); val != "" {
			i, err := strconv.Atoi(val)
			if err != nil {
				errs = append(errs, FieldError{Field: EnvPrefix + name, Message: fmt.Sprintf("invalid integer %q", val)})
				return
			}
			*dst = i
		}
	}
	boolean := func(name string, dst *bool) {
		if val := os.Getenv(EnvPrefix + name); val != "" {
			b, err := strconv.ParseBool(val)
			if err != nil {
				errs = append(errs, FieldError{Field: EnvPrefix + name, Message: fmt.Sprintf("invalid boolean %q", val)})
				return
			}
			*dst = b
		}
	}
	list := func(name string, dst *[]string) {
		if val := os.Getenv(EnvPrefix + name); val != "" {
			var items []string
			for _, item := range strings.Split(val, ",") {
				if item = strings.TrimSpace(item); item != "" {
					items = append(items, item)
				}
			}
			*dst = items
		}
	}

	// Proxy overrides
	str("PROXY_LISTEN_ADDRESS", &cfg.Proxy.ListenAddress)
	dur("PROXY_READ_TIMEOUT", &cfg.Proxy.ReadTimeout)
	dur("PROXY_WRITE_TIMEOUT", &cfg.Proxy.WriteTimeout)
	dur("PROXY_IDLE_TIMEOUT", &cfg.Proxy.IdleTimeout)
	dur("PROXY_SHUTDOWN_TIMEOUT", &cfg.Proxy.ShutdownTimeout)
	dur("PROXY_COMPLETION_TIMEOUT", &cfg.Proxy.CompletionTimeout)
	integer("PROXY_MAX_HEADER_BYTES", &cfg.Proxy.MaxHeaderBytes)
	boolean("PROXY_CORS_ENABLED", &cfg.Proxy.CORS.Enabled)
	list("PROXY_CORS_ALLOWED_ORIGINS", &cfg.Proxy.CORS.AllowedOrigins)
	boolean("PROXY_TLS_ENABLED", &cfg.Proxy.TLS.Enabled)
	str("PROXY_TLS_CERT_FILE", &cfg.Proxy.TLS.CertFile)
	str("PROXY_TLS_KEY_FILE", &cfg.Proxy.TLS.KeyFile)

	// Upstream overrides
	str("UPSTREAM_URL", &cfg.Upstream.URL)
	str("UPSTREAM_DEFAULT_MODEL", &cfg.Upstream.DefaultModel)
	integer("UPSTREAM_TOP_K", &cfg.Upstream.TopK)
	dur("UPSTREAM_CONNECT_TIMEOUT", &cfg.Upstream.ConnectTimeout)
	dur("UPSTREAM_RESPONSE_HEADER_TIMEOUT", &cfg.Upstream.ResponseHeaderTimeout)
	dur("UPSTREAM_IDLE_CHUNK_TIMEOUT", &cfg.Upstream.IdleChunkTimeout)
	str("UPSTREAM_USER_AGENT", &cfg.Upstream.UserAgent)
	integer("UPSTREAM_MAX_RESPONSE_BYTES", &cfg.Upstream.MaxResponseBytes)

	// Auth overrides. Set-but-empty disables auth explicitly.
	str("AUTH_API_KEY", &cfg.Auth.APIKey)

	// Telemetry overrides
	str("TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	str("TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	boolean("TELEMETRY_LOGGING_ADD_SOURCE", &cfg.Telemetry.Logging.AddSource)
	boolean("TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	str("TELEMETRY_METRICS_PATH", &cfg.Telemetry.Metrics.Path)
	boolean("TELEMETRY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	str("TELEMETRY_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)
	str("TELEMETRY_TRACING_SAMPLER", &cfg.Telemetry.Tracing.Sampler)

	if len(errs) > 0 {
		return fmt.Errorf("invalid environment override: %w", ValidationError{Errors: errs})
	}
	return nil
}
