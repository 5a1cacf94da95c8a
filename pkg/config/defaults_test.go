package config

import (
	"testing"
	"time"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	if cfg.Proxy.ListenAddress != DefaultListenAddress {
		t.Errorf("expected listen address %q, got %q", DefaultListenAddress, cfg.Proxy.ListenAddress)
	}
	if cfg.Proxy.WriteTimeout != 0 {
		t.Errorf("expected no write timeout, got %v", cfg.Proxy.WriteTimeout)
	}
	if cfg.Proxy.CompletionTimeout != 120*time.Second {
		t.Errorf("expected completion timeout 120s, got %v", cfg.Proxy.CompletionTimeout)
	}
	if cfg.Upstream.URL != "https://chatjimmy.ai/api/chat" {
		t.Errorf("expected upstream url, got %q", cfg.Upstream.URL)
	}
	if cfg.Upstream.DefaultModel != "llama3.1-8B" {
		t.Errorf("expected default model %q, got %q", "llama3.1-8B", cfg.Upstream.DefaultModel)
	}
	if cfg.Upstream.TopK != 8 {
		t.Errorf("expected top_k 8, got %d", cfg.Upstream.TopK)
	}
	if cfg.Upstream.ConnectTimeout != 10*time.Second {
		t.Errorf("expected connect timeout 10s, got %v", cfg.Upstream.ConnectTimeout)
	}
	if cfg.Upstream.ResponseHeaderTimeout != 30*time.Second {
		t.Errorf("expected response header timeout 30s, got %v", cfg.Upstream.ResponseHeaderTimeout)
	}
	if cfg.Upstream.IdleChunkTimeout != 60*time.Second {
		t.Errorf("expected idle chunk timeout 60s, got %v", cfg.Upstream.IdleChunkTimeout)
	}
	if !cfg.Proxy.CORS.Enabled {
		t.Error("expected CORS enabled")
	}
	if cfg.Proxy.TLS.Enabled {
		t.Error("expected TLS disabled")
	}
	if cfg.Proxy.TLS.MinVersion != "1.2" {
		t.Errorf("expected TLS min version %q, got %q", "1.2", cfg.Proxy.TLS.MinVersion)
	}
	if cfg.Proxy.TLS.ReloadInterval != 5*time.Minute {
		t.Errorf("expected TLS reload interval 5m, got %v", cfg.Proxy.TLS.ReloadInterval)
	}
	if len(cfg.Proxy.CORS.AllowedOrigins) != 1 || cfg.Proxy.CORS.AllowedOrigins[0] != "*" {
		t.Errorf("expected wildcard origin, got %v", cfg.Proxy.CORS.AllowedOrigins)
	}
	if len(cfg.Proxy.CORS.AllowedHeaders) != 0 {
		t.Errorf("expected allowed headers to be echoed, got %v", cfg.Proxy.CORS.AllowedHeaders)
	}
	if !cfg.Telemetry.Metrics.Enabled {
		t.Error("expected metrics enabled")
	}
	if cfg.Telemetry.Metrics.Namespace != "jimmybridge" {
		t.Errorf("expected namespace jimmybridge, got %q", cfg.Telemetry.Metrics.Namespace)
	}
	if cfg.Auth.APIKey != "" {
		t.Errorf("expected auth disabled, got key %q", cfg.Auth.APIKey)
	}
	if cfg.Telemetry.Tracing.Enabled {
		t.Error("expected tracing disabled")
	}
	if cfg.Telemetry.Tracing.Sampler != "ratio" || cfg.Telemetry.Tracing.SampleRatio != 0.1 {
		t.Errorf("expected ratio sampler at 0.1, got %q at %v", cfg.Telemetry.Tracing.Sampler, cfg.Telemetry.Tracing.SampleRatio)
	}
	if !cfg.Telemetry.Tracing.Insecure {
		t.Error("expected insecure collector connection by default")
	}

	if err := Validate(cfg); err != nil {
		t.Errorf("expected defaults to validate, got: %v", err)
	}
}

func TestApplyDefaults_PreservesValues(t *testing.T) {
	cfg := &Config{
		Proxy:    ProxyConfig{ListenAddress: "0.0.0.0:1234", CompletionTimeout: time.Second},
		Upstream: UpstreamConfig{TopK: 2, UserAgent: "custom"},
	}

	ApplyDefaults(cfg)

	if cfg.Proxy.ListenAddress != "0.0.0.0:1234" {
		t.Errorf("expected listen address to be preserved, got %q", cfg.Proxy.ListenAddress)
	}
	if cfg.Proxy.CompletionTimeout != time.Second {
		t.Errorf("expected completion timeout to be preserved, got %v", cfg.Proxy.CompletionTimeout)
	}
	if cfg.Upstream.TopK != 2 {
		t.Errorf("expected top_k to be preserved, got %d", cfg.Upstream.TopK)
	}
	if cfg.Upstream.UserAgent != "custom" {
		t.Errorf("expected user agent to be preserved, got %q", cfg.Upstream.UserAgent)
	}
	if cfg.Upstream.URL != DefaultUpstreamURL {
		t.Errorf("expected default upstream url, got %q", cfg.Upstream.URL)
	}
}

func TestApplyDefaults_Idempotent(t *testing.T) {
	cfg := NewDefaultConfig()
	before := len(cfg.Telemetry.Metrics.RequestDurationBuckets)

	ApplyDefaults(cfg)
	ApplyDefaults(cfg)

	if len(cfg.Telemetry.Metrics.RequestDurationBuckets) != before {
		t.Errorf("expected %d buckets, got %d", before, len(cfg.Telemetry.Metrics.RequestDurationBuckets))
	}
}
