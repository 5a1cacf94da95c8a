package tls

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"
)

// DefaultReloadInterval is used when Config.ReloadInterval is zero.
const DefaultReloadInterval = 5 * time.Minute

// Config describes the certificate the proxy listener serves.
type Config struct {
	// CertFile is the path to the PEM-encoded certificate chain.
	CertFile string

	// KeyFile is the path to the PEM-encoded private key.
	KeyFile string

	// MinVersion is "1.2" or "1.3". Empty means "1.2".
	MinVersion string

	// ReloadInterval is how often the files are checked for changes.
	ReloadInterval time.Duration
}

// NewServerConfig loads the certificate, starts reloading it in the
// background until ctx is canceled, and returns a tls.Config that always
// presents the most recently loaded certificate.
func NewServerConfig(ctx context.Context, cfg Config) (*tls.Config, error) {
	if cfg.CertFile == "" || cfg.KeyFile == "" {
		return nil, fmt.Errorf("cert_file and key_file are required when TLS is enabled")
	}
	version, err := ParseVersion(cfg.MinVersion)
	if err != nil {
		return nil, err
	}

	interval := cfg.ReloadInterval
	if interval <= 0 {
		interval = DefaultReloadInterval
	}

	reloader := NewCertificateReloader(cfg.CertFile, cfg.KeyFile, interval)
	if err := reloader.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to load certificate: %w", err)
	}

	return &tls.Config{
		MinVersion:     version,
		GetCertificate: reloader.GetCertificateFunc(),
		NextProtos:     []string{"h2", "http/1.1"},
	}, nil
}

// ParseVersion converts a configured version string to a tls version
// constant. TLS 1.0 and 1.1 are rejected.
func ParseVersion(v string) (uint16, error) {
	switch v {
	case "", "1.2":
		return tls.VersionTLS12, nil
	case "1.3":
		return tls.VersionTLS13, nil
	default:
		return 0, fmt.Errorf("unsupported TLS version %q", v)
	}
}
