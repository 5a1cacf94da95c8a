package tls

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// writeCertificate writes a self-signed pair for commonName to dir and
// returns the two paths.
func writeCertificate(t *testing.T, dir, commonName string, notBefore, notAfter time.Time) (string, string) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	template := &x509.Certificate{
		SerialNumber: big.NewInt(time.Now().UnixNano()),
		Subject:      pkix.Name{CommonName: commonName},
		DNSNames:     []string{"localhost"},
		NotBefore:    notBefore,
		NotAfter:     notAfter,
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("failed to create certificate: %v", err)
	}
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatalf("failed to marshal key: %v", err)
	}

	certFile := filepath.Join(dir, "server.crt")
	keyFile := filepath.Join(dir, "server.key")
	if err := os.WriteFile(certFile, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(keyFile, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}), 0o600); err != nil {
		t.Fatal(err)
	}
	return certFile, keyFile
}

func leafCommonName(t *testing.T, cert *tls.Certificate) string {
	t.Helper()
	if cert == nil {
		t.Fatal("expected a certificate, got nil")
	}
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		t.Fatalf("failed to parse leaf: %v", err)
	}
	return leaf.Subject.CommonName
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		input   string
		want    uint16
		wantErr bool
	}{
		{input: "", want: tls.VersionTLS12},
		{input: "1.2", want: tls.VersionTLS12},
		{input: "1.3", want: tls.VersionTLS13},
		{input: "1.1", wantErr: true},
		{input: "tls13", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseVersion(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected version %x, got %x", tt.want, got)
			}
		})
	}
}

func TestValidateCertificate(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name      string
		notBefore time.Time
		notAfter  time.Time
		wantErr   bool
	}{
		{name: "valid", notBefore: now.Add(-time.Hour), notAfter: now.Add(90 * 24 * time.Hour)},
		{name: "expired", notBefore: now.Add(-48 * time.Hour), notAfter: now.Add(-time.Hour), wantErr: true},
		{name: "not yet valid", notBefore: now.Add(time.Hour), notAfter: now.Add(48 * time.Hour), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			certFile, keyFile := writeCertificate(t, t.TempDir(), "proxy", tt.notBefore, tt.notAfter)
			cert, err := tls.LoadX509KeyPair(certFile, keyFile)
			if err != nil {
				t.Fatalf("failed to load pair: %v", err)
			}

			err = ValidateCertificate(&cert, now)
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}

	if err := ValidateCertificate(&tls.Certificate{}, now); err == nil {
		t.Error("expected error for empty chain")
	}
}

func TestExpiresSoon(t *testing.T) {
	now := time.Now()
	if !ExpiresSoon(&x509.Certificate{NotAfter: now.Add(7 * 24 * time.Hour)}, now) {
		t.Error("expected a certificate expiring in a week to be flagged")
	}
	if ExpiresSoon(&x509.Certificate{NotAfter: now.Add(90 * 24 * time.Hour)}, now) {
		t.Error("expected a certificate expiring in 90 days not to be flagged")
	}
}

func TestNewServerConfig(t *testing.T) {
	now := time.Now()
	certFile, keyFile := writeCertificate(t, t.TempDir(), "proxy", now.Add(-time.Hour), now.Add(24*time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := NewServerConfig(ctx, Config{CertFile: certFile, KeyFile: keyFile, MinVersion: "1.3"})
	if err != nil {
		t.Fatalf("NewServerConfig failed: %v", err)
	}
	if cfg.MinVersion != tls.VersionTLS13 {
		t.Errorf("expected min version TLS 1.3, got %x", cfg.MinVersion)
	}

	cert, err := cfg.GetCertificate(&tls.ClientHelloInfo{ServerName: "localhost"})
	if err != nil {
		t.Fatalf("GetCertificate failed: %v", err)
	}
	if got := leafCommonName(t, cert); got != "proxy" {
		t.Errorf("expected common name %q, got %q", "proxy", got)
	}
}

func TestNewServerConfig_Errors(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	certFile, keyFile := writeCertificate(t, dir, "proxy", now.Add(-time.Hour), now.Add(24*time.Hour))

	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "missing paths", cfg: Config{}},
		{name: "bad version", cfg: Config{CertFile: certFile, KeyFile: keyFile, MinVersion: "1.0"}},
		{name: "missing key file", cfg: Config{CertFile: certFile, KeyFile: filepath.Join(dir, "absent.key")}},
		{name: "key in place of cert", cfg: Config{CertFile: keyFile, KeyFile: keyFile}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewServerConfig(context.Background(), tt.cfg); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestCertificateReloader_PicksUpRenewal(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	certFile, keyFile := writeCertificate(t, dir, "first", now.Add(-time.Hour), now.Add(24*time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloader := NewCertificateReloader(certFile, keyFile, 10*time.Millisecond)
	if err := reloader.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if got := leafCommonName(t, reloader.GetCertificate()); got != "first" {
		t.Fatalf("expected common name %q, got %q", "first", got)
	}

	writeCertificate(t, dir, "second", now.Add(-time.Hour), now.Add(24*time.Hour))
	later := now.Add(time.Minute)
	for _, path := range []string{certFile, keyFile} {
		if err := os.Chtimes(path, later, later); err != nil {
			t.Fatal(err)
		}
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if leafCommonName(t, reloader.GetCertificate()) == "second" {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Errorf("expected renewed certificate %q to be served", "second")
}

func TestCertificateReloader_KeepsCertificateOnBadReload(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	certFile, keyFile := writeCertificate(t, dir, "first", now.Add(-time.Hour), now.Add(24*time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloader := NewCertificateReloader(certFile, keyFile, 10*time.Millisecond)
	if err := reloader.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if err := os.WriteFile(certFile, []byte("not a certificate"), 0o600); err != nil {
		t.Fatal(err)
	}
	later := now.Add(time.Minute)
	if err := os.Chtimes(certFile, later, later); err != nil {
		t.Fatal(err)
	}

	time.Sleep(100 * time.Millisecond)
	if got := leafCommonName(t, reloader.GetCertificate()); got != "first" {
		t.Errorf("expected previous certificate %q to be kept, got %q", "first", got)
	}
}
