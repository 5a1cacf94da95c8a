package tls

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"log/slog"
	"os"
	"sync"
	"time"
)

// CertificateReloader polls a certificate and key pair and swaps in new
// versions when either file's modification time moves forward.
type CertificateReloader struct {
	certFile string
	keyFile  string
	interval time.Duration

	mu       sync.RWMutex
	cert     *tls.Certificate
	certTime time.Time
	keyTime  time.Time
}

// NewCertificateReloader creates a reloader. Nothing is read until Start.
func NewCertificateReloader(certFile, keyFile string, interval time.Duration) *CertificateReloader {
	return &CertificateReloader{
		certFile: certFile,
		keyFile:  keyFile,
		interval: interval,
	}
}

// Start loads the initial pair and polls for changes until ctx is canceled.
func (r *CertificateReloader) Start(ctx context.Context) error {
	if err := r.reload(); err != nil {
		return err
	}
	r.logCertificate()

	go r.reloadLoop(ctx)
	return nil
}

func (r *CertificateReloader) reloadLoop(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !r.needsReload() {
				continue
			}
			// A failed reload keeps serving the previous certificate.
			if err := r.reload(); err != nil {
				slog.Error("failed to reload certificate",
					"error", err,
					"cert_file", r.certFile,
					"key_file", r.keyFile,
				)
				continue
			}
			slog.Info("certificate reloaded", "cert_file", r.certFile)
			r.logCertificate()

		case <-ctx.Done():
			return
		}
	}
}

// modTimes returns the modification times of the certificate and key.
func (r *CertificateReloader) modTimes() (cert, key time.Time, err error) {
	certInfo, err := os.Stat(r.certFile)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	keyInfo, err := os.Stat(r.keyFile)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return certInfo.ModTime(), keyInfo.ModTime(), nil
}

// needsReload reports whether either file moved forward since the last
// successful load. A file that cannot be stat'ed is treated as unchanged.
func (r *CertificateReloader) needsReload() bool {
	certTime, keyTime, err := r.modTimes()
	if err != nil {
		return false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return certTime.After(r.certTime) || keyTime.After(r.keyTime)
}

func (r *CertificateReloader) reload() error {
	certTime, keyTime, err := r.modTimes()
	if err != nil {
		return err
	}

	pair, err := tls.LoadX509KeyPair(r.certFile, r.keyFile)
	if err != nil {
		return err
	}
	if err := ValidateCertificate(&pair, time.Now()); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.cert = &pair
	r.certTime = certTime
	r.keyTime = keyTime
	return nil
}

// GetCertificate returns the current certificate, or nil before Start.
func (r *CertificateReloader) GetCertificate() *tls.Certificate {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cert
}

// GetCertificateFunc adapts the reloader to tls.Config.GetCertificate.
func (r *CertificateReloader) GetCertificateFunc() func(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	return func(*tls.ClientHelloInfo) (*tls.Certificate, error) {
		return r.GetCertificate(), nil
	}
}

func (r *CertificateReloader) logCertificate() {
	cert := r.GetCertificate()
	if cert == nil || len(cert.Certificate) == 0 {
		return
	}
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return
	}

	attrs := []any{
		"subject", leaf.Subject.CommonName,
		"issuer", leaf.Issuer.CommonName,
		"expires_at", leaf.NotAfter.Format(time.RFC3339),
	}
	if ExpiresSoon(leaf, time.Now()) {
		slog.Warn("certificate expiring soon", attrs...)
		return
	}
	slog.Info("certificate loaded", attrs...)
}
