/*
Package security holds the inbound security layers of the proxy.

# API Key Authentication

auth.TokenValidator checks the bearer token on every /v1 request. The
token can be swapped at runtime when the config file changes:

	tokens := auth.NewTokenValidator(cfg.Auth.APIKey)
	r.Use(auth.NewBearerMiddleware(tokens).Handle)

	tokens.SetToken(newCfg.Auth.APIKey)

# TLS

tls.NewServerConfig loads the listener certificate and keeps reloading it
from disk:

	tlsConfig, err := tls.NewServerConfig(ctx, tls.Config{
		CertFile: cfg.Proxy.TLS.CertFile,
		KeyFile:  cfg.Proxy.TLS.KeyFile,
	})
*/
package security
