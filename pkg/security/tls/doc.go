/*
Package tls serves the proxy listener over HTTPS.

The certificate and key are re-read whenever their modification time moves
forward, so a renewed certificate is picked up without restarting:

	tlsConfig, err := tls.NewServerConfig(ctx, tls.Config{
		CertFile: "/etc/jimmybridge/server.crt",
		KeyFile:  "/etc/jimmybridge/server.key",
	})
	if err != nil {
		return err
	}
	ln = cryptotls.NewListener(ln, tlsConfig)

A reload that fails (a half-written file, an expired certificate) is logged
and the previous certificate keeps being served.
*/
package tls
