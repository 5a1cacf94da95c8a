/*
Package auth provides bearer token authentication for the jimmybridge API.

The proxy accepts at most one token, taken from auth.api_key or the
JIMMYBRIDGE_AUTH_API_KEY environment variable. When it is empty every
request is let through.

# Basic Usage

	validator := auth.NewTokenValidator(cfg.Auth.APIKey)
	router.Use(auth.NewBearerMiddleware(validator).Handle)

Clients send the token the way OpenAI SDKs do:

	Authorization: Bearer sk-local-123

# Hot Reload

SetToken swaps the token atomically, so a config watcher can rotate it
without restarting the server:

	watcher := config.NewWatcher(path, config.DefaultWatchDebounce, func(c *config.Config) {
		validator.SetToken(c.Auth.APIKey)
	}, logger)

# Security

  - Tokens are compared as SHA-256 digests with crypto/subtle, so timing
    reveals neither content nor length
  - Failures are logged with a reason but never with the presented token
  - A failed request gets 401 with "WWW-Authenticate: Bearer"
*/
package auth
