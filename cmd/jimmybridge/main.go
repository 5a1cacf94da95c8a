// jimmybridge exposes the ChatJimmy chat service behind an OpenAI-compatible
// HTTP API.
//
// It accepts OpenAI chat completion requests, forwards them to ChatJimmy and
// translates the plain-text reply, with its trailing stats block removed,
// into OpenAI JSON responses or server-sent event streams.
//
// Usage:
//
//	# Start with defaults (listens on 127.0.0.1:8080)
//	jimmybridge run
//
//	# Start with a configuration file and an env file holding the API key
//	jimmybridge run --config /etc/jimmybridge/config.yaml --env-file .env
//
//	# Check a configuration file
//	jimmybridge validate --config config.yaml
//
//	# Show version information
//	jimmybridge version
package main

func main() {
	Execute()
}
