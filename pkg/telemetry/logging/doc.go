// Package logging provides structured logging with secret redaction.
//
// # Overview
//
// The logging package builds a log/slog logger with:
//   - JSON or text output
//   - A level that can be changed at runtime (config hot reload)
//   - Redaction of bearer tokens and API keys in attribute values
//   - request_id and model attributes taken from the context
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:         "info",
//	    Format:        "json",
//	    RedactSecrets: true,
//	})
//	slog.SetDefault(logger.Logger)
//
//	ctx = logging.WithRequestID(ctx, "3f2a...")
//	slog.InfoContext(ctx, "chat completion finished", "frames", 12)
//	// {"level":"INFO","msg":"chat completion finished","frames":12,"request_id":"3f2a..."}
//
//	logger.SetLevel("debug")
//
// # Redaction
//
//   - Authorization: Bearer sk-abc123 → Bearer ***
//   - sk-abc123xyz → sk-***
//   - values under keys such as "api_key" or "token" keep a 4-character prefix
package logging
