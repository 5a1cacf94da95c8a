// Package config provides configuration management for jimmybridge.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// The second form tolerates a missing file, in which case the defaults
// plus environment overrides are used.
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention JIMMYBRIDGE_SECTION_FIELD:
//
//   - JIMMYBRIDGE_PROXY_LISTEN_ADDRESS overrides proxy.listen_address
//   - JIMMYBRIDGE_UPSTREAM_URL overrides upstream.url
//   - JIMMYBRIDGE_AUTH_API_KEY overrides auth.api_key
//   - JIMMYBRIDGE_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Configuration Precedence
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Hot Reload
//
// Watcher reloads the file when it changes. Only auth.api_key and
// telemetry.logging.level take effect without a restart; the caller decides
// what to apply in its OnChange callback.
//
// # Example Configuration
//
//	proxy:
//	  listen_address: "0.0.0.0:8080"
//	  completion_timeout: 120s
//
//	upstream:
//	  url: "https://chatjimmy.ai/api/chat"
//	  default_model: "llama3.1-8B"
//	  idle_chunk_timeout: 60s
//
//	auth:
//	  api_key: "sk-local-secret"
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
package config
