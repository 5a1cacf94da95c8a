package config

import (
	"fmt"
	"sync/atomic"
)

// current is the process-wide configuration. Long-lived components take
// their settings at construction; only the CLI and the reload path read it.
var current atomic.Pointer[Config]

// GetConfig returns the configuration last stored with SetConfig or
// ReloadConfig, or nil when none has been loaded.
func GetConfig() *Config {
	return current.Load()
}

// SetConfig stores cfg as the process-wide configuration.
func SetConfig(cfg *Config) {
	current.Store(cfg)
}

// ReloadConfig re-reads path with environment overrides. The stored
// configuration is replaced only when the new one loads and validates, so a
// broken edit leaves the running settings in place.
func ReloadConfig(path string) (*Config, error) {
	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		return nil, fmt.Errorf("failed to reload configuration: %w", err)
	}

	current.Store(cfg)
	return cfg, nil
}
