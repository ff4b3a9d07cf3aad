// Package config handles daemon configuration loading, validation, and
// hot reload for botsense.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"botsense/internal/logging"
	"botsense/internal/telemetry"
)

// Config holds the complete daemon configuration.
type Config struct {
	// Channels lists the enabled telemetry channels. Empty enables all.
	Channels ChannelsConfig `toml:"channels" json:"channels" yaml:"channels"`

	// Calibration points at an optional override document applied over the
	// built-in calibration defaults.
	Calibration CalibrationConfig `toml:"calibration" json:"calibration" yaml:"calibration"`

	// Storage configures snapshot persistence.
	Storage StorageConfig `toml:"storage" json:"storage" yaml:"storage"`

	// Readiness configures the wait-for-ready timeout used by the daemon.
	Readiness ReadinessConfig `toml:"readiness" json:"readiness" yaml:"readiness"`

	// Metrics configures the optional Prometheus endpoint.
	Metrics MetricsConfig `toml:"metrics" json:"metrics" yaml:"metrics"`

	// Logging configuration.
	Logging logging.Config `toml:"logging" json:"logging" yaml:"logging"`
}

// ChannelsConfig selects which channels the deployment collects.
type ChannelsConfig struct {
	Enabled []string `toml:"enabled" json:"enabled" yaml:"enabled"`
}

// CalibrationConfig locates calibration overrides.
type CalibrationConfig struct {
	// Path is a TOML or JSON override document. Empty means defaults only.
	Path string `toml:"path" json:"path" yaml:"path"`
}

// StorageConfig configures the persistence adapter.
type StorageConfig struct {
	// Type is "none", "memory", or "sqlite".
	Type string `toml:"type" json:"type" yaml:"type"`

	// Path is the database file for the sqlite backend.
	Path string `toml:"path" json:"path" yaml:"path"`

	// Key is the snapshot key.
	Key string `toml:"key" json:"key" yaml:"key"`

	// DebounceMs is the snapshot coalescing window.
	DebounceMs int `toml:"debounce_ms" json:"debounce_ms" yaml:"debounce_ms"`
}

// ReadinessConfig configures readiness waiting.
type ReadinessConfig struct {
	TimeoutMs int `toml:"timeout_ms" json:"timeout_ms" yaml:"timeout_ms"`
}

// MetricsConfig configures the metrics endpoint.
type MetricsConfig struct {
	Enabled bool `toml:"enabled" json:"enabled" yaml:"enabled"`

	// Listen is the address the endpoint binds, e.g. "127.0.0.1:9477".
	Listen string `toml:"listen" json:"listen" yaml:"listen"`
}

// Default returns the default daemon configuration.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Type:       "none",
			Key:        "botsense/session",
			DebounceMs: 1000,
		},
		Readiness: ReadinessConfig{TimeoutMs: 15000},
		Metrics:   MetricsConfig{Listen: "127.0.0.1:9477"},
		Logging:   logging.DefaultConfig(),
	}
}

// EnabledChannels resolves the configured channel names. Empty config means
// every channel.
func (c *Config) EnabledChannels() ([]telemetry.Channel, error) {
	if len(c.Channels.Enabled) == 0 {
		return telemetry.Channels, nil
	}
	known := make(map[telemetry.Channel]struct{}, len(telemetry.Channels))
	for _, ch := range telemetry.Channels {
		known[ch] = struct{}{}
	}
	var out []telemetry.Channel
	for _, name := range c.Channels.Enabled {
		ch := telemetry.Channel(strings.ToLower(name))
		if _, ok := known[ch]; !ok {
			return nil, fmt.Errorf("unknown channel %q", name)
		}
		out = append(out, ch)
	}
	return out, nil
}

// Validate checks the configuration for structural problems.
func (c *Config) Validate() error {
	if _, err := c.EnabledChannels(); err != nil {
		return err
	}
	switch c.Storage.Type {
	case "", "none", "memory", "sqlite":
	default:
		return fmt.Errorf("unknown storage type %q", c.Storage.Type)
	}
	if c.Storage.Type == "sqlite" && c.Storage.Path == "" {
		return fmt.Errorf("sqlite storage requires a path")
	}
	if c.Storage.DebounceMs < 0 {
		return fmt.Errorf("storage debounce_ms must be >= 0")
	}
	if c.Readiness.TimeoutMs <= 0 {
		return fmt.Errorf("readiness timeout_ms must be > 0")
	}
	if c.Metrics.Enabled && c.Metrics.Listen == "" {
		return fmt.Errorf("metrics endpoint requires a listen address")
	}
	return nil
}

// ApplyEnvOverrides overlays BOTSENSE_* environment variables on the
// loaded configuration.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("BOTSENSE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("BOTSENSE_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("BOTSENSE_STORAGE_TYPE"); v != "" {
		c.Storage.Type = v
	}
	if v := os.Getenv("BOTSENSE_STORAGE_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("BOTSENSE_METRICS_LISTEN"); v != "" {
		c.Metrics.Enabled = true
		c.Metrics.Listen = v
	}
	if v := os.Getenv("BOTSENSE_CALIBRATION_PATH"); v != "" {
		c.Calibration.Path = v
	}
	if v := os.Getenv("BOTSENSE_READY_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Readiness.TimeoutMs = n
		}
	}
}
