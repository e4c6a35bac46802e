// Package config loads chatcore's server configuration: a baseline
// default, optionally overridden by a TOML file, optionally overridden
// again by command-line flags.
package config

import (
	"fmt"
	"time"
)

// ListenConfig describes the server's TCP listen address.
type ListenConfig struct {
	Address string `toml:"address"`
}

// WatchdogConfig pairs the ping interval and pong timeout in one value.
// A file that sets only one of them keeps the default for the other, and
// Validate checks the two together (the timeout must exceed the interval).
type WatchdogConfig struct {
	Interval string `toml:"interval"`
	Timeout  string `toml:"timeout"`
}

// MetricsConfig controls the optional Prometheus exposition endpoint.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Address string `toml:"address"`
	Path    string `toml:"path"`
}

// FileConfig is the shape of the on-disk TOML configuration file.
type FileConfig struct {
	Listen       ListenConfig   `toml:"listen"`
	LogLevel     string         `toml:"log_level"`
	Watchdog     WatchdogConfig `toml:"watchdog"`
	MaxLineBytes int            `toml:"max_line_bytes"`
	Metrics      MetricsConfig  `toml:"metrics"`
}

// Config is the fully resolved, validated server configuration.
type Config struct {
	Listen       ListenConfig
	LogLevel     string
	Watchdog     WatchdogConfig
	MaxLineBytes int
	Metrics      MetricsConfig
}

// Default returns the baseline configuration applied before any file or
// flag overrides.
func Default() Config {
	return Config{
		Listen:       ListenConfig{Address: ":6667"},
		LogLevel:     "info",
		Watchdog:     WatchdogConfig{Interval: "90s", Timeout: "180s"},
		MaxLineBytes: 1024,
		Metrics: MetricsConfig{
			Enabled: false,
			Address: ":9100",
			Path:    "/metrics",
		},
	}
}

// WatchdogInterval parses Watchdog.Interval, falling back to 90s if unset
// or unparsable.
func (c Config) WatchdogInterval() time.Duration {
	if d, err := time.ParseDuration(c.Watchdog.Interval); err == nil {
		return d
	}
	return 90 * time.Second
}

// WatchdogTimeout parses Watchdog.Timeout, falling back to 180s if unset
// or unparsable.
func (c Config) WatchdogTimeout() time.Duration {
	if d, err := time.ParseDuration(c.Watchdog.Timeout); err == nil {
		return d
	}
	return 180 * time.Second
}

// Validate rejects configuration combinations that cannot run correctly.
func (c Config) Validate() error {
	if c.Listen.Address == "" {
		return fmt.Errorf("config: listen.address must not be empty")
	}
	if c.MaxLineBytes <= 0 {
		return fmt.Errorf("config: max_line_bytes must be positive")
	}
	interval, err := time.ParseDuration(c.Watchdog.Interval)
	if err != nil || interval <= 0 {
		return fmt.Errorf("config: watchdog.interval must be a positive duration")
	}
	timeout, err := time.ParseDuration(c.Watchdog.Timeout)
	if err != nil || timeout <= 0 {
		return fmt.Errorf("config: watchdog.timeout must be a positive duration")
	}
	if timeout <= interval {
		return fmt.Errorf("config: watchdog.timeout must be greater than watchdog.interval")
	}
	if c.Metrics.Enabled && c.Metrics.Address == "" {
		return fmt.Errorf("config: metrics.address must not be empty when metrics.enabled is true")
	}
	return nil
}
