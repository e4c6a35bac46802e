package config

import (
	"flag"
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// Flags holds command-line flag values. Empty/zero values mean "not set"
// and never override the file or the defaults.
type Flags struct {
	ConfigPath     string
	Addr           string
	LogLevel       string
	MetricsAddr    string
	MetricsEnabled bool
}

// ParseFlags parses the process's command-line flags.
func ParseFlags() *Flags {
	f := &Flags{}

	flag.StringVar(&f.ConfigPath, "config", "./chatcore.toml", "Path to configuration file")
	flag.StringVar(&f.Addr, "addr", "", "TCP listen address (overrides config)")
	flag.StringVar(&f.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&f.MetricsAddr, "metrics", "", "Prometheus exposition bind address (implies enabled)")

	flag.Parse()
	return f
}

// Load parses a TOML file at path over Default(). A missing file is not
// an error; it yields the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file: %w", err)
	}

	var fc FileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return cfg, fmt.Errorf("parsing config file: %w", err)
	}

	return mergeFile(cfg, fc), nil
}

// ApplyFlags merges any set command-line flags into cfg, taking
// precedence over both defaults and the file.
func ApplyFlags(cfg Config, f *Flags) Config {
	if f.Addr != "" {
		cfg.Listen.Address = f.Addr
	}
	if f.LogLevel != "" {
		cfg.LogLevel = f.LogLevel
	}
	if f.MetricsAddr != "" {
		cfg.Metrics.Address = f.MetricsAddr
		cfg.Metrics.Enabled = true
	}
	return cfg
}

// LoadWithFlags loads the file named by f.ConfigPath and applies f on top.
func LoadWithFlags(f *Flags) (Config, error) {
	cfg, err := Load(f.ConfigPath)
	if err != nil {
		return cfg, err
	}
	return ApplyFlags(cfg, f), nil
}

func mergeFile(dst Config, src FileConfig) Config {
	if src.Listen.Address != "" {
		dst.Listen.Address = src.Listen.Address
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if src.Watchdog.Interval != "" {
		dst.Watchdog.Interval = src.Watchdog.Interval
	}
	if src.Watchdog.Timeout != "" {
		dst.Watchdog.Timeout = src.Watchdog.Timeout
	}
	if src.MaxLineBytes > 0 {
		dst.MaxLineBytes = src.MaxLineBytes
	}
	if src.Metrics.Enabled {
		dst.Metrics.Enabled = src.Metrics.Enabled
	}
	if src.Metrics.Address != "" {
		dst.Metrics.Address = src.Metrics.Address
	}
	if src.Metrics.Path != "" {
		dst.Metrics.Path = src.Metrics.Path
	}
	return dst
}
