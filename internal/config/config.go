// Package config loads the YAML configuration file accepted by the goblk
// CLI.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoggingConfig controls the CLI's structured logging output.
type LoggingConfig struct {
	Format string `yaml:"format,omitempty"` // "text" (default) or "json"
	Level  string `yaml:"level,omitempty"`  // debug, info, warn, error
}

// MetricsConfig controls the CLI's Prometheus /metrics endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	Addr    string `yaml:"addr,omitempty"` // e.g. "127.0.0.1:9109"
}

// MountConfig describes a single NBD mount to bring up.
type MountConfig struct {
	Device    string `yaml:"device"`              // e.g. /dev/nbd0
	Backend   string `yaml:"backend"`              // "ramdisk" or "deadbeef"
	SizeBytes int64  `yaml:"sizeBytes,omitempty"`  // ramdisk only
	BlockSize uint32 `yaml:"blockSize,omitempty"`  // default 4096
	Blocks    uint64 `yaml:"blocks,omitempty"`     // deadbeef only

	Logging LoggingConfig `yaml:"logging,omitempty"`
	Metrics MetricsConfig `yaml:"metrics,omitempty"`
}

// defaultBlockSize is used whenever a config file omits blockSize.
const defaultBlockSize = 4096

// Load reads and parses a MountConfig from path, filling in defaults for an
// omitted blockSize, logging format and level, and metrics address. An
// omitted sizeBytes or blocks is left at zero.
func Load(path string) (*MountConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var cfg MountConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if cfg.Device == "" {
		return nil, fmt.Errorf("config: %s: device is required", path)
	}
	if cfg.Backend == "" {
		return nil, fmt.Errorf("config: %s: backend is required", path)
	}
	if cfg.BlockSize == 0 {
		cfg.BlockSize = defaultBlockSize
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = "127.0.0.1:9109"
	}

	return &cfg, nil
}
