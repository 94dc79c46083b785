// Package config loads the indexer's YAML configuration file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration document.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Watcher   WatcherConfig   `yaml:"watcher"`
	Canvas    CanvasConfig    `yaml:"canvas"`
	Database  DatabaseConfig  `yaml:"database"`
	Discovery DiscoveryConfig `yaml:"discovery"`
}

// DiscoveryConfig points at the homeserver resolver used to admit new
// users (spec §4.7 step 2).
type DiscoveryConfig struct {
	ResolverURL string `yaml:"resolver_url"`
}

// ServerConfig configures the admission/query HTTP surface.
type ServerConfig struct {
	Listen string `yaml:"listen"`
}

// WatcherConfig configures the polling scheduler.
type WatcherConfig struct {
	PollIntervalMS int `yaml:"poll_interval_ms"`
}

// CanvasConfig configures the canvas's starting size and the credit
// economy applied to placements.
type CanvasConfig struct {
	InitialWidth       uint32 `yaml:"initial_width"`
	InitialHeight      uint32 `yaml:"initial_height"`
	MaxCredits         int    `yaml:"max_credits"`
	CreditRegenSeconds int    `yaml:"credit_regen_seconds"`
}

// DatabaseConfig configures the Postgres connection.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// Load reads and parses the YAML config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return &cfg, nil
}
