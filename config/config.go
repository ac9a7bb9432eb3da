package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// Config holds user-configurable defaults, loaded from disk and overridable
// by flags in cmd/root.go.
type Config struct {
	IntervalSec   int              `json:"interval_sec"`
	HistorySize   int              `json:"history_size"`
	MaxLogSize    int              `json:"max_log_size"`
	MaxSnippets   int              `json:"max_snippets"`
	DefaultSort   int              `json:"default_sort"`
	HideLocalhost bool             `json:"hide_localhost"`
	Prometheus    PrometheusConfig `json:"prometheus"`
}

type PrometheusConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr"`
}

// Default returns a config with sensible defaults.
func Default() Config {
	return Config{
		IntervalSec:   1,
		HistorySize:   60,
		MaxLogSize:    500,
		MaxSnippets:   200,
		DefaultSort:   5, // ColState
		HideLocalhost: true,
		Prometheus: PrometheusConfig{
			Enabled: false,
			Addr:    "127.0.0.1:9100",
		},
	}
}

// Path returns the per-user config file path under the OS's standard
// config directory (e.g. %AppData% on Windows), or empty string if it
// cannot be determined.
func Path() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "xnet", "config.json")
}

// Load loads config from disk; returns defaults on error or if no config
// file exists yet.
func Load() Config {
	cfg := Default()
	p := Path()
	if p == "" {
		return cfg
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return cfg
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		log.Printf("xnet: warning: config parse error: %v", err)
	}
	return cfg
}

// Save writes the config to disk, creating its directory if needed.
func Save(cfg Config) error {
	path := Path()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
