// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hjson/hjson-go/v4"
	"gopkg.in/yaml.v3"
)

// Defaults for fields left out of the settings file.
const (
	DefaultServerHost     = "127.0.0.1"
	DefaultServerPort     = 8764
	DefaultFirstPort      = 8765
	DefaultPortCount      = 100
	DefaultHealthTimeout  = 5 * time.Second
	DefaultHealthInterval = 250 * time.Millisecond
	DefaultWatchDebounce  = 500 * time.Millisecond
	DefaultHistoryMax     = 1000
	DefaultHistoryMaxAge  = time.Hour
	DefaultDataDirName    = "LiteClaw"
)

// DefaultCommand launches the bundled Python backend.
var DefaultCommand = []string{"python3", "apps/backend/main.py"}

// FileNames are the settings files FindConfig looks for, in order.
var FileNames = []string{"liteclaw.hjson", "liteclaw.json", "liteclaw.yaml", "liteclaw.yml"}

// Loader handles settings file loading.
type Loader struct{}

// NewLoader creates a new settings loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads and parses the settings at path. The format follows the file
// extension: .yaml and .yml are YAML, anything else is HJSON (a superset of
// JSON).
func (l *Loader) Load(ctx context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return l.Parse(data, formatFor(path))
}

// Parse decodes settings in the given format ("hjson", "json" or "yaml").
func (l *Loader) Parse(data []byte, format string) (*Config, error) {
	raw := map[string]interface{}{}
	switch format {
	case "yaml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	default:
		if err := hjson.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse hjson: %w", err)
		}
	}

	// Round-trip through JSON for type safety.
	jsonData, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("convert to json: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(jsonData, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// LoadWithDefaults loads settings with default values applied.
func (l *Loader) LoadWithDefaults(ctx context.Context, path string) (*Config, error) {
	cfg, err := l.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	return cfg, nil
}

// FindConfig searches dir for a settings file.
func (l *Loader) FindConfig(dir string) (string, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			abs, err := filepath.Abs(path)
			if err != nil {
				return path, nil
			}
			return abs, nil
		}
	}
	return "", fmt.Errorf("config file not found (looked for %s)", strings.Join(FileNames, ", "))
}

// Default returns settings with every default applied, for running without
// a settings file.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func formatFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".json":
		return "json"
	}
	return "hjson"
}

// applyDefaults sets default values for missing fields.
func applyDefaults(cfg *Config) {
	if cfg.DataDir == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			cfg.DataDir = filepath.Join(dir, DefaultDataDirName)
		}
	}
	cfg.DataDir = expandHome(cfg.DataDir)

	// Server defaults
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultServerHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}

	// Backend defaults
	if len(cfg.Backend.Command) == 0 {
		cfg.Backend.Command = append([]string(nil), DefaultCommand...)
	}
	if cfg.Backend.HealthTimeout == "" {
		cfg.Backend.HealthTimeout = DefaultHealthTimeout.String()
	}
	if cfg.Backend.HealthInterval == "" {
		cfg.Backend.HealthInterval = DefaultHealthInterval.String()
	}
	if cfg.Backend.WatchDebounce == "" {
		cfg.Backend.WatchDebounce = DefaultWatchDebounce.String()
	}

	// Port range defaults
	if cfg.Ports.First == 0 {
		cfg.Ports.First = DefaultFirstPort
	}
	if cfg.Ports.Count == 0 {
		cfg.Ports.Count = DefaultPortCount
	}

	// Events defaults
	if cfg.Events.History.MaxEvents == 0 {
		cfg.Events.History.MaxEvents = DefaultHistoryMax
	}
	if cfg.Events.History.MaxAge == "" {
		cfg.Events.History.MaxAge = DefaultHistoryMaxAge.String()
	}
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
