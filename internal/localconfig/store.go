// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package localconfig reads and writes the config.json document that the
// backend consumes from its data directory.
package localconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// FileName is the config document name inside the data directory.
	FileName = "config.json"

	tempSuffix = ".tmp"
)

var (
	// ErrIO is returned when the config file or its directory cannot be accessed.
	ErrIO = errors.New("config io error")

	// ErrParse is returned when the config file is not a valid document.
	ErrParse = errors.New("invalid config json")

	// ErrSerialize is returned when a config cannot be encoded.
	ErrSerialize = errors.New("failed serializing config")
)

// Path returns the config file path for a data directory.
func Path(dir string) string {
	return filepath.Join(dir, FileName)
}

// EnsureExists writes the default document if no config file exists in dir.
func EnsureExists(dir string) error {
	if _, err := os.Stat(Path(dir)); err == nil {
		return nil
	}
	return WriteAtomic(dir, Default())
}

// Read ensures the config file exists and parses it. Fields missing from the
// file take their default values.
func Read(dir string) (*LocalConfig, error) {
	if err := EnsureExists(dir); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(Path(dir))
	if err != nil {
		return nil, fmt.Errorf("%w: read config: %w", ErrIO, err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if cfg.AllowedFolders == nil {
		cfg.AllowedFolders = []string{}
	}
	return cfg, nil
}

// WriteAtomic replaces the config file with cfg. The document is written to a
// sibling temp file which is then renamed over the target, so readers see
// either the old or the new document and never a partial one.
func WriteAtomic(dir string, cfg *LocalConfig) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: create data dir: %w", ErrIO, err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSerialize, err)
	}

	path := Path(dir)
	temp := path + tempSuffix
	if err := os.WriteFile(temp, data, 0644); err != nil {
		return fmt.Errorf("%w: write temp config: %w", ErrIO, err)
	}

	if _, err := os.Stat(path); err == nil {
		if err := os.Remove(path); err != nil {
			os.Remove(temp)
			return fmt.Errorf("%w: remove old config: %w", ErrIO, err)
		}
	}

	if err := os.Rename(temp, path); err != nil {
		return fmt.Errorf("%w: replace config: %w", ErrIO, err)
	}
	return nil
}
