// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package localconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
)

// ErrNotADirectory is returned when a folder path does not name an existing directory.
var ErrNotADirectory = errors.New("not a folder")

// ShellConfig controls the backend's shell agent.
type ShellConfig struct {
	Enabled bool `json:"enabled"`
}

// LocalConfig is the document stored at <data_dir>/config.json.
type LocalConfig struct {
	AllowedFolders []string    `json:"allowed_folders"`
	Shell          ShellConfig `json:"shell"`
	HistoryEnabled bool        `json:"history_enabled"`
}

// Default returns a config with default values.
func Default() *LocalConfig {
	return &LocalConfig{
		AllowedFolders: []string{},
		Shell:          ShellConfig{Enabled: false},
		HistoryEnabled: true,
	}
}

// HasFolder reports whether path is in the allowed set.
func (c *LocalConfig) HasFolder(path string) bool {
	return slices.Contains(c.AllowedFolders, path)
}

// AddFolder inserts path keeping the set sorted. It returns false if the
// path was already present.
func (c *LocalConfig) AddFolder(path string) bool {
	if c.HasFolder(path) {
		return false
	}
	c.AllowedFolders = append(c.AllowedFolders, path)
	sort.Strings(c.AllowedFolders)
	return true
}

// RemoveFolder drops every entry equal to path.
func (c *LocalConfig) RemoveFolder(path string) {
	kept := c.AllowedFolders[:0]
	for _, entry := range c.AllowedFolders {
		if entry != path {
			kept = append(kept, entry)
		}
	}
	c.AllowedFolders = kept
}

// NormalizeFolder returns the canonical absolute form of path, resolving
// relative segments and symlinks. The path must be an existing directory.
func NormalizeFolder(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotADirectory, path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize folder %s: %w", path, err)
	}
	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize folder %s: %w", path, err)
	}
	return canonical, nil
}
