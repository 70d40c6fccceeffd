// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package config loads the supervisor settings file.
package config

import "time"

// Config is the root settings structure.
type Config struct {
	// DataDir holds config.json, the backend log and the pid file.
	DataDir string        `json:"data_dir"`
	Server  ServerConfig  `json:"server"`
	Backend BackendConfig `json:"backend"`
	Ports   PortsConfig   `json:"ports"`
	Events  EventsConfig  `json:"events"`
}

// ServerConfig configures the loopback control API.
type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// BackendConfig describes how to launch and probe the backend.
type BackendConfig struct {
	Command        []string          `json:"command"`
	WorkDir        string            `json:"work_dir,omitempty"`
	Env            map[string]string `json:"env,omitempty"`
	HealthTimeout  string            `json:"health_timeout"`
	HealthInterval string            `json:"health_interval"`
	// Watch restarts the backend when its executable changes on disk.
	Watch         bool   `json:"watch"`
	WatchDebounce string `json:"watch_debounce"`
}

// PortsConfig is the range scanned for a free backend port.
type PortsConfig struct {
	First int `json:"first"`
	Count int `json:"count"`
}

// Last returns the highest port in the range.
func (p PortsConfig) Last() int {
	return p.First + p.Count - 1
}

// EventsConfig configures the event bus.
type EventsConfig struct {
	History EventHistoryConfig `json:"history"`
}

// EventHistoryConfig bounds retained events.
type EventHistoryConfig struct {
	MaxEvents int    `json:"max_events"`
	MaxAge    string `json:"max_age"`
}

// GetHealthTimeout parses HealthTimeout, falling back to the default.
func (b BackendConfig) GetHealthTimeout() time.Duration {
	return parseDurationOr(b.HealthTimeout, DefaultHealthTimeout)
}

// GetHealthInterval parses HealthInterval, falling back to the default.
func (b BackendConfig) GetHealthInterval() time.Duration {
	return parseDurationOr(b.HealthInterval, DefaultHealthInterval)
}

// GetWatchDebounce parses WatchDebounce, falling back to the default.
func (b BackendConfig) GetWatchDebounce() time.Duration {
	return parseDurationOr(b.WatchDebounce, DefaultWatchDebounce)
}

// GetMaxAge parses MaxAge, falling back to the default.
func (h EventHistoryConfig) GetMaxAge() time.Duration {
	return parseDurationOr(h.MaxAge, DefaultHistoryMaxAge)
}

func parseDurationOr(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
