// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import "time"

// Backend phases reported in [ConnectionInfo.Phase].
const (
	PhaseStopped  = "stopped"
	PhaseStarting = "starting"
	PhaseHealthy  = "healthy"
	PhaseFailed   = "failed"
)

// Error codes returned in [APIError.Code].
const (
	CodeNoPortAvailable    = "NO_PORT_AVAILABLE"
	CodeIO                 = "IO_ERROR"
	CodeParse              = "PARSE_ERROR"
	CodeSerialize          = "SERIALIZE_ERROR"
	CodeNotADirectory      = "NOT_A_DIRECTORY"
	CodeSpawnFailed        = "SPAWN_FAILED"
	CodeHealthCheckTimeout = "HEALTH_CHECK_TIMEOUT"
	CodeBackendNotReady    = "BACKEND_NOT_READY"
	CodeReloadFailed       = "RELOAD_FAILED"
	CodeLockPoisoned       = "LOCK_POISONED"
	CodeBadRequest         = "BAD_REQUEST"
	CodeInternalError      = "INTERNAL_ERROR"
)

// ConnectionInfo tells a UI how to reach the backend.
type ConnectionInfo struct {
	// BaseURL is http://127.0.0.1:<port> of the current backend.
	BaseURL string `json:"base_url"`

	// Token must be sent as "Authorization: Bearer <token>" on every
	// backend request.
	Token string `json:"token"`

	// BackendReady is true once the health check passed.
	BackendReady bool `json:"backend_ready"`

	// LastError describes the most recent start failure or unexpected exit.
	LastError string `json:"last_error,omitempty"`

	// LogPath is the file receiving the backend's stdout and stderr.
	LogPath string `json:"log_path"`

	Phase     string    `json:"phase"`
	Port      int       `json:"port,omitempty"`
	PID       int       `json:"pid,omitempty"`
	StartedAt time.Time `json:"started_at,omitzero"`
}

// LocalConfig is the config document the backend reads.
type LocalConfig struct {
	AllowedFolders []string    `json:"allowed_folders"`
	Shell          ShellConfig `json:"shell"`
	HistoryEnabled bool        `json:"history_enabled"`
}

// ShellConfig controls backend shell access.
type ShellConfig struct {
	Enabled bool `json:"enabled"`
}

// Logs is the tail of the backend log.
type Logs struct {
	Lines   int    `json:"lines"`
	Content string `json:"content"`
}

// Event is a supervisor event such as "backend.ready" or "config.changed".
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}
