// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package control implements the operations the desktop UI calls: connection
// info, config edits that are pushed to the backend, retries and log access.
// Every operation holds the runtime lock for its whole duration.
package control

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/wingedpig/liteclaw/internal/events"
	"github.com/wingedpig/liteclaw/internal/localconfig"
	"github.com/wingedpig/liteclaw/internal/supervisor"
)

// ErrShutdown is returned by RetryBackend after Shutdown.
var ErrShutdown = errors.New("supervisor is shutting down")

// Service is the facade over the runtime, the supervisor and the config store.
type Service struct {
	rt  *supervisor.Runtime
	sup *supervisor.Supervisor
	bus events.EventBus

	// closed is only accessed under the runtime lock.
	closed bool
}

// New creates a Service and registers it for unexpected backend exits.
func New(rt *supervisor.Runtime, sup *supervisor.Supervisor, bus events.EventBus) *Service {
	s := &Service{rt: rt, sup: sup, bus: bus}
	sup.OnUnexpectedExit = s.handleExit
	return s
}

// Start ensures the config file exists and spawns the backend. A spawn
// failure is left in last_error rather than returned, so the UI can offer a
// retry.
func (s *Service) Start(ctx context.Context) error {
	return s.rt.Do(func(st *supervisor.State) error {
		if err := localconfig.EnsureExists(st.DataDir); err != nil {
			return err
		}
		if err := s.sup.Spawn(ctx, st); err != nil {
			log.Printf("Warning: backend did not start: %v", err)
		}
		return nil
	})
}

// Shutdown stops the backend, even after a panic poisoned the runtime.
// Later retries are refused.
func (s *Service) Shutdown() error {
	return s.rt.Teardown(func(st *supervisor.State) {
		s.closed = true
		s.sup.Stop(st)
	})
}

// ConnectionInfo returns the current connection details.
func (s *Service) ConnectionInfo() (supervisor.ConnectionInfo, error) {
	var info supervisor.ConnectionInfo
	err := s.rt.Do(func(st *supervisor.State) error {
		info = st.Snapshot()
		return nil
	})
	return info, err
}

// Config reads the local config document.
func (s *Service) Config() (*localconfig.LocalConfig, error) {
	var cfg *localconfig.LocalConfig
	err := s.rt.Do(func(st *supervisor.State) error {
		var err error
		cfg, err = localconfig.Read(st.DataDir)
		return err
	})
	return cfg, err
}

// AddFolder adds a directory to allowed_folders and reloads the backend.
// Adding a folder that is already present changes nothing and skips the reload.
func (s *Service) AddFolder(ctx context.Context, path string) (*localconfig.LocalConfig, error) {
	var cfg *localconfig.LocalConfig
	err := s.rt.Do(func(st *supervisor.State) error {
		normalized, err := localconfig.NormalizeFolder(path)
		if err != nil {
			return err
		}

		cfg, err = localconfig.Read(st.DataDir)
		if err != nil {
			return err
		}
		if !cfg.AddFolder(normalized) {
			return nil
		}
		return s.commit(ctx, st, cfg, "folder_added", normalized)
	})
	return cfg, err
}

// RemoveFolder drops a directory from allowed_folders and reloads the
// backend. A path that no longer resolves is matched as given, so stale
// entries for deleted folders can still be removed.
func (s *Service) RemoveFolder(ctx context.Context, path string) (*localconfig.LocalConfig, error) {
	var cfg *localconfig.LocalConfig
	err := s.rt.Do(func(st *supervisor.State) error {
		normalized, err := localconfig.NormalizeFolder(path)
		if err != nil {
			normalized = path
		}

		cfg, err = localconfig.Read(st.DataDir)
		if err != nil {
			return err
		}
		cfg.RemoveFolder(normalized)
		return s.commit(ctx, st, cfg, "folder_removed", normalized)
	})
	return cfg, err
}

// SetShellEnabled toggles shell.enabled and reloads the backend.
func (s *Service) SetShellEnabled(ctx context.Context, enabled bool) (*localconfig.LocalConfig, error) {
	var cfg *localconfig.LocalConfig
	err := s.rt.Do(func(st *supervisor.State) error {
		var err error
		cfg, err = localconfig.Read(st.DataDir)
		if err != nil {
			return err
		}
		cfg.Shell.Enabled = enabled
		return s.commit(ctx, st, cfg, "shell_enabled", enabled)
	})
	return cfg, err
}

// commit writes cfg and asks the backend to reload it. A failed reload does
// not undo the write.
func (s *Service) commit(ctx context.Context, st *supervisor.State, cfg *localconfig.LocalConfig, change string, value interface{}) error {
	if err := localconfig.WriteAtomic(st.DataDir, cfg); err != nil {
		return err
	}
	if s.bus != nil {
		s.bus.Publish(ctx, events.Event{
			Type: events.EventConfigChanged,
			Payload: map[string]interface{}{
				"change": change,
				"value":  value,
			},
		})
	}
	return s.sup.ReloadConfig(ctx, st)
}

// RetryBackend respawns the backend and returns the refreshed connection info.
func (s *Service) RetryBackend(ctx context.Context) (supervisor.ConnectionInfo, error) {
	var info supervisor.ConnectionInfo
	err := s.rt.Do(func(st *supervisor.State) error {
		if s.closed {
			return ErrShutdown
		}
		if err := s.sup.Spawn(ctx, st); err != nil {
			return err
		}
		info = st.Snapshot()
		return nil
	})
	return info, err
}

// RecentLogs returns the last n lines of the backend log, oldest first.
// n below 1 is treated as 1.
func (s *Service) RecentLogs(n int) (string, error) {
	var out string
	err := s.rt.Do(func(st *supervisor.State) error {
		data, err := os.ReadFile(st.LogPath)
		if err != nil {
			return fmt.Errorf("failed reading logs: %w", err)
		}
		out = lastLines(string(data), n)
		return nil
	})
	return out, err
}

func lastLines(content string, n int) string {
	if n < 1 {
		n = 1
	}
	content = strings.TrimSuffix(content, "\n")
	if content == "" {
		return ""
	}
	lines := strings.Split(content, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return strings.Join(lines, "\n")
}

func (s *Service) handleExit(c *supervisor.Child, exitErr error) {
	err := s.rt.Do(func(st *supervisor.State) error {
		s.sup.MarkExited(st, c, exitErr)
		return nil
	})
	if err != nil {
		log.Printf("Warning: could not record backend exit: %v", err)
	}
}
