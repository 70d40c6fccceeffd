// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package supervisor launches the backend process, waits for it to become
// healthy and tears it down again.
package supervisor

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/wingedpig/liteclaw/internal/events"
)

// Launch-time environment passed to the backend.
const (
	EnvAuthToken = "LITECLAW_AUTH_TOKEN"
	EnvDataDir   = "LITECLAW_DATA_DIR"
	EnvPort      = "LITECLAW_PORT"
)

// Options configures a Supervisor.
type Options struct {
	// Command is the backend executable and its arguments.
	Command []string
	WorkDir string
	// Env holds extra static variables for the backend.
	Env map[string]string

	HealthTimeout  time.Duration
	HealthInterval time.Duration

	// Ports defaults to the 8765-8864 range.
	Ports *PortAllocator
	// IssueToken defaults to IssueToken.
	IssueToken func() string
	// HTTPClient is used for health and reload requests.
	HTTPClient *http.Client
}

// Supervisor runs one backend at a time against a State.
type Supervisor struct {
	opts Options
	bus  events.EventBus

	// OnUnexpectedExit is called from a background goroutine when the
	// backend exits without being stopped.
	OnUnexpectedExit func(c *Child, err error)
}

// New creates a Supervisor. bus may be nil.
func New(opts Options, bus events.EventBus) *Supervisor {
	if opts.HealthTimeout <= 0 {
		opts.HealthTimeout = DefaultHealthTimeout
	}
	if opts.HealthInterval <= 0 {
		opts.HealthInterval = DefaultHealthInterval
	}
	if opts.Ports == nil {
		opts.Ports = NewPortAllocator(DefaultFirstPort, DefaultPortCount)
	}
	if opts.IssueToken == nil {
		opts.IssueToken = IssueToken
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 2 * time.Second}
	}
	return &Supervisor{opts: opts, bus: bus}
}

// Command returns the configured backend command.
func (s *Supervisor) Command() []string {
	return s.opts.Command
}

// Spawn replaces any running backend with a fresh one and waits for it to
// become healthy. On a failed health check the new child is stopped and the
// error is both recorded in st and returned. Cancelling ctx does not cut the
// health poll short.
func (s *Supervisor) Spawn(ctx context.Context, st *State) error {
	s.stopChild(st)
	st.LastError = ""
	st.Ready = false
	st.Phase = PhaseStarting

	port, err := s.opts.Ports.FindOpenPort()
	if err != nil {
		return s.fail(ctx, st, err)
	}

	token := s.opts.IssueToken()
	baseURL := "http://127.0.0.1:" + strconv.Itoa(port)

	child, err := s.launch(st, token, port)
	if err != nil {
		return s.fail(ctx, st, err)
	}

	st.Token = token
	st.BaseURL = baseURL
	st.Port = port
	st.Child = child
	st.StartedAt = child.StartedAt()

	if err := writePIDFile(st.DataDir, child.PID()); err != nil {
		log.Printf("Supervisor: failed to write pid file: %v", err)
	}

	log.Printf("Backend started (PID %d) on %s", child.PID(), baseURL)
	s.publish(ctx, events.EventBackendStarting, map[string]interface{}{
		"pid":  child.PID(),
		"port": port,
	})

	// The poll runs to success or timeout even if the caller goes away.
	pollCtx := context.WithoutCancel(ctx)
	if err := PollHealth(pollCtx, s.opts.HTTPClient, baseURL, token, s.opts.HealthTimeout, s.opts.HealthInterval); err != nil {
		s.stopChild(st)
		return s.fail(ctx, st, err)
	}

	st.Ready = true
	st.Phase = PhaseHealthy
	log.Printf("Backend healthy at %s", baseURL)
	s.publish(ctx, events.EventBackendReady, map[string]interface{}{
		"pid":      child.PID(),
		"base_url": baseURL,
	})
	return nil
}

// launch starts the backend with stdout and stderr appended to the log file.
func (s *Supervisor) launch(st *State, token string, port int) (*Child, error) {
	if len(s.opts.Command) == 0 {
		return nil, fmt.Errorf("%w: empty command", ErrSpawnFailed)
	}

	logFile, err := openLogFile(st.LogPath)
	if err != nil {
		return nil, err
	}
	defer logFile.Close()

	cmd := exec.Command(s.opts.Command[0], s.opts.Command[1:]...)
	cmd.Dir = s.opts.WorkDir
	cmd.Env = os.Environ()
	for k, v := range s.opts.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	cmd.Env = append(cmd.Env,
		EnvAuthToken+"="+token,
		EnvDataDir+"="+st.DataDir,
		EnvPort+"="+strconv.Itoa(port),
	)
	cmd.Stdout = logFile
	cmd.Stderr = logFile

	child, err := startChild(cmd, s.OnUnexpectedExit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSpawnFailed, err)
	}
	return child, nil
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed creating logs dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed opening backend log file: %w", err)
	}
	return f, nil
}

func (s *Supervisor) fail(ctx context.Context, st *State, err error) error {
	st.Ready = false
	st.LastError = err.Error()
	st.Phase = PhaseFailed
	log.Printf("Backend failed to start: %v", err)
	s.publish(ctx, events.EventBackendFailed, map[string]interface{}{
		"error": err.Error(),
	})
	return err
}

// Stop kills the tracked backend, if any. It is a no-op without a child.
func (s *Supervisor) Stop(st *State) {
	if st.Child == nil {
		st.Ready = false
		st.Phase = PhaseStopped
		return
	}
	pid := st.Child.PID()
	s.stopChild(st)
	st.Phase = PhaseStopped
	log.Printf("Backend stopped (PID %d)", pid)
	s.publish(context.Background(), events.EventBackendStopped, map[string]interface{}{
		"pid": pid,
	})
}

func (s *Supervisor) stopChild(st *State) {
	if st.Child != nil {
		st.Child.Stop()
		removePIDFile(st.DataDir)
	}
	st.Child = nil
	st.Ready = false
}

// MarkExited records an unexpected exit of c. It returns false when c is no
// longer the tracked child.
func (s *Supervisor) MarkExited(st *State, c *Child, err error) bool {
	if st.Child != c {
		return false
	}
	st.Child = nil
	st.Ready = false
	st.Phase = PhaseFailed
	st.LastError = "backend exited unexpectedly: " + describeExit(err)
	removePIDFile(st.DataDir)

	log.Printf("Backend (PID %d) exited unexpectedly: %s", c.PID(), describeExit(err))
	s.publish(context.Background(), events.EventBackendExited, map[string]interface{}{
		"pid":   c.PID(),
		"error": describeExit(err),
	})
	return true
}

// ReloadConfig tells a healthy backend to re-read config.json.
func (s *Supervisor) ReloadConfig(ctx context.Context, st *State) error {
	if !st.Ready {
		return ErrBackendNotReady
	}
	if err := postReload(ctx, s.opts.HTTPClient, st.BaseURL, st.Token); err != nil {
		return err
	}
	s.publish(ctx, events.EventBackendReloaded, nil)
	return nil
}

func (s *Supervisor) publish(ctx context.Context, typ string, payload map[string]interface{}) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ctx, events.Event{Type: typ, Payload: payload})
}
