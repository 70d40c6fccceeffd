// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package supervisor

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"
)

// Phase is the lifecycle phase of the supervised backend.
type Phase int

const (
	PhaseStopped Phase = iota
	PhaseStarting
	PhaseHealthy
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseStopped:
		return "stopped"
	case PhaseStarting:
		return "starting"
	case PhaseHealthy:
		return "healthy"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler to output the string representation.
func (p Phase) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.String() + `"`), nil
}

// State is the single record of the supervised backend. It must only be
// touched through Runtime.Do.
type State struct {
	Token     string
	BaseURL   string
	Port      int
	LogPath   string
	Ready     bool
	LastError string
	DataDir   string
	Child     *Child
	Phase     Phase
	StartedAt time.Time
}

// NewState returns the initial state for a data directory.
func NewState(dataDir string) *State {
	return &State{
		DataDir: dataDir,
		LogPath: LogPath(dataDir),
		Phase:   PhaseStopped,
	}
}

// LogPath returns the backend log file path for a data directory.
func LogPath(dataDir string) string {
	return filepath.Join(dataDir, "logs", "backend.log")
}

// ConnectionInfo is a point-in-time copy of what a UI needs to reach the backend.
type ConnectionInfo struct {
	BaseURL      string    `json:"base_url"`
	Token        string    `json:"token"`
	BackendReady bool      `json:"backend_ready"`
	LastError    string    `json:"last_error,omitempty"`
	LogPath      string    `json:"log_path"`
	Phase        Phase     `json:"phase"`
	Port         int       `json:"port,omitempty"`
	PID          int       `json:"pid,omitempty"`
	StartedAt    time.Time `json:"started_at,omitzero"`
}

// Snapshot copies the connection fields out of s.
func (s *State) Snapshot() ConnectionInfo {
	info := ConnectionInfo{
		BaseURL:      s.BaseURL,
		Token:        s.Token,
		BackendReady: s.Ready,
		LastError:    s.LastError,
		LogPath:      s.LogPath,
		Phase:        s.Phase,
		Port:         s.Port,
		StartedAt:    s.StartedAt,
	}
	if s.Child != nil {
		info.PID = s.Child.PID()
	}
	return info
}

// Runtime guards a State with one mutex. A panic inside Do poisons the
// runtime: that call and every later one return ErrLockPoisoned.
type Runtime struct {
	mu       sync.Mutex
	state    *State
	poisoned bool
}

// NewRuntime wraps st.
func NewRuntime(st *State) *Runtime {
	return &Runtime{state: st}
}

// Do runs fn with exclusive access to the state.
func (r *Runtime) Do(fn func(st *State) error) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.poisoned {
		return ErrLockPoisoned
	}

	defer func() {
		if p := recover(); p != nil {
			r.poisoned = true
			log.Printf("Runtime: panic while holding lock: %v", p)
			err = fmt.Errorf("%w: %v", ErrLockPoisoned, p)
		}
	}()

	return fn(r.state)
}

// Teardown runs fn with exclusive access to the state even when the runtime
// is poisoned, so the child can still be stopped on exit. A panic in fn is
// returned as ErrLockPoisoned.
func (r *Runtime) Teardown(fn func(st *State)) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	defer func() {
		if p := recover(); p != nil {
			r.poisoned = true
			log.Printf("Runtime: panic during teardown: %v", p)
			err = fmt.Errorf("%w: %v", ErrLockPoisoned, p)
		}
	}()

	fn(r.state)
	return nil
}

// Poisoned reports whether a previous operation panicked.
func (r *Runtime) Poisoned() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.poisoned
}
