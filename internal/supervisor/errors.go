// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package supervisor

import "errors"

var (
	// ErrNoPortAvailable is returned when every candidate port is bound.
	ErrNoPortAvailable = errors.New("no open port found")

	// ErrSpawnFailed is returned when the backend process cannot be launched.
	ErrSpawnFailed = errors.New("failed to spawn backend")

	// ErrHealthCheckTimeout is returned when the backend does not report
	// healthy before the deadline.
	ErrHealthCheckTimeout = errors.New("backend health check timed out")

	// ErrBackendNotReady is returned by operations that need a healthy backend.
	ErrBackendNotReady = errors.New("backend is not ready")

	// ErrReloadFailed is returned when the backend rejects or misses a reload.
	ErrReloadFailed = errors.New("backend config reload failed")

	// ErrLockPoisoned is returned once an operation has panicked while
	// holding the runtime lock.
	ErrLockPoisoned = errors.New("runtime lock poisoned")
)
