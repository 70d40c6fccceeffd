// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package supervisor

import (
	"os"
	"testing"

	"github.com/wingedpig/liteclaw/internal/supervisor/supervisortest"
)

func TestMain(m *testing.M) {
	supervisortest.RunIfBackend()
	os.Exit(m.Run())
}

// fakeBackendOptions returns Options that launch the test binary as a
// healthy backend.
func fakeBackendOptions(t *testing.T) Options {
	t.Helper()
	command, env, err := supervisortest.Command()
	if err != nil {
		t.Fatalf("fake backend: %v", err)
	}
	return Options{Command: command, Env: env}
}
