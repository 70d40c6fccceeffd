// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package supervisor

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewState(t *testing.T) {
	st := NewState("/data")

	assert.Equal(t, "/data", st.DataDir)
	assert.Equal(t, filepath.Join("/data", "logs", "backend.log"), st.LogPath)
	assert.Equal(t, PhaseStopped, st.Phase)
	assert.Empty(t, st.BaseURL)
	assert.False(t, st.Ready)
	assert.Nil(t, st.Child)
}

func TestState_Snapshot(t *testing.T) {
	st := NewState("/data")
	st.BaseURL = "http://127.0.0.1:8765"
	st.Token = "tok"
	st.Ready = true
	st.Phase = PhaseHealthy
	st.Port = 8765

	info := st.Snapshot()
	assert.Equal(t, "http://127.0.0.1:8765", info.BaseURL)
	assert.Equal(t, "tok", info.Token)
	assert.True(t, info.BackendReady)
	assert.Equal(t, st.LogPath, info.LogPath)
	assert.Zero(t, info.PID)

	data, err := json.Marshal(info)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"phase":"healthy"`)
	assert.Contains(t, string(data), `"backend_ready":true`)
	assert.NotContains(t, string(data), "last_error")
	assert.NotContains(t, string(data), "started_at")
}

func TestPhase_String(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{PhaseStopped, "stopped"},
		{PhaseStarting, "starting"},
		{PhaseHealthy, "healthy"},
		{PhaseFailed, "failed"},
		{Phase(42), "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.phase.String())
	}
}

func TestRuntime_Do(t *testing.T) {
	rt := NewRuntime(NewState("/data"))

	err := rt.Do(func(st *State) error {
		st.Token = "changed"
		return nil
	})
	require.NoError(t, err)

	var token string
	rt.Do(func(st *State) error {
		token = st.Token
		return nil
	})
	assert.Equal(t, "changed", token)
}

func TestRuntime_DoReturnsError(t *testing.T) {
	rt := NewRuntime(NewState("/data"))
	want := errors.New("boom")

	err := rt.Do(func(st *State) error { return want })
	assert.Equal(t, want, err)
	assert.False(t, rt.Poisoned())
}

func TestRuntime_PanicPoisons(t *testing.T) {
	rt := NewRuntime(NewState("/data"))

	err := rt.Do(func(st *State) error {
		panic("bad state")
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLockPoisoned)
	assert.Contains(t, err.Error(), "bad state")
	assert.True(t, rt.Poisoned())

	called := false
	err = rt.Do(func(st *State) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrLockPoisoned)
	assert.False(t, called)
}

func TestRuntime_TeardownBypassesPoison(t *testing.T) {
	rt := NewRuntime(NewState("/data"))
	rt.Do(func(st *State) error { panic("bad state") })
	require.True(t, rt.Poisoned())

	var seen string
	err := rt.Teardown(func(st *State) {
		seen = st.DataDir
	})
	require.NoError(t, err)
	assert.Equal(t, "/data", seen)

	err = rt.Teardown(func(st *State) { panic("again") })
	assert.ErrorIs(t, err, ErrLockPoisoned)
}
