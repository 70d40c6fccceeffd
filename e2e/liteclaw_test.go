// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package e2e

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wingedpig/liteclaw/internal/app"
	"github.com/wingedpig/liteclaw/internal/supervisor/supervisortest"
	"github.com/wingedpig/liteclaw/pkg/client"
)

func TestMain(m *testing.M) {
	supervisortest.RunIfBackend()
	os.Exit(m.Run())
}

// startApp runs a full supervisor against the fake backend and returns a
// client for its control API.
func startApp(t *testing.T) (*app.App, *client.Client, string) {
	t.Helper()
	dataDir := t.TempDir()

	command, env, err := supervisortest.Command()
	require.NoError(t, err)
	commandJSON, _ := json.Marshal(command)
	envJSON, _ := json.Marshal(env)

	settings := filepath.Join(t.TempDir(), "liteclaw.hjson")
	require.NoError(t, os.WriteFile(settings, []byte(fmt.Sprintf(`{
	data_dir: %q
	backend: {
		command: %s
		env: %s
	}
}`, dataDir, commandJSON, envJSON)), 0644))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	a, err := app.New(app.Options{ConfigPath: settings, Port: port})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, a.Initialize(ctx))
	require.NoError(t, a.Start(ctx))
	t.Cleanup(func() { a.Shutdown(context.Background()) })

	c := client.New("http://"+a.APIAddr(), client.WithTimeout(10*time.Second))
	require.Eventually(t, func() bool {
		_, err := c.Connection.Get(ctx)
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)

	return a, c, dataDir
}

// TestBackendReachableWithToken checks that the published connection info
// actually reaches the backend.
func TestBackendReachableWithToken(t *testing.T) {
	_, c, _ := startApp(t)

	info, err := c.Connection.Get(context.Background())
	require.NoError(t, err)
	require.True(t, info.BackendReady, info.LastError)
	assert.Equal(t, client.PhaseHealthy, info.Phase)

	req, err := http.NewRequest(http.MethodGet, info.BaseURL+"/v1/health", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req.Header.Set("Authorization", "Bearer "+info.Token)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// TestConfigEditsReachBackend edits folders and shell access and checks the
// backend was told to reload after each persisted change.
func TestConfigEditsReachBackend(t *testing.T) {
	_, c, dataDir := startApp(t)
	ctx := context.Background()
	folder := t.TempDir()

	cfg, err := c.Config.AddFolder(ctx, folder+"/")
	require.NoError(t, err)
	assert.Equal(t, []string{folder}, cfg.AllowedFolders)
	assert.Equal(t, 1, supervisortest.ReloadCount(dataDir))

	// Adding again is a no-op.
	_, err = c.Config.AddFolder(ctx, folder)
	require.NoError(t, err)
	assert.Equal(t, 1, supervisortest.ReloadCount(dataDir))

	cfg, err = c.Config.SetShell(ctx, true)
	require.NoError(t, err)
	assert.True(t, cfg.Shell.Enabled)
	assert.Equal(t, 2, supervisortest.ReloadCount(dataDir))

	cfg, err = c.Config.RemoveFolder(ctx, folder)
	require.NoError(t, err)
	assert.Empty(t, cfg.AllowedFolders)
	assert.Equal(t, 3, supervisortest.ReloadCount(dataDir))

	data, err := os.ReadFile(filepath.Join(dataDir, "config.json"))
	require.NoError(t, err)
	var onDisk client.LocalConfig
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Equal(t, *cfg, onDisk)
}

func TestAddFolderRejectsFile(t *testing.T) {
	_, c, _ := startApp(t)

	file := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	_, err := c.Config.AddFolder(context.Background(), file)
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr), "got %v", err)
	assert.Equal(t, client.CodeNotADirectory, apiErr.Code)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}

func TestRetryIssuesNewToken(t *testing.T) {
	_, c, _ := startApp(t)
	ctx := context.Background()

	before, err := c.Connection.Get(ctx)
	require.NoError(t, err)

	after, err := c.Backend.Retry(ctx)
	require.NoError(t, err)
	require.True(t, after.BackendReady, after.LastError)
	assert.NotEqual(t, before.Token, after.Token)
	assert.NotEqual(t, before.PID, after.PID)
}

func TestBackendLogs(t *testing.T) {
	_, c, _ := startApp(t)

	require.Eventually(t, func() bool {
		logs, err := c.Backend.Logs(context.Background(), 10)
		return err == nil && logs.Lines > 0
	}, 2*time.Second, 20*time.Millisecond)

	logs, err := c.Backend.Logs(context.Background(), 10)
	require.NoError(t, err)
	assert.Contains(t, logs.Content, "fake backend")
}

// TestEventStream watches config.changed events over the websocket while
// editing the config.
func TestEventStream(t *testing.T) {
	_, c, _ := startApp(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu       sync.Mutex
		received []client.Event
		done     = make(chan error, 1)
	)
	go func() {
		done <- c.Events.Stream(ctx, "config.*", func(evt client.Event) error {
			mu.Lock()
			received = append(received, evt)
			mu.Unlock()
			return nil
		})
	}()

	// The subscription is registered asynchronously; keep editing until an
	// event arrives.
	enabled := false
	require.Eventually(t, func() bool {
		enabled = !enabled
		if _, err := c.Config.SetShell(context.Background(), enabled); err != nil {
			return false
		}
		mu.Lock()
		defer mu.Unlock()
		return len(received) > 0
	}, 5*time.Second, 100*time.Millisecond)

	mu.Lock()
	evt := received[0]
	mu.Unlock()
	assert.Equal(t, "config.changed", evt.Type)
	assert.Equal(t, "shell_enabled", evt.Payload["change"])

	history, err := c.Events.List(context.Background(), &client.ListOptions{Types: []string{"backend.ready"}})
	require.NoError(t, err)
	assert.NotEmpty(t, history)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not stop after cancel")
	}
}
