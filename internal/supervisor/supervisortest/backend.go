// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package supervisortest provides a fake backend for tests. A test binary
// calls RunIfBackend from TestMain; Command then launches that same binary
// as a backend speaking the launch contract and HTTP endpoints.
package supervisortest

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// BackendEnv marks a re-executed test binary as the fake backend.
const BackendEnv = "LITECLAW_FAKE_BACKEND"

// ReloadLog is the file in the data directory that records reload calls.
const ReloadLog = "reloads.log"

// ReadyAfterEnv holds a duration during which the fake backend answers its
// health endpoint with 503.
const ReadyAfterEnv = "LITECLAW_FAKE_READY_AFTER"

// RunIfBackend serves as the fake backend and exits when the process was
// launched by Command. It returns immediately otherwise.
func RunIfBackend() {
	if os.Getenv(BackendEnv) != "1" {
		return
	}
	os.Exit(serve())
}

// Command returns the backend command and the extra environment needed to
// launch the running test binary as the fake backend.
func Command() ([]string, map[string]string, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, nil, err
	}
	return []string{exe}, map[string]string{BackendEnv: "1"}, nil
}

// ReloadCount returns how many reloads the fake backend has served for dataDir.
func ReloadCount(dataDir string) int {
	data, err := os.ReadFile(filepath.Join(dataDir, ReloadLog))
	if err != nil {
		return 0
	}
	return strings.Count(string(data), "\n")
}

func serve() int {
	token := os.Getenv("LITECLAW_AUTH_TOKEN")
	dataDir := os.Getenv("LITECLAW_DATA_DIR")
	port := os.Getenv("LITECLAW_PORT")

	var readyAt time.Time
	if d, err := time.ParseDuration(os.Getenv(ReadyAfterEnv)); err == nil {
		readyAt = time.Now().Add(d)
	}

	authorized := func(r *http.Request) bool {
		return r.Header.Get("Authorization") == "Bearer "+token
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/health", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if time.Now().Before(readyAt) {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	})
	mux.HandleFunc("/v1/config/reload", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || !authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		f, err := os.OpenFile(filepath.Join(dataDir, ReloadLog), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err == nil {
			fmt.Fprintln(f, "reload")
			f.Close()
		}
		w.Write([]byte(`{"ok":true}`))
	})

	fmt.Printf("fake backend listening on %s\n", port)
	fmt.Fprintf(os.Stderr, "fake backend data dir %s\n", dataDir)
	if err := http.ListenAndServe("127.0.0.1:"+port, mux); err != nil {
		fmt.Fprintf(os.Stderr, "fake backend: %v\n", err)
		return 1
	}
	return 0
}
