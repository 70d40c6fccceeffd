// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package supervisor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPollHealth_Immediate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, HealthPath, r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := PollHealth(context.Background(), srv.Client(), srv.URL, "secret", time.Second, 10*time.Millisecond)
	assert.NoError(t, err)
}

func TestPollHealth_RetriesUntilHealthy(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := PollHealth(context.Background(), srv.Client(), srv.URL, "tok", 2*time.Second, 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestPollHealth_WrongTokenTimesOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer right" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := PollHealth(context.Background(), srv.Client(), srv.URL, "wrong", 200*time.Millisecond, 20*time.Millisecond)
	assert.ErrorIs(t, err, ErrHealthCheckTimeout)
}

func TestPollHealth_TransportErrorsRetried(t *testing.T) {
	start := time.Now()
	err := PollHealth(context.Background(), nil, "http://127.0.0.1:1", "tok", 300*time.Millisecond, 50*time.Millisecond)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHealthCheckTimeout)
	assert.GreaterOrEqual(t, time.Since(start), 300*time.Millisecond)
}

func TestPollHealth_SlowServerBoundedByDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	start := time.Now()
	err := PollHealth(context.Background(), srv.Client(), srv.URL, "tok", 200*time.Millisecond, 20*time.Millisecond)

	assert.ErrorIs(t, err, ErrHealthCheckTimeout)
	assert.Less(t, time.Since(start), 2*time.Second)
}
