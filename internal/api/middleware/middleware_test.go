// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
}

// captureLogs redirects Logf for the duration of the test.
func captureLogs(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	prev := Logf
	Logf = func(format string, args ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}
	t.Cleanup(func() { Logf = prev })
	return &lines
}

func TestLogging(t *testing.T) {
	lines := captureLogs(t)
	rec := httptest.NewRecorder()

	Logging(okHandler()).ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/config", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	if assert.Len(t, *lines, 1) {
		assert.True(t, strings.HasPrefix((*lines)[0], "GET /api/v1/config 200 2B "), (*lines)[0])
	}
}

func TestLogging_QuietPathOnlyLogsFailures(t *testing.T) {
	lines := captureLogs(t)

	Logging(okHandler()).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/v1/connection", nil))
	assert.Empty(t, *lines)

	failing := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	Logging(failing).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/v1/connection", nil))
	if assert.Len(t, *lines, 1) {
		assert.Contains(t, (*lines)[0], " 503 ")
	}
}

func TestRequestLogger_StatusCapture(t *testing.T) {
	lines := captureLogs(t)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	RequestLogger()(handler).ServeHTTP(rec, httptest.NewRequest("GET", "/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	if assert.Len(t, *lines, 1) {
		assert.Contains(t, (*lines)[0], "GET /missing 404 0B")
	}
}

func TestRecovery(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("test panic")
	})

	rec := httptest.NewRecorder()
	Recovery(handler).ServeHTTP(rec, httptest.NewRequest("GET", "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"INTERNAL_ERROR"`)
	assert.Contains(t, rec.Body.String(), `"timestamp"`)
}

func TestRecovery_NoPanic(t *testing.T) {
	rec := httptest.NewRecorder()
	Recovery(okHandler()).ServeHTTP(rec, httptest.NewRequest("GET", "/ok", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestLoopbackOnly(t *testing.T) {
	tests := []struct {
		remote string
		want   int
	}{
		{"127.0.0.1:51000", http.StatusOK},
		{"[::1]:51000", http.StatusOK},
		{"192.0.2.1:1234", http.StatusForbidden},
		{"10.0.0.8:80", http.StatusForbidden},
		{"garbage", http.StatusForbidden},
	}
	for _, tt := range tests {
		req := httptest.NewRequest("GET", "/api/v1/connection", nil)
		req.RemoteAddr = tt.remote
		rec := httptest.NewRecorder()

		LoopbackOnly(okHandler()).ServeHTTP(rec, req)

		assert.Equal(t, tt.want, rec.Code, tt.remote)
	}
}

func TestResponseWriter_Write(t *testing.T) {
	rw := &responseWriter{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK}

	n, err := rw.Write([]byte("hello"))
	assert.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, 5, rw.size)
}

func TestResponseWriter_WriteHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, status: http.StatusOK}

	rw.WriteHeader(http.StatusCreated)
	assert.Equal(t, http.StatusCreated, rw.status)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestResponseWriter_HijackUnsupported(t *testing.T) {
	rw := &responseWriter{ResponseWriter: httptest.NewRecorder()}

	_, _, err := rw.Hijack()
	assert.ErrorIs(t, err, http.ErrNotSupported)
	assert.False(t, rw.upgraded)
}
