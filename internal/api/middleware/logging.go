// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package middleware

import (
	"bufio"
	"log"
	"net"
	"net/http"
	"time"
)

// responseWriter records what the handler sent so it can be logged.
type responseWriter struct {
	http.ResponseWriter
	status   int
	size     int
	upgraded bool
}

func (rw *responseWriter) WriteHeader(status int) {
	rw.status = status
	rw.ResponseWriter.WriteHeader(status)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

// Hijack lets the event stream upgrade to a websocket through the logger.
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, http.ErrNotSupported
	}
	conn, buf, err := hijacker.Hijack()
	if err == nil {
		rw.upgraded = true
		rw.status = http.StatusSwitchingProtocols
	}
	return conn, buf, err
}

// Logging logs every request with Logf using the default quiet paths.
func Logging(next http.Handler) http.Handler {
	return RequestLogger(DefaultQuietPaths...)(next)
}

// DefaultQuietPaths are polled by UIs waiting for the backend. Successful
// requests to them are not logged.
var DefaultQuietPaths = []string{"/api/v1/connection"}

// Logf is the sink for request log lines.
var Logf = log.Printf

// RequestLogger returns middleware that logs method, path, status, size and
// duration. Requests to quiet paths are logged only when they fail.
func RequestLogger(quiet ...string) func(http.Handler) http.Handler {
	skip := make(map[string]bool, len(quiet))
	for _, p := range quiet {
		skip[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rw, r)

			if skip[r.URL.Path] && rw.status < http.StatusBadRequest {
				return
			}
			if rw.upgraded {
				Logf("%s %s websocket closed after %s", r.Method, r.URL.Path, time.Since(start).Round(time.Millisecond))
				return
			}
			Logf("%s %s %d %dB %s", r.Method, r.URL.Path, rw.status, rw.size, time.Since(start).Round(time.Microsecond))
		})
	}
}
