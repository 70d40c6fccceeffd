// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package middleware

import (
	"net"
	"net/http"

	"github.com/wingedpig/liteclaw/internal/api/handlers"
)

// LoopbackOnly rejects requests whose remote address is not a loopback IP.
// The connection endpoint hands out the backend token, so it must never be
// reachable from another host even if the server is bound more widely.
func LoopbackOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		ip := net.ParseIP(host)
		if ip == nil || !ip.IsLoopback() {
			handlers.WriteError(w, http.StatusForbidden, handlers.ErrForbidden, "control API is loopback only")
			return
		}
		next.ServeHTTP(w, r)
	})
}
