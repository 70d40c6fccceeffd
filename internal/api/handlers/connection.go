// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import "net/http"

// ConnectionHandler serves the backend connection details.
type ConnectionHandler struct {
	ctl Controller
}

// NewConnectionHandler creates a new connection handler.
func NewConnectionHandler(ctl Controller) *ConnectionHandler {
	return &ConnectionHandler{ctl: ctl}
}

// Get returns base URL, token, readiness and the last error.
func (h *ConnectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	info, err := h.ctl.ConnectionInfo()
	if err != nil {
		WriteOperationError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, info)
}
