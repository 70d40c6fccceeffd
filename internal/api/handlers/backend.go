// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"net/http"
	"strconv"
)

// DefaultLogLines is the number of log lines returned when none is requested.
const DefaultLogLines = 100

// BackendHandler handles backend lifecycle requests.
type BackendHandler struct {
	ctl Controller
}

// NewBackendHandler creates a new backend handler.
func NewBackendHandler(ctl Controller) *BackendHandler {
	return &BackendHandler{ctl: ctl}
}

// LogsResponse carries the tail of the backend log.
type LogsResponse struct {
	Lines   int    `json:"lines"`
	Content string `json:"content"`
}

// Retry respawns the backend.
func (h *BackendHandler) Retry(w http.ResponseWriter, r *http.Request) {
	info, err := h.ctl.RetryBackend(r.Context())
	if err != nil {
		WriteOperationError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, info)
}

// Logs returns the last lines of the backend log.
func (h *BackendHandler) Logs(w http.ResponseWriter, r *http.Request) {
	lines := DefaultLogLines
	if s := r.URL.Query().Get("lines"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			WriteError(w, http.StatusBadRequest, ErrBadRequest, "invalid lines: "+s)
			return
		}
		lines = n
	}
	if lines < 1 {
		lines = 1
	}

	content, err := h.ctl.RecentLogs(lines)
	if err != nil {
		WriteOperationError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, LogsResponse{Lines: lines, Content: content})
}
