// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"time"

	"github.com/wingedpig/liteclaw/internal/localconfig"
	"github.com/wingedpig/liteclaw/internal/supervisor"
)

// Response is the standard API response wrapper.
type Response struct {
	Data  interface{} `json:"data,omitempty"`
	Error *ErrorInfo  `json:"error,omitempty"`
	Meta  *MetaInfo   `json:"meta,omitempty"`
}

// ErrorInfo contains error details.
type ErrorInfo struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// MetaInfo contains response metadata.
type MetaInfo struct {
	Timestamp time.Time `json:"timestamp"`
}

// Error codes
const (
	ErrNoPortAvailable    = "NO_PORT_AVAILABLE"
	ErrIO                 = "IO_ERROR"
	ErrParse              = "PARSE_ERROR"
	ErrSerialize          = "SERIALIZE_ERROR"
	ErrNotADirectory      = "NOT_A_DIRECTORY"
	ErrSpawnFailed        = "SPAWN_FAILED"
	ErrHealthCheckTimeout = "HEALTH_CHECK_TIMEOUT"
	ErrBackendNotReady    = "BACKEND_NOT_READY"
	ErrReloadFailed       = "RELOAD_FAILED"
	ErrLockPoisoned       = "LOCK_POISONED"
	ErrBadRequest         = "BAD_REQUEST"
	ErrForbidden          = "FORBIDDEN"
	ErrNotFound           = "NOT_FOUND"
	ErrInternalError      = "INTERNAL_ERROR"
)

// errorMapping pairs a sentinel error with its code and HTTP status.
// Order matters: the first match wins.
var errorMapping = []struct {
	err    error
	code   string
	status int
}{
	{supervisor.ErrLockPoisoned, ErrLockPoisoned, http.StatusInternalServerError},
	{supervisor.ErrNoPortAvailable, ErrNoPortAvailable, http.StatusServiceUnavailable},
	{supervisor.ErrSpawnFailed, ErrSpawnFailed, http.StatusBadGateway},
	{supervisor.ErrHealthCheckTimeout, ErrHealthCheckTimeout, http.StatusGatewayTimeout},
	{supervisor.ErrBackendNotReady, ErrBackendNotReady, http.StatusServiceUnavailable},
	{supervisor.ErrReloadFailed, ErrReloadFailed, http.StatusBadGateway},
	{localconfig.ErrNotADirectory, ErrNotADirectory, http.StatusBadRequest},
	{localconfig.ErrParse, ErrParse, http.StatusInternalServerError},
	{localconfig.ErrSerialize, ErrSerialize, http.StatusInternalServerError},
	{localconfig.ErrIO, ErrIO, http.StatusInternalServerError},
}

// ClassifyError returns the API code and HTTP status for an operation error.
func ClassifyError(err error) (string, int) {
	for _, m := range errorMapping {
		if errors.Is(err, m.err) {
			return m.code, m.status
		}
	}
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return ErrIO, http.StatusInternalServerError
	}
	return ErrInternalError, http.StatusInternalServerError
}

// WriteJSON writes a JSON response.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	resp := Response{
		Data: data,
		Meta: &MetaInfo{Timestamp: time.Now()},
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// WriteError writes an error response.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	resp := Response{
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
		Meta: &MetaInfo{Timestamp: time.Now()},
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// WriteOperationError writes err using the code and status from ClassifyError.
func WriteOperationError(w http.ResponseWriter, err error) {
	code, status := ClassifyError(err)
	WriteError(w, status, code, err.Error())
}

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
