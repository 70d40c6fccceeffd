// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"net/http"
	"strings"
)

// ConfigHandler handles local config requests.
type ConfigHandler struct {
	ctl Controller
}

// NewConfigHandler creates a new config handler.
func NewConfigHandler(ctl Controller) *ConfigHandler {
	return &ConfigHandler{ctl: ctl}
}

// FolderRequest is the body of folder add and remove requests.
type FolderRequest struct {
	Path string `json:"path"`
}

// ShellRequest is the body of a shell toggle request.
type ShellRequest struct {
	Enabled *bool `json:"enabled"`
}

// Get returns the current config.
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.ctl.Config()
	if err != nil {
		WriteOperationError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, cfg)
}

// AddFolder adds a folder to allowed_folders.
func (h *ConfigHandler) AddFolder(w http.ResponseWriter, r *http.Request) {
	path, ok := readFolder(w, r)
	if !ok {
		return
	}
	cfg, err := h.ctl.AddFolder(r.Context(), path)
	if err != nil {
		WriteOperationError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, cfg)
}

// RemoveFolder removes a folder from allowed_folders.
func (h *ConfigHandler) RemoveFolder(w http.ResponseWriter, r *http.Request) {
	path, ok := readFolder(w, r)
	if !ok {
		return
	}
	cfg, err := h.ctl.RemoveFolder(r.Context(), path)
	if err != nil {
		WriteOperationError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, cfg)
}

// SetShell toggles shell.enabled.
func (h *ConfigHandler) SetShell(w http.ResponseWriter, r *http.Request) {
	var req ShellRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Enabled == nil {
		WriteError(w, http.StatusBadRequest, ErrBadRequest, "enabled is required")
		return
	}
	cfg, err := h.ctl.SetShellEnabled(r.Context(), *req.Enabled)
	if err != nil {
		WriteOperationError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, cfg)
}

func readFolder(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req FolderRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrBadRequest, "invalid request body: "+err.Error())
		return "", false
	}
	if strings.TrimSpace(req.Path) == "" {
		WriteError(w, http.StatusBadRequest, ErrBadRequest, "path is required")
		return "", false
	}
	return req.Path, true
}
