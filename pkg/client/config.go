// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"net/http"
)

// ConfigClient reads and edits the backend's local config. Every edit is
// saved before the backend is asked to reload, so a BACKEND_NOT_READY or
// RELOAD_FAILED error still leaves the change on disk.
type ConfigClient struct {
	c *Client
}

// Get returns the current config.
func (cc *ConfigClient) Get(ctx context.Context) (*LocalConfig, error) {
	data, err := cc.c.get(ctx, "/api/v1/config")
	if err != nil {
		return nil, err
	}
	return decode[LocalConfig](data, "config")
}

// AddFolder allows the backend to access path. The server stores the
// resolved absolute path; adding a folder twice is a no-op.
func (cc *ConfigClient) AddFolder(ctx context.Context, path string) (*LocalConfig, error) {
	return cc.edit(ctx, http.MethodPost, "/api/v1/config/folders", map[string]string{"path": path})
}

// RemoveFolder revokes access to path. Paths that no longer exist on disk
// are matched as given.
func (cc *ConfigClient) RemoveFolder(ctx context.Context, path string) (*LocalConfig, error) {
	return cc.edit(ctx, http.MethodDelete, "/api/v1/config/folders", map[string]string{"path": path})
}

// SetShell enables or disables backend shell access.
func (cc *ConfigClient) SetShell(ctx context.Context, enabled bool) (*LocalConfig, error) {
	return cc.edit(ctx, http.MethodPut, "/api/v1/config/shell", map[string]bool{"enabled": enabled})
}

func (cc *ConfigClient) edit(ctx context.Context, method, path string, body interface{}) (*LocalConfig, error) {
	data, err := cc.c.sendJSON(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	return decode[LocalConfig](data, "config")
}
