// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"fmt"
)

// BackendClient controls the supervised backend.
type BackendClient struct {
	c *Client
}

// Retry stops the backend, starts a new one with a fresh port and token,
// and waits for its health check.
func (bc *BackendClient) Retry(ctx context.Context) (*ConnectionInfo, error) {
	data, err := bc.c.post(ctx, "/api/v1/backend/retry")
	if err != nil {
		return nil, err
	}
	return decode[ConnectionInfo](data, "connection info")
}

// Logs returns the last n lines of the backend log. n <= 0 uses the server
// default of 100.
func (bc *BackendClient) Logs(ctx context.Context, n int) (*Logs, error) {
	path := "/api/v1/backend/logs"
	if n > 0 {
		path += fmt.Sprintf("?lines=%d", n)
	}
	data, err := bc.c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	return decode[Logs](data, "logs")
}
