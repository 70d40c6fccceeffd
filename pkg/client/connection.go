// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import "context"

// ConnectionClient reports how to reach the backend.
type ConnectionClient struct {
	c *Client
}

// Get returns the current connection info. It never waits on the backend.
func (cc *ConnectionClient) Get(ctx context.Context) (*ConnectionInfo, error) {
	data, err := cc.c.get(ctx, "/api/v1/connection")
	if err != nil {
		return nil, err
	}
	return decode[ConnectionInfo](data, "connection info")
}
