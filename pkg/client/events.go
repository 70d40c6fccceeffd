// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// EventClient lists and streams supervisor events.
type EventClient struct {
	c *Client
}

// ListOptions configures event listing.
type ListOptions struct {
	// Limit keeps only the newest Limit events.
	Limit int

	// Types filters to only these event types (e.g., "backend.ready").
	Types []string

	// Since filters to events at or after this time.
	Since time.Time
}

// List returns retained events, oldest first.
func (e *EventClient) List(ctx context.Context, opts *ListOptions) ([]Event, error) {
	path := "/api/v1/events"

	if opts != nil {
		params := url.Values{}
		if opts.Limit > 0 {
			params.Set("limit", fmt.Sprintf("%d", opts.Limit))
		}
		for _, t := range opts.Types {
			params.Add("type", t)
		}
		if !opts.Since.IsZero() {
			params.Set("since", opts.Since.Format(time.RFC3339))
		}
		if len(params) > 0 {
			path += "?" + params.Encode()
		}
	}

	data, err := e.c.get(ctx, path)
	if err != nil {
		return nil, err
	}

	var events []Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("failed to parse events: %w", err)
	}
	return events, nil
}

// Stream delivers live events matching pattern ("*", "backend.*", an exact
// type) to fn until ctx is cancelled, fn returns an error or the server
// closes the connection. Cancellation returns nil.
func (e *EventClient) Stream(ctx context.Context, pattern string, fn func(Event) error) error {
	wsURL, err := e.streamURL(pattern)
	if err != nil {
		return err
	}

	header := http.Header{}
	header.Set(VersionHeader, e.c.version)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		return fmt.Errorf("failed to connect event stream: %w", err)
	}
	defer conn.Close()

	// Unblock ReadJSON when ctx ends.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		var event Event
		if err := conn.ReadJSON(&event); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("event stream: %w", err)
		}
		if err := fn(event); err != nil {
			return err
		}
	}
}

func (e *EventClient) streamURL(pattern string) (string, error) {
	u, err := url.Parse(e.c.baseURL + "/api/v1/events/ws")
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	if pattern != "" {
		u.RawQuery = url.Values{"pattern": {pattern}}.Encode()
	}
	return u.String(), nil
}
