// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package supervisor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	HealthPath = "/v1/health"
	ReloadPath = "/v1/config/reload"

	DefaultHealthTimeout  = 5 * time.Second
	DefaultHealthInterval = 250 * time.Millisecond
)

// PollHealth issues authenticated GET requests to the backend health
// endpoint every interval until one returns 200 or timeout elapses.
// Transport errors and other statuses count as not yet healthy.
func PollHealth(ctx context.Context, client *http.Client, baseURL, token string, timeout, interval time.Duration) error {
	if client == nil {
		client = http.DefaultClient
	}
	if interval <= 0 {
		interval = DefaultHealthInterval
	}

	deadline := time.Now().Add(timeout)
	url := baseURL + HealthPath

	for time.Now().Before(deadline) {
		if healthy(ctx, client, url, token, deadline) {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ErrHealthCheckTimeout, ctx.Err())
		case <-time.After(interval):
		}
	}

	return fmt.Errorf("%w after %s", ErrHealthCheckTimeout, timeout)
}

func healthy(ctx context.Context, client *http.Client, url, token string, deadline time.Time) bool {
	reqCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode == http.StatusOK
}

// postReload asks the backend to re-read its config file.
func postReload(ctx context.Context, client *http.Client, baseURL, token string) error {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+ReloadPath, strings.NewReader("{}"))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrReloadFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrReloadFailed, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: HTTP %d", ErrReloadFailed, resp.StatusCode)
	}
	return nil
}
