// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package client provides a Go client library for the LiteClaw control API.
//
// The control API is served by the liteclaw supervisor on loopback. It
// reports how to reach the supervised backend, edits the local config the
// backend reads, and restarts the backend on request.
//
// # Getting Started
//
//	c := client.New("http://127.0.0.1:8764")
//
//	// Where is the backend and what token does it expect?
//	info, err := c.Connection.Get(ctx)
//
//	// Allow the backend to read a folder.
//	cfg, err := c.Config.AddFolder(ctx, "/home/me/projects")
//
//	// Restart the backend after a failure.
//	info, err = c.Backend.Retry(ctx)
//
// # Error Handling
//
// API errors are returned as *APIError values carrying a code such as
// "BACKEND_NOT_READY" or "NOT_A_DIRECTORY":
//
//	_, err := c.Config.SetShell(ctx, true)
//	var apiErr *client.APIError
//	if errors.As(err, &apiErr) && apiErr.Code == client.CodeBackendNotReady {
//	    // The change was saved; the backend will pick it up when it starts.
//	}
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is a LiteClaw control API client. It is safe for concurrent use.
type Client struct {
	baseURL    string
	version    string
	httpClient *http.Client

	// Connection reports the backend base URL, token and readiness.
	Connection *ConnectionClient

	// Config reads and edits the local config consumed by the backend.
	Config *ConfigClient

	// Backend restarts the backend and reads its log.
	Backend *BackendClient

	// Events lists and streams supervisor events.
	Events *EventClient
}

// Option configures a [Client].
type Option func(*Client)

// New creates a client for the control API at baseURL. Any trailing slash
// is removed. The default HTTP timeout is 30 seconds, long enough for a
// retry that waits on the backend health check.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		version: LatestVersion,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	c.Connection = &ConnectionClient{c: c}
	c.Config = &ConfigClient{c: c}
	c.Backend = &BackendClient{c: c}
	c.Events = &EventClient{c: c}

	return c
}

// WithVersion pins the API version sent with every request.
func WithVersion(v string) Option {
	return func(c *Client) {
		c.version = v
	}
}

// WithHTTPClient sets a custom HTTP client for making requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the HTTP client timeout for all requests.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// Version returns the API version being used.
func (c *Client) Version() string {
	return c.version
}

// BaseURL returns the base URL of the API.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// apiResponse is the standard API response envelope.
type apiResponse struct {
	Data  json.RawMessage `json:"data"`
	Error *APIError       `json:"error"`
}

// APIError is an error response from the control API.
type APIError struct {
	// Code is a machine-readable error code, see the Code constants.
	Code string `json:"code"`

	// Message is a human-readable description of the error.
	Message string `json:"message"`

	// Details contains additional error information, if available.
	Details map[string]interface{} `json:"details,omitempty"`

	// StatusCode is the HTTP status of the response.
	StatusCode int `json:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

func (c *Client) get(ctx context.Context, path string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

func (c *Client) post(ctx context.Context, path string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, path, nil)
}

// sendJSON performs a request with a JSON body.
func (c *Client) sendJSON(ctx context.Context, method, path string, body interface{}) (json.RawMessage, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	return c.do(ctx, method, path, bytes.NewReader(data))
}

// do performs an HTTP request and parses the response.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set(VersionHeader, c.version)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return parseResponse(resp)
}

// parseResponse reads and unwraps an API response envelope.
func parseResponse(resp *http.Response) (json.RawMessage, error) {
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		if resp.StatusCode >= 400 {
			return nil, &APIError{
				Message:    fmt.Sprintf("request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody))),
				StatusCode: resp.StatusCode,
			}
		}
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if apiResp.Error != nil {
		apiResp.Error.StatusCode = resp.StatusCode
		return nil, apiResp.Error
	}
	if resp.StatusCode >= 400 {
		return nil, &APIError{
			Message:    fmt.Sprintf("request failed with status %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}

	return apiResp.Data, nil
}

func decode[T any](data json.RawMessage, what string) (*T, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", what, err)
	}
	return &v, nil
}
