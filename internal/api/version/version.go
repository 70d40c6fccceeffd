// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package version carries the date-based control API version. Clients send
// it in the LiteClaw-Version header; the server echoes the version it used.
package version

import "context"

// Version20261018 is the initial API version.
const Version20261018 = "2026-10-18"

// LatestVersion is the current default API version.
var LatestVersion = Version20261018

// Header is the HTTP header used to specify the API version.
const Header = "LiteClaw-Version"

type contextKey struct{}

// FromContext returns the API version from the context, or LatestVersion.
func FromContext(ctx context.Context) string {
	v, ok := ctx.Value(contextKey{}).(string)
	if !ok || v == "" {
		return LatestVersion
	}
	return v
}

// WithContext returns a new context with the API version set.
func WithContext(ctx context.Context, version string) context.Context {
	return context.WithValue(ctx, contextKey{}, version)
}
