// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package events

import (
	"errors"
	"strings"
)

// ErrEmptyPattern is returned when subscribing with an empty pattern.
var ErrEmptyPattern = errors.New("empty pattern")

// Match reports whether eventType matches pattern. Patterns are either an
// exact type, "*", a prefix wildcard like "backend.*" or a suffix wildcard
// like "*.failed".
func Match(eventType, pattern string) bool {
	if pattern == "" || eventType == "" {
		return false
	}

	switch {
	case pattern == "*":
		return true
	case pattern == eventType:
		return true
	case strings.HasSuffix(pattern, ".*"):
		return strings.HasPrefix(eventType, strings.TrimSuffix(pattern, "*"))
	case strings.HasPrefix(pattern, "*."):
		return strings.HasSuffix(eventType, strings.TrimPrefix(pattern, "*"))
	}
	return false
}

// matchAny reports whether eventType matches any of patterns. An empty list
// matches everything.
func matchAny(eventType string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, p := range patterns {
		if Match(eventType, p) {
			return true
		}
	}
	return false
}
