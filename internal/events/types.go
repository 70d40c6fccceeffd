// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package events provides the in-process event bus used to report backend
// lifecycle and configuration changes to API subscribers.
package events

import (
	"context"
	"time"
)

// Event is an immutable record of something that happened to the backend.
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}

// EventHandler processes received events.
type EventHandler func(ctx context.Context, event Event) error

// SubscriptionID uniquely identifies a subscription.
type SubscriptionID string

// EventFilter selects events from history.
type EventFilter struct {
	Types []string  // patterns, see Match
	Since time.Time // events at or after this time
	Limit int       // newest N events; 0 means all
}

// EventBus is the pub/sub interface consumed by the supervisor and API.
type EventBus interface {
	// Publish records an event and delivers it to matching subscribers.
	Publish(ctx context.Context, event Event) error

	// Subscribe registers a handler called synchronously from Publish.
	Subscribe(pattern string, handler EventHandler) (SubscriptionID, error)

	// SubscribeAsync registers a handler fed through a buffered channel.
	SubscribeAsync(pattern string, handler EventHandler, bufferSize int) (SubscriptionID, error)

	// Unsubscribe removes a subscription.
	Unsubscribe(id SubscriptionID) error

	// History returns past events matching filter, oldest first.
	History(filter EventFilter) ([]Event, error)

	// Close stops delivery and releases resources.
	Close() error
}

// Event types
const (
	EventBackendStarting = "backend.starting"
	EventBackendReady    = "backend.ready"
	EventBackendFailed   = "backend.failed"
	EventBackendStopped  = "backend.stopped"
	EventBackendExited   = "backend.exited"
	EventBackendReloaded = "backend.reloaded"

	EventConfigChanged = "config.changed"

	EventBinaryChanged = "binary.changed"
)
