// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package events

import (
	"sync"
	"time"
)

const (
	defaultHistoryMaxEvents = 1000
	defaultHistoryMaxAge    = time.Hour
)

// history keeps a bounded, time-limited log of published events.
type history struct {
	mu        sync.RWMutex
	events    []Event
	maxEvents int
	maxAge    time.Duration
}

func newHistory(maxEvents int, maxAge time.Duration) *history {
	if maxEvents <= 0 {
		maxEvents = defaultHistoryMaxEvents
	}
	if maxAge <= 0 {
		maxAge = defaultHistoryMaxAge
	}
	return &history{maxEvents: maxEvents, maxAge: maxAge}
}

func (h *history) add(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.events = append(h.events, event)
	if len(h.events) > h.maxEvents {
		h.events = h.events[len(h.events)-h.maxEvents:]
	}
}

// query returns matching events in publish order.
func (h *history) query(filter EventFilter) []Event {
	h.mu.RLock()
	defer h.mu.RUnlock()

	cutoff := time.Now().Add(-h.maxAge)
	result := make([]Event, 0)
	for _, e := range h.events {
		if e.Timestamp.Before(cutoff) {
			continue
		}
		if !filter.Since.IsZero() && e.Timestamp.Before(filter.Since) {
			continue
		}
		if !matchAny(e.Type, filter.Types) {
			continue
		}
		result = append(result, e)
	}

	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[len(result)-filter.Limit:]
	}
	return result
}

// prune drops events older than maxAge.
func (h *history) prune() {
	h.mu.Lock()
	defer h.mu.Unlock()

	cutoff := time.Now().Add(-h.maxAge)
	i := 0
	for i < len(h.events) && h.events[i].Timestamp.Before(cutoff) {
		i++
	}
	if i > 0 {
		h.events = append([]Event(nil), h.events[i:]...)
	}
}
