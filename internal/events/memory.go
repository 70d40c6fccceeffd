// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package events

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// ErrBusClosed is returned when operating on a closed bus.
var ErrBusClosed = errors.New("event bus is closed")

// ErrSubscriptionNotFound is returned when unsubscribing with an unknown ID.
var ErrSubscriptionNotFound = errors.New("subscription not found")

// MemoryBusConfig configures the memory event bus.
type MemoryBusConfig struct {
	HistoryMaxEvents int
	HistoryMaxAge    time.Duration
}

// MemoryEventBus is an in-memory EventBus.
type MemoryEventBus struct {
	mu            sync.RWMutex
	subscriptions map[SubscriptionID]*subscription
	history       *history
	closed        atomic.Bool
	wg            sync.WaitGroup
	stopPruner    chan struct{}
}

type subscription struct {
	pattern string
	handler EventHandler
	ch      chan Event // nil for synchronous subscribers
	stopCh  chan struct{}
}

// NewMemoryEventBus creates a bus and starts its history pruner.
func NewMemoryEventBus(cfg MemoryBusConfig) *MemoryEventBus {
	bus := &MemoryEventBus{
		subscriptions: make(map[SubscriptionID]*subscription),
		history:       newHistory(cfg.HistoryMaxEvents, cfg.HistoryMaxAge),
		stopPruner:    make(chan struct{}),
	}

	interval := bus.history.maxAge / 10
	if interval < time.Minute {
		interval = time.Minute
	}

	bus.wg.Add(1)
	go func() {
		defer bus.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-bus.stopPruner:
				return
			case <-ticker.C:
				bus.history.prune()
			}
		}
	}()

	return bus
}

// Publish records an event and delivers it to matching subscribers.
func (bus *MemoryEventBus) Publish(ctx context.Context, event Event) error {
	if bus.closed.Load() {
		return ErrBusClosed
	}

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	bus.history.add(event)

	bus.mu.RLock()
	subs := make([]*subscription, 0, len(bus.subscriptions))
	for _, sub := range bus.subscriptions {
		subs = append(subs, sub)
	}
	bus.mu.RUnlock()

	for _, sub := range subs {
		if !Match(event.Type, sub.pattern) {
			continue
		}
		if sub.ch != nil {
			select {
			case sub.ch <- event:
			default:
				log.Printf("EventBus: dropped %s - async subscriber buffer full", event.Type)
			}
			continue
		}
		callHandler(ctx, sub.handler, event)
	}

	return nil
}

// Subscribe registers a handler called synchronously from Publish.
func (bus *MemoryEventBus) Subscribe(pattern string, handler EventHandler) (SubscriptionID, error) {
	return bus.subscribe(pattern, handler, 0)
}

// SubscribeAsync registers a handler fed through a buffered channel. Events
// are dropped when the buffer is full.
func (bus *MemoryEventBus) SubscribeAsync(pattern string, handler EventHandler, bufferSize int) (SubscriptionID, error) {
	if bufferSize <= 0 {
		bufferSize = 100
	}
	return bus.subscribe(pattern, handler, bufferSize)
}

func (bus *MemoryEventBus) subscribe(pattern string, handler EventHandler, bufferSize int) (SubscriptionID, error) {
	if bus.closed.Load() {
		return "", ErrBusClosed
	}
	if pattern == "" {
		return "", ErrEmptyPattern
	}

	id := SubscriptionID(uuid.NewString())
	sub := &subscription{pattern: pattern, handler: handler}

	if bufferSize > 0 {
		sub.ch = make(chan Event, bufferSize)
		sub.stopCh = make(chan struct{})

		bus.wg.Add(1)
		go func() {
			defer bus.wg.Done()
			for {
				select {
				case <-sub.stopCh:
					return
				case event := <-sub.ch:
					callHandler(context.Background(), handler, event)
				}
			}
		}()
	}

	bus.mu.Lock()
	bus.subscriptions[id] = sub
	bus.mu.Unlock()

	return id, nil
}

// Unsubscribe removes a subscription.
func (bus *MemoryEventBus) Unsubscribe(id SubscriptionID) error {
	bus.mu.Lock()
	sub, ok := bus.subscriptions[id]
	if !ok {
		bus.mu.Unlock()
		return ErrSubscriptionNotFound
	}
	delete(bus.subscriptions, id)
	bus.mu.Unlock()

	if sub.stopCh != nil {
		close(sub.stopCh)
	}
	return nil
}

// History returns past events matching filter, oldest first.
func (bus *MemoryEventBus) History(filter EventFilter) ([]Event, error) {
	return bus.history.query(filter), nil
}

// Close stops the pruner and all async subscribers.
func (bus *MemoryEventBus) Close() error {
	if bus.closed.Swap(true) {
		return nil
	}

	close(bus.stopPruner)

	bus.mu.Lock()
	for _, sub := range bus.subscriptions {
		if sub.stopCh != nil {
			close(sub.stopCh)
		}
	}
	bus.subscriptions = make(map[SubscriptionID]*subscription)
	bus.mu.Unlock()

	bus.wg.Wait()
	return nil
}

func callHandler(ctx context.Context, handler EventHandler, event Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Event handler panic for %s: %v", event.Type, r)
		}
	}()
	if err := handler(ctx, event); err != nil {
		log.Printf("Event handler for %s failed: %v", event.Type, err)
	}
}
