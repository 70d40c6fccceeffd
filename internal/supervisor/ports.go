// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package supervisor

import (
	"fmt"
	"net"
	"strconv"
)

const (
	DefaultFirstPort = 8765
	DefaultPortCount = 100
)

// PortAllocator finds a free loopback port in a fixed, contiguous range.
type PortAllocator struct {
	First int
	Count int

	// Probe reports whether port can be bound. Defaults to a real bind on
	// 127.0.0.1 that is released immediately.
	Probe func(port int) bool
}

// NewPortAllocator returns an allocator for [first, first+count).
func NewPortAllocator(first, count int) *PortAllocator {
	if first <= 0 {
		first = DefaultFirstPort
	}
	if count <= 0 {
		count = DefaultPortCount
	}
	return &PortAllocator{First: first, Count: count, Probe: probeLoopback}
}

// Last returns the highest candidate port.
func (a *PortAllocator) Last() int {
	return a.First + a.Count - 1
}

// FindOpenPort returns the lowest port in range that can be bound.
func (a *PortAllocator) FindOpenPort() (int, error) {
	probe := a.Probe
	if probe == nil {
		probe = probeLoopback
	}
	for port := a.First; port <= a.Last(); port++ {
		if probe(port) {
			return port, nil
		}
	}
	return 0, fmt.Errorf("%w in %d-%d", ErrNoPortAvailable, a.First, a.Last())
}

func probeLoopback(port int) bool {
	ln, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
	if err != nil {
		return false
	}
	ln.Close()
	return true
}
