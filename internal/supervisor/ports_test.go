// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package supervisor

import (
	"errors"
	"net"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPortAllocator_Defaults(t *testing.T) {
	a := NewPortAllocator(0, 0)
	assert.Equal(t, 8765, a.First)
	assert.Equal(t, 8864, a.Last())
}

func TestPortAllocator_LowestFreeWins(t *testing.T) {
	bound := map[int]bool{8765: true, 8766: true, 8768: true}
	a := &PortAllocator{First: 8765, Count: 100, Probe: func(port int) bool { return !bound[port] }}

	port, err := a.FindOpenPort()
	require.NoError(t, err)
	assert.Equal(t, 8767, port)
}

func TestPortAllocator_ScansAscendingWithinRange(t *testing.T) {
	var probed []int
	a := &PortAllocator{First: 8765, Count: 100, Probe: func(port int) bool {
		probed = append(probed, port)
		return false
	}}

	_, err := a.FindOpenPort()
	require.Error(t, err)

	require.Len(t, probed, 100)
	for i, port := range probed {
		assert.Equal(t, 8765+i, port)
	}
}

func TestPortAllocator_AllBound(t *testing.T) {
	a := &PortAllocator{First: 8765, Count: 100, Probe: func(int) bool { return false }}

	_, err := a.FindOpenPort()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoPortAvailable))
	assert.Contains(t, err.Error(), "8765-8864")
}

func TestPortAllocator_SkipsRealListener(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	busy := ln.Addr().(*net.TCPAddr).Port

	a := NewPortAllocator(busy, 1)
	_, err = a.FindOpenPort()
	assert.ErrorIs(t, err, ErrNoPortAvailable)
}

func TestPortAllocator_ReleasesProbe(t *testing.T) {
	a := NewPortAllocator(DefaultFirstPort, DefaultPortCount)

	port, err := a.FindOpenPort()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, port, 8765)
	assert.LessOrEqual(t, port, 8864)

	ln, err := net.Listen("tcp", "127.0.0.1:"+strconv.Itoa(port))
	require.NoError(t, err, "probe must release the port")
	ln.Close()
}

func TestIssueToken_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		tok := IssueToken()
		assert.Len(t, tok, 36)
		assert.False(t, seen[tok])
		seen[tok] = true
	}
}
