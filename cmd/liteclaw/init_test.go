// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wingedpig/liteclaw/internal/config"
)

func loadGenerated(t *testing.T, content string) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "liteclaw.hjson")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	cfg, err := config.NewLoader().LoadWithDefaults(context.Background(), path)
	require.NoError(t, err)
	return cfg
}

func TestGenerateConfig_Defaults(t *testing.T) {
	answers := defaultAnswers()
	cfg := loadGenerated(t, generateConfig(answers))

	assert.Equal(t, answers.DataDir, cfg.DataDir)
	assert.Equal(t, config.DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, config.DefaultCommand, cfg.Backend.Command)
	assert.False(t, cfg.Backend.Watch)
	assert.NoError(t, config.NewValidator().Validate(cfg))
}

func TestGenerateConfig_Escaping(t *testing.T) {
	cfg := loadGenerated(t, generateConfig(initAnswers{
		DataDir: `C:\Users\me "quoted"`,
		Port:    9000,
		Command: []string{"./backend", `--name="x"`},
		Watch:   true,
	}))

	assert.Equal(t, `C:\Users\me "quoted"`, cfg.DataDir)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, []string{"./backend", `--name="x"`}, cfg.Backend.Command)
	assert.True(t, cfg.Backend.Watch)
}

func TestAsk(t *testing.T) {
	input := "/srv/liteclaw\n9100\n./server --fast\ny\n"
	got := ask(bufio.NewReader(strings.NewReader(input)), io.Discard, defaultAnswers())

	assert.Equal(t, "/srv/liteclaw", got.DataDir)
	assert.Equal(t, 9100, got.Port)
	assert.Equal(t, []string{"./server", "--fast"}, got.Command)
	assert.True(t, got.Watch)
}

func TestAsk_AcceptDefaults(t *testing.T) {
	defaults := defaultAnswers()
	got := ask(bufio.NewReader(strings.NewReader("\n\n\n\n")), io.Discard, defaults)

	assert.Equal(t, defaults, got)
}
