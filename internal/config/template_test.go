// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateExpander_Expand(t *testing.T) {
	e := NewTemplateExpander()
	ctx := &TemplateContext{DataDir: "/data", Home: "/home/u", ConfigDir: "/etc/lc"}

	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"{{.DataDir}}/cache", "/data/cache"},
		{"{{.Home}}/{{.ConfigDir}}", "/home/u//etc/lc"},
		{"{{upper \"dev\"}}", "DEV"},
		{"{{default \"x\" \"\"}}", "x"},
		{"{{quote .Home}}", `"/home/u"`},
	}
	for _, tt := range tests {
		got, err := e.Expand(tt.in, ctx)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestTemplateExpander_ExpandErrors(t *testing.T) {
	e := NewTemplateExpander()

	_, err := e.Expand("{{.DataDir", &TemplateContext{})
	assert.Error(t, err)

	_, err = e.Expand("{{.Nope}}", &TemplateContext{})
	assert.Error(t, err)
}

func TestTemplateExpander_ExpandConfig(t *testing.T) {
	cfg := validConfig()
	cfg.Backend.Command = []string{"{{.ConfigDir}}/backend", "--data", "{{.DataDir}}"}
	cfg.Backend.WorkDir = "{{.ConfigDir}}"
	cfg.Backend.Env = map[string]string{"CACHE": "{{.DataDir}}/cache"}

	ctx := &TemplateContext{DataDir: cfg.DataDir, ConfigDir: "/etc/lc"}
	expanded, err := NewTemplateExpander().ExpandConfig(cfg, ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{"/etc/lc/backend", "--data", "/tmp/liteclaw"}, expanded.Backend.Command)
	assert.Equal(t, "/etc/lc", expanded.Backend.WorkDir)
	assert.Equal(t, "/tmp/liteclaw/cache", expanded.Backend.Env["CACHE"])

	// The source is left untouched.
	assert.Equal(t, "{{.ConfigDir}}/backend", cfg.Backend.Command[0])
	assert.Equal(t, "{{.DataDir}}/cache", cfg.Backend.Env["CACHE"])
}
