// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// TemplateContext holds the values available to {{ }} actions in backend
// settings.
type TemplateContext struct {
	DataDir   string
	Home      string
	ConfigDir string
}

// TemplateExpander handles Go text/template expansion in settings values.
type TemplateExpander struct {
	funcMap template.FuncMap
}

// NewTemplateExpander creates a new template expander with built-in functions.
func NewTemplateExpander() *TemplateExpander {
	return &TemplateExpander{
		funcMap: template.FuncMap{
			"upper":   strings.ToUpper,
			"lower":   strings.ToLower,
			"default": DefaultValue,
			"quote":   Quote,
		},
	}
}

// Expand expands template actions in a string value.
func (e *TemplateExpander) Expand(value string, ctx *TemplateContext) (string, error) {
	if !strings.Contains(value, "{{") {
		return value, nil
	}

	tmpl, err := template.New("").Option("missingkey=error").Funcs(e.funcMap).Parse(value)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ExpandConfig returns a copy of cfg with the backend command, working
// directory and environment values expanded.
func (e *TemplateExpander) ExpandConfig(cfg *Config, ctx *TemplateContext) (*Config, error) {
	expanded := *cfg

	command := make([]string, len(cfg.Backend.Command))
	for i, arg := range cfg.Backend.Command {
		exp, err := e.Expand(arg, ctx)
		if err != nil {
			return nil, fmt.Errorf("backend.command[%d]: %w", i, err)
		}
		command[i] = exp
	}
	expanded.Backend.Command = command

	workDir, err := e.Expand(cfg.Backend.WorkDir, ctx)
	if err != nil {
		return nil, fmt.Errorf("backend.work_dir: %w", err)
	}
	expanded.Backend.WorkDir = workDir

	if cfg.Backend.Env != nil {
		env := make(map[string]string, len(cfg.Backend.Env))
		for k, v := range cfg.Backend.Env {
			exp, err := e.Expand(v, ctx)
			if err != nil {
				return nil, fmt.Errorf("backend.env.%s: %w", k, err)
			}
			env[k] = exp
		}
		expanded.Backend.Env = env
	}

	return &expanded, nil
}

// DefaultValue returns the value if non-empty, otherwise the default.
func DefaultValue(defaultVal, value string) string {
	if value == "" {
		return defaultVal
	}
	return value
}

// Quote adds shell-safe quotes around a string.
func Quote(s string) string {
	escaped := strings.ReplaceAll(s, `"`, `\"`)
	return `"` + escaped + `"`
}
