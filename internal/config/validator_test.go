// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := &Config{DataDir: "/tmp/liteclaw"}
	applyDefaults(cfg)
	return cfg
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
	fields := make(map[string]string)
	for _, fe := range verr.Errors {
		fields[fe.Field] = fe.Message
	}
	return fields
}

func TestValidator_Valid(t *testing.T) {
	assert.NoError(t, NewValidator().Validate(validConfig()))
}

func TestValidator_Server(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Host = ""
	cfg.Server.Port = 70000

	fields := fieldErrors(t, NewValidator().Validate(cfg))
	assert.Contains(t, fields, "server.host")
	assert.Contains(t, fields, "server.port")
}

func TestValidator_Backend(t *testing.T) {
	cfg := validConfig()
	cfg.Backend.Command = []string{" "}
	cfg.Backend.HealthTimeout = "later"
	cfg.Backend.HealthInterval = "0s"
	cfg.Backend.Env = map[string]string{"LITECLAW_PORT": "1"}

	fields := fieldErrors(t, NewValidator().Validate(cfg))
	assert.Equal(t, "is required", fields["backend.command"])
	assert.Contains(t, fields["backend.health_timeout"], "invalid duration")
	assert.Equal(t, "must be positive", fields["backend.health_interval"])
	assert.Contains(t, fields, "backend.env.LITECLAW_PORT")
}

func TestValidator_Ports(t *testing.T) {
	cfg := validConfig()
	cfg.Ports.First = 65500
	cfg.Ports.Count = 100
	fields := fieldErrors(t, NewValidator().Validate(cfg))
	assert.Contains(t, fields["ports.count"], "exceeds 65535")

	cfg = validConfig()
	cfg.Server.Port = 8800
	fields = fieldErrors(t, NewValidator().Validate(cfg))
	assert.Contains(t, fields["server.port"], "overlaps")
}

func TestValidator_Events(t *testing.T) {
	cfg := validConfig()
	cfg.Events.History.MaxEvents = -1
	cfg.Events.History.MaxAge = "forever"

	fields := fieldErrors(t, NewValidator().Validate(cfg))
	assert.Contains(t, fields, "events.history.max_events")
	assert.Contains(t, fields, "events.history.max_age")
}

func TestValidationError_Error(t *testing.T) {
	errs := &ValidationError{}
	assert.True(t, errs.IsEmpty())
	errs.Add("a", "bad")
	errs.Add("b", "worse")
	assert.Equal(t, "a: bad; b: worse", errs.Error())
}
