// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"strings"
	"time"
)

// Validator validates settings.
type Validator struct{}

// NewValidator creates a new settings validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidationError contains multiple validation failures.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single field validation error.
type FieldError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	var msgs []string
	for _, fe := range e.Errors {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return strings.Join(msgs, "; ")
}

// IsEmpty returns true if there are no validation errors.
func (e *ValidationError) IsEmpty() bool {
	return len(e.Errors) == 0
}

// Add adds a field error.
func (e *ValidationError) Add(field, message string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: message})
}

// Validate checks settings validity. It expects defaults to be applied.
func (v *Validator) Validate(cfg *Config) error {
	errs := &ValidationError{}

	if cfg.DataDir == "" {
		errs.Add("data_dir", "is required")
	}
	v.validateServer(cfg, errs)
	v.validateBackend(cfg, errs)
	v.validatePorts(cfg, errs)
	v.validateEvents(cfg, errs)

	if errs.IsEmpty() {
		return nil
	}
	return errs
}

func (v *Validator) validateServer(cfg *Config, errs *ValidationError) {
	if cfg.Server.Host == "" {
		errs.Add("server.host", "is required")
	}
	if !validPort(cfg.Server.Port) {
		errs.Add("server.port", "must be between 1 and 65535")
	}
}

func (v *Validator) validateBackend(cfg *Config, errs *ValidationError) {
	if len(cfg.Backend.Command) == 0 || strings.TrimSpace(cfg.Backend.Command[0]) == "" {
		errs.Add("backend.command", "is required")
	}
	for name := range cfg.Backend.Env {
		if name == "" || strings.Contains(name, "=") {
			errs.Add("backend.env", fmt.Sprintf("invalid variable name %q", name))
		}
		if strings.HasPrefix(name, "LITECLAW_") {
			errs.Add("backend.env."+name, "is reserved for the launch contract")
		}
	}
	validatePositiveDuration("backend.health_timeout", cfg.Backend.HealthTimeout, errs)
	validatePositiveDuration("backend.health_interval", cfg.Backend.HealthInterval, errs)
	validatePositiveDuration("backend.watch_debounce", cfg.Backend.WatchDebounce, errs)
}

func (v *Validator) validatePorts(cfg *Config, errs *ValidationError) {
	if !validPort(cfg.Ports.First) {
		errs.Add("ports.first", "must be between 1 and 65535")
		return
	}
	if cfg.Ports.Count < 1 {
		errs.Add("ports.count", "must be at least 1")
		return
	}
	if cfg.Ports.Last() > 65535 {
		errs.Add("ports.count", fmt.Sprintf("range %d-%d exceeds 65535", cfg.Ports.First, cfg.Ports.Last()))
		return
	}
	if cfg.Server.Port >= cfg.Ports.First && cfg.Server.Port <= cfg.Ports.Last() {
		errs.Add("server.port", fmt.Sprintf("%d overlaps the backend port range %d-%d",
			cfg.Server.Port, cfg.Ports.First, cfg.Ports.Last()))
	}
}

func (v *Validator) validateEvents(cfg *Config, errs *ValidationError) {
	if cfg.Events.History.MaxEvents < 0 {
		errs.Add("events.history.max_events", "must not be negative")
	}
	validatePositiveDuration("events.history.max_age", cfg.Events.History.MaxAge, errs)
}

func validatePositiveDuration(field, value string, errs *ValidationError) {
	if value == "" {
		return
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		errs.Add(field, fmt.Sprintf("invalid duration %q", value))
		return
	}
	if d <= 0 {
		errs.Add(field, "must be positive")
	}
}

func validPort(port int) bool {
	return port >= 1 && port <= 65535
}
