// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"context"

	"github.com/wingedpig/liteclaw/internal/localconfig"
	"github.com/wingedpig/liteclaw/internal/supervisor"
)

// Controller is the set of operations the API exposes. control.Service
// implements it.
type Controller interface {
	ConnectionInfo() (supervisor.ConnectionInfo, error)
	Config() (*localconfig.LocalConfig, error)
	AddFolder(ctx context.Context, path string) (*localconfig.LocalConfig, error)
	RemoveFolder(ctx context.Context, path string) (*localconfig.LocalConfig, error)
	SetShellEnabled(ctx context.Context, enabled bool) (*localconfig.LocalConfig, error)
	RetryBackend(ctx context.Context) (supervisor.ConnectionInfo, error)
	RecentLogs(n int) (string, error)
}
