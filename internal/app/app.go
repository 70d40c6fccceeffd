// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package app wires the settings, event bus, supervisor, control facade,
// binary watcher and API server into one process.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/wingedpig/liteclaw/internal/api"
	"github.com/wingedpig/liteclaw/internal/config"
	"github.com/wingedpig/liteclaw/internal/control"
	"github.com/wingedpig/liteclaw/internal/events"
	"github.com/wingedpig/liteclaw/internal/supervisor"
	"github.com/wingedpig/liteclaw/internal/watcher"
	"golang.org/x/sync/errgroup"
)

// App is the main application container.
type App struct {
	mu sync.Mutex

	configPath    string // empty when running on defaults
	version       string
	config        *config.Config
	eventBus      events.EventBus
	runtime       *supervisor.Runtime
	supervisor    *supervisor.Supervisor
	control       *control.Service
	binaryWatcher *watcher.BinaryWatcher
	apiServer     *api.Server
	listener      net.Listener
	serveErr      chan error
	shutdown      bool

	done     chan struct{}
	stopOnce sync.Once
}

// Options holds command-line overrides for the app.
type Options struct {
	// ConfigPath is the settings file. When empty the working directory is
	// searched and defaults are used if nothing is found.
	ConfigPath string
	DataDir    string
	Host       string
	Port       int
	Version    string
}

// New loads settings and creates an App. Nothing is started.
func New(opts Options) (*App, error) {
	loader := config.NewLoader()

	configPath := opts.ConfigPath
	if configPath == "" {
		if found, err := loader.FindConfig("."); err == nil {
			configPath = found
		}
	}

	var cfg *config.Config
	if configPath != "" {
		var err error
		cfg, err = loader.LoadWithDefaults(context.Background(), configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	} else {
		cfg = config.Default()
	}

	if opts.DataDir != "" {
		cfg.DataDir = opts.DataDir
	}
	if opts.Host != "" {
		cfg.Server.Host = opts.Host
	}
	if opts.Port > 0 {
		cfg.Server.Port = opts.Port
	}

	cfg, err := expand(cfg, configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to expand config: %w", err)
	}
	if err := config.NewValidator().Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &App{
		configPath: configPath,
		version:    opts.Version,
		config:     cfg,
		eventBus: events.NewMemoryEventBus(events.MemoryBusConfig{
			HistoryMaxEvents: cfg.Events.History.MaxEvents,
			HistoryMaxAge:    cfg.Events.History.GetMaxAge(),
		}),
		serveErr: make(chan error, 1),
		done:     make(chan struct{}),
	}, nil
}

func expand(cfg *config.Config, configPath string) (*config.Config, error) {
	dataDir, err := filepath.Abs(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	cfg.DataDir = dataDir

	ctx := &config.TemplateContext{DataDir: dataDir}
	ctx.Home, _ = os.UserHomeDir()
	if configPath != "" {
		if abs, err := filepath.Abs(configPath); err == nil {
			ctx.ConfigDir = filepath.Dir(abs)
		}
	} else {
		ctx.ConfigDir, _ = os.Getwd()
	}
	return config.NewTemplateExpander().ExpandConfig(cfg, ctx)
}

// Config returns the effective settings.
func (app *App) Config() *config.Config {
	return app.config
}

// Control returns the control facade. It is nil before Initialize.
func (app *App) Control() *control.Service {
	return app.control
}

// EventBus returns the application event bus.
func (app *App) EventBus() events.EventBus {
	return app.eventBus
}

// APIAddr returns the bound API address, or "" before Initialize.
func (app *App) APIAddr() string {
	if app.listener == nil {
		return ""
	}
	return app.listener.Addr().String()
}

// Initialize prepares every component and binds the API port. It reaps a
// backend left behind by a previous run.
func (app *App) Initialize(ctx context.Context) error {
	cfg := app.config
	if app.configPath != "" {
		log.Printf("Using config %s", app.configPath)
	}
	log.Printf("Using data directory %s", cfg.DataDir)

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	app.runtime = supervisor.NewRuntime(supervisor.NewState(cfg.DataDir))
	app.supervisor = supervisor.New(supervisor.Options{
		Command:        cfg.Backend.Command,
		WorkDir:        cfg.Backend.WorkDir,
		Env:            cfg.Backend.Env,
		HealthTimeout:  cfg.Backend.GetHealthTimeout(),
		HealthInterval: cfg.Backend.GetHealthInterval(),
		Ports:          supervisor.NewPortAllocator(cfg.Ports.First, cfg.Ports.Count),
	}, app.eventBus)
	app.control = control.New(app.runtime, app.supervisor, app.eventBus)

	if pid, err := supervisor.ReapOrphan(cfg.DataDir, app.supervisor.Command()); err != nil {
		log.Printf("Warning: failed to reap orphaned backend: %v", err)
	} else if pid > 0 {
		log.Printf("Killed orphaned backend (PID %d)", pid)
	}

	if cfg.Backend.Watch {
		if err := app.startWatcher(); err != nil {
			log.Printf("Warning: backend file watching disabled: %v", err)
		}
	}

	app.apiServer = api.NewServer(api.ServerConfig{
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	}, api.Dependencies{
		Controller: app.control,
		EventBus:   app.eventBus,
	})
	ln, err := app.apiServer.Listen()
	if err != nil {
		return fmt.Errorf("failed to bind API server: %w", err)
	}
	app.listener = ln

	return nil
}

func (app *App) startWatcher() error {
	cfg := app.config
	command := app.supervisor.Command()
	targets := watcher.Targets(command, cfg.Backend.WorkDir)
	if len(targets) == 0 {
		return fmt.Errorf("no files to watch for %v", command)
	}

	w, err := watcher.NewBinaryWatcher(app.eventBus, cfg.Backend.GetWatchDebounce())
	if err != nil {
		return err
	}
	if err := w.Watch(targets); err != nil {
		w.Close()
		return err
	}

	_, err = app.eventBus.SubscribeAsync(events.EventBinaryChanged, func(ctx context.Context, event events.Event) error {
		log.Printf("Restarting backend after change to %v", event.Payload["path"])
		if _, err := app.control.RetryBackend(ctx); err != nil {
			log.Printf("Warning: backend restart failed: %v", err)
		}
		return nil
	}, 1)
	if err != nil {
		w.Close()
		return err
	}

	app.binaryWatcher = w
	log.Printf("Watching %d backend file(s) for changes", len(targets))
	return nil
}

// Start spawns the backend and starts serving the API in the background.
// A backend that fails to start is reported through the API, not here.
func (app *App) Start(ctx context.Context) error {
	if err := app.control.Start(ctx); err != nil {
		return err
	}

	go func() {
		app.serveErr <- app.apiServer.Serve(app.listener)
	}()
	return nil
}

// Run starts the app and blocks until a signal, ctx cancellation, Stop or
// an API server failure.
func (app *App) Run(ctx context.Context) error {
	if err := app.Initialize(ctx); err != nil {
		return err
	}
	if err := app.Start(ctx); err != nil {
		app.Shutdown(context.Background())
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var runErr error
	select {
	case sig := <-sigCh:
		log.Printf("Received signal %v, shutting down...", sig)
	case <-ctx.Done():
		log.Printf("Context cancelled, shutting down...")
	case <-app.done:
		log.Printf("Shutdown requested...")
	case err := <-app.serveErr:
		if err != nil {
			log.Printf("API server error: %v", err)
			runErr = err
		}
	}

	if err := app.Shutdown(context.Background()); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// Shutdown stops the API server and the watcher, then the backend. It is
// safe to call more than once.
func (app *App) Shutdown(ctx context.Context) error {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.shutdown {
		return nil
	}
	app.shutdown = true

	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	g, gctx := errgroup.WithContext(shutdownCtx)
	if app.apiServer != nil {
		g.Go(func() error {
			if err := app.apiServer.Shutdown(gctx); err != nil {
				return fmt.Errorf("api server: %w", err)
			}
			return nil
		})
	}
	if app.binaryWatcher != nil {
		g.Go(func() error {
			if err := app.binaryWatcher.Close(); err != nil {
				return fmt.Errorf("watcher: %w", err)
			}
			return nil
		})
	}
	err := g.Wait()
	if app.listener != nil {
		// Only needed when Serve never ran; otherwise already closed.
		app.listener.Close()
	}

	// The backend goes last so no request can respawn it.
	if app.control != nil {
		if stopErr := app.control.Shutdown(); stopErr != nil {
			err = errors.Join(err, fmt.Errorf("backend: %w", stopErr))
		}
	}

	if app.eventBus != nil {
		app.eventBus.Close()
	}

	if err != nil {
		log.Printf("Shutdown finished with errors: %v", err)
		return err
	}
	log.Println("Shutdown complete")
	return nil
}

// Stop signals Run to shut down. Safe to call multiple times.
func (app *App) Stop() {
	app.stopOnce.Do(func() {
		close(app.done)
	})
}
