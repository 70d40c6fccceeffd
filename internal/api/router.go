// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package api serves the loopback control API used by the desktop UI and
// liteclaw-ctl.
package api

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/wingedpig/liteclaw/internal/api/handlers"
	"github.com/wingedpig/liteclaw/internal/api/middleware"
	"github.com/wingedpig/liteclaw/internal/api/version"
	"github.com/wingedpig/liteclaw/internal/events"
)

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	Host string
	Port int
}

// Dependencies holds all dependencies for API handlers.
type Dependencies struct {
	Controller handlers.Controller
	EventBus   events.EventBus
}

// NewRouter creates the API router.
func NewRouter(deps Dependencies) *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.Logging)
	r.Use(middleware.Recovery)
	r.Use(middleware.LoopbackOnly)
	r.Use(version.Middleware)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteError(w, http.StatusNotFound, handlers.ErrNotFound, "no route for "+r.URL.Path)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteError(w, http.StatusMethodNotAllowed, handlers.ErrBadRequest, r.Method+" not allowed on "+r.URL.Path)
	})

	api := r.PathPrefix("/api/v1").Subrouter()

	connectionHandler := handlers.NewConnectionHandler(deps.Controller)
	api.HandleFunc("/connection", connectionHandler.Get).Methods("GET")

	configHandler := handlers.NewConfigHandler(deps.Controller)
	api.HandleFunc("/config", configHandler.Get).Methods("GET")
	api.HandleFunc("/config/folders", configHandler.AddFolder).Methods("POST")
	api.HandleFunc("/config/folders", configHandler.RemoveFolder).Methods("DELETE")
	api.HandleFunc("/config/shell", configHandler.SetShell).Methods("PUT")

	backendHandler := handlers.NewBackendHandler(deps.Controller)
	api.HandleFunc("/backend/retry", backendHandler.Retry).Methods("POST")
	api.HandleFunc("/backend/logs", backendHandler.Logs).Methods("GET")

	if deps.EventBus != nil {
		eventHandler := handlers.NewEventHandler(deps.EventBus)
		api.HandleFunc("/events", eventHandler.History).Methods("GET")
		api.HandleFunc("/events/ws", eventHandler.WebSocket).Methods("GET")
	}

	return r
}

// Server represents the API server.
type Server struct {
	cfg    ServerConfig
	server *http.Server
}

// NewServer creates a new API server.
func NewServer(cfg ServerConfig, deps Dependencies) *Server {
	return &Server{
		cfg: cfg,
		server: &http.Server{
			Handler:           NewRouter(deps),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
}

// Listen binds the listening socket. It is separate from Serve so bind
// errors are reported before the backend is started.
func (s *Server) Listen() (net.Listener, error) {
	return net.Listen("tcp", s.Addr())
}

// Serve serves requests on ln until Shutdown. It returns nil after a
// graceful shutdown.
func (s *Server) Serve(ln net.Listener) error {
	log.Printf("API server listening on http://%s", ln.Addr())
	if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ListenAndServe binds and serves.
func (s *Server) ListenAndServe() error {
	ln, err := s.Listen()
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down API server...")

	shutdownCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		shutdownCtx, cancel = context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
	}
	return s.server.Shutdown(shutdownCtx)
}
