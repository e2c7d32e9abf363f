package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Server runs the wanderlist HTTP API
type Server struct {
	app    *App
	server *http.Server
}

// NewServer creates an HTTP server around the application
func NewServer(app *App) *Server {
	return &Server{
		app: app,
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", app.Config.Port),
			Handler:      NewRouter(app),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
	}
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	slog.Info("starting wanderlist api",
		"addr", s.server.Addr,
		"debug", s.app.Config.Debug,
	)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("shutting down api server")

	if err := s.app.Close(); err != nil {
		slog.Warn("failed to close application", "error", err)
	}

	return s.server.Shutdown(ctx)
}
