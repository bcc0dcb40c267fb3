package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ternarybob/policyqa/internal/app"
)

// Server manages the HTTP server and routes
type Server struct {
	app    *app.App
	router *http.ServeMux
	server *http.Server
}

// New creates a new HTTP server with the given app
func New(application *app.App) *Server {
	s := &Server{
		app: application,
	}

	// Setup routes
	s.router = s.setupRoutes()

	// Create HTTP server
	s.server = &http.Server{
		Addr:        s.Address(),
		Handler:     s.Handler(),
		ReadTimeout: 15 * time.Second,
		// No write timeout: /api/ask waits on the upstream service
		IdleTimeout: 60 * time.Second,
	}

	return s
}

// Address returns the host:port the server listens on
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.app.Config.Server.Host, s.app.Config.Server.Port)
}

// Handler returns the router wrapped in the middleware chain
func (s *Server) Handler() http.Handler {
	return s.withConditionalMiddleware(s.router)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.app.Logger.Info().
		Str("address", s.Address()).
		Msg("HTTP server starting")

	s.app.Logger.Info().
		Str("url", fmt.Sprintf("http://%s", s.Address())).
		Msg("Ask page available")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.app.Logger.Info().Msg("Shutting down HTTP server...")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.app.Logger.Info().Msg("HTTP server stopped")
	return nil
}
