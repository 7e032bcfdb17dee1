// Package server exposes riskgate over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bobmcallan/riskgate/internal/app"
	"github.com/bobmcallan/riskgate/internal/common"
)

// Server wraps the HTTP server and application reference.
type Server struct {
	app     *app.App
	router  chi.Router
	server  *http.Server
	limiter *RateLimiter
	logger  *common.Logger
}

// NewServer creates a new HTTP REST API server.
func NewServer(a *app.App) *Server {
	s := &Server{
		app:     a,
		router:  chi.NewRouter(),
		limiter: NewRateLimiter(a.Config.RateLimit.RequestsPerSecond, a.Config.RateLimit.Burst),
		logger:  a.Logger,
	}

	applyMiddleware(s.router, a.Logger)
	s.registerRoutes()

	host := a.Config.Server.Host
	port := a.Config.Server.Port

	// Advisory streams clear their own write deadline
	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server (blocking).
func (s *Server) Start() error {
	s.logger.Info().
		Str("addr", s.server.Addr).
		Msg("Starting REST API server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
