// Copyright (c) 2026 Askly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and the session
and question handlers into the local web console.

Architecture:

  - This package is the topmost Presentation layer boundary.
  - The console serves a single actor: the identity held by the session manager.
  - Only this package and cmd/askly are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/askly/internal/platform/config"
	"github.com/taibuivan/askly/internal/platform/constants"
	"github.com/taibuivan/askly/internal/platform/middleware"
	"github.com/taibuivan/askly/internal/questions"
	"github.com/taibuivan/askly/internal/users/auth"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups the console's handler sets.
type Handlers struct {
	// Liveness is the /health handler.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler. It pings the session store.
	Readiness http.HandlerFunc

	// Session handles login, registration, guest mode and logout.
	Session *auth.Handler

	// Questions handles asking and history.
	Questions *questions.Handler

	// Events streams transitions and notifications to open tabs.
	Events *Hub
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
//
// sessions supplies the identity used by the view guards and request logs;
// snapshot supplies the dashboard's question state.
func NewServer(ctx context.Context, cfg *config.Config, log *slog.Logger, sessions middleware.IdentitySource, snapshot QuestionSnapshot, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(middleware.RateLimit(ctx, constants.DefaultRateLimitRPS, constants.DefaultRateLimitBurst))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.Actor(sessions))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Application API
	r.Route("/api", func(api chi.Router) {
		// The event stream outlives the request timeout.
		api.Get("/events", h.Events.ServeHTTP)

		api.Group(func(timed chi.Router) {
			timed.Use(chimw.Timeout(constants.GlobalRequestTimeout))
			timed.Mount("/session", h.Session.Routes())
			timed.Mount("/password-reset", h.Session.ResetRoutes())
			timed.Mount("/questions", h.Questions.Routes())
		})
	})

	// # Views
	r.Group(func(timed chi.Router) {
		timed.Use(chimw.Timeout(constants.GlobalRequestTimeout))
		(&views{sessions: sessions, questions: snapshot}).mount(timed)
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ConsolePort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// Handler exposes the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("console starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
