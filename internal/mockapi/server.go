// Package mockapi is a self-contained backend implementing the HTTP surface
// the client consumes, for local development and end-to-end tests.
package mockapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/crypto/bcrypt"

	"github.com/felixgeelhaar/rolegate/internal/log"
)

// Config holds server configuration.
type Config struct {
	// Address is the listen address (e.g., ":8000")
	Address string

	// SigningKey signs issued HS256 tokens.
	SigningKey string

	// TokenTTL is the lifetime of issued tokens. Defaults to 24 hours.
	TokenTTL time.Duration

	// BcryptCost is used when hashing passwords. Defaults to bcrypt.DefaultCost.
	BcryptCost int

	// ShutdownTimeout is the maximum time to wait for connections to drain.
	// Defaults to 10 seconds.
	ShutdownTimeout time.Duration

	// Seed adds one account per role on start.
	Seed bool

	Logger *log.Logger
}

// Server serves the mock API under /api
type Server struct {
	httpServer      *http.Server
	handler         http.Handler
	directory       *Directory
	issuer          *Issuer
	logger          *log.Logger
	inShutdown      atomic.Bool
	shutdownTimeout time.Duration
}

// NewServer creates a server; it does not listen until Start
func NewServer(cfg Config) (*Server, error) {
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if cfg.SigningKey == "" {
		return nil, errors.New("mockapi: signing key must be set")
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Nop()
	}

	s := &Server{
		directory:       NewDirectory(cfg.BcryptCost),
		issuer:          NewIssuer([]byte(cfg.SigningKey), cfg.TokenTTL),
		logger:          cfg.Logger,
		shutdownTimeout: cfg.ShutdownTimeout,
	}
	if cfg.Seed {
		if err := s.directory.Seed(); err != nil {
			return nil, err
		}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(s.logRequests)
	s.registerRoutes(r)
	s.handler = r

	s.httpServer = &http.Server{
		Addr:              cfg.Address,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorLog:          slog.NewLogLogger(cfg.Logger.Slog().Handler(), slog.LevelError),
	}
	return s, nil
}

// Handler returns the router, for use with httptest
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Directory returns the account store
func (s *Server) Directory() *Directory {
	return s.directory
}

// Issuer returns the token issuer
func (s *Server) Issuer() *Issuer {
	return s.issuer
}

// Start listens until Shutdown. A graceful shutdown returns nil.
func (s *Server) Start() error {
	s.logger.Info("mock API listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains connections, waiting at most ShutdownTimeout
func (s *Server) Shutdown(ctx context.Context) error {
	s.inShutdown.Store(true)
	s.httpServer.SetKeepAlivesEnabled(false)

	shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

// IsShuttingDown returns whether the server is shutting down.
func (s *Server) IsShuttingDown() bool {
	return s.inShutdown.Load()
}

func (s *Server) registerRoutes(r chi.Router) {
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})
	r.Get("/health/ready", s.handleReadiness)
	r.Get("/healthz", s.handleReadiness)

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.Post("/register", s.handleRegister)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)
			r.Post("/logout", s.handleLogout)
			r.Get("/user", s.handleCurrentUser)
			r.Get("/{role}/data", s.handleRoleData)

			r.Route("/admin/users", func(r chi.Router) {
				r.Use(s.requireAdmin)
				r.Get("/", s.handleListUsers)
				r.Post("/", s.handleCreateUser)
				r.Get("/{id}", s.handleGetUser)
				r.Patch("/{id}", s.handleUpdateUser)
				r.Delete("/{id}", s.handleDeleteUser)
			})
		})
	})
}

func (s *Server) handleReadiness(w http.ResponseWriter, _ *http.Request) {
	if s.IsShuttingDown() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "shutting_down"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.InfoContext(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", middleware.GetReqID(r.Context()),
			"duration", time.Since(start))
	})
}
