// Package server runs the arena HTTP listener and tears the process down in
// order on shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// Config holds listener settings.
type Config struct {
	// Address is the host:port to listen on (e.g., ":3000").
	Address string

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Address:         ":3000",
		ShutdownTimeout: 10 * time.Second,
	}
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// OnShutdown registers a teardown step. Steps run in registration order
// after the listener has stopped accepting requests.
func OnShutdown(name string, fn func() error) Option {
	return func(s *Server) {
		s.hooks = append(s.hooks, hook{name: name, fn: fn})
	}
}

type hook struct {
	name string
	fn   func() error
}

// Server wraps an http.Server for the arena.
type Server struct {
	config Config
	http   *http.Server
	hooks  []hook
	logger *log.Logger
}

// New creates a server for handler.
func New(cfg Config, handler http.Handler, opts ...Option) *Server {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultConfig().ShutdownTimeout
	}
	s := &Server{config: cfg}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "arena",
		})
	}
	s.http = &http.Server{
		Addr:              cfg.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	return s
}

// ListenAndServe listens on the configured address and blocks until ctx is
// cancelled or the listener fails, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("server: cannot listen on %s: %w", s.config.Address, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled or serving fails.
// Shutdown always runs before it returns.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("starting HTTP server", "address", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.Serve(ln)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		s.logger.Info("shutting down...")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = fmt.Errorf("server: %w", err)
			s.logger.Error("server error", "error", err)
		}
	}

	return errors.Join(serveErr, s.Shutdown())
}

// Shutdown stops accepting requests, waits for in-flight ones, then runs
// the teardown steps. Every step runs even if an earlier one fails.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := s.http.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("server: http shutdown: %w", err))
	}

	for _, h := range s.hooks {
		if err := h.fn(); err != nil {
			s.logger.Warn("shutdown step failed", "step", h.name, "error", err)
			errs = append(errs, fmt.Errorf("server: %s: %w", h.name, err))
			continue
		}
		s.logger.Debug("shutdown step done", "step", h.name)
	}
	return errors.Join(errs...)
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.config.Address
}
