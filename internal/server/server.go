// Package server owns the route table and the HTTP server lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// ShutdownFunc releases one component.
type ShutdownFunc func(ctx context.Context) error

// Options configures the HTTP server.
type Options struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	Logger          *slog.Logger
}

type closer struct {
	name string
	fn   ShutdownFunc
}

// Server serves the API and closes registered components on shutdown.
type Server struct {
	http    *http.Server
	grace   time.Duration
	logger  *slog.Logger
	mu      sync.Mutex
	closers []closer
}

// New builds a server for handler. Zero durations fall back to net/http
// defaults except ShutdownTimeout, which defaults to 30s.
func New(handler http.Handler, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 30 * time.Second
	}
	return &Server{
		http: &http.Server{
			Addr:              fmt.Sprintf(":%d", opts.Port),
			Handler:           handler,
			ReadTimeout:       opts.ReadTimeout,
			ReadHeaderTimeout: opts.ReadTimeout,
			WriteTimeout:      opts.WriteTimeout,
			IdleTimeout:       opts.IdleTimeout,
			ErrorLog:          slog.NewLogLogger(opts.Logger.Handler(), slog.LevelWarn),
		},
		grace:  opts.ShutdownTimeout,
		logger: opts.Logger,
	}
}

// OnShutdown registers fn to run after the HTTP server stops. Components
// close in reverse registration order, so open dependencies first.
func (s *Server) OnShutdown(name string, fn ShutdownFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closers = append(s.closers, closer{name: name, fn: fn})
}

// Run listens on the configured port until SIGINT or SIGTERM.
func (s *Server) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.http.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("server_listening", "addr", ln.Addr().String())
		errc <- s.http.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutdown_started")
	}

	return s.shutdown()
}

func (s *Server) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.grace)
	defer cancel()

	s.http.SetKeepAlivesEnabled(false)
	if err := s.http.Shutdown(ctx); err != nil {
		s.logger.Error("http_shutdown_failed", "error", err)
	}

	s.mu.Lock()
	closers := s.closers
	s.mu.Unlock()

	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		c := closers[i]
		if err := c.fn(ctx); err != nil {
			s.logger.Error("component_close_failed", "component", c.name, "error", err)
			errs = append(errs, fmt.Errorf("close %s: %w", c.name, err))
			continue
		}
		s.logger.Info("component_closed", "component", c.name)
	}

	s.logger.Info("shutdown_complete", "failures", len(errs))
	return errors.Join(errs...)
}

// Addr is the configured listen address.
func (s *Server) Addr() string {
	return s.http.Addr
}
