// Package server wires the HTTP surface, the realtime hub and the task
// scheduler together and manages their lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/edgard/construfacil/internal/config"
	"github.com/edgard/construfacil/internal/realtime"
)

// Server runs the backend components until its context is cancelled.
type Server struct {
	logger    *slog.Logger
	cfg       *config.Config
	http      *http.Server
	hub       *realtime.Hub
	scheduler *Scheduler
}

// NewServer creates a Server serving handler.
func NewServer(log *slog.Logger, cfg *config.Config, handler http.Handler, hub *realtime.Hub, scheduler *Scheduler) *Server {
	return &Server{
		logger: log.With("component", "server"),
		cfg:    cfg,
		http: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		},
		hub:       hub,
		scheduler: scheduler,
	}
}

// Run listens on the configured port and blocks until ctx is cancelled or a
// component fails.
func (s *Server) Run(ctx context.Context) error {
	addr := ":" + strconv.Itoa(s.cfg.Server.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve runs every component on ln. On cancellation the HTTP server is shut
// down within the configured timeout, the scheduler waits for running jobs
// and the hub disconnects its clients.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("Starting server", "addr", ln.Addr().String())

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.hub.Run(gCtx)
	})

	g.Go(func() error {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server failed", "error", err)
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		s.logger.Info("Shutdown signal received, stopping HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gCtx), s.cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Error shutting down HTTP server", "error", err)
			return fmt.Errorf("http shutdown failed: %w", err)
		}
		return nil
	})

	if s.scheduler != nil {
		g.Go(func() error {
			if err := s.scheduler.Start(); err != nil {
				s.logger.Error("Failed to start scheduler", "error", err)
				return fmt.Errorf("failed to start scheduler: %w", err)
			}

			<-gCtx.Done()
			s.logger.Info("Shutdown signal received, stopping scheduler")
			if err := s.scheduler.Stop(); err != nil {
				s.logger.Error("Error stopping scheduler", "error", err)
			}
			return nil
		})
	}

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("Server stopped due to error", "error", err)
		return err
	}

	s.logger.Info("Server stopped gracefully")
	return nil
}
