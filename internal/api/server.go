package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/mcoot/dominotrain/internal/config"
	"github.com/mcoot/dominotrain/internal/push"
)

// Server runs the HTTP API alongside the push hub sweeper and stops both
// when its context ends
type Server struct {
	server          *http.Server
	hubs            *push.HubManager
	sweepInterval   time.Duration
	shutdownTimeout time.Duration
	logger          *slog.Logger
}

// NewServer creates a new API server from the environment configuration
func NewServer(handler http.Handler, cfg config.Config, hubs *push.HubManager, logger *slog.Logger) *Server {
	s := &Server{
		server: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
			ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
		},
		hubs:            hubs,
		sweepInterval:   cfg.HubCleanupInterval,
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          logger,
	}
	// SSE handlers only return once their hub closes them, so hubs go first
	s.server.RegisterOnShutdown(hubs.CloseAll)
	return s
}

// Run listens on the configured address and serves until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.server.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// within the configured grace period
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("starting HTTP server", slog.String("addr", ln.Addr().String()))

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go s.sweep(sweepCtx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	s.logger.Info("HTTP server stopped")
	return nil
}

// sweep drops push hubs nobody is listening to
func (s *Server) sweep(ctx context.Context) {
	if s.sweepInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.hubs.CleanupEmptyHubs()
		case <-ctx.Done():
			return
		}
	}
}
