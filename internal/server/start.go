package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

const shutdownTimeout = 10 * time.Second

// Start runs the HTTP server until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	if err := s.Listen(ctx); err != nil {
		return errors.Join(err, s.shutdownWithTimeout())
	}

	errCh := make(chan error, 1)
	go func() {
		addr := s.Cfg.GetAppAddr()
		slog.Info("Starting server", "addr", addr, "base_url", s.Cfg.GetAppBaseURL())
		if err := s.E.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			slog.Error("Server stopped unexpectedly", "error", err)
			return errors.Join(err, s.shutdownWithTimeout())
		}
		return s.shutdownWithTimeout()
	case <-ctx.Done():
		slog.Info("Shutting down server")
		return s.shutdownWithTimeout()
	}
}

func (s *Server) shutdownWithTimeout() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.Shutdown(ctx)
}
