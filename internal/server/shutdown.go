package server

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
)

// WaitForShutdown returns a context that is cancelled on an interrupt or
// terminate signal.
func WaitForShutdown(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// Shutdown stops the HTTP server and then runs the registered closers in
// reverse order. Every closer runs even when an earlier one fails.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if err := s.E.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
