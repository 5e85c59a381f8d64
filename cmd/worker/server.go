package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

const apiShutdownTimeout = 5 * time.Second

// serveAPI serves the status API (metrics, health, sentiment reads) on addr
// until ctx is cancelled. In-flight requests get apiShutdownTimeout to
// finish. A clean shutdown returns nil.
func serveAPI(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("status api server starting", slog.String("addr", addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), apiShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("status api shutdown failed", slog.Any("error", err))
			return err
		}
		logger.Info("status api server stopped")
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
