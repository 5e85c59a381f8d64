package worker

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"market-pulse/internal/handler/http/respond"
)

// HealthServer serves the worker's probes:
//   - GET /health: liveness, always 200
//   - GET /health/ready: 200 once SetReady(true) was called, 503 before
//
// Both bodies carry the uptime so a probe log shows restarts.
type HealthServer struct {
	addr      string
	logger    *slog.Logger
	ready     atomic.Bool
	startedAt time.Time
	server    *http.Server
}

type healthResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// NewHealthServer creates a health server listening on addr. It starts
// not ready.
func NewHealthServer(addr string, logger *slog.Logger) *HealthServer {
	h := &HealthServer{addr: addr, logger: logger, startedAt: time.Now()}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.handleLiveness)
	mux.HandleFunc("GET /health/ready", h.handleReadiness)
	h.server = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return h
}

// Handler exposes the probe routes, mainly for tests.
func (h *HealthServer) Handler() http.Handler { return h.server.Handler }

// Start serves until ctx is cancelled, then shuts down within 5 seconds.
// A clean shutdown returns nil.
func (h *HealthServer) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		h.logger.Info("health server starting", slog.String("addr", h.addr))
		errCh <- h.server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.server.Shutdown(shutdownCtx); err != nil {
			h.logger.Error("health server shutdown failed", slog.Any("error", err))
			return err
		}
		h.logger.Info("health server stopped")
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		h.logger.Error("health server failed", slog.Any("error", err))
		return err
	}
}

// SetReady flips the readiness probe.
func (h *HealthServer) SetReady(ready bool) {
	h.ready.Store(ready)
	h.logger.Info("health server readiness changed", slog.Bool("ready", ready))
}

// IsReady reports the readiness state.
func (h *HealthServer) IsReady() bool { return h.ready.Load() }

func (h *HealthServer) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, h.body("ok"))
}

func (h *HealthServer) handleReadiness(w http.ResponseWriter, _ *http.Request) {
	if h.ready.Load() {
		respond.JSON(w, http.StatusOK, h.body("ok"))
		return
	}
	respond.JSON(w, http.StatusServiceUnavailable, h.body("not ready"))
}

func (h *HealthServer) body(status string) healthResponse {
	return healthResponse{Status: status, UptimeSeconds: time.Since(h.startedAt).Seconds()}
}
