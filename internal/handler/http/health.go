// Package http serves the worker's status API: health, metrics and the
// read-only sentiment endpoints.
package http

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"market-pulse/internal/handler/http/respond"
	"market-pulse/internal/infra/vectorstore"
	"market-pulse/internal/usecase/notify"
)

const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks"`
	Version   string                 `json:"version"`
}

// CheckStatus is the result of a single check.
type CheckStatus struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// VectorStats reports the state of the similarity index.
type VectorStats interface {
	Stats(ctx context.Context) (vectorstore.Stats, error)
}

// HealthHandler checks the sentiment cache and, when configured, the
// vector store. Only the cache decides the overall status; a vector store
// failure marks it degraded since scoring continues without context.
type HealthHandler struct {
	DB      *sql.DB
	Vectors VectorStats
	Version string
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]CheckStatus)
	code := http.StatusOK
	status := statusHealthy

	if h.DB == nil {
		checks["cache"] = CheckStatus{Status: statusUnhealthy, Message: "not configured"}
	} else {
		checks["cache"] = h.checkCache(ctx)
	}
	if checks["cache"].Status == statusUnhealthy {
		status = statusUnhealthy
		code = http.StatusServiceUnavailable
	}

	if h.Vectors != nil {
		vc := h.checkVectors(ctx)
		checks["vector_store"] = vc
		if vc.Status == statusUnhealthy && status == statusHealthy {
			status = statusDegraded
		}
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	respond.JSON(w, code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	})
}

func (h *HealthHandler) checkCache(ctx context.Context) CheckStatus {
	if err := h.DB.PingContext(ctx); err != nil {
		return CheckStatus{Status: statusUnhealthy, Message: respond.SanitizeError(err)}
	}

	stats := h.DB.Stats()
	return CheckStatus{
		Status: statusHealthy,
		Details: map[string]any{
			"open_connections": stats.OpenConnections,
			"in_use":           stats.InUse,
			"idle":             stats.Idle,
			"wait_count":       stats.WaitCount,
			"wait_duration_ms": stats.WaitDuration.Milliseconds(),
		},
	}
}

func (h *HealthHandler) checkVectors(ctx context.Context) CheckStatus {
	stats, err := h.Vectors.Stats(ctx)
	if err != nil {
		return CheckStatus{Status: statusUnhealthy, Message: respond.SanitizeError(err)}
	}
	if !stats.Enabled {
		return CheckStatus{Status: statusHealthy, Message: "disabled"}
	}
	return CheckStatus{
		Status: statusHealthy,
		Details: map[string]any{
			"vectors":   stats.Vectors,
			"dimension": stats.Dimension,
			"embedder":  stats.Embedder,
		},
	}
}

// ChannelHealthProvider exposes per-channel breaker state.
type ChannelHealthProvider interface {
	GetChannelHealth() []notify.ChannelHealthStatus
}

// ChannelHealthResponse is the body of GET /health/channels.
type ChannelHealthResponse struct {
	Healthy  bool                         `json:"healthy"`
	Channels []notify.ChannelHealthStatus `json:"channels"`
}

// ChannelHealthHandler returns 503 when any enabled channel has its
// breaker open.
type ChannelHealthHandler struct {
	Channels ChannelHealthProvider
}

func (h ChannelHealthHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	if h.Channels == nil {
		respond.JSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "notification service not initialized",
		})
		return
	}

	statuses := h.Channels.GetChannelHealth()
	healthy := true
	for _, s := range statuses {
		if s.Enabled && s.CircuitBreakerOpen {
			healthy = false
			slog.Warn("notification channel unhealthy",
				slog.String("channel", s.Name),
				slog.Any("disabled_until", s.DisabledUntil))
		}
	}

	code := http.StatusOK
	if !healthy {
		code = http.StatusServiceUnavailable
	}
	respond.JSON(w, code, ChannelHealthResponse{Healthy: healthy, Channels: statuses})
}

// VectorStatsHandler serves GET /api/vectors/stats.
type VectorStatsHandler struct {
	Vectors VectorStats
}

func (h VectorStatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Vectors == nil {
		respond.JSON(w, http.StatusOK, vectorstore.Stats{})
		return
	}
	stats, err := h.Vectors.Stats(r.Context())
	if err != nil {
		respond.SafeError(w, http.StatusServiceUnavailable,
			respond.NewAppError(http.StatusServiceUnavailable, "vector store unavailable", err))
		return
	}
	respond.JSON(w, http.StatusOK, stats)
}
