package http

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"market-pulse/internal/handler/http/requestid"
	"market-pulse/internal/handler/http/sentiment"
	"market-pulse/internal/observability/tracing"
	"market-pulse/internal/usecase/report"
)

// DefaultRequestTimeout bounds every status API request.
const DefaultRequestTimeout = 10 * time.Second

// RouterDeps are the collaborators of the status API. Any of Vectors,
// Channels and Reports may be nil; their routes then report that.
type RouterDeps struct {
	DB       *sql.DB
	Vectors  VectorStats
	Channels ChannelHealthProvider
	Reports  *report.Service
	Version  string
	Timeout  time.Duration
	Logger   *slog.Logger
}

// NewRouter builds the status API handler with its middleware stack.
func NewRouter(d RouterDeps) http.Handler {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Timeout <= 0 {
		d.Timeout = DefaultRequestTimeout
	}

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", MetricsHandler())
	mux.Handle("GET /health", &HealthHandler{DB: d.DB, Vectors: d.Vectors, Version: d.Version})
	mux.Handle("GET /health/channels", ChannelHealthHandler{Channels: d.Channels})
	mux.Handle("GET /api/vectors/stats", VectorStatsHandler{Vectors: d.Vectors})
	if d.Reports != nil {
		sentiment.Register(mux, d.Reports)
	}

	h := http.TimeoutHandler(mux, d.Timeout, `{"error":"request timeout"}`)
	return Chain(h,
		requestid.Middleware,
		Recover(d.Logger),
		Logging(d.Logger),
		MetricsMiddleware,
		InputValidation(),
		tracing.Middleware,
	)
}
