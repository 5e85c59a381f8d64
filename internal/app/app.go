// Package app wires the configured components into a runnable pipeline.
// The worker and the pulse CLI both start from Build.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"market-pulse/internal/config"
	"market-pulse/internal/infra/adapter/persistence/sqlite"
	"market-pulse/internal/infra/classifier"
	"market-pulse/internal/infra/db"
	"market-pulse/internal/infra/scraper"
	"market-pulse/internal/infra/vectorstore"
	"market-pulse/internal/repository"
	"market-pulse/internal/usecase/fetch"
	"market-pulse/internal/usecase/notify"
	"market-pulse/internal/usecase/pipeline"
	"market-pulse/internal/usecase/report"
	"market-pulse/internal/usecase/sentiment"
)

// App holds the built components. Close releases the cache and the vector
// database connections.
type App struct {
	Config   *config.AppConfig
	DB       *sql.DB
	Cache    repository.SentimentRepository
	Vectors  vectorstore.Backend
	Analyzer *sentiment.Service
	Notify   *notify.Service
	Reports  *report.Service
	Pipeline *pipeline.Pipeline

	closers []func() error
}

// Build opens the SQLite cache, connects the optional vector store and
// assembles the pipeline. loc defines "today" for reports.
func Build(ctx context.Context, cfg *config.AppConfig, loc *time.Location) (*App, error) {
	if loc == nil {
		loc = time.Local
	}

	conn, err := db.OpenSQLite(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("Build: %w", err)
	}
	if err := db.MigrateSQLite(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("Build: %w", err)
	}

	cls, err := classifier.New(cfg.Classifier)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("Build: %w", err)
	}

	vectors, closeVectors := vectorstore.Open(ctx, cfg.Vector)

	cache := sqlite.NewSentimentRepo(conn)
	analyzer := sentiment.NewService(cls, vectors, cfg.Sentiment)
	notifySvc := notify.NewService(cfg.Channels(), cfg.HighConfidenceThreshold)
	reports := report.NewService(cache, loc)

	a := &App{
		Config:   cfg,
		DB:       conn,
		Cache:    cache,
		Vectors:  vectors,
		Analyzer: analyzer,
		Notify:   notifySvc,
		Reports:  reports,
		closers:  []func() error{closeVectors, conn.Close},
	}
	a.Pipeline = pipeline.New(pipeline.Deps{
		Fetcher:  newFetcher(cfg),
		Analyzer: analyzer,
		Cache:    cache,
		Vectors:  vectors,
		Notifier: notifySvc,
		Reporter: reports,
	})

	slog.Info("pipeline assembled",
		slog.String("classifier", cls.Name()),
		slog.Bool("vector_store", vectors.Enabled()),
		slog.Int("channels", len(cfg.Channels())),
		slog.String("cache", cfg.DatabasePath))
	return a, nil
}

// Close releases every connection. It returns all close errors joined.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func newFetcher(cfg *config.AppConfig) *fetch.Service {
	client := &http.Client{Timeout: cfg.HTTPTimeout}
	searcher := scraper.NewNewsAPIClient(client, cfg.NewsAPIURL, cfg.NewsAPIKey)

	var feeds fetch.FeedFetcher
	if len(cfg.Fetch.Feeds) > 0 {
		feeds = scraper.NewRSSFetcher(client, scraper.WithPrivateIPGuard(cfg.FeedDenyPrivateIPs))
	}
	return fetch.NewService(searcher, feeds, newLimiter(cfg.NewsRate.Interval, cfg.NewsRate.Burst), cfg.Fetch)
}

// newLimiter spaces requests by interval. A zero interval is unlimited.
func newLimiter(interval time.Duration, burst int) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, burst)
	}
	return rate.NewLimiter(rate.Every(interval), burst)
}
