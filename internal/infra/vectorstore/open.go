package vectorstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"market-pulse/internal/infra/adapter/persistence/postgres"
	"market-pulse/internal/infra/db"
	"market-pulse/internal/infra/embedder"
	"market-pulse/internal/resilience/circuitbreaker"
	"market-pulse/internal/usecase/sentiment"
)

// Backend is a context store that can also report index statistics.
type Backend interface {
	sentiment.ContextStore
	Stats(ctx context.Context) (Stats, error)
}

// Config configures Open.
type Config struct {
	Enabled  bool
	DSN      string
	Embedder embedder.Config
}

var errNoDSN = errors.New("VECTOR_DATABASE_URL is not set")

// Open connects to the vector database, migrates it and builds the embedder.
// Any failure is logged and yields Disabled; it is never fatal. The returned
// close function is always non-nil.
func Open(ctx context.Context, cfg Config) (Backend, func() error) {
	noop := func() error { return nil }
	if !cfg.Enabled {
		slog.Info("vector store disabled")
		return Disabled{}, noop
	}

	store, conn, err := open(ctx, cfg)
	if err != nil {
		slog.Warn("vector store unavailable, continuing without similar-news context",
			slog.Any("error", err))
		return Disabled{}, noop
	}

	slog.Info("vector store enabled",
		slog.String("embedder", store.embedder.Name()),
		slog.Int("dimension", store.embedder.Dimension()))
	return store, conn.Close
}

func open(ctx context.Context, cfg Config) (*Store, *sql.DB, error) {
	if cfg.DSN == "" {
		return nil, nil, errNoDSN
	}

	emb, err := embedder.New(cfg.Embedder)
	if err != nil {
		return nil, nil, fmt.Errorf("embedder: %w", err)
	}

	conn, err := db.OpenPostgres(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, err
	}
	if err := db.MigrateVectors(ctx, conn, emb.Dimension()); err != nil {
		_ = conn.Close()
		return nil, nil, err
	}

	repo := postgres.NewArticleVectorRepo(circuitbreaker.NewDBCircuitBreaker(conn), emb.Dimension())
	return New(repo, emb), conn, nil
}
