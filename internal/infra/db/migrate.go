package db

import (
	"context"
	"database/sql"
	"fmt"
)

// DefaultVectorDimension matches sentence-transformers/all-MiniLM-L6-v2.
const DefaultVectorDimension = 384

// MigrateSQLite creates the news_cache table and its indexes.
//
// Timestamps are stored as UTC TEXT in a fixed-width layout so that
// lexical comparison matches chronological order.
func MigrateSQLite(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS news_cache (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    title           TEXT NOT NULL UNIQUE,
    content         TEXT,
    url             TEXT,
    published_at    TEXT,
    source          TEXT,
    sentiment       REAL NOT NULL,
    sentiment_label TEXT NOT NULL,
    confidence      REAL NOT NULL,
    context_used    INTEGER NOT NULL DEFAULT 0,
    processed_at    TEXT NOT NULL
)`); err != nil {
		return fmt.Errorf("MigrateSQLite: news_cache: %w", err)
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_news_cache_label_processed ON news_cache(sentiment_label, processed_at)`,
		`CREATE INDEX IF NOT EXISTS idx_news_cache_published_at ON news_cache(published_at)`,
	}
	for _, idx := range indexes {
		if _, err := db.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("MigrateSQLite: index: %w", err)
		}
	}

	return nil
}

// MigrateVectors creates the pgvector extension, the article_vectors table
// with a vector column of the given dimension, and an HNSW cosine index.
//
// The extension statement is best effort: managed databases often have it
// preinstalled while denying CREATE EXTENSION to the application role.
func MigrateVectors(ctx context.Context, db *sql.DB, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("MigrateVectors: invalid dimension %d", dimension)
	}

	_, _ = db.ExecContext(ctx, `CREATE EXTENSION IF NOT EXISTS vector`)

	if _, err := db.ExecContext(ctx, fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS article_vectors (
    id              TEXT PRIMARY KEY,
    embedding       vector(%d) NOT NULL,
    title           TEXT NOT NULL,
    url             TEXT NOT NULL,
    sentiment_score DOUBLE PRECISION NOT NULL,
    sentiment_label TEXT NOT NULL,
    confidence      DOUBLE PRECISION NOT NULL,
    published_at    TIMESTAMPTZ,
    source          TEXT,
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
)`, dimension)); err != nil {
		return fmt.Errorf("MigrateVectors: article_vectors: %w", err)
	}

	if _, err := db.ExecContext(ctx, `
CREATE INDEX IF NOT EXISTS idx_article_vectors_embedding
    ON article_vectors USING hnsw (embedding vector_cosine_ops)`); err != nil {
		return fmt.Errorf("MigrateVectors: index: %w", err)
	}

	return nil
}
