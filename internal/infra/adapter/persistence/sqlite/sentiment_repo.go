// Package sqlite implements the sentiment cache on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"market-pulse/internal/domain/entity"
	"market-pulse/internal/observability/metrics"
	"market-pulse/internal/repository"
)

// MaxTopLimit caps TopBySentiment.
const MaxTopLimit = 100

const selectColumns = `
SELECT id, title, content, url, published_at, source,
       sentiment, sentiment_label, confidence, context_used, processed_at
FROM news_cache`

// SentimentRepo implements repository.SentimentRepository on the news_cache table.
type SentimentRepo struct{ db *sql.DB }

// NewSentimentRepo creates a new SQLite-backed sentiment repository.
func NewSentimentRepo(db *sql.DB) repository.SentimentRepository {
	return &SentimentRepo{db: db}
}

// Upsert writes the row keyed by title. On conflict every analysis column
// is overwritten and id is preserved.
func (repo *SentimentRepo) Upsert(ctx context.Context, row *entity.CachedSentiment) error {
	if row == nil {
		return fmt.Errorf("Upsert: row is nil")
	}
	if row.Title == "" {
		return fmt.Errorf("Upsert: %w", &entity.ValidationError{Field: "title", Message: "title is required"})
	}

	const query = `
INSERT INTO news_cache
(title, content, url, published_at, source, sentiment, sentiment_label, confidence, context_used, processed_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(title) DO UPDATE SET
    content         = excluded.content,
    url             = excluded.url,
    published_at    = excluded.published_at,
    source          = excluded.source,
    sentiment       = excluded.sentiment,
    sentiment_label = excluded.sentiment_label,
    confidence      = excluded.confidence,
    context_used    = excluded.context_used,
    processed_at    = excluded.processed_at
`
	start := time.Now()
	_, err := repo.db.ExecContext(ctx, query,
		row.Title, row.Content, row.URL, formatTime(row.PublishedAt), row.Source,
		row.Sentiment, row.SentimentLabel, row.Confidence, boolToInt(row.ContextUsed),
		formatTime(row.ProcessedAt),
	)
	metrics.RecordDBQuery("cache_upsert", time.Since(start))
	if err != nil {
		return fmt.Errorf("Upsert: ExecContext: %w", err)
	}
	return nil
}

// ListProcessedBetween returns rows processed in [from, to), most positive first.
func (repo *SentimentRepo) ListProcessedBetween(ctx context.Context, from, to time.Time) ([]*entity.CachedSentiment, error) {
	query := selectColumns + `
WHERE processed_at >= ? AND processed_at < ?
ORDER BY sentiment DESC
`
	start := time.Now()
	defer func() { metrics.RecordDBQuery("cache_list_between", time.Since(start)) }()

	rows, err := repo.db.QueryContext(ctx, query, formatTime(from), formatTime(to))
	if err != nil {
		return nil, fmt.Errorf("ListProcessedBetween: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result, err := scanRows(rows)
	if err != nil {
		return nil, fmt.Errorf("ListProcessedBetween: %w", err)
	}
	return result, nil
}

func (repo *SentimentRepo) TopBySentiment(ctx context.Context, label entity.SentimentLabel, limit int) ([]*entity.CachedSentiment, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > MaxTopLimit {
		limit = MaxTopLimit
	}

	var (
		rows *sql.Rows
		err  error
	)
	start := time.Now()
	defer func() { metrics.RecordDBQuery("cache_top", time.Since(start)) }()

	if label == "" {
		rows, err = repo.db.QueryContext(ctx, selectColumns+`
ORDER BY ABS(sentiment) DESC
LIMIT ?
`, limit)
	} else {
		rows, err = repo.db.QueryContext(ctx, selectColumns+`
WHERE sentiment_label = ?
ORDER BY ABS(sentiment) DESC
LIMIT ?
`, string(label), limit)
	}
	if err != nil {
		return nil, fmt.Errorf("TopBySentiment: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result, err := scanRows(rows)
	if err != nil {
		return nil, fmt.Errorf("TopBySentiment: %w", err)
	}
	return result, nil
}

func (repo *SentimentRepo) GetByTitle(ctx context.Context, title string) (*entity.CachedSentiment, error) {
	query := selectColumns + `
WHERE title = ?
LIMIT 1
`
	row, err := scanRow(repo.db.QueryRowContext(ctx, query, title))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrNotFound
		}
		return nil, fmt.Errorf("GetByTitle: %w", err)
	}
	return row, nil
}

func (repo *SentimentRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := repo.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM news_cache`).Scan(&n); err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRow(s scanner) (*entity.CachedSentiment, error) {
	var (
		c           entity.CachedSentiment
		content     sql.NullString
		url         sql.NullString
		source      sql.NullString
		publishedAt sql.NullString
		processedAt sql.NullString
		contextUsed int64
	)
	if err := s.Scan(&c.ID, &c.Title, &content, &url, &publishedAt, &source,
		&c.Sentiment, &c.SentimentLabel, &c.Confidence, &contextUsed, &processedAt); err != nil {
		return nil, err
	}

	var err error
	if c.PublishedAt, err = parseTime(publishedAt); err != nil {
		return nil, err
	}
	if c.ProcessedAt, err = parseTime(processedAt); err != nil {
		return nil, err
	}
	c.Content = content.String
	c.URL = url.String
	c.Source = source.String
	c.ContextUsed = contextUsed != 0
	return &c, nil
}

func scanRows(rows *sql.Rows) ([]*entity.CachedSentiment, error) {
	result := make([]*entity.CachedSentiment, 0, 32)
	for rows.Next() {
		c, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("Scan: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}
	return result, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
