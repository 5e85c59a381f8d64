// Package postgres implements the article vector index on PostgreSQL with pgvector.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"

	"market-pulse/internal/domain/entity"
	"market-pulse/internal/observability/metrics"
	"market-pulse/internal/repository"
)

// DefaultSearchTimeout is the default timeout for similarity search queries.
const DefaultSearchTimeout = 5 * time.Second

// Querier is the subset of *sql.DB used by the repository.
// *circuitbreaker.DBCircuitBreaker satisfies it as well.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ArticleVectorRepo implements repository.ArticleVectorRepository.
type ArticleVectorRepo struct {
	db        Querier
	dimension int
}

// NewArticleVectorRepo creates a repository over the article_vectors table.
// dimension must match the column type created by db.MigrateVectors.
func NewArticleVectorRepo(db Querier, dimension int) repository.ArticleVectorRepository {
	return &ArticleVectorRepo{db: db, dimension: dimension}
}

// Upsert creates a new vector or replaces the existing one with the same id.
func (repo *ArticleVectorRepo) Upsert(ctx context.Context, v *entity.ArticleVector) error {
	if v == nil {
		return fmt.Errorf("Upsert: vector is nil")
	}
	if err := v.Validate(repo.dimension); err != nil {
		return fmt.Errorf("Upsert: %w", err)
	}

	const query = `
INSERT INTO article_vectors (id, embedding, title, url, sentiment_score, sentiment_label, confidence, published_at, source, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
ON CONFLICT (id)
DO UPDATE SET
	embedding = EXCLUDED.embedding,
	title = EXCLUDED.title,
	url = EXCLUDED.url,
	sentiment_score = EXCLUDED.sentiment_score,
	sentiment_label = EXCLUDED.sentiment_label,
	confidence = EXCLUDED.confidence,
	published_at = EXCLUDED.published_at,
	source = EXCLUDED.source,
	updated_at = NOW()`

	publishedAt := sql.NullTime{Time: v.PublishedAt, Valid: !v.PublishedAt.IsZero()}

	start := time.Now()
	_, err := repo.db.ExecContext(ctx, query,
		v.ID,
		pgvector.NewVector(v.Embedding),
		v.Title,
		v.URL,
		v.SentimentScore,
		string(v.SentimentLabel),
		v.Confidence,
		publishedAt,
		v.Source,
	)
	metrics.RecordDBQuery("vector_upsert", time.Since(start))
	if err != nil {
		return fmt.Errorf("Upsert: %w", err)
	}
	return nil
}

// SearchSimilar finds stored articles closest to the provided vector.
// Uses cosine distance operator (<=>) for similarity comparison.
func (repo *ArticleVectorRepo) SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]repository.VectorMatch, error) {
	if len(embedding) == 0 {
		return nil, fmt.Errorf("SearchSimilar: %w", entity.ErrEmptyEmbedding)
	}
	if repo.dimension > 0 && len(embedding) != repo.dimension {
		return nil, fmt.Errorf("SearchSimilar: %w: expected %d, got %d",
			entity.ErrInvalidEmbeddingDimension, repo.dimension, len(embedding))
	}

	searchCtx, cancel := context.WithTimeout(ctx, DefaultSearchTimeout)
	defer cancel()

	if limit <= 0 {
		limit = 1
	}
	if limit > 100 {
		limit = 100
	}

	const query = `
SELECT id, title, sentiment_label, sentiment_score, 1 - (embedding <=> $1) AS similarity
FROM article_vectors
ORDER BY embedding <=> $1
LIMIT $2`

	start := time.Now()
	defer func() { metrics.RecordDBQuery("vector_search", time.Since(start)) }()

	rows, err := repo.db.QueryContext(searchCtx, query, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, fmt.Errorf("SearchSimilar: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := make([]repository.VectorMatch, 0, limit)
	for rows.Next() {
		var (
			m     repository.VectorMatch
			label string
		)
		if err := rows.Scan(&m.ID, &m.Title, &label, &m.SentimentScore, &m.Similarity); err != nil {
			return nil, fmt.Errorf("SearchSimilar: Scan: %w", err)
		}
		m.SentimentLabel = entity.SentimentLabel(label)
		results = append(results, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("SearchSimilar: %w", err)
	}

	return results, nil
}

// Count returns the number of stored vectors.
func (repo *ArticleVectorRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := repo.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM article_vectors`).Scan(&n); err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return n, nil
}
