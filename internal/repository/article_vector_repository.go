package repository

import (
	"context"

	"market-pulse/internal/domain/entity"
)

// VectorMatch is one nearest-neighbour hit from a similarity search.
// Similarity is cosine similarity in [-1, 1], higher is closer.
type VectorMatch struct {
	ID             string
	Title          string
	SentimentLabel entity.SentimentLabel
	SentimentScore float64
	Similarity     float64
}

// ArticleVectorRepository defines storage for embedded articles.
type ArticleVectorRepository interface {
	// Upsert stores the vector under v.ID, replacing any previous entry.
	// Returns an error if validation against the index dimension fails.
	Upsert(ctx context.Context, v *entity.ArticleVector) error

	// SearchSimilar returns up to limit matches ordered by similarity (highest first).
	// The limit is clamped to [1, 100].
	SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]VectorMatch, error)

	// Count returns the number of stored vectors.
	Count(ctx context.Context) (int64, error)
}
