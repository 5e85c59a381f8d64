package entity

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// Vector index errors.
var (
	ErrEmptyEmbedding            = errors.New("embedding vector is empty")
	ErrInvalidEmbeddingDimension = errors.New("embedding dimension mismatch")
)

// ArticleVector is an embedded article stored in the similarity index
// together with the sentiment metadata returned on lookup.
type ArticleVector struct {
	ID             string
	Embedding      []float32
	Title          string
	URL            string
	SentimentScore float64
	SentimentLabel SentimentLabel
	Confidence     float64
	PublishedAt    time.Time
	Source         string
}

// VectorID derives the stable index key for an article URL:
// "article_" followed by the first 16 hex digits of the URL's SHA-256.
func VectorID(articleURL string) string {
	sum := sha256.Sum256([]byte(articleURL))
	return "article_" + hex.EncodeToString(sum[:])[:16]
}

// NewArticleVector pairs a scored result with its embedding.
func NewArticleVector(r *SentimentResult, embedding []float32) *ArticleVector {
	return &ArticleVector{
		ID:             VectorID(r.Article.URL),
		Embedding:      embedding,
		Title:          r.Article.Title,
		URL:            r.Article.URL,
		SentimentScore: r.Score,
		SentimentLabel: r.Label,
		Confidence:     r.Confidence,
		PublishedAt:    r.Article.PublishedAt,
		Source:         r.Article.Source,
	}
}

// Validate checks the vector against the index dimension.
func (v *ArticleVector) Validate(dimension int) error {
	if v.ID == "" {
		return &ValidationError{Field: "id", Message: "id is required"}
	}
	if len(v.Embedding) == 0 {
		return ErrEmptyEmbedding
	}
	if dimension > 0 && len(v.Embedding) != dimension {
		return fmt.Errorf("%w: expected %d, got %d", ErrInvalidEmbeddingDimension, dimension, len(v.Embedding))
	}
	return nil
}
