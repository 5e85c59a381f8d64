// Package vectorstore implements the similar-news context lookup used to
// augment classifier input. Open returns an enabled store backed by
// PostgreSQL/pgvector or, on any setup failure, the Disabled variant.
package vectorstore

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"market-pulse/internal/domain/entity"
	"market-pulse/internal/observability/metrics"
	"market-pulse/internal/repository"
)

// Embedder produces the vectors stored in and queried against the index.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Stats describes the index.
type Stats struct {
	Enabled   bool   `json:"enabled"`
	Vectors   int64  `json:"vectors"`
	Dimension int    `json:"dimension,omitempty"`
	Embedder  string `json:"embedder,omitempty"`
}

// Store is the enabled vector store.
type Store struct {
	repo     repository.ArticleVectorRepository
	embedder Embedder
	timeout  time.Duration
}

// New wraps an index repository and an embedder.
func New(repo repository.ArticleVectorRepository, embedder Embedder) *Store {
	return &Store{repo: repo, embedder: embedder, timeout: 10 * time.Second}
}

func (s *Store) Enabled() bool { return true }

// Store embeds the article and upserts it with its sentiment metadata.
// Failures are logged and reported as false.
func (s *Store) Store(ctx context.Context, r *entity.SentimentResult) bool {
	if r == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	vec, err := s.embedder.Embed(ctx, r.Article.EmbeddingText())
	if err != nil {
		metrics.RecordVectorOperation("embed", false)
		slog.Warn("article embedding failed",
			slog.String("url", r.Article.URL),
			slog.Any("error", err))
		return false
	}
	metrics.RecordVectorOperation("embed", true)

	if err := s.repo.Upsert(ctx, entity.NewArticleVector(r, vec)); err != nil {
		metrics.RecordVectorOperation("upsert", false)
		slog.Warn("vector upsert failed",
			slog.String("url", r.Article.URL),
			slog.Any("error", err))
		return false
	}
	metrics.RecordVectorOperation("upsert", true)
	return true
}

// SimilarContext returns "Similar news was <LABEL>" for each of the topK
// nearest articles whose similarity exceeds threshold, joined by spaces.
// Any failure yields "".
func (s *Store) SimilarContext(ctx context.Context, text string, topK int, threshold float64) string {
	if strings.TrimSpace(text) == "" || topK <= 0 {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		metrics.RecordVectorOperation("embed", false)
		slog.Warn("query embedding failed", slog.Any("error", err))
		return ""
	}

	matches, err := s.repo.SearchSimilar(ctx, vec, topK)
	if err != nil {
		metrics.RecordVectorOperation("search", false)
		slog.Warn("similarity search failed", slog.Any("error", err))
		return ""
	}
	metrics.RecordVectorOperation("search", true)

	return BuildContext(matches, threshold)
}

// Stats reports the stored vector count.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return Stats{Enabled: true}, err
	}
	return Stats{
		Enabled:   true,
		Vectors:   n,
		Dimension: s.embedder.Dimension(),
		Embedder:  s.embedder.Name(),
	}, nil
}

// BuildContext renders the matches above threshold, in order.
func BuildContext(matches []repository.VectorMatch, threshold float64) string {
	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		if m.Similarity > threshold {
			parts = append(parts, "Similar news was "+string(m.SentimentLabel))
		}
	}
	return strings.Join(parts, " ")
}

// Disabled is the no-op store used when no index is configured.
type Disabled struct{}

func (Disabled) Enabled() bool                                               { return false }
func (Disabled) Store(context.Context, *entity.SentimentResult) bool         { return false }
func (Disabled) SimilarContext(context.Context, string, int, float64) string { return "" }
func (Disabled) Stats(context.Context) (Stats, error)                        { return Stats{}, nil }
