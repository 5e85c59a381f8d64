package sentiment

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"market-pulse/internal/domain/entity"
	"market-pulse/internal/observability/metrics"
	"market-pulse/internal/observability/tracing"
	"market-pulse/internal/utils/text"
)

const (
	// DefaultMaxTextLength is the rune limit applied before context is appended.
	DefaultMaxTextLength = 400

	DefaultTopK                = 3
	DefaultSimilarityThreshold = 0.7

	truncationMarker = "..."
	contextSeparator = " Context: "
)

// Config controls how articles are prepared for the classifier.
type Config struct {
	MaxTextLength       int
	TopK                int
	SimilarityThreshold float64
}

// DefaultConfig returns the scoring defaults.
func DefaultConfig() Config {
	return Config{
		MaxTextLength:       DefaultMaxTextLength,
		TopK:                DefaultTopK,
		SimilarityThreshold: DefaultSimilarityThreshold,
	}
}

// Service scores articles.
type Service struct {
	classifier Classifier
	store      ContextStore
	cfg        Config
	now        func() time.Time
}

// NewService creates a sentiment Service. A nil store behaves as a disabled one.
func NewService(classifier Classifier, store ContextStore, cfg Config) *Service {
	return &Service{
		classifier: classifier,
		store:      store,
		cfg:        cfg,
		now:        time.Now,
	}
}

// ContextEnabled reports whether similar-news context is consulted.
func (s *Service) ContextEnabled() bool {
	return s.store != nil && s.store.Enabled()
}

// AnalyzeArticle scores a single article.
//
// The text is "title. description", truncated to MaxTextLength runes. When
// the context store is enabled and returns similar-news context, it is
// appended and the result is marked ContextUsed.
func (s *Service) AnalyzeArticle(ctx context.Context, a entity.Article) (*entity.SentimentResult, error) {
	body := a.ScoringText()
	if body == "" {
		return nil, ErrEmptyText
	}
	body = s.truncate(body)

	input := body
	contextUsed := false
	if s.ContextEnabled() {
		if similar := strings.TrimSpace(s.store.SimilarContext(ctx, body, s.cfg.TopK, s.cfg.SimilarityThreshold)); similar != "" {
			input = body + contextSeparator + similar
			contextUsed = true
		}
	}

	start := time.Now()
	pred, err := s.classifier.Classify(ctx, input)
	metrics.RecordClassification(s.classifier.Name(), time.Since(start), err == nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrClassificationFailed, s.classifier.Name(), err)
	}

	score, label, confidence, err := MapPrediction(pred)
	if err != nil {
		return nil, fmt.Errorf("AnalyzeArticle: %w", err)
	}

	result := &entity.SentimentResult{
		Article:     a,
		Score:       score,
		Label:       label,
		Confidence:  confidence,
		ContextUsed: contextUsed,
		ProcessedAt: s.now(),
	}
	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("AnalyzeArticle: %w", err)
	}
	if contextUsed {
		metrics.RecordContextAugmented()
	}
	return result, nil
}

// AnalyzeArticles scores every article in order. Articles that fail are
// logged and counted in RunSummary.Failed; the batch continues. A cancelled
// context stops the batch and returns what was scored so far.
func (s *Service) AnalyzeArticles(ctx context.Context, articles []entity.Article) ([]entity.SentimentResult, RunSummary) {
	logger := slog.Default()
	ctx, span := tracing.StartSpan(ctx, "sentiment.analyze_articles",
		attribute.Int("articles", len(articles)),
		attribute.String("classifier", s.classifier.Name()),
		attribute.Bool("context_enabled", s.ContextEnabled()))
	defer span.End()

	results := make([]entity.SentimentResult, 0, len(articles))
	var summary RunSummary

	for i, a := range articles {
		if err := ctx.Err(); err != nil {
			logger.Warn("sentiment analysis interrupted",
				slog.Int("remaining", len(articles)-i),
				slog.Any("error", err))
			break
		}

		r, err := s.AnalyzeArticle(ctx, a)
		if err != nil {
			summary.Failed++
			metrics.RecordArticleScored("", false)
			logger.Warn("article scoring failed",
				slog.String("title", a.Title),
				slog.String("url", a.URL),
				slog.Any("error", err))
			continue
		}

		metrics.RecordArticleScored(string(r.Label), true)
		summary.add(r)
		results = append(results, *r)
	}

	span.SetAttributes(
		attribute.Int("analyzed", summary.Analyzed),
		attribute.Int("failed", summary.Failed))
	logger.Info("sentiment analysis completed",
		slog.Int("analyzed", summary.Analyzed),
		slog.Int("failed", summary.Failed),
		slog.Int("positive", len(summary.Positive)),
		slog.Int("negative", len(summary.Negative)),
		slog.Int("neutral", len(summary.Neutral)))

	return results, summary
}

func (s *Service) truncate(body string) string {
	cut, truncated := text.TruncateRunes(body, s.cfg.MaxTextLength)
	if truncated {
		return cut + truncationMarker
	}
	return cut
}

// MapPrediction converts a raw classifier prediction into a signed score,
// a label and a confidence.
//
// "positive" maps to (+confidence, POSITIVE), "negative" to (-confidence,
// NEGATIVE) and any other label to (0, NEUTRAL). Labels are matched
// case-insensitively and confidence is clamped to [0, 1]. A polar label with
// zero confidence cannot satisfy the sign invariant and is rejected.
func MapPrediction(p Prediction) (float64, entity.SentimentLabel, float64, error) {
	if math.IsNaN(p.Score) || math.IsInf(p.Score, 0) {
		return 0, "", 0, &entity.ValidationError{Field: "confidence", Message: fmt.Sprintf("classifier returned %v", p.Score)}
	}
	confidence := math.Max(0, math.Min(1, p.Score))

	switch strings.ToLower(strings.TrimSpace(p.Label)) {
	case "positive":
		if confidence == 0 {
			return 0, "", 0, &entity.ValidationError{Field: "confidence", Message: "positive label with zero confidence"}
		}
		return confidence, entity.LabelPositive, confidence, nil
	case "negative":
		if confidence == 0 {
			return 0, "", 0, &entity.ValidationError{Field: "confidence", Message: "negative label with zero confidence"}
		}
		return -confidence, entity.LabelNegative, confidence, nil
	default:
		return 0, entity.LabelNeutral, confidence, nil
	}
}
