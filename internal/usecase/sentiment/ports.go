package sentiment

import (
	"context"

	"market-pulse/internal/domain/entity"
)

// Prediction is a raw classifier output: a free-form label and its score.
type Prediction struct {
	Label string
	Score float64
}

// Classifier turns text into a Prediction.
type Classifier interface {
	// Name identifies the classifier in logs and metrics.
	Name() string
	Classify(ctx context.Context, text string) (Prediction, error)
}

// ContextStore is the similarity index consulted before classification.
// Implementations must be safe to call when disabled: Store returns false
// and SimilarContext returns "".
type ContextStore interface {
	Enabled() bool
	Store(ctx context.Context, result *entity.SentimentResult) bool
	SimilarContext(ctx context.Context, text string, topK int, threshold float64) string
}
