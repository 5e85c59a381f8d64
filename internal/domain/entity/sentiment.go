package entity

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// SentimentLabel is the categorical sentiment of a scored article.
type SentimentLabel string

const (
	LabelPositive SentimentLabel = "POSITIVE"
	LabelNegative SentimentLabel = "NEGATIVE"
	LabelNeutral  SentimentLabel = "NEUTRAL"
)

// ParseSentimentLabel converts a stored or user-supplied label into a SentimentLabel.
// Matching is case-insensitive. Unknown values return ErrInvalidLabel.
func ParseSentimentLabel(s string) (SentimentLabel, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(LabelPositive):
		return LabelPositive, nil
	case string(LabelNegative):
		return LabelNegative, nil
	case string(LabelNeutral):
		return LabelNeutral, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidLabel, s)
	}
}

// IsPolar reports whether the label carries a direction (POSITIVE or NEGATIVE).
func (l SentimentLabel) IsPolar() bool {
	return l == LabelPositive || l == LabelNegative
}

// SentimentResult is the outcome of scoring one article.
//
// Invariants (see Validate):
//   - Score is in [-1, 1] and Confidence in [0, 1]
//   - POSITIVE implies Score > 0, NEGATIVE implies Score < 0, NEUTRAL implies Score == 0
type SentimentResult struct {
	Article     Article
	Score       float64
	Label       SentimentLabel
	Confidence  float64
	ContextUsed bool
	ProcessedAt time.Time
}

// Validate enforces the range and sign invariants of a result.
func (r *SentimentResult) Validate() error {
	if math.IsNaN(r.Score) || r.Score < -1 || r.Score > 1 {
		return &ValidationError{Field: "score", Message: fmt.Sprintf("score must be within [-1, 1], got %v", r.Score)}
	}
	if math.IsNaN(r.Confidence) || r.Confidence < 0 || r.Confidence > 1 {
		return &ValidationError{Field: "confidence", Message: fmt.Sprintf("confidence must be within [0, 1], got %v", r.Confidence)}
	}

	switch r.Label {
	case LabelPositive:
		if r.Score <= 0 {
			return fmt.Errorf("%w: POSITIVE with score %v", ErrScoreLabelMismatch, r.Score)
		}
	case LabelNegative:
		if r.Score >= 0 {
			return fmt.Errorf("%w: NEGATIVE with score %v", ErrScoreLabelMismatch, r.Score)
		}
	case LabelNeutral:
		if r.Score != 0 {
			return fmt.Errorf("%w: NEUTRAL with score %v", ErrScoreLabelMismatch, r.Score)
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLabel, r.Label)
	}

	return nil
}

// CachedSentiment is the flattened, persisted form of a SentimentResult.
// Title is the unique key; re-analysis of the same title overwrites the row.
// Content holds the article description.
type CachedSentiment struct {
	ID             int64
	Title          string
	Content        string
	URL            string
	PublishedAt    time.Time
	Source         string
	Sentiment      float64
	SentimentLabel string
	Confidence     float64
	ContextUsed    bool
	ProcessedAt    time.Time
}

// NewCachedSentiment flattens a result for persistence.
func NewCachedSentiment(r *SentimentResult) *CachedSentiment {
	return &CachedSentiment{
		Title:          r.Article.Title,
		Content:        r.Article.Description,
		URL:            r.Article.URL,
		PublishedAt:    r.Article.PublishedAt,
		Source:         r.Article.Source,
		Sentiment:      r.Score,
		SentimentLabel: string(r.Label),
		Confidence:     r.Confidence,
		ContextUsed:    r.ContextUsed,
		ProcessedAt:    r.ProcessedAt,
	}
}

// ToResult rebuilds a SentimentResult from a cached row.
// Rows whose label is not one of the three known values, or whose score
// contradicts the label, return an error so callers can skip them.
func (c *CachedSentiment) ToResult() (*SentimentResult, error) {
	label, err := ParseSentimentLabel(c.SentimentLabel)
	if err != nil {
		return nil, err
	}

	r := &SentimentResult{
		Article: Article{
			Title:       c.Title,
			Description: c.Content,
			URL:         c.URL,
			PublishedAt: c.PublishedAt,
			Source:      c.Source,
		},
		Score:       c.Sentiment,
		Label:       label,
		Confidence:  c.Confidence,
		ContextUsed: c.ContextUsed,
		ProcessedAt: c.ProcessedAt,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}
