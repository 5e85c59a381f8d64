package entity

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func result(title string, label SentimentLabel, score float64) SentimentResult {
	return SentimentResult{
		Article:    Article{Title: title, URL: "https://example.com/" + title},
		Label:      label,
		Score:      score,
		Confidence: math.Abs(score),
	}
}

func TestCalculateStats_Empty(t *testing.T) {
	assert.Equal(t, SentimentStats{}, CalculateStats(nil))
}

func TestCalculateStats(t *testing.T) {
	results := []SentimentResult{
		result("a", LabelPositive, 0.8),
		result("b", LabelPositive, 0.6),
		result("c", LabelNegative, -0.4),
		{Article: Article{Title: "d"}, Label: LabelNeutral, Score: 0, Confidence: 0.6},
	}

	stats := CalculateStats(results)

	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.Positive)
	assert.Equal(t, 1, stats.Negative)
	assert.Equal(t, 1, stats.Neutral)
	assert.InDelta(t, 0.25, stats.AverageScore, 1e-9)
	assert.InDelta(t, 0.6, stats.AverageConfidence, 1e-9)
	assert.InDelta(t, 50.0, stats.PositivePct, 1e-9)
	assert.InDelta(t, 25.0, stats.NegativePct, 1e-9)
	assert.InDelta(t, 25.0, stats.NeutralPct, 1e-9)
	assert.InDelta(t, 100.0, stats.PositivePct+stats.NegativePct+stats.NeutralPct, 1e-9)
}

func TestNewDailyDigest_TopLists(t *testing.T) {
	results := []SentimentResult{
		result("p1", LabelPositive, 0.3),
		result("p2", LabelPositive, 0.9),
		result("p3", LabelPositive, 0.5),
		result("n1", LabelNegative, -0.2),
		result("n2", LabelNegative, -0.95),
		result("z", LabelNeutral, 0),
	}
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	d := NewDailyDigest(date, results, 2)

	assert.Equal(t, date, d.Date)
	assert.Equal(t, 6, d.Stats.Total)

	var pos, neg []string
	for _, r := range d.TopPositive {
		pos = append(pos, r.Article.Title)
	}
	for _, r := range d.TopNegative {
		neg = append(neg, r.Article.Title)
	}
	assert.Equal(t, []string{"p2", "p3"}, pos)
	assert.Equal(t, []string{"n2", "n1"}, neg)
}

func TestNewDailyDigest_NoPolarResults(t *testing.T) {
	d := NewDailyDigest(time.Now(), []SentimentResult{result("z", LabelNeutral, 0)}, 5)
	assert.Empty(t, d.TopPositive)
	assert.Empty(t, d.TopNegative)
	assert.Equal(t, 1, d.Stats.Neutral)
}
