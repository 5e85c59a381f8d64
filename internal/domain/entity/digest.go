package entity

import (
	"math"
	"sort"
	"time"
)

// SentimentStats aggregates a set of results.
// Percentages are in the range 0-100. An empty input yields the zero value.
type SentimentStats struct {
	Total             int
	Positive          int
	Negative          int
	Neutral           int
	AverageScore      float64
	AverageConfidence float64
	PositivePct       float64
	NegativePct       float64
	NeutralPct        float64
}

// CalculateStats computes label counts, averages and percentages for results.
func CalculateStats(results []SentimentResult) SentimentStats {
	stats := SentimentStats{Total: len(results)}
	if stats.Total == 0 {
		return stats
	}

	var scoreSum, confSum float64
	for _, r := range results {
		switch r.Label {
		case LabelPositive:
			stats.Positive++
		case LabelNegative:
			stats.Negative++
		default:
			stats.Neutral++
		}
		scoreSum += r.Score
		confSum += r.Confidence
	}

	n := float64(stats.Total)
	stats.AverageScore = scoreSum / n
	stats.AverageConfidence = confSum / n
	stats.PositivePct = float64(stats.Positive) / n * 100
	stats.NegativePct = float64(stats.Negative) / n * 100
	stats.NeutralPct = float64(stats.Neutral) / n * 100

	return stats
}

// DailyDigest is the end-of-day summary sent to digest channels.
type DailyDigest struct {
	Date        time.Time
	Stats       SentimentStats
	TopPositive []SentimentResult
	TopNegative []SentimentResult
	Results     []SentimentResult
}

// NewDailyDigest builds a digest for date from the given results,
// keeping the topN strongest results of each polarity ordered by |score|.
func NewDailyDigest(date time.Time, results []SentimentResult, topN int) *DailyDigest {
	d := &DailyDigest{
		Date:    date,
		Stats:   CalculateStats(results),
		Results: results,
	}

	for _, r := range results {
		switch r.Label {
		case LabelPositive:
			d.TopPositive = append(d.TopPositive, r)
		case LabelNegative:
			d.TopNegative = append(d.TopNegative, r)
		}
	}

	d.TopPositive = strongest(d.TopPositive, topN)
	d.TopNegative = strongest(d.TopNegative, topN)
	return d
}

func strongest(results []SentimentResult, n int) []SentimentResult {
	sort.SliceStable(results, func(i, j int) bool {
		return math.Abs(results[i].Score) > math.Abs(results[j].Score)
	})
	if n >= 0 && len(results) > n {
		results = results[:n]
	}
	return results
}
