// Package sentiment serves the scored-article read API.
package sentiment

import (
	"time"

	"market-pulse/internal/domain/entity"
)

// ResultDTO is one scored article.
type ResultDTO struct {
	Title       string    `json:"title" example:"RELIANCE stock surges 10% on strong earnings"`
	URL         string    `json:"url,omitempty" example:"https://example.com/markets/reliance"`
	Source      string    `json:"source,omitempty" example:"Mint"`
	PublishedAt time.Time `json:"published_at,omitempty"`
	Score       float64   `json:"score" example:"0.92"`
	Label       string    `json:"label" example:"POSITIVE"`
	Confidence  float64   `json:"confidence" example:"0.92"`
	ContextUsed bool      `json:"context_used"`
	ProcessedAt time.Time `json:"processed_at"`
}

// StatsDTO aggregates a set of results. Percentages are 0-100.
type StatsDTO struct {
	Total             int     `json:"total"`
	Positive          int     `json:"positive"`
	Negative          int     `json:"negative"`
	Neutral           int     `json:"neutral"`
	AverageScore      float64 `json:"average_score"`
	AverageConfidence float64 `json:"average_confidence"`
	PositivePct       float64 `json:"positive_pct"`
	NegativePct       float64 `json:"negative_pct"`
	NeutralPct        float64 `json:"neutral_pct"`
}

// TodayResponse lists everything processed since local midnight.
type TodayResponse struct {
	Date    string      `json:"date" example:"2026-03-02"`
	Stats   StatsDTO    `json:"stats"`
	Results []ResultDTO `json:"results"`
}

// ReportResponse is the daily digest as JSON.
type ReportResponse struct {
	Date        string      `json:"date" example:"2026-03-02"`
	Stats       StatsDTO    `json:"stats"`
	TopPositive []ResultDTO `json:"top_positive"`
	TopNegative []ResultDTO `json:"top_negative"`
}

// TopResponse is a ranked list for one label.
type TopResponse struct {
	Label   string      `json:"label"`
	Limit   int         `json:"limit"`
	Results []ResultDTO `json:"results"`
}

// ToResultDTO flattens a result for JSON output.
func ToResultDTO(r entity.SentimentResult) ResultDTO {
	return ResultDTO{
		Title:       r.Article.Title,
		URL:         r.Article.URL,
		Source:      r.Article.Source,
		PublishedAt: r.Article.PublishedAt,
		Score:       r.Score,
		Label:       string(r.Label),
		Confidence:  r.Confidence,
		ContextUsed: r.ContextUsed,
		ProcessedAt: r.ProcessedAt,
	}
}

// ToResultDTOs never returns nil so empty lists encode as [].
func ToResultDTOs(results []entity.SentimentResult) []ResultDTO {
	out := make([]ResultDTO, 0, len(results))
	for _, r := range results {
		out = append(out, ToResultDTO(r))
	}
	return out
}

func ToStatsDTO(s entity.SentimentStats) StatsDTO {
	return StatsDTO{
		Total:             s.Total,
		Positive:          s.Positive,
		Negative:          s.Negative,
		Neutral:           s.Neutral,
		AverageScore:      s.AverageScore,
		AverageConfidence: s.AverageConfidence,
		PositivePct:       s.PositivePct,
		NegativePct:       s.NegativePct,
		NeutralPct:        s.NeutralPct,
	}
}

// NewReportResponse converts a digest. Results are omitted; the top lists
// carry the detail.
func NewReportResponse(d *entity.DailyDigest) ReportResponse {
	return ReportResponse{
		Date:        d.Date.Format(dateLayout),
		Stats:       ToStatsDTO(d.Stats),
		TopPositive: ToResultDTOs(d.TopPositive),
		TopNegative: ToResultDTOs(d.TopNegative),
	}
}
