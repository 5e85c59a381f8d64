package sentiment

import "market-pulse/internal/domain/entity"

// RunSummary buckets the titles of one AnalyzeArticles call by label.
type RunSummary struct {
	Positive []string
	Negative []string
	Neutral  []string
	Analyzed int
	Failed   int
}

func (s *RunSummary) add(r *entity.SentimentResult) {
	s.Analyzed++
	switch r.Label {
	case entity.LabelPositive:
		s.Positive = append(s.Positive, r.Article.Title)
	case entity.LabelNegative:
		s.Negative = append(s.Negative, r.Article.Title)
	default:
		s.Neutral = append(s.Neutral, r.Article.Title)
	}
}

// Total is the number of articles attempted.
func (s RunSummary) Total() int {
	return s.Analyzed + s.Failed
}
