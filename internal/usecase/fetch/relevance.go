package fetch

import (
	"errors"
	"strings"

	"market-pulse/internal/domain/entity"
)

// Keywords are the lists consulted by the relevance filter.
// Matching is a case-insensitive substring test.
type Keywords struct {
	Financial     []string `yaml:"financial"`
	IndianContext []string `yaml:"indian_context"`
	StrongMarket  []string `yaml:"strong_market"`
}

// DefaultKeywords returns the built-in keyword lists.
func DefaultKeywords() Keywords {
	return Keywords{
		Financial: []string{
			"stock", "market", "shares", "trading", "finance", "investment",
			"economy", "rupee", "bank", "bse", "nse", "sensex", "nifty",
			"earnings", "profit", "revenue", "ipo", "dividend",
		},
		IndianContext: []string{
			"india", "indian", "mumbai", "delhi", "bangalore", "rbi",
			"reserve bank", "tata", "reliance", "infosys", "hdfc", "adani",
			"icici", "wipro", "bharti",
		},
		StrongMarket: []string{
			"sensex", "nifty", "bse", "nse", "indian stock market",
		},
	}
}

// Validate rejects a configuration under which no article could pass.
func (k Keywords) Validate() error {
	if len(k.StrongMarket) == 0 && (len(k.Financial) == 0 || len(k.IndianContext) == 0) {
		return errors.New("keywords: strong_market or both financial and indian_context must be set")
	}
	return nil
}

// Normalized returns a copy with every keyword lowercased and blanks removed.
func (k Keywords) Normalized() Keywords {
	return Keywords{
		Financial:     normalize(k.Financial),
		IndianContext: normalize(k.IndianContext),
		StrongMarket:  normalize(k.StrongMarket),
	}
}

// IsRelevant keeps an article when it mentions a financial term together
// with Indian context, or mentions a strong market term on its own.
// k must already be normalized.
func (k Keywords) IsRelevant(a entity.Article) bool {
	text := strings.ToLower(a.Title + " " + a.Description)

	if containsAny(text, k.StrongMarket) {
		return true
	}
	return containsAny(text, k.Financial) && containsAny(text, k.IndianContext)
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func normalize(list []string) []string {
	out := make([]string, 0, len(list))
	for _, kw := range list {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			out = append(out, kw)
		}
	}
	return out
}
