package classifier

import (
	"context"
	"math"
	"strings"
	"unicode"

	"market-pulse/internal/usecase/sentiment"
)

// Weighted keyword dictionaries, lowercase. Each keyword word must start a
// text word, so "surges" hits "surge" but "against" does not hit "gain".
var bullishWords = map[string]float64{
	"bullish": 0.7, "rally": 0.6, "surge": 0.7, "upbeat": 0.5,
	"positive": 0.4, "growth": 0.4, "upgrade": 0.6, "outperform": 0.6,
	"strong": 0.4, "recovery": 0.5, "breakout": 0.6,
	"record high": 0.7, "all-time high": 0.7, "beats estimate": 0.6,
	"exceeds": 0.5, "expansion": 0.4, "profit": 0.3, "dividend": 0.4,
	"gain": 0.4, "jump": 0.5, "soar": 0.6,
}

var bearishWords = map[string]float64{
	"bearish": 0.7, "crash": 0.8, "plunge": 0.7, "slump": 0.6,
	"negative": 0.4, "downgrade": 0.6, "underperform": 0.6,
	"weak": 0.4, "decline": 0.5, "loss": 0.4, "selloff": 0.7,
	"correction": 0.5, "default": 0.7, "fraud": 0.8, "scam": 0.8,
	"investigation": 0.5, "warning": 0.5, "concern": 0.3,
	"drop": 0.4, "tumble": 0.6, "slide": 0.4,
}

const (
	lexiconPolarThreshold = 0.1
	noSignalConfidence    = 0.1
)

// Lexicon is an offline, deterministic keyword classifier.
type Lexicon struct{}

// NewLexicon creates the keyword classifier.
func NewLexicon() *Lexicon { return &Lexicon{} }

func (Lexicon) Name() string { return "lexicon" }

// Classify never fails. Confidence grows with the number of matched
// keywords and is capped at 0.85.
func (Lexicon) Classify(_ context.Context, text string) (sentiment.Prediction, error) {
	score, confidence := scoreText(text)
	switch {
	case score > lexiconPolarThreshold:
		return sentiment.Prediction{Label: "positive", Score: confidence}, nil
	case score < -lexiconPolarThreshold:
		return sentiment.Prediction{Label: "negative", Score: confidence}, nil
	}
	return sentiment.Prediction{Label: "neutral", Score: confidence}, nil
}

// scoreText returns a net polarity in [-1, 1] and a confidence.
func scoreText(text string) (float64, float64) {
	words := tokenize(text)

	var bull, bear float64
	matches := 0
	for kw, weight := range bullishWords {
		if containsKeyword(words, kw) {
			bull += weight
			matches++
		}
	}
	for kw, weight := range bearishWords {
		if containsKeyword(words, kw) {
			bear += weight
			matches++
		}
	}

	total := bull + bear
	if matches == 0 || total == 0 {
		return 0, noSignalConfidence
	}
	return (bull - bear) / total, math.Min(float64(matches)*0.15+0.2, 0.85)
}

// tokenize lowercases text and splits it into words. Hyphens stay inside
// words so "all-time" is one token.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})
}

// containsKeyword reports whether the keyword's words appear consecutively,
// each as a prefix of a text word.
func containsKeyword(words []string, keyword string) bool {
	kw := strings.Fields(keyword)
	for i := 0; i+len(kw) <= len(words); i++ {
		matched := true
		for j, k := range kw {
			if !strings.HasPrefix(words[i+j], k) {
				matched = false
				break
			}
		}
		if matched {
			return true
		}
	}
	return false
}
