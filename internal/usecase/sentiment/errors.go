// Package sentiment scores articles with a pluggable classifier,
// optionally enriching the text with similar-news context first.
package sentiment

import "errors"

// Sentinel errors for sentiment use case operations.
var (
	// ErrEmptyText indicates that the article has neither title nor description.
	ErrEmptyText = errors.New("article has no text to score")

	// ErrClassificationFailed wraps any error returned by the classifier.
	ErrClassificationFailed = errors.New("sentiment classification failed")
)
