package config

import "errors"

var (
	// ErrMissingNewsAPIKey aborts startup: nothing can be fetched without it.
	ErrMissingNewsAPIKey = errors.New("NEWS_API_KEY is required")

	// ErrInvalidClassifier covers an unknown CLASSIFIER_TYPE or a remote
	// classifier selected without its API key.
	ErrInvalidClassifier = errors.New("invalid classifier configuration")
)
