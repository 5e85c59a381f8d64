// Package classifier provides the sentiment classifiers selectable by
// CLASSIFIER_TYPE: the hosted FinBERT model, OpenAI and Claude chat models,
// and an offline keyword lexicon.
package classifier

import "errors"

var (
	// ErrEmptyResponse indicates the provider answered without any prediction.
	ErrEmptyResponse = errors.New("classifier returned empty response")

	// ErrUnexpectedResponse indicates a response that could not be parsed.
	ErrUnexpectedResponse = errors.New("classifier returned unexpected response")

	// ErrUnknownType indicates an unsupported CLASSIFIER_TYPE.
	ErrUnknownType = errors.New("unknown classifier type")

	// ErrMissingAPIKey indicates a remote classifier was selected without credentials.
	ErrMissingAPIKey = errors.New("classifier API key is required")
)
