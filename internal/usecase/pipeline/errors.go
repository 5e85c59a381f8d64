package pipeline

import "errors"

var (
	// ErrScoringFailed is returned when a cycle fetched articles but none
	// could be scored.
	ErrScoringFailed = errors.New("no article could be scored")

	// ErrSelfTestFailed is returned when the startup probe cannot score the
	// reference article.
	ErrSelfTestFailed = errors.New("sentiment self-test failed")
)
