package report

import "errors"

var (
	// ErrNoArticles is returned when nothing was processed in the report window.
	ErrNoArticles = errors.New("no articles processed today")

	// ErrInvalidLimit is returned when a top-N request has a non-positive limit.
	ErrInvalidLimit = errors.New("limit must be positive")
)
