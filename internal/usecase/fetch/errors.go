// Package fetch gathers candidate articles for one analysis cycle.
// It issues the configured news searches and optional RSS feeds, merges the
// hits, drops duplicates and invalid entries, and keeps only articles about
// the Indian market.
package fetch

import "errors"

// Sentinel errors for fetch use case operations.
var (
	// ErrSearchFailed indicates that a news API query could not be completed.
	// This covers transport errors, non-2xx responses and a status other than "ok".
	ErrSearchFailed = errors.New("news search failed")

	// ErrFeedFetchFailed indicates that fetching a feed from the source URL failed.
	ErrFeedFetchFailed = errors.New("failed to fetch feed from source")

	// ErrInvalidFeedFormat indicates that the feed content could not be parsed.
	// This typically happens when the feed is not valid RSS or Atom format.
	ErrInvalidFeedFormat = errors.New("invalid feed format")

	// ErrInvalidURL indicates a feed URL that is not an absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid feed URL")

	// ErrPrivateIP indicates a feed host resolving to a loopback, private or
	// link-local address while the private IP guard is on.
	ErrPrivateIP = errors.New("feed URL resolves to a private address")
)
