// Package entity defines the core domain entities and validation logic for the application.
// It contains the fundamental business objects such as Article and SentimentResult, along with
// their validation rules and domain-specific errors.
package entity

import (
	"strings"
	"time"
)

// Article represents a news article retrieved during a fetch cycle.
// It is immutable once fetched and is discarded after scoring.
//
// URL is the deduplication key within a cycle. Description and Content are
// optional; Source holds the publisher name reported by the upstream API or feed.
type Article struct {
	Title       string
	Description string
	Content     string
	URL         string
	PublishedAt time.Time
	Source      string
}

// ScoringText returns the text fed to the sentiment classifier:
// the title and description joined as "title. description".
// It returns an empty string when both fields are blank.
func (a Article) ScoringText() string {
	title := strings.TrimSpace(a.Title)
	desc := strings.TrimSpace(a.Description)

	switch {
	case title == "" && desc == "":
		return ""
	case desc == "":
		return title + "."
	case title == "":
		return desc
	}
	return title + ". " + desc
}

// EmbeddingText returns the text used for similarity indexing
// (title and description separated by a single space).
func (a Article) EmbeddingText() string {
	return strings.TrimSpace(a.Title + " " + a.Description)
}

// Validate checks the fields every downstream stage depends on.
// Title and URL are required; the URL must be a well-formed http(s) URL.
func (a Article) Validate() error {
	if strings.TrimSpace(a.Title) == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	return ValidateURL(a.URL)
}
