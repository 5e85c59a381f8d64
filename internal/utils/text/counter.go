// Package text provides small helpers for preparing article text for the
// classifier and the embedding models.
package text

import "strings"

// CountRunes counts the number of Unicode characters (runes) in the given text.
// Multi-byte characters such as the rupee sign or emoji count as one.
//
// Examples:
//
//	CountRunes("hello")    // returns 5
//	CountRunes("₹500 cr")  // returns 7
//	CountRunes("")         // returns 0
func CountRunes(text string) int {
	return len([]rune(text))
}

// TruncateRunes cuts text to at most max runes.
// The second return value reports whether anything was removed.
// A non-positive max leaves the text untouched.
func TruncateRunes(text string, max int) (string, bool) {
	if max <= 0 {
		return text, false
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text, false
	}
	return string(runes[:max]), true
}

// CleanText collapses runs of whitespace (including newlines and tabs)
// into single spaces and trims both ends.
func CleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
