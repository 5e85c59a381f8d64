package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"market-pulse/internal/utils/text"
)

// HTMLToText flattens an HTML fragment to whitespace-normalised plain text.
// Script and style elements are dropped. Input that is not HTML is returned
// with its whitespace collapsed.
func HTMLToText(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return text.CleanText(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return text.CleanText(fragment)
	}
	doc.Find("script, style, noscript").Remove()
	return text.CleanText(doc.Text())
}
