// Package scraper implements the article sources of the fetch stage:
// the NewsAPI search client and an RSS/Atom feed reader.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/sony/gobreaker"

	"market-pulse/internal/resilience/circuitbreaker"
	"market-pulse/internal/usecase/fetch"
)

// userAgent is sent on every outbound request.
const userAgent = "MarketPulseBot/1.0"

// RSSFetcher implements fetch.FeedFetcher using the gofeed library.
// Requests go through a circuit breaker and are attempted once.
type RSSFetcher struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	denyPrivateIPs bool
	now            func() time.Time
}

// RSSOption configures an RSSFetcher.
type RSSOption func(*RSSFetcher)

// WithPrivateIPGuard rejects feeds whose host resolves to a loopback,
// private or link-local address. The check runs before every fetch.
func WithPrivateIPGuard(deny bool) RSSOption {
	return func(f *RSSFetcher) { f.denyPrivateIPs = deny }
}

// NewRSSFetcher creates a new RSSFetcher with the given HTTP client.
func NewRSSFetcher(client *http.Client, opts ...RSSOption) *RSSFetcher {
	f := &RSSFetcher{
		client:         client,
		circuitBreaker: circuitbreaker.New(circuitbreaker.FeedFetchConfig()),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves and parses an RSS/Atom feed from the given URL.
// A URL rejected by ValidateFeedURL is not requested and does not count
// against the circuit breaker.
func (f *RSSFetcher) Fetch(ctx context.Context, feedURL string) ([]fetch.Hit, error) {
	if err := ValidateFeedURL(feedURL, f.denyPrivateIPs); err != nil {
		return nil, err
	}
	items, err := circuitbreaker.Run(f.circuitBreaker, func() ([]fetch.Hit, error) {
		return f.doFetch(ctx, feedURL)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			slog.Warn("feed fetch circuit breaker open, request rejected",
				slog.String("service", "feed-fetch"),
				slog.String("url", feedURL),
				slog.String("state", f.circuitBreaker.State().String()))
		}
		return nil, err
	}
	return items, nil
}

func (f *RSSFetcher) doFetch(ctx context.Context, feedURL string) ([]fetch.Hit, error) {
	fp := gofeed.NewParser()
	fp.UserAgent = userAgent
	fp.Client = f.client

	feed, err := fp.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		var httpErr gofeed.HTTPError
		if errors.As(err, &httpErr) || ctx.Err() != nil || isTransportError(err) {
			return nil, fmt.Errorf("%w: %s: %v", fetch.ErrFeedFetchFailed, feedURL, err)
		}
		return nil, fmt.Errorf("%w: %s: %v", fetch.ErrInvalidFeedFormat, feedURL, err)
	}

	source := strings.TrimSpace(feed.Title)
	items := make([]fetch.Hit, 0, len(feed.Items))
	for _, it := range feed.Items {
		pubAt := f.now()
		if it.PublishedParsed != nil {
			pubAt = *it.PublishedParsed
		} else if it.UpdatedParsed != nil {
			pubAt = *it.UpdatedParsed
		}

		desc := HTMLToText(it.Description)
		content := HTMLToText(it.Content)
		if desc == "" {
			desc = content
		}
		if content == "" {
			content = desc
		}

		items = append(items, fetch.Hit{
			Title:       HTMLToText(it.Title),
			Description: desc,
			Content:     content,
			URL:         strings.TrimSpace(it.Link),
			PublishedAt: pubAt,
			Source:      source,
			Origin:      fetch.OriginRSS,
		})
	}

	return items, nil
}

// isTransportError reports whether err came from the HTTP client
// (every *url.Error and net.Error implements Timeout).
func isTransportError(err error) bool {
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr)
}
