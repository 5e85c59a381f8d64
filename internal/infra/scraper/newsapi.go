package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"market-pulse/internal/resilience/circuitbreaker"
	"market-pulse/internal/usecase/fetch"
)

// DefaultNewsAPIURL is the NewsAPI "everything" endpoint.
const DefaultNewsAPIURL = "https://newsapi.org/v2/everything"

// maxBodySize limits how much of a response is read.
const maxBodySize = 5 << 20

// newsAPITimeLayout is the ISO 8601 form accepted by the "from" parameter.
const newsAPITimeLayout = "2006-01-02T15:04:05"

type newsAPIResponse struct {
	Status       string           `json:"status"`
	Code         string           `json:"code"`
	Message      string           `json:"message"`
	TotalResults int              `json:"totalResults"`
	Articles     []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
}

// NewsAPIClient implements fetch.NewsSearcher against NewsAPI.
type NewsAPIClient struct {
	baseURL        string
	apiKey         string
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// NewNewsAPIClient creates a client. An empty baseURL selects DefaultNewsAPIURL.
func NewNewsAPIClient(client *http.Client, baseURL, apiKey string) *NewsAPIClient {
	if baseURL == "" {
		baseURL = DefaultNewsAPIURL
	}
	return &NewsAPIClient{
		baseURL:        baseURL,
		apiKey:         apiKey,
		client:         client,
		circuitBreaker: circuitbreaker.New(circuitbreaker.NewsAPIConfig()),
	}
}

// Search issues one query. The request is attempted once; any failure,
// including a response status other than "ok", wraps fetch.ErrSearchFailed.
func (c *NewsAPIClient) Search(ctx context.Context, q fetch.SearchQuery) ([]fetch.Hit, error) {
	hits, err := circuitbreaker.Run(c.circuitBreaker, func() ([]fetch.Hit, error) {
		return c.doSearch(ctx, q)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			slog.Warn("news API circuit breaker open, request rejected",
				slog.String("service", "news-api"),
				slog.String("query", q.Query),
				slog.String("state", c.circuitBreaker.State().String()))
			return nil, fmt.Errorf("%w: %v", fetch.ErrSearchFailed, err)
		}
		return nil, err
	}
	return hits, nil
}

func (c *NewsAPIClient) doSearch(ctx context.Context, q fetch.SearchQuery) ([]fetch.Hit, error) {
	reqURL, err := c.buildURL(q)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", fetch.ErrSearchFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", fetch.ErrSearchFailed, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", fetch.ErrSearchFailed, redactURLError(err))
	}
	defer func() { _ = resp.Body.Close() }()

	var body newsAPIResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: status %d: decode: %v", fetch.ErrSearchFailed, resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || body.Status != "ok" {
		return nil, fmt.Errorf("%w: status %d: %s: %s", fetch.ErrSearchFailed, resp.StatusCode, body.Code, body.Message)
	}

	hits := make([]fetch.Hit, 0, len(body.Articles))
	for _, a := range body.Articles {
		hits = append(hits, fetch.Hit{
			Title:       a.Title,
			Description: a.Description,
			Content:     a.Content,
			URL:         a.URL,
			PublishedAt: parsePublishedAt(a.PublishedAt),
			Source:      a.Source.Name,
			Origin:      fetch.OriginNewsAPI,
		})
	}
	return hits, nil
}

// parsePublishedAt returns the zero time for a missing or malformed
// timestamp so that one bad article does not fail the whole query.
func parsePublishedAt(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

func (c *NewsAPIClient) buildURL(q fetch.SearchQuery) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	params := u.Query()
	params.Set("q", q.Query)
	if q.Language != "" {
		params.Set("language", q.Language)
	}
	params.Set("sortBy", "publishedAt")
	if !q.From.IsZero() {
		params.Set("from", q.From.UTC().Format(newsAPITimeLayout))
	}
	if q.PageSize > 0 {
		params.Set("pageSize", strconv.Itoa(q.PageSize))
	}
	params.Set("apiKey", c.apiKey)
	u.RawQuery = params.Encode()
	return u.String(), nil
}

// redactURLError strips the query string (which carries the API key) from
// errors returned by the HTTP client.
func redactURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if u, perr := url.Parse(urlErr.URL); perr == nil {
			u.RawQuery = ""
			urlErr.URL = u.String()
		}
	}
	return err
}
