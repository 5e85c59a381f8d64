package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"market-pulse/internal/domain/entity"
	"market-pulse/internal/utils/text"
)

const (
	maxErrorBodySize = 4 << 10
	truncationSuffix = "..."
)

// RateLimitError represents a 429 from a webhook service.
type RateLimitError struct {
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s (retry after %v)", e.Message, e.RetryAfter)
	}
	return fmt.Sprintf("rate limit exceeded (retry after %v)", e.RetryAfter)
}

// ClientError represents a 4xx from a webhook service.
type ClientError struct {
	StatusCode int
	Message    string
}

func (e *ClientError) Error() string { return e.Message }

// ServerError represents a 5xx from a webhook service.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string { return e.Message }

// webhook posts JSON payloads to an incoming-webhook URL under a token bucket.
type webhook struct {
	service string
	url     string
	client  *http.Client
	limiter *rate.Limiter
}

func newWebhook(service, url string, timeout time.Duration, rps float64, burst int) *webhook {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &webhook{
		service: service,
		url:     url,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (w *webhook) post(ctx context.Context, payload any) error {
	if err := w.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("execute http request: %w", redactURL(err, w.url))
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return &RateLimitError{
			Message:    w.service + " rate limit exceeded",
			RetryAfter: retryAfter(resp, respBody),
		}
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return &ClientError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("%s API client error: %s", w.service, strings.TrimSpace(string(respBody))),
		}
	case resp.StatusCode >= 500:
		return &ServerError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("%s API server error: %s", w.service, strings.TrimSpace(string(respBody))),
		}
	}
	return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(respBody))
}

// retryAfter reads the Retry-After header, falling back to a JSON
// retry_after field in seconds. The default is 5 seconds.
func retryAfter(resp *http.Response, body []byte) time.Duration {
	if h := resp.Header.Get("Retry-After"); h != "" {
		if secs, err := strconv.ParseFloat(h, 64); err == nil && secs > 0 {
			return time.Duration(secs * float64(time.Second))
		}
	}
	var payload struct {
		RetryAfter float64 `json:"retry_after"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.RetryAfter > 0 {
		return time.Duration(payload.RetryAfter * float64(time.Second))
	}
	return 5 * time.Second
}

// redactURL keeps the webhook token out of transport errors.
func redactURL(err error, url string) error {
	if url == "" {
		return err
	}
	return fmt.Errorf("%s", strings.ReplaceAll(err.Error(), url, "[webhook]"))
}

// truncate cuts s to max runes including the suffix.
func truncate(s string, max int) string {
	if text.CountRunes(s) <= max {
		return s
	}
	cut, _ := text.TruncateRunes(s, max-len(truncationSuffix))
	return cut + truncationSuffix
}

// alertTitle is the one-line headline shared by every alert channel.
func alertTitle(r *entity.SentimentResult) string {
	return fmt.Sprintf("%s %s (%.0f%% confidence)", labelEmoji(r.Label), r.Label, r.Confidence*100)
}

func labelEmoji(l entity.SentimentLabel) string {
	switch l {
	case entity.LabelPositive:
		return "📈"
	case entity.LabelNegative:
		return "📉"
	}
	return "➖"
}

func sourceName(a entity.Article) string {
	if a.Source == "" {
		return "Unknown"
	}
	return a.Source
}
