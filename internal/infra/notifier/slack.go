package notifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"market-pulse/internal/domain/entity"
)

// SlackConfig contains configuration for Slack webhook notifications.
type SlackConfig struct {
	Enabled bool

	// WebhookURL is the Slack Incoming Webhook URL (includes authentication token)
	WebhookURL string

	Timeout time.Duration
}

// SlackNotifier posts alerts and digests to a Slack Incoming Webhook.
type SlackNotifier struct {
	hook *webhook
}

// NewSlackNotifier creates a notifier limited to 1 request/second,
// the Slack webhook limit.
func NewSlackNotifier(config SlackConfig) *SlackNotifier {
	return &SlackNotifier{hook: newWebhook("Slack", config.WebhookURL, config.Timeout, 1.0, 1)}
}

// SlackWebhookPayload is a Block Kit message.
type SlackWebhookPayload struct {
	Text   string       `json:"text"`
	Blocks []SlackBlock `json:"blocks"`
}

// SlackBlock represents a Slack Block Kit block.
type SlackBlock struct {
	Type     string            `json:"type"`
	Text     *SlackTextObject  `json:"text,omitempty"`
	Elements []SlackTextObject `json:"elements,omitempty"`
}

// SlackTextObject represents a text object in Slack Block Kit.
type SlackTextObject struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Slack Block Kit limits
const (
	maxSectionTextLength = 3000
	maxFallbackLength    = 150
)

func (s *SlackNotifier) NotifyAlert(ctx context.Context, r *entity.SentimentResult) error {
	return s.hook.post(ctx, buildSlackAlert(r))
}

func (s *SlackNotifier) NotifyDigest(ctx context.Context, d *entity.DailyDigest) error {
	return s.hook.post(ctx, buildSlackDigest(d))
}

func buildSlackAlert(r *entity.SentimentResult) SlackWebhookPayload {
	a := r.Article
	section := fmt.Sprintf("*%s*\n*%s*", alertTitle(r), slackLink(a.URL, a.Title))
	if a.Description != "" {
		section += "\n\n" + a.Description
	}

	contextText := fmt.Sprintf("%s • score %+.2f", sourceName(a), r.Score)
	if !a.PublishedAt.IsZero() {
		contextText += " • " + a.PublishedAt.Format(time.RFC3339)
	}
	if r.ContextUsed {
		contextText += " • similar-news context"
	}

	return SlackWebhookPayload{
		Text: truncate(fmt.Sprintf("%s: %s", r.Label, a.Title), maxFallbackLength),
		Blocks: []SlackBlock{
			{Type: "section", Text: &SlackTextObject{Type: "mrkdwn", Text: truncate(section, maxSectionTextLength)}},
			{Type: "context", Elements: []SlackTextObject{{Type: "mrkdwn", Text: contextText}}},
		},
	}
}

func buildSlackDigest(d *entity.DailyDigest) SlackWebhookPayload {
	s := d.Stats
	summary := fmt.Sprintf("*%s*\n%d articles • 📈 %d (%.0f%%) • 📉 %d (%.0f%%) • ➖ %d (%.0f%%) • avg %+.2f",
		DigestSubject(d), s.Total,
		s.Positive, s.PositivePct, s.Negative, s.NegativePct, s.Neutral, s.NeutralPct,
		s.AverageScore)

	blocks := []SlackBlock{
		{Type: "section", Text: &SlackTextObject{Type: "mrkdwn", Text: summary}},
	}
	for _, group := range []struct {
		heading string
		results []entity.SentimentResult
	}{
		{"Top positive", d.TopPositive},
		{"Top negative", d.TopNegative},
	} {
		if len(group.results) == 0 {
			continue
		}
		body := "*" + group.heading + "*"
		for _, r := range group.results {
			body += fmt.Sprintf("\n• %s (%+.2f)", slackLink(r.Article.URL, r.Article.Title), r.Score)
		}
		blocks = append(blocks,
			SlackBlock{Type: "divider"},
			SlackBlock{Type: "section", Text: &SlackTextObject{Type: "mrkdwn", Text: truncate(body, maxSectionTextLength)}})
	}

	return SlackWebhookPayload{Text: DigestSubject(d), Blocks: blocks}
}

var (
	slackURLEscaper  = strings.NewReplacer("|", "%7C", "<", "%3C", ">", "%3E", " ", "%20")
	slackTextEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
)

// slackLink formats a mrkdwn link. Slack control characters in the text are
// entity-escaped and the ones that would end the URL are percent-encoded.
func slackLink(url, text string) string {
	return "<" + slackURLEscaper.Replace(url) + "|" + slackTextEscaper.Replace(text) + ">"
}
