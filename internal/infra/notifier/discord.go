package notifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"market-pulse/internal/domain/entity"
)

// DiscordConfig contains configuration for Discord webhook notifications.
type DiscordConfig struct {
	Enabled bool

	// WebhookURL is the Discord webhook URL (includes authentication token)
	WebhookURL string

	Timeout time.Duration
}

// DiscordNotifier posts alerts and digests to a Discord webhook.
type DiscordNotifier struct {
	hook *webhook
}

// NewDiscordNotifier creates a notifier limited to 0.5 requests/second with
// a burst of 3 (Discord allows 30 requests per minute per webhook).
func NewDiscordNotifier(config DiscordConfig) *DiscordNotifier {
	return &DiscordNotifier{hook: newWebhook("Discord", config.WebhookURL, config.Timeout, 0.5, 3)}
}

// DiscordWebhookPayload represents the JSON payload sent to Discord webhook.
type DiscordWebhookPayload struct {
	Embeds []DiscordEmbed `json:"embeds"`
}

// DiscordEmbed represents a Discord embed message.
type DiscordEmbed struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	URL         string              `json:"url,omitempty"`
	Color       int                 `json:"color"`
	Fields      []DiscordEmbedField `json:"fields,omitempty"`
	Footer      DiscordEmbedFooter  `json:"footer"`
	Timestamp   string              `json:"timestamp,omitempty"`
}

// DiscordEmbedField is a name/value pair inside an embed.
type DiscordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// DiscordEmbedFooter represents the footer of a Discord embed.
type DiscordEmbedFooter struct {
	Text string `json:"text"`
}

const (
	maxTitleLength       = 256
	maxDescriptionLength = 4096
	maxFieldValueLength  = 1024

	discordBlueColor  = 5793266
	discordGreenColor = 5763719
	discordRedColor   = 15548997
)

func (d *DiscordNotifier) NotifyAlert(ctx context.Context, r *entity.SentimentResult) error {
	return d.hook.post(ctx, buildDiscordAlert(r))
}

func (d *DiscordNotifier) NotifyDigest(ctx context.Context, dg *entity.DailyDigest) error {
	return d.hook.post(ctx, buildDiscordDigest(dg))
}

func buildDiscordAlert(r *entity.SentimentResult) DiscordWebhookPayload {
	a := r.Article
	embed := DiscordEmbed{
		Title:       truncate(a.Title, maxTitleLength),
		Description: truncate(alertTitle(r)+"\n\n"+a.Description, maxDescriptionLength),
		URL:         a.URL,
		Color:       labelColor(r.Label),
		Fields: []DiscordEmbedField{
			{Name: "Score", Value: fmt.Sprintf("%+.2f", r.Score), Inline: true},
			{Name: "Context", Value: fmt.Sprintf("%t", r.ContextUsed), Inline: true},
		},
		Footer: DiscordEmbedFooter{Text: sourceName(a)},
	}
	if !a.PublishedAt.IsZero() {
		embed.Timestamp = a.PublishedAt.Format(time.RFC3339)
	}
	return DiscordWebhookPayload{Embeds: []DiscordEmbed{embed}}
}

func buildDiscordDigest(d *entity.DailyDigest) DiscordWebhookPayload {
	s := d.Stats
	embed := DiscordEmbed{
		Title: DigestSubject(d),
		Description: fmt.Sprintf("%d articles analyzed. Average sentiment %+.2f, average confidence %.0f%%.",
			s.Total, s.AverageScore, s.AverageConfidence*100),
		Color: discordBlueColor,
		Fields: []DiscordEmbedField{
			{Name: "📈 Positive", Value: fmt.Sprintf("%d (%.1f%%)", s.Positive, s.PositivePct), Inline: true},
			{Name: "📉 Negative", Value: fmt.Sprintf("%d (%.1f%%)", s.Negative, s.NegativePct), Inline: true},
			{Name: "➖ Neutral", Value: fmt.Sprintf("%d (%.1f%%)", s.Neutral, s.NeutralPct), Inline: true},
		},
		Footer:    DiscordEmbedFooter{Text: "market-pulse"},
		Timestamp: d.Date.Format(time.RFC3339),
	}
	if v := discordList(d.TopPositive); v != "" {
		embed.Fields = append(embed.Fields, DiscordEmbedField{Name: "Top positive", Value: v})
	}
	if v := discordList(d.TopNegative); v != "" {
		embed.Fields = append(embed.Fields, DiscordEmbedField{Name: "Top negative", Value: v})
	}
	return DiscordWebhookPayload{Embeds: []DiscordEmbed{embed}}
}

func discordList(results []entity.SentimentResult) string {
	lines := make([]string, 0, len(results))
	for _, r := range results {
		lines = append(lines, fmt.Sprintf("[%s](%s) %+.2f", r.Article.Title, r.Article.URL, r.Score))
	}
	return truncate(strings.Join(lines, "\n"), maxFieldValueLength)
}

func labelColor(l entity.SentimentLabel) int {
	switch l {
	case entity.LabelPositive:
		return discordGreenColor
	case entity.LabelNegative:
		return discordRedColor
	}
	return discordBlueColor
}
