package notifier

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"market-pulse/internal/domain/entity"
)

const digestDateLayout = "02 Jan 2006"

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithXHTML()),
)

// DigestSubject is the email subject and chat heading for a digest.
func DigestSubject(d *entity.DailyDigest) string {
	return "Daily Market Sentiment Report - " + d.Date.Format(digestDateLayout)
}

// RenderDigestMarkdown builds the digest body: a summary table followed by
// the strongest positive and negative stories.
func RenderDigestMarkdown(d *entity.DailyDigest) string {
	var b strings.Builder
	s := d.Stats

	fmt.Fprintf(&b, "# %s\n\n", DigestSubject(d))
	fmt.Fprintf(&b, "**%d articles analyzed.** Average sentiment %+.2f, average confidence %.0f%%.\n\n",
		s.Total, s.AverageScore, s.AverageConfidence*100)

	b.WriteString("| Sentiment | Articles | Share |\n")
	b.WriteString("|---|---:|---:|\n")
	fmt.Fprintf(&b, "| 📈 Positive | %d | %.1f%% |\n", s.Positive, s.PositivePct)
	fmt.Fprintf(&b, "| 📉 Negative | %d | %.1f%% |\n", s.Negative, s.NegativePct)
	fmt.Fprintf(&b, "| ➖ Neutral | %d | %.1f%% |\n", s.Neutral, s.NeutralPct)

	writeSection(&b, "Top positive news", d.TopPositive)
	writeSection(&b, "Top negative news", d.TopNegative)

	return b.String()
}

func writeSection(b *strings.Builder, heading string, results []entity.SentimentResult) {
	fmt.Fprintf(b, "\n## %s\n\n", heading)
	if len(results) == 0 {
		b.WriteString("_None today._\n")
		return
	}
	for i, r := range results {
		fmt.Fprintf(b, "%d. [%s](%s) (%s, score %+.2f)\n",
			i+1, escapeMarkdown(r.Article.Title), escapeLinkURL(r.Article.URL), sourceName(r.Article), r.Score)
	}
}

var markdownEscaper = strings.NewReplacer("[", `\[`, "]", `\]`, "|", `\|`, "*", `\*`, "_", `\_`)

func escapeMarkdown(s string) string { return markdownEscaper.Replace(s) }

// Characters that end or break a markdown link destination are percent-encoded.
var linkURLEscaper = strings.NewReplacer("(", "%28", ")", "%29", " ", "%20", "<", "%3C", ">", "%3E")

func escapeLinkURL(u string) string { return linkURLEscaper.Replace(u) }

// RenderDigestHTML converts the markdown digest to HTML for email.
func RenderDigestHTML(d *entity.DailyDigest) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(RenderDigestMarkdown(d)), &buf); err != nil {
		return "", fmt.Errorf("RenderDigestHTML: %w", err)
	}
	return buf.String(), nil
}
