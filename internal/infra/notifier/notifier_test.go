package notifier

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-pulse/internal/domain/entity"
)

func alertResult() *entity.SentimentResult {
	return &entity.SentimentResult{
		Article: entity.Article{
			Title:       "Infosys shares tumble after guidance cut",
			Description: "IT major trims FY revenue outlook",
			URL:         "https://news.example.com/infosys",
			Source:      "Economic Times",
			PublishedAt: time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC),
		},
		Score:       -0.86,
		Label:       entity.LabelNegative,
		Confidence:  0.86,
		ContextUsed: true,
	}
}

func digest() *entity.DailyDigest {
	results := []entity.SentimentResult{
		{Article: entity.Article{Title: "Sensex hits record [high]", URL: "https://x.example.com/1"}, Label: entity.LabelPositive, Score: 0.9, Confidence: 0.9},
		{Article: entity.Article{Title: "Rupee slips", URL: "https://x.example.com/2", Source: "Mint"}, Label: entity.LabelNegative, Score: -0.6, Confidence: 0.6},
		{Article: entity.Article{Title: "RBI minutes released", URL: "https://x.example.com/3"}, Label: entity.LabelNeutral, Score: 0, Confidence: 0.5},
	}
	return entity.NewDailyDigest(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), results, 5)
}

func capture(t *testing.T, status int, header http.Header, body string) (*httptest.Server, *[]byte) {
	t.Helper()
	var got []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = io.ReadAll(r.Body)
		for k, v := range header {
			w.Header()[k] = v
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

/* ───────── Slack ───────── */

func TestSlackNotifier_NotifyAlert(t *testing.T) {
	srv, got := capture(t, http.StatusOK, nil, "ok")
	n := NewSlackNotifier(SlackConfig{Enabled: true, WebhookURL: srv.URL, Timeout: time.Second})

	require.NoError(t, n.NotifyAlert(context.Background(), alertResult()))

	var payload SlackWebhookPayload
	require.NoError(t, json.Unmarshal(*got, &payload))
	assert.Equal(t, "NEGATIVE: Infosys shares tumble after guidance cut", payload.Text)
	require.Len(t, payload.Blocks, 2)
	assert.Contains(t, payload.Blocks[0].Text.Text, "📉 NEGATIVE (86% confidence)")
	assert.Contains(t, payload.Blocks[0].Text.Text, "<https://news.example.com/infosys|Infosys shares tumble after guidance cut>")
	assert.Contains(t, payload.Blocks[1].Elements[0].Text, "Economic Times • score -0.86")
	assert.Contains(t, payload.Blocks[1].Elements[0].Text, "similar-news context")
}

func TestSlackLink(t *testing.T) {
	assert.Equal(t, "<https://x.example.com/a%7Cb%3E|M&amp;M &lt;up&gt;>", slackLink("https://x.example.com/a|b>", "M&M <up>"))
	assert.Equal(t, "<https://x.example.com/hdfc-(bank)|HDFC (HDBK)>", slackLink("https://x.example.com/hdfc-(bank)", "HDFC (HDBK)"))
}

func TestSlackNotifier_NotifyDigest(t *testing.T) {
	srv, got := capture(t, http.StatusOK, nil, "ok")
	n := NewSlackNotifier(SlackConfig{WebhookURL: srv.URL})

	require.NoError(t, n.NotifyDigest(context.Background(), digest()))

	var payload SlackWebhookPayload
	require.NoError(t, json.Unmarshal(*got, &payload))
	assert.Equal(t, "Daily Market Sentiment Report - 02 Mar 2026", payload.Text)
	// summary + (divider, section) for each polarity
	assert.Len(t, payload.Blocks, 5)
	assert.Contains(t, payload.Blocks[0].Text.Text, "3 articles")
}

func TestWebhook_ErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		header http.Header
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "rate limited with header",
			status: http.StatusTooManyRequests,
			header: http.Header{"Retry-After": []string{"2"}},
			check: func(t *testing.T, err error) {
				var rl *RateLimitError
				require.True(t, errors.As(err, &rl))
				assert.Equal(t, 2*time.Second, rl.RetryAfter)
			},
		},
		{
			name:   "rate limited with json body",
			status: http.StatusTooManyRequests,
			body:   `{"message": "You are being rate limited.", "retry_after": 0.5}`,
			check: func(t *testing.T, err error) {
				var rl *RateLimitError
				require.True(t, errors.As(err, &rl))
				assert.Equal(t, 500*time.Millisecond, rl.RetryAfter)
			},
		},
		{
			name:   "client error",
			status: http.StatusNotFound,
			body:   "no_team",
			check: func(t *testing.T, err error) {
				var ce *ClientError
				require.True(t, errors.As(err, &ce))
				assert.Equal(t, http.StatusNotFound, ce.StatusCode)
				assert.Contains(t, ce.Error(), "no_team")
			},
		},
		{
			name:   "server error",
			status: http.StatusBadGateway,
			check: func(t *testing.T, err error) {
				var se *ServerError
				require.True(t, errors.As(err, &se))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := capture(t, tt.status, tt.header, tt.body)
			err := NewDiscordNotifier(DiscordConfig{WebhookURL: srv.URL}).NotifyAlert(context.Background(), alertResult())
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestWebhook_RedactsURL(t *testing.T) {
	secret := "http://127.0.0.1:1/services/T000/B000/secret-token"
	err := NewSlackNotifier(SlackConfig{WebhookURL: secret, Timeout: time.Second}).NotifyAlert(context.Background(), alertResult())

	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret-token")
}

func TestWebhook_CancelledContext(t *testing.T) {
	srv, _ := capture(t, http.StatusOK, nil, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewSlackNotifier(SlackConfig{WebhookURL: srv.URL}).NotifyAlert(ctx, alertResult())
	assert.Error(t, err)
}

/* ───────── Discord ───────── */

func TestDiscordNotifier_NotifyAlert(t *testing.T) {
	srv, got := capture(t, http.StatusNoContent, nil, "")
	n := NewDiscordNotifier(DiscordConfig{WebhookURL: srv.URL})

	require.NoError(t, n.NotifyAlert(context.Background(), alertResult()))

	var payload DiscordWebhookPayload
	require.NoError(t, json.Unmarshal(*got, &payload))
	require.Len(t, payload.Embeds, 1)
	e := payload.Embeds[0]
	assert.Equal(t, "Infosys shares tumble after guidance cut", e.Title)
	assert.Equal(t, discordRedColor, e.Color)
	assert.Equal(t, "Economic Times", e.Footer.Text)
	assert.Equal(t, "2026-03-02T09:30:00Z", e.Timestamp)
	assert.Equal(t, "-0.86", e.Fields[0].Value)
}

func TestDiscordNotifier_NotifyDigest(t *testing.T) {
	srv, got := capture(t, http.StatusNoContent, nil, "")

	require.NoError(t, NewDiscordNotifier(DiscordConfig{WebhookURL: srv.URL}).NotifyDigest(context.Background(), digest()))

	var payload DiscordWebhookPayload
	require.NoError(t, json.Unmarshal(*got, &payload))
	e := payload.Embeds[0]
	assert.Equal(t, "Daily Market Sentiment Report - 02 Mar 2026", e.Title)
	assert.Len(t, e.Fields, 5)
	assert.Equal(t, "1 (33.3%)", e.Fields[0].Value)
}

/* ───────── Email ───────── */

func TestEmailNotifier_NotifyDigest(t *testing.T) {
	var (
		gotAddr string
		gotFrom string
		gotTo   []string
		gotMsg  []byte
	)
	n := NewEmailNotifier(EmailConfig{
		Enabled:  true,
		Host:     "smtp.example.com",
		Username: "pulse@example.com",
		Password: "app-password",
		To:       []string{"trader@example.com"},
	})
	n.sendMail = func(_ context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	require.NoError(t, n.NotifyDigest(context.Background(), digest()))

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "pulse@example.com", gotFrom)
	assert.Equal(t, []string{"trader@example.com"}, gotTo)

	mr, err := mail.CreateReader(bytes.NewReader(gotMsg))
	require.NoError(t, err)
	subject, err := mr.Header.Subject()
	require.NoError(t, err)
	assert.Equal(t, "Daily Market Sentiment Report - 02 Mar 2026", subject)

	parts := map[string]string{}
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		if h, ok := p.Header.(*mail.InlineHeader); ok {
			ct, _, _ := h.ContentType()
			body, _ := io.ReadAll(p.Body)
			parts[ct] = string(body)
		}
	}
	require.Contains(t, parts, "text/plain")
	require.Contains(t, parts, "text/html")
	assert.Contains(t, parts["text/plain"], "| 📈 Positive | 1 | 33.3% |")
	assert.Contains(t, parts["text/html"], "<table>")
}

func TestEmailNotifier_Errors(t *testing.T) {
	err := NewEmailNotifier(EmailConfig{Host: "smtp.example.com"}).NotifyDigest(context.Background(), digest())
	assert.ErrorIs(t, err, ErrEmailNotConfigured)

	n := NewEmailNotifier(EmailConfig{Host: "h", From: "a@example.com", To: []string{"b@example.com"}})
	n.sendMail = func(context.Context, string, smtp.Auth, string, []string, []byte) error {
		return errors.New("535 authentication failed")
	}
	err = n.NotifyDigest(context.Background(), digest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp send")
}

// fakeSMTP accepts one connection and speaks just enough SMTP for a plain
// unauthenticated send. The received DATA is sent on the returned channel.
func fakeSMTP(t *testing.T) (string, <-chan string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	data := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer func() { _ = conn.Close() }()
		r := bufio.NewReader(conn)
		reply := func(s string) { _, _ = conn.Write([]byte(s + "\r\n")) }

		reply("220 localhost ESMTP")
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			cmd := strings.ToUpper(strings.TrimSpace(line))
			switch {
			case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
				reply("250 localhost")
			case strings.HasPrefix(cmd, "DATA"):
				reply("354 go ahead")
				var body strings.Builder
				for {
					l, err := r.ReadString('\n')
					if err != nil {
						return
					}
					if l == ".\r\n" {
						break
					}
					body.WriteString(l)
				}
				data <- body.String()
				reply("250 queued")
			case strings.HasPrefix(cmd, "QUIT"):
				reply("221 bye")
				return
			default:
				reply("250 OK")
			}
		}
	}()
	return ln.Addr().String(), data
}

func TestSendMailContext_Delivers(t *testing.T) {
	addr, data := fakeSMTP(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := sendMailContext(ctx, addr, nil, "pulse@example.com", []string{"trader@example.com"}, []byte("Subject: digest\r\n\r\nNifty up\r\n"))
	require.NoError(t, err)

	select {
	case got := <-data:
		assert.Contains(t, got, "Nifty up")
	case <-time.After(2 * time.Second):
		t.Fatal("server received no DATA")
	}
}

func TestSendMailContext_StalledRelayHonoursDeadline(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = ln.Close() }()
	go func() {
		// Accept and never send the greeting.
		conn, err := ln.Accept()
		if err == nil {
			defer func() { _ = conn.Close() }()
			time.Sleep(5 * time.Second)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	err = sendMailContext(ctx, ln.Addr().String(), nil, "a@example.com", []string{"b@example.com"}, []byte("x"))

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

/* ───────── Desktop ───────── */

func TestDesktopNotifier_NotifyAlert(t *testing.T) {
	var gotTitle, gotMsg string
	n := &DesktopNotifier{notify: func(title, message string) error {
		gotTitle, gotMsg = title, message
		return nil
	}}

	require.NoError(t, n.NotifyAlert(context.Background(), alertResult()))
	assert.Equal(t, "📉 NEGATIVE (86% confidence)", gotTitle)
	assert.Equal(t, "Infosys shares tumble after guidance cut\nEconomic Times", gotMsg)

	n.notify = func(string, string) error { return errors.New("no dbus") }
	assert.ErrorContains(t, n.NotifyAlert(context.Background(), alertResult()), "no dbus")
}

/* ───────── Rendering ───────── */

func TestRenderDigestMarkdown(t *testing.T) {
	md := RenderDigestMarkdown(digest())

	assert.True(t, strings.HasPrefix(md, "# Daily Market Sentiment Report - 02 Mar 2026\n"))
	assert.Contains(t, md, "**3 articles analyzed.**")
	assert.Contains(t, md, `1. [Sensex hits record \[high\]](https://x.example.com/1) (Unknown, score +0.90)`)
	assert.Contains(t, md, "1. [Rupee slips](https://x.example.com/2) (Mint, score -0.60)")
}

func TestRenderDigestMarkdown_EmptySections(t *testing.T) {
	d := entity.NewDailyDigest(time.Now(), []entity.SentimentResult{
		{Article: entity.Article{Title: "flat"}, Label: entity.LabelNeutral},
	}, 5)

	assert.Equal(t, 2, strings.Count(RenderDigestMarkdown(d), "_None today._"))
}

func TestRenderDigestMarkdown_URLWithParentheses(t *testing.T) {
	d := entity.NewDailyDigest(time.Now(), []entity.SentimentResult{{
		Article:    entity.Article{Title: "HDFC Bank (HDBK) rallies", URL: "https://x.example.com/hdfc-(bank) q3", Source: "Mint"},
		Score:      0.8,
		Label:      entity.LabelPositive,
		Confidence: 0.8,
	}}, 5)

	md := RenderDigestMarkdown(d)
	assert.Contains(t, md, "[HDFC Bank (HDBK) rallies](https://x.example.com/hdfc-%28bank%29%20q3)")

	out, err := RenderDigestHTML(d)
	require.NoError(t, err)
	assert.Contains(t, out, `href="https://x.example.com/hdfc-%28bank%29%20q3"`)
}

func TestRenderDigestHTML(t *testing.T) {
	out, err := RenderDigestHTML(digest())

	require.NoError(t, err)
	assert.Contains(t, out, "<h1>Daily Market Sentiment Report - 02 Mar 2026</h1>")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, `<a href="https://x.example.com/2">Rupee slips</a>`)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "नमस्...", truncate("नमस्ते दुनिया", 7))
	assert.Equal(t, 150, len([]rune(truncate(strings.Repeat("a", 400), 150))))
}

func TestNoOp(t *testing.T) {
	var n NoOp
	assert.NoError(t, n.NotifyAlert(context.Background(), alertResult()))
	assert.NoError(t, n.NotifyDigest(context.Background(), digest()))
}
