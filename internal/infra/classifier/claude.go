package classifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sony/gobreaker"

	"market-pulse/internal/resilience/circuitbreaker"
	"market-pulse/internal/usecase/sentiment"
)

// ClaudeConfig holds configuration for the Claude classifier.
type ClaudeConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Claude classifies text using Anthropic's Messages API.
type Claude struct {
	client         anthropic.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	model          string
	timeout        time.Duration
}

// NewClaude creates the classifier.
func NewClaude(cfg ClaudeConfig) *Claude {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Model == "" {
		cfg.Model = string(anthropic.ModelClaudeSonnet4_5_20250929)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Claude{
		client:         anthropic.NewClient(opts...),
		circuitBreaker: circuitbreaker.New(circuitbreaker.ClaudeAPIConfig()),
		model:          cfg.Model,
		timeout:        cfg.Timeout,
	}
}

func (c *Claude) Name() string { return "claude" }

func (c *Claude) Classify(ctx context.Context, text string) (sentiment.Prediction, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	pred, err := circuitbreaker.Run(c.circuitBreaker, func() (sentiment.Prediction, error) {
		return c.doClassify(ctx, text)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			slog.Warn("claude api circuit breaker open, request rejected",
				slog.String("service", "claude-api"),
				slog.String("state", c.circuitBreaker.State().String()))
			return sentiment.Prediction{}, fmt.Errorf("claude api unavailable: circuit breaker open")
		}
		return sentiment.Prediction{}, err
	}
	return pred, nil
}

func (c *Claude) doClassify(ctx context.Context, text string) (sentiment.Prediction, error) {
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 64,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	})
	if err != nil {
		return sentiment.Prediction{}, fmt.Errorf("claude api error: %w", err)
	}

	var reply strings.Builder
	for _, block := range message.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			reply.WriteString(tb.Text)
		}
	}
	if reply.Len() == 0 {
		return sentiment.Prediction{}, fmt.Errorf("claude: %w", ErrEmptyResponse)
	}
	return parsePrediction(reply.String())
}
