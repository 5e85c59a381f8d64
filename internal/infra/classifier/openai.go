package classifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"market-pulse/internal/resilience/circuitbreaker"
	"market-pulse/internal/usecase/sentiment"
)

// OpenAIConfig holds configuration for the OpenAI classifier.
type OpenAIConfig struct {
	APIKey string
	// Model defaults to gpt-4o-mini.
	Model string
	// BaseURL overrides the API endpoint (tests, proxies, Azure-compatible gateways).
	BaseURL string
	Timeout time.Duration
}

// OpenAI classifies text with a chat completion constrained to JSON output.
type OpenAI struct {
	client         *openai.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	model          string
	timeout        time.Duration
}

// NewOpenAI creates the classifier.
func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &OpenAI{
		client:         openai.NewClientWithConfig(clientCfg),
		circuitBreaker: circuitbreaker.New(circuitbreaker.OpenAIAPIConfig()),
		model:          cfg.Model,
		timeout:        cfg.Timeout,
	}
}

func (o *OpenAI) Name() string { return "openai" }

// Classify sends text to the chat model and parses its {label, score} reply.
func (o *OpenAI) Classify(ctx context.Context, text string) (sentiment.Prediction, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	pred, err := circuitbreaker.Run(o.circuitBreaker, func() (sentiment.Prediction, error) {
		return o.doClassify(ctx, text)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			slog.Warn("openai api circuit breaker open, request rejected",
				slog.String("service", "openai-api"),
				slog.String("state", o.circuitBreaker.State().String()))
			return sentiment.Prediction{}, fmt.Errorf("openai api unavailable: circuit breaker open")
		}
		return sentiment.Prediction{}, err
	}
	return pred, nil
}

func (o *OpenAI) doClassify(ctx context.Context, text string) (sentiment.Prediction, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: 0,
		MaxTokens:   64,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		return sentiment.Prediction{}, fmt.Errorf("openai api error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return sentiment.Prediction{}, fmt.Errorf("openai: %w", ErrEmptyResponse)
	}
	return parsePrediction(resp.Choices[0].Message.Content)
}
