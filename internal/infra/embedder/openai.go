package embedder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"market-pulse/internal/resilience/circuitbreaker"
)

// DefaultOpenAIDimension is the native size of text-embedding-3-small.
const DefaultOpenAIDimension = 1536

// OpenAI embeds text with the embeddings endpoint.
type OpenAI struct {
	client         *openai.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	model          openai.EmbeddingModel
	dimension      int
}

// NewOpenAI creates the embedder. A dimension below the model's native size
// is requested from the API as a shortened embedding.
func NewOpenAI(apiKey, baseURL, model string, dimension int) *OpenAI {
	clientCfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientCfg.BaseURL = baseURL
	}
	if model == "" {
		model = string(openai.SmallEmbedding3)
	}
	if dimension <= 0 {
		dimension = DefaultOpenAIDimension
	}
	cfg := circuitbreaker.OpenAIAPIConfig()
	cfg.Name = "openai-embeddings"
	return &OpenAI{
		client:         openai.NewClientWithConfig(clientCfg),
		circuitBreaker: circuitbreaker.New(cfg),
		model:          openai.EmbeddingModel(model),
		dimension:      dimension,
	}
}

func (o *OpenAI) Name() string   { return TypeOpenAI }
func (o *OpenAI) Dimension() int { return o.dimension }

func (o *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	vec, err := circuitbreaker.Run(o.circuitBreaker, func() ([]float32, error) {
		req := openai.EmbeddingRequest{
			Input: []string{text},
			Model: o.model,
		}
		if o.dimension != DefaultOpenAIDimension {
			req.Dimensions = o.dimension
		}
		resp, err := o.client.CreateEmbeddings(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("openai api error: %w", err)
		}
		if len(resp.Data) == 0 {
			return nil, errors.New("openai: empty embedding response")
		}
		return resp.Data[0].Embedding, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			slog.Warn("openai embeddings circuit breaker open, request rejected",
				slog.String("service", "openai-embeddings"),
				slog.String("state", o.circuitBreaker.State().String()))
		}
		return nil, fmt.Errorf("Embed: %w", err)
	}
	if len(vec) != o.dimension {
		return nil, fmt.Errorf("Embed: expected %d dimensions, got %d", o.dimension, len(vec))
	}
	return vec, nil
}
