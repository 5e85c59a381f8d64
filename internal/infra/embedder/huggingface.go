package embedder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sony/gobreaker"

	"market-pulse/internal/infra/hfinference"
	"market-pulse/internal/resilience/circuitbreaker"
)

const (
	// DefaultHuggingFaceModel produces 384-dimensional sentence embeddings.
	DefaultHuggingFaceModel     = "sentence-transformers/all-MiniLM-L6-v2"
	DefaultHuggingFaceDimension = 384
)

// HuggingFace embeds text with a feature-extraction model.
type HuggingFace struct {
	api            *hfinference.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	dimension      int
}

// NewHuggingFace creates the embedder. Empty model and non-positive dimension
// select the MiniLM defaults.
func NewHuggingFace(client *http.Client, baseURL, model, apiKey string, dimension int) *HuggingFace {
	if model == "" {
		model = DefaultHuggingFaceModel
	}
	if dimension <= 0 {
		dimension = DefaultHuggingFaceDimension
	}
	cfg := circuitbreaker.HuggingFaceAPIConfig()
	cfg.Name = "huggingface-embeddings"
	return &HuggingFace{
		api:            hfinference.New(client, baseURL, model, apiKey),
		circuitBreaker: circuitbreaker.New(cfg),
		dimension:      dimension,
	}
}

func (h *HuggingFace) Name() string   { return TypeHuggingFace }
func (h *HuggingFace) Dimension() int { return h.dimension }

// Embed returns a sentence vector. Token-level output is mean-pooled.
func (h *HuggingFace) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	vec, err := circuitbreaker.Run(h.circuitBreaker, func() ([]float32, error) {
		raw, err := h.api.Infer(ctx, text)
		if err != nil {
			return nil, err
		}
		return decodeFeatures(raw)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			slog.Warn("huggingface embeddings circuit breaker open, request rejected",
				slog.String("service", "huggingface-embeddings"),
				slog.String("state", h.circuitBreaker.State().String()))
		}
		return nil, fmt.Errorf("Embed: %w", err)
	}
	if len(vec) != h.dimension {
		return nil, fmt.Errorf("Embed: expected %d dimensions, got %d", h.dimension, len(vec))
	}
	return vec, nil
}

// decodeFeatures accepts [f...] (pooled) and [[f...]...] (per token).
func decodeFeatures(raw []byte) ([]float32, error) {
	if flat, err := hfinference.Decode[[]float32](raw); err == nil {
		if len(flat) == 0 {
			return nil, fmt.Errorf("%w: empty vector", hfinference.ErrDecode)
		}
		return flat, nil
	}

	tokens, err := hfinference.Decode[[][]float32](raw)
	if err != nil {
		return nil, err
	}
	return meanPool(tokens)
}

func meanPool(tokens [][]float32) ([]float32, error) {
	if len(tokens) == 0 || len(tokens[0]) == 0 {
		return nil, fmt.Errorf("%w: empty token matrix", hfinference.ErrDecode)
	}
	out := make([]float32, len(tokens[0]))
	for _, tok := range tokens {
		if len(tok) != len(out) {
			return nil, fmt.Errorf("%w: ragged token matrix", hfinference.ErrDecode)
		}
		for i, v := range tok {
			out[i] += v
		}
	}
	n := float32(len(tokens))
	for i := range out {
		out[i] /= n
	}
	return out, nil
}
