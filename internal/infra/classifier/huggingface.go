package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"market-pulse/internal/infra/hfinference"
	"market-pulse/internal/resilience/circuitbreaker"
	"market-pulse/internal/usecase/sentiment"
)

// DefaultSentimentModel is FinBERT, trained on financial news.
const DefaultSentimentModel = "ProsusAI/finbert"

type hfLabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// HuggingFace classifies text with a text-classification model served by
// the Hugging Face Inference API.
type HuggingFace struct {
	api            *hfinference.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	timeout        time.Duration
}

// NewHuggingFace creates the classifier. Empty baseURL and model select the defaults.
func NewHuggingFace(client *http.Client, baseURL, model, apiKey string) *HuggingFace {
	if model == "" {
		model = DefaultSentimentModel
	}
	return &HuggingFace{
		api:            hfinference.New(client, baseURL, model, apiKey),
		circuitBreaker: circuitbreaker.New(circuitbreaker.HuggingFaceAPIConfig()),
		timeout:        30 * time.Second,
	}
}

func (h *HuggingFace) Name() string { return "huggingface" }

// Classify returns the highest-scoring label.
func (h *HuggingFace) Classify(ctx context.Context, text string) (sentiment.Prediction, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	pred, err := circuitbreaker.Run(h.circuitBreaker, func() (sentiment.Prediction, error) {
		return h.doClassify(ctx, text)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			slog.Warn("huggingface api circuit breaker open, request rejected",
				slog.String("service", "huggingface-api"),
				slog.String("state", h.circuitBreaker.State().String()))
			return sentiment.Prediction{}, fmt.Errorf("huggingface api unavailable: circuit breaker open")
		}
		return sentiment.Prediction{}, err
	}
	return pred, nil
}

func (h *HuggingFace) doClassify(ctx context.Context, text string) (sentiment.Prediction, error) {
	raw, err := h.api.Infer(ctx, text)
	if err != nil {
		return sentiment.Prediction{}, err
	}
	candidates, err := parseLabelScores(raw)
	if err != nil {
		return sentiment.Prediction{}, err
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Score > best.Score {
			best = c
		}
	}
	return sentiment.Prediction{Label: strings.ToLower(best.Label), Score: best.Score}, nil
}

// parseLabelScores accepts both [[{label, score}...]] (batched) and
// [{label, score}...] response shapes.
func parseLabelScores(raw json.RawMessage) ([]hfLabelScore, error) {
	var nested [][]hfLabelScore
	if err := json.Unmarshal(raw, &nested); err == nil {
		if len(nested) == 0 || len(nested[0]) == 0 {
			return nil, ErrEmptyResponse
		}
		return nested[0], nil
	}

	var flat []hfLabelScore
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	if len(flat) == 0 {
		return nil, ErrEmptyResponse
	}
	return flat, nil
}
