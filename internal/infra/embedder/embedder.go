// Package embedder turns article text into dense vectors for the
// similarity index. Two providers are available, selected by EMBEDDING_TYPE.
package embedder

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Embedder types accepted by EMBEDDING_TYPE.
const (
	TypeHuggingFace = "huggingface"
	TypeOpenAI      = "openai"
)

var (
	// ErrEmptyText is returned for blank input.
	ErrEmptyText = errors.New("embedder: empty text")

	// ErrUnknownType indicates an unsupported EMBEDDING_TYPE.
	ErrUnknownType = errors.New("unknown embedding type")

	// ErrMissingAPIKey indicates the provider was selected without credentials.
	ErrMissingAPIKey = errors.New("embedding API key is required")
)

// Config selects and configures an embedder.
type Config struct {
	Type      string
	Model     string
	Dimension int
	APIKey    string
	BaseURL   string

	HTTPClient *http.Client
}

// Embedder is the common surface of both providers.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(ctx context.Context, text string) ([]float32, error)
}

// New builds the embedder named by cfg.Type. An empty type selects huggingface.
func New(cfg Config) (Embedder, error) {
	typ := strings.ToLower(strings.TrimSpace(cfg.Type))
	if typ == "" {
		typ = TypeHuggingFace
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingAPIKey, typ)
	}

	switch typ {
	case TypeHuggingFace:
		client := cfg.HTTPClient
		if client == nil {
			client = &http.Client{Timeout: 30 * time.Second}
		}
		return NewHuggingFace(client, cfg.BaseURL, cfg.Model, cfg.APIKey, cfg.Dimension), nil
	case TypeOpenAI:
		return NewOpenAI(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Dimension), nil
	}
	return nil, fmt.Errorf("%w: %q (supported: huggingface, openai)", ErrUnknownType, cfg.Type)
}
