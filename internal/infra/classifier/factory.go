package classifier

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"market-pulse/internal/usecase/sentiment"
)

// Classifier types accepted by CLASSIFIER_TYPE.
const (
	TypeHuggingFace = "huggingface"
	TypeOpenAI      = "openai"
	TypeClaude      = "claude"
	TypeLexicon     = "lexicon"
)

// Config selects and configures a classifier.
type Config struct {
	Type string

	HuggingFaceAPIKey string
	HuggingFaceURL    string
	Model             string

	OpenAIAPIKey string
	OpenAIModel  string
	OpenAIURL    string

	AnthropicAPIKey string
	ClaudeModel     string
	ClaudeURL       string

	Timeout    time.Duration
	HTTPClient *http.Client
}

// New builds the classifier named by cfg.Type. An empty type selects
// huggingface. Remote classifiers without an API key return ErrMissingAPIKey.
func New(cfg Config) (sentiment.Classifier, error) {
	typ := strings.ToLower(strings.TrimSpace(cfg.Type))
	if typ == "" {
		typ = TypeHuggingFace
	}

	switch typ {
	case TypeHuggingFace:
		if cfg.HuggingFaceAPIKey == "" {
			return nil, fmt.Errorf("%w: HUGGINGFACE_API_KEY", ErrMissingAPIKey)
		}
		client := cfg.HTTPClient
		if client == nil {
			client = &http.Client{Timeout: 30 * time.Second}
		}
		return NewHuggingFace(client, cfg.HuggingFaceURL, cfg.Model, cfg.HuggingFaceAPIKey), nil

	case TypeOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("%w: OPENAI_API_KEY", ErrMissingAPIKey)
		}
		return NewOpenAI(OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIURL,
			Timeout: cfg.Timeout,
		}), nil

	case TypeClaude:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("%w: ANTHROPIC_API_KEY", ErrMissingAPIKey)
		}
		return NewClaude(ClaudeConfig{
			APIKey:  cfg.AnthropicAPIKey,
			Model:   cfg.ClaudeModel,
			BaseURL: cfg.ClaudeURL,
			Timeout: cfg.Timeout,
		}), nil

	case TypeLexicon:
		return NewLexicon(), nil
	}

	return nil, fmt.Errorf("%w: %q (supported: huggingface, openai, claude, lexicon)", ErrUnknownType, cfg.Type)
}
