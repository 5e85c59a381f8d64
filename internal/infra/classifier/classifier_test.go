package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-pulse/internal/infra/hfinference"
	"market-pulse/internal/usecase/sentiment"
)

/* ───────── Hugging Face ───────── */

func TestHuggingFace_Classify(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantLabel string
		wantScore float64
	}{
		{
			name:      "nested response",
			body:      `[[{"label":"positive","score":0.91},{"label":"negative","score":0.05},{"label":"neutral","score":0.04}]]`,
			wantLabel: "positive",
			wantScore: 0.91,
		},
		{
			name:      "flat response, top score not first",
			body:      `[{"label":"neutral","score":0.2},{"label":"Negative","score":0.7},{"label":"positive","score":0.1}]`,
			wantLabel: "negative",
			wantScore: 0.7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath, gotAuth, gotInputs string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				gotAuth = r.Header.Get("Authorization")
				var req struct {
					Inputs string `json:"inputs"`
				}
				_ = json.NewDecoder(r.Body).Decode(&req)
				gotInputs = req.Inputs
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			hf := NewHuggingFace(srv.Client(), srv.URL, "", "hf_secret")
			pred, err := hf.Classify(context.Background(), "Sensex jumps 500 points")

			require.NoError(t, err)
			assert.Equal(t, tt.wantLabel, pred.Label)
			assert.InDelta(t, tt.wantScore, pred.Score, 1e-9)
			assert.Equal(t, "/"+DefaultSentimentModel, gotPath)
			assert.Equal(t, "Bearer hf_secret", gotAuth)
			assert.Equal(t, "Sensex jumps 500 points", gotInputs)
		})
	}
}

func TestHuggingFace_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "empty nested", status: http.StatusOK, body: `[[]]`, wantErr: ErrEmptyResponse},
		{name: "empty flat", status: http.StatusOK, body: `[]`, wantErr: ErrEmptyResponse},
		{name: "object instead of list", status: http.StatusOK, body: `{"label":"positive"}`, wantErr: ErrUnexpectedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := NewHuggingFace(srv.Client(), srv.URL, "m", "k").Classify(context.Background(), "x")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestHuggingFace_ModelLoading(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"error":"Model ProsusAI/finbert is currently loading"}`)
	}))
	defer srv.Close()

	_, err := NewHuggingFace(srv.Client(), srv.URL, "", "k").Classify(context.Background(), "x")

	var apiErr *hfinference.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "loading")
}

/* ───────── OpenAI ───────── */

func TestOpenAI_Classify(t *testing.T) {
	var gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotModel = req.Model
		if assert.Len(t, req.Messages, 2) {
			assert.Equal(t, "Rupee slumps to record low", req.Messages[1].Content)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"label\": \"Negative\", \"score\": 0.82}"}, "finish_reason": "stop"}]
		}`)
	}))
	defer srv.Close()

	o := NewOpenAI(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL})
	pred, err := o.Classify(context.Background(), "Rupee slumps to record low")

	require.NoError(t, err)
	assert.Equal(t, sentiment.Prediction{Label: "negative", Score: 0.82}, pred)
	assert.Equal(t, "gpt-4o-mini", gotModel)
	assert.Equal(t, "openai", o.Name())
}

func TestOpenAI_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
		wantErr error
	}{
		{
			name:    "unauthorized",
			status:  http.StatusUnauthorized,
			body:    `{"error": {"message": "Incorrect API key provided", "type": "invalid_request_error"}}`,
			wantMsg: "openai api error",
		},
		{
			name:    "no choices",
			status:  http.StatusOK,
			body:    `{"id": "x", "choices": []}`,
			wantErr: ErrEmptyResponse,
		},
		{
			name:    "prose reply",
			status:  http.StatusOK,
			body:    `{"id": "x", "choices": [{"index": 0, "message": {"role": "assistant", "content": "I think it is positive"}}]}`,
			wantErr: ErrUnexpectedResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := NewOpenAI(OpenAIConfig{APIKey: "k", BaseURL: srv.URL}).Classify(context.Background(), "x")
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

/* ───────── Claude ───────── */

func TestClaude_Classify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-ant-test", r.Header.Get("X-Api-Key"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-sonnet-4-5-20250929",
			"content": [{"type": "text", "text": "`+"```json\\n{\\\"label\\\": \\\"positive\\\", \\\"score\\\": 0.9}\\n```"+`"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 20, "output_tokens": 12}
		}`)
	}))
	defer srv.Close()

	c := NewClaude(ClaudeConfig{APIKey: "sk-ant-test", BaseURL: srv.URL})
	pred, err := c.Classify(context.Background(), "TCS wins $2bn deal")

	require.NoError(t, err)
	assert.Equal(t, sentiment.Prediction{Label: "positive", Score: 0.9}, pred)
}

func TestClaude_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"type": "error", "error": {"type": "api_error", "message": "boom"}}`)
	}))
	defer srv.Close()

	_, err := NewClaude(ClaudeConfig{APIKey: "k", BaseURL: srv.URL}).Classify(context.Background(), "x")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "claude api error")
}

/* ───────── parsePrediction ───────── */

func TestParsePrediction(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		want    sentiment.Prediction
		wantErr bool
	}{
		{name: "bare json", reply: `{"label":"neutral","score":0.55}`, want: sentiment.Prediction{Label: "neutral", Score: 0.55}},
		{name: "wrapped in prose", reply: "Sure: {\"label\": \"POSITIVE\", \"score\": 1} done", want: sentiment.Prediction{Label: "positive", Score: 1}},
		{name: "missing score", reply: `{"label":"positive"}`, wantErr: true},
		{name: "missing label", reply: `{"score":0.4}`, wantErr: true},
		{name: "no object", reply: "negative", wantErr: true},
		{name: "broken json", reply: `{"label": }`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePrediction(tt.reply)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnexpectedResponse)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

/* ───────── Lexicon ───────── */

func TestLexicon_Classify(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantLabel string
		wantConf  float64
	}{
		{
			name:      "self-test headline",
			text:      "RELIANCE stock surges 10% on strong earnings. Company reports record quarterly profits",
			wantLabel: "positive",
			wantConf:  0.65,
		},
		{
			name:      "bearish",
			text:      "Adani shares plunge amid fraud investigation",
			wantLabel: "negative",
			wantConf:  0.65,
		},
		{
			name:      "no keywords",
			text:      "RBI governor to address conference on Monday",
			wantLabel: "neutral",
			wantConf:  0.1,
		},
		{
			name:      "balanced",
			text:      "Nifty gain offset by drop in midcaps",
			wantLabel: "neutral",
			wantConf:  0.5,
		},
		{
			name:      "against is not gain",
			text:      "Rupee weakens against dollar",
			wantLabel: "negative",
			wantConf:  0.35,
		},
		{
			name:      "inflected bearish word",
			text:      "Sensex slides against dollar",
			wantLabel: "negative",
			wantConf:  0.35,
		},
		{
			name:      "insurgency is not surge",
			text:      "Insurgency fears weigh on border districts",
			wantLabel: "neutral",
			wantConf:  0.1,
		},
		{
			name:      "multi-word keyword",
			text:      "Nifty closes at an all-time high",
			wantLabel: "positive",
			wantConf:  0.35,
		},
	}

	lex := NewLexicon()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pred, err := lex.Classify(context.Background(), tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLabel, pred.Label)
			assert.InDelta(t, tt.wantConf, pred.Score, 1e-9)
		})
	}
}

func TestLexicon_ConfidenceCap(t *testing.T) {
	text := strings.Join([]string{"bullish", "rally", "surge", "upgrade", "strong", "recovery", "breakout"}, " ")
	pred, err := NewLexicon().Classify(context.Background(), text)

	require.NoError(t, err)
	assert.Equal(t, "positive", pred.Label)
	assert.InDelta(t, 0.85, pred.Score, 1e-9)
}

/* ───────── New ───────── */

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		wantName string
		wantErr  error
	}{
		{name: "default is huggingface", cfg: Config{HuggingFaceAPIKey: "k"}, wantName: "huggingface"},
		{name: "huggingface without key", cfg: Config{Type: "huggingface"}, wantErr: ErrMissingAPIKey},
		{name: "openai", cfg: Config{Type: "OpenAI", OpenAIAPIKey: "k"}, wantName: "openai"},
		{name: "openai without key", cfg: Config{Type: "openai"}, wantErr: ErrMissingAPIKey},
		{name: "claude", cfg: Config{Type: "claude", AnthropicAPIKey: "k"}, wantName: "claude"},
		{name: "claude without key", cfg: Config{Type: "claude"}, wantErr: ErrMissingAPIKey},
		{name: "lexicon needs no key", cfg: Config{Type: " lexicon "}, wantName: "lexicon"},
		{name: "unknown", cfg: Config{Type: "vader"}, wantErr: ErrUnknownType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.cfg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, c)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, c.Name())
		})
	}
}
