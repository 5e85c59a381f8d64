// Package hfinference is a minimal client for the Hugging Face Inference API,
// shared by the FinBERT classifier and the feature-extraction embedder.
package hfinference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// DefaultBaseURL is the inference router; the model id is appended.
const DefaultBaseURL = "https://router.huggingface.co/hf-inference/models"

const maxResponseSize = 4 << 20

// ErrDecode indicates a 200 response whose body did not match the expected shape.
var ErrDecode = errors.New("unexpected inference response")

// APIError is a non-200 reply. Status 503 usually means the model is loading.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("huggingface api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("huggingface api error: status %d: %s", e.StatusCode, e.Message)
}

// Client posts to one model endpoint.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

// New creates a client for model. An empty baseURL selects DefaultBaseURL.
func New(httpClient *http.Client, baseURL, model, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		endpoint: strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(model, "/"),
		apiKey:   apiKey,
		http:     httpClient,
	}
}

// Endpoint returns the full model URL.
func (c *Client) Endpoint() string { return c.endpoint }

// Infer sends {"inputs": inputs} and returns the raw JSON body.
func (c *Client) Infer(ctx context.Context, inputs any) (json.RawMessage, error) {
	body, err := json.Marshal(map[string]any{"inputs": inputs})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("huggingface request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var payload struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(data, &payload)
		return nil, &APIError{StatusCode: resp.StatusCode, Message: payload.Error}
	}
	return data, nil
}

// Decode unmarshals raw into T, wrapping failures with ErrDecode.
func Decode[T any](raw json.RawMessage) (T, error) {
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return out, nil
}
