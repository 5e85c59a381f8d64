package hfinference_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-pulse/internal/infra/hfinference"
)

func TestClient_Infer(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)
		_, _ = w.Write([]byte(`[1, 2, 3]`))
	}))
	defer server.Close()

	c := hfinference.New(server.Client(), server.URL+"/models/", "org/model", "hf_token")
	raw, err := c.Infer(context.Background(), "hello")
	require.NoError(t, err)

	got, err := hfinference.Decode[[]int](raw)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, got)
	assert.Equal(t, "/models/org/model", gotPath)
	assert.Equal(t, "Bearer hf_token", gotAuth)
	assert.Equal(t, "hello", gotBody["inputs"])
}

func TestClient_Infer_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"Model ProsusAI/finbert is currently loading","estimated_time":20}`))
	}))
	defer server.Close()

	c := hfinference.New(server.Client(), server.URL, "ProsusAI/finbert", "")
	_, err := c.Infer(context.Background(), "x")

	var apiErr *hfinference.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Contains(t, apiErr.Error(), "currently loading")
}

func TestDecode_Error(t *testing.T) {
	_, err := hfinference.Decode[[]float32](json.RawMessage(`{"not":"array"}`))
	assert.ErrorIs(t, err, hfinference.ErrDecode)
}

func TestNew_DefaultBaseURL(t *testing.T) {
	c := hfinference.New(http.DefaultClient, "", "ProsusAI/finbert", "")
	assert.Equal(t, "https://router.huggingface.co/hf-inference/models/ProsusAI/finbert", c.Endpoint())
}
