package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"market-pulse/internal/config"
	"market-pulse/internal/domain/entity"
	"market-pulse/internal/infra/classifier"
	"market-pulse/internal/usecase/fetch"
	"market-pulse/internal/usecase/sentiment"
)

func testConfig(t *testing.T) *config.AppConfig {
	t.Helper()
	return &config.AppConfig{
		NewsAPIKey:              "test-key",
		NewsAPIURL:              "http://127.0.0.1:1",
		Fetch:                   fetch.DefaultConfig(),
		Classifier:              classifier.Config{Type: classifier.TypeLexicon},
		Sentiment:               sentiment.DefaultConfig(),
		DatabasePath:            filepath.Join(t.TempDir(), "cache", "pulse.db"),
		HighConfidenceThreshold: 0.8,
		HTTPTimeout:             time.Second,
	}
}

func TestBuild(t *testing.T) {
	a, err := Build(context.Background(), testConfig(t), time.UTC)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, a.Close()) })

	assert.NotNil(t, a.Pipeline)
	assert.False(t, a.Vectors.Enabled(), "vector store is off unless enabled")
	assert.False(t, a.Analyzer.ContextEnabled())
	assert.Empty(t, a.Notify.GetChannelHealth())
	assert.Equal(t, time.UTC, a.Reports.Location())

	n, err := a.Cache.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBuild_SelfTestWithLexicon(t *testing.T) {
	a, err := Build(context.Background(), testConfig(t), time.UTC)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	r, err := a.Pipeline.SelfTest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, entity.LabelPositive, r.Label)
}

func TestBuild_InvalidClassifier(t *testing.T) {
	cfg := testConfig(t)
	cfg.Classifier = classifier.Config{Type: "crystal-ball"}

	_, err := Build(context.Background(), cfg, time.UTC)
	assert.ErrorIs(t, err, classifier.ErrUnknownType)
}

func TestBuild_BadDatabasePath(t *testing.T) {
	cfg := testConfig(t)
	cfg.DatabasePath = ""

	_, err := Build(context.Background(), cfg, time.UTC)
	assert.Error(t, err)
}

func TestNewLimiter(t *testing.T) {
	tests := []struct {
		name     string
		interval time.Duration
		burst    int
		want     rate.Limit
	}{
		{"unlimited", 0, 1, rate.Inf},
		{"one per second", time.Second, 1, rate.Limit(1)},
		{"two per second", 500 * time.Millisecond, 3, rate.Limit(2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newLimiter(tt.interval, tt.burst)
			assert.Equal(t, tt.want, l.Limit())
			assert.Equal(t, tt.burst, l.Burst())
		})
	}
}
