package entity

import (
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVectorID(t *testing.T) {
	id := VectorID("https://example.com/news/1")

	assert.Regexp(t, regexp.MustCompile(`^article_[0-9a-f]{16}$`), id)
	assert.Equal(t, id, VectorID("https://example.com/news/1"))
	assert.NotEqual(t, id, VectorID("https://example.com/news/2"))
}

func TestNewArticleVector(t *testing.T) {
	r := &SentimentResult{
		Article:    Article{Title: "TCS wins deal", URL: "https://example.com/tcs", Source: "ET"},
		Score:      0.7,
		Label:      LabelPositive,
		Confidence: 0.7,
	}

	v := NewArticleVector(r, []float32{0.1, 0.2, 0.3})

	assert.Equal(t, VectorID("https://example.com/tcs"), v.ID)
	assert.Equal(t, "TCS wins deal", v.Title)
	assert.Equal(t, LabelPositive, v.SentimentLabel)
	assert.Equal(t, 0.7, v.SentimentScore)
	assert.Equal(t, "ET", v.Source)
}

func TestArticleVector_Validate(t *testing.T) {
	tests := []struct {
		name      string
		vector    ArticleVector
		dimension int
		wantErr   error
	}{
		{name: "valid", vector: ArticleVector{ID: "article_x", Embedding: []float32{1, 2, 3}}, dimension: 3},
		{name: "dimension unchecked", vector: ArticleVector{ID: "article_x", Embedding: []float32{1}}, dimension: 0},
		{name: "missing id", vector: ArticleVector{Embedding: []float32{1}}, wantErr: ErrValidationFailed},
		{name: "empty embedding", vector: ArticleVector{ID: "article_x"}, wantErr: ErrEmptyEmbedding},
		{name: "wrong dimension", vector: ArticleVector{ID: "article_x", Embedding: []float32{1, 2}}, dimension: 384, wantErr: ErrInvalidEmbeddingDimension},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.vector.Validate(tt.dimension)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
