package classifier

import (
	"encoding/json"
	"fmt"
	"strings"

	"market-pulse/internal/usecase/sentiment"
	"market-pulse/internal/utils/text"
)

// systemPrompt asks a chat model for the same {label, score} shape the
// FinBERT endpoint returns.
const systemPrompt = `You are a financial news sentiment classifier for the Indian stock market.
Classify the sentiment of the text for investors.
Respond with a single JSON object and nothing else:
{"label": "positive" | "negative" | "neutral", "score": <confidence between 0 and 1>}
Text after "Context:" describes how similar past news was classified; use it only as a hint.`

type labelJSON struct {
	Label string   `json:"label"`
	Score *float64 `json:"score"`
}

// parsePrediction extracts the first JSON object from a model reply.
// Models occasionally wrap the object in prose or a code fence.
func parsePrediction(reply string) (sentiment.Prediction, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end < start {
		return sentiment.Prediction{}, fmt.Errorf("%w: no JSON object in %q", ErrUnexpectedResponse, truncate(reply, 120))
	}

	var out labelJSON
	if err := json.Unmarshal([]byte(reply[start:end+1]), &out); err != nil {
		return sentiment.Prediction{}, fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	if strings.TrimSpace(out.Label) == "" || out.Score == nil {
		return sentiment.Prediction{}, fmt.Errorf("%w: label and score are required", ErrUnexpectedResponse)
	}
	return sentiment.Prediction{Label: strings.ToLower(strings.TrimSpace(out.Label)), Score: *out.Score}, nil
}

func truncate(s string, n int) string {
	cut, truncated := text.TruncateRunes(s, n)
	if truncated {
		return cut + "..."
	}
	return cut
}
