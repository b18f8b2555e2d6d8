package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"NewsSentiment/internal/domain"
	"NewsSentiment/internal/ports"
)

const sentimentPrompt = `You are a financial news sentiment classifier. Read the article text and reply with JSON only, no markdown:
{"label": "positive" | "negative" | "neutral", "confidence": number between 0 and 1}`

// SentimentBackend classifies article text with a chat model.
type SentimentBackend struct {
	client *Client
}

var _ ports.SentimentBackend = (*SentimentBackend)(nil)

// NewSentimentBackend builds the backend over a prepared client.
func NewSentimentBackend(client *Client) *SentimentBackend {
	return &SentimentBackend{client: client}
}

// Name identifies the backend in scored articles and logs.
func (b *SentimentBackend) Name() string {
	return "llm"
}

// Classify asks the model for a label and confidence. Model failures wrap
// domain.ErrClassifierUnavailable; unreadable replies wrap
// domain.ErrInvalidPrediction.
func (b *SentimentBackend) Classify(ctx context.Context, text string) (domain.Prediction, error) {
	reply, err := b.client.Complete(ctx, sentimentPrompt, text)
	if err != nil {
		return domain.Prediction{}, fmt.Errorf("%w: %w", domain.ErrClassifierUnavailable, err)
	}
	return parsePrediction(reply)
}

func parsePrediction(reply string) (domain.Prediction, error) {
	var out struct {
		Label      string  `json:"label"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(stripFences(reply)), &out); err != nil {
		return domain.Prediction{}, fmt.Errorf("%w: json unmarshal: %w", domain.ErrInvalidPrediction, err)
	}
	label, ok := domain.ParseLabel(out.Label)
	if !ok {
		return domain.Prediction{}, fmt.Errorf("%w: unknown label %q", domain.ErrInvalidPrediction, out.Label)
	}
	return domain.Prediction{Label: label, Confidence: out.Confidence}, nil
}
