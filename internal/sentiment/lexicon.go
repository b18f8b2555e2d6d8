package sentiment

import (
	"context"
	"strings"
	"unicode"

	"NewsSentiment/internal/domain"
	"NewsSentiment/internal/ports"
)

// FallbackConfidence is the fixed confidence reported by the lexicon scorer.
// It sits below typical model confidences so fallback results read as lower trust.
const FallbackConfidence = 0.5

var (
	positiveCues = []string{
		"good", "great", "excellent", "positive", "profit", "profits", "growth", "success",
		"increase", "gain", "gains", "beat", "beats", "record", "strong", "surge", "rally",
		"upgrade", "expansion", "win", "wins", "boost", "optimistic",
	}
	negativeCues = []string{
		"bad", "poor", "negative", "loss", "losses", "decline", "failure", "decrease",
		"concern", "concerns", "drop", "fall", "falls", "weak", "lawsuit", "fraud", "layoffs",
		"downgrade", "miss", "misses", "recall", "probe", "slump", "risk",
	}
)

// Lexicon is a deterministic cue-word scorer. It never fails.
type Lexicon struct {
	confidence float64
	positive   map[string]struct{}
	negative   map[string]struct{}
}

var _ ports.SentimentBackend = (*Lexicon)(nil)

// NewLexicon builds the fallback scorer; confidence <= 0 selects FallbackConfidence.
func NewLexicon(confidence float64) *Lexicon {
	if confidence <= 0 || confidence > 1 {
		confidence = FallbackConfidence
	}
	return &Lexicon{
		confidence: confidence,
		positive:   toSet(positiveCues),
		negative:   toSet(negativeCues),
	}
}

// Name identifies the backend in scored articles and logs.
func (l *Lexicon) Name() string {
	return "lexicon"
}

// Classify counts cue words and picks the majority polarity.
func (l *Lexicon) Classify(_ context.Context, text string) (domain.Prediction, error) {
	var pos, neg int
	for _, word := range strings.FieldsFunc(strings.ToLower(text), notLetter) {
		if _, ok := l.positive[word]; ok {
			pos++
		}
		if _, ok := l.negative[word]; ok {
			neg++
		}
	}

	label := domain.LabelNeutral
	switch {
	case pos > neg:
		label = domain.LabelPositive
	case neg > pos:
		label = domain.LabelNegative
	}
	return domain.Prediction{Label: label, Confidence: l.confidence}, nil
}

func notLetter(r rune) bool {
	return !unicode.IsLetter(r)
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
