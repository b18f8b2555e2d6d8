package domain

import (
	"strings"
	"time"
)

// Label is the sentiment class assigned to an article.
type Label string

const (
	LabelPositive Label = "positive"
	LabelNegative Label = "negative"
	LabelNeutral  Label = "neutral"
)

// Labels lists every valid label in lexical order.
var Labels = []Label{LabelNegative, LabelNeutral, LabelPositive}

// ParseLabel maps backend output such as "POSITIVE" onto a Label.
func ParseLabel(value string) (Label, bool) {
	label := Label(strings.ToLower(strings.TrimSpace(value)))
	return label, label.Valid()
}

// Valid reports whether l is one of the three known labels.
func (l Label) Valid() bool {
	switch l {
	case LabelPositive, LabelNegative, LabelNeutral:
		return true
	default:
		return false
	}
}

// RawArticle is a record produced by an article source before any cleanup.
type RawArticle struct {
	SourceURL   string
	Source      string
	Title       string
	BodyText    string
	PublishedAt time.Time
}

// CanonicalArticle is a cleaned, deduplicated article; the unit of analysis.
type CanonicalArticle struct {
	ID          string    `json:"id"`
	SourceURL   string    `json:"source_url,omitempty"`
	Source      string    `json:"source,omitempty"`
	Title       string    `json:"title"`
	BodyText    string    `json:"body_text"`
	PublishedAt time.Time `json:"published_at,omitempty"`
}

// Prediction is a single (label, confidence) pair returned by a sentiment backend.
type Prediction struct {
	Label      Label
	Confidence float64
}

// ScoredArticle enriches a canonical article with sentiment and topics.
type ScoredArticle struct {
	CanonicalArticle
	Label      Label    `json:"sentiment_label"`
	Confidence float64  `json:"confidence"`
	Topics     []string `json:"topics"`
	Summary    string   `json:"summary,omitempty"`
	Backend    string   `json:"backend"`
	Fallback   bool     `json:"fallback"`
}
