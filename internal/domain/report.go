package domain

import "strings"

// PairKey identifies an unordered pair of articles; A is always <= B.
type PairKey struct {
	A string
	B string
}

// NewPairKey orders the two ids so that (x, y) and (y, x) produce the same key.
func NewPairKey(x, y string) PairKey {
	if y < x {
		x, y = y, x
	}
	return PairKey{A: x, B: y}
}

// Contains reports whether id is one side of the pair.
func (k PairKey) Contains(id string) bool {
	return k.A == id || k.B == id
}

func (k PairKey) String() string {
	return k.A + "|" + k.B
}

// MarshalText lets PairKey be used as a JSON object key.
func (k PairKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses the "a|b" form written by MarshalText.
func (k *PairKey) UnmarshalText(text []byte) error {
	a, b, _ := strings.Cut(string(text), "|")
	*k = NewPairKey(a, b)
	return nil
}

// TopicCount is the number of articles mentioning a topic.
type TopicCount struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

// CoverageDifference contrasts two articles that disagree.
type CoverageDifference struct {
	Comparison string `json:"comparison"`
	Impact     string `json:"impact"`
}

// AggregateReport is the cross-article comparison over a scored set.
type AggregateReport struct {
	Distribution        map[Label]int        `json:"distribution"`
	MeanConfidence      float64              `json:"mean_confidence"`
	TopicOverlap        map[PairKey]float64  `json:"topic_overlap"`
	DominantLabel       Label                `json:"dominant_label,omitempty"`
	OutlierArticles     []string             `json:"outlier_articles"`
	CommonTopics        []TopicCount         `json:"common_topics"`
	CoverageDifferences []CoverageDifference `json:"coverage_differences"`
	OverallTone         string               `json:"overall_tone,omitempty"`
}

// EmptyReport is the well-formed report of a run with nothing to aggregate.
func EmptyReport() AggregateReport {
	return AggregateReport{
		Distribution: map[Label]int{},
		TopicOverlap: map[PairKey]float64{},
	}
}

// Total returns the number of articles counted in the distribution.
func (r AggregateReport) Total() int {
	total := 0
	for _, n := range r.Distribution {
		total += n
	}
	return total
}

// FailureKind classifies skips and per-article failures.
type FailureKind string

const (
	SkippedDuplicate     FailureKind = "SkippedDuplicate"
	SkippedTooShort      FailureKind = "SkippedTooShort"
	ClassificationFailed FailureKind = "ClassificationFailed"
)

// Skip records an input article the normalizer dropped on purpose.
type Skip struct {
	Ref    string      `json:"ref"`
	Reason FailureKind `json:"reason"`
}

// PartialFailure records an article that could not be scored.
type PartialFailure struct {
	Ref    string      `json:"ref"`
	Kind   FailureKind `json:"kind"`
	Detail string      `json:"detail,omitempty"`
}

// AnalysisResult is the outcome of one pipeline run for a company.
type AnalysisResult struct {
	CompanyName     string           `json:"company_name"`
	ScoredArticles  []ScoredArticle  `json:"scored_articles"`
	Aggregate       AggregateReport  `json:"aggregate"`
	Narrative       string           `json:"narrative"`
	PartialFailures []PartialFailure `json:"partial_failures"`
	Skipped         []Skip           `json:"skipped,omitempty"`
}
