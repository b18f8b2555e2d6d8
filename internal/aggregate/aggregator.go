// Package aggregate compares sentiment and topics across a scored article set.
package aggregate

import (
	"fmt"
	"sort"
	"time"

	"NewsSentiment/internal/domain"
)

const (
	commonTopicLimit = 5
	differenceLimit  = 5
)

// Aggregate builds the cross-article report. The result does not depend on
// the order of scored. It fails with domain.ErrEmptyInput when scored is empty.
func Aggregate(scored []domain.ScoredArticle) (domain.AggregateReport, error) {
	if len(scored) == 0 {
		return domain.AggregateReport{}, fmt.Errorf("aggregate: %w", domain.ErrEmptyInput)
	}

	report := domain.AggregateReport{
		Distribution: Distribution(scored),
		TopicOverlap: TopicOverlap(scored),
	}

	var sum float64
	for _, a := range scored {
		sum += a.Confidence
	}
	report.MeanConfidence = sum / float64(len(scored))

	report.DominantLabel = DominantLabel(scored, report.Distribution)
	report.OutlierArticles = Outliers(scored, report.DominantLabel)
	report.CommonTopics = CommonTopics(scored, commonTopicLimit)
	report.CoverageDifferences = CoverageDifferences(scored, differenceLimit)
	report.OverallTone = OverallTone(report.Distribution)

	return report, nil
}

// Distribution counts articles per label.
func Distribution(scored []domain.ScoredArticle) map[domain.Label]int {
	dist := make(map[domain.Label]int, len(domain.Labels))
	for _, a := range scored {
		dist[a.Label]++
	}
	return dist
}

// DominantLabel is the mode of the distribution. Among tied labels the one
// whose most recent article is newest wins; missing dates count as oldest.
// Remaining ties go to the label whose most recent article has the lowest id,
// then to the lexically smaller label.
func DominantLabel(scored []domain.ScoredArticle, dist map[domain.Label]int) domain.Label {
	best := 0
	for _, n := range dist {
		if n > best {
			best = n
		}
	}

	type candidate struct {
		label  domain.Label
		latest time.Time
		id     string
	}
	var tied []candidate
	for label, n := range dist {
		if n != best {
			continue
		}
		c := candidate{label: label}
		found := false
		for _, a := range scored {
			if a.Label != label {
				continue
			}
			if !found || a.PublishedAt.After(c.latest) || (a.PublishedAt.Equal(c.latest) && a.ID < c.id) {
				c.latest, c.id = a.PublishedAt, a.ID
				found = true
			}
		}
		tied = append(tied, c)
	}

	sort.Slice(tied, func(i, j int) bool {
		if !tied[i].latest.Equal(tied[j].latest) {
			return tied[i].latest.After(tied[j].latest)
		}
		if tied[i].id != tied[j].id {
			return tied[i].id < tied[j].id
		}
		return tied[i].label < tied[j].label
	})
	if len(tied) == 0 {
		return ""
	}
	return tied[0].label
}

// Outliers lists ids of articles whose label differs from dominant, most
// confident first; equal confidences are ordered by id.
func Outliers(scored []domain.ScoredArticle, dominant domain.Label) []string {
	var out []domain.ScoredArticle
	for _, a := range scored {
		if a.Label != dominant {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].ID < out[j].ID
	})

	ids := make([]string, len(out))
	for i, a := range out {
		ids[i] = a.ID
	}
	return ids
}

// OverallTone phrases the distribution: a strict plurality yields "mostly
// positive", "mostly negative" or "generally neutral"; anything else is "mixed".
func OverallTone(dist map[domain.Label]int) string {
	pos, neg, neu := dist[domain.LabelPositive], dist[domain.LabelNegative], dist[domain.LabelNeutral]
	switch {
	case pos > max(neg, neu):
		return "mostly positive"
	case neg > max(pos, neu):
		return "mostly negative"
	case neu > max(pos, neg):
		return "generally neutral"
	default:
		return "mixed"
	}
}
