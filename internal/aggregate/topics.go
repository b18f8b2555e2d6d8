package aggregate

import (
	"fmt"
	"sort"

	"NewsSentiment/internal/domain"
)

// Jaccard returns |a ∩ b| / |a ∪ b| over the two topic sets, or 0 when both
// are empty.
func Jaccard(a, b []string) float64 {
	setA := topicSet(a)
	setB := topicSet(b)

	inter := 0
	for t := range setA {
		if _, ok := setB[t]; ok {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// TopicOverlap computes Jaccard similarity for every unordered article pair,
// keeping only pairs with similarity above zero.
func TopicOverlap(scored []domain.ScoredArticle) map[domain.PairKey]float64 {
	overlap := map[domain.PairKey]float64{}
	for i := 0; i < len(scored); i++ {
		for j := i + 1; j < len(scored); j++ {
			if sim := Jaccard(scored[i].Topics, scored[j].Topics); sim > 0 {
				overlap[domain.NewPairKey(scored[i].ID, scored[j].ID)] = sim
			}
		}
	}
	return overlap
}

// CommonTopics ranks topics by the number of articles mentioning them.
func CommonTopics(scored []domain.ScoredArticle, limit int) []domain.TopicCount {
	counts := map[string]int{}
	for _, a := range scored {
		for t := range topicSet(a.Topics) {
			counts[t]++
		}
	}

	out := make([]domain.TopicCount, 0, len(counts))
	for t, n := range counts {
		out = append(out, domain.TopicCount{Topic: t, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Topic < out[j].Topic
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// CoverageDifferences describes where coverage disagrees: first the most
// confident positive article against the most confident negative one, then
// every topic whose two most recent articles carry different labels.
func CoverageDifferences(scored []domain.ScoredArticle, limit int) []domain.CoverageDifference {
	ordered := append([]domain.ScoredArticle(nil), scored...)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Confidence != ordered[j].Confidence {
			return ordered[i].Confidence > ordered[j].Confidence
		}
		return ordered[i].ID < ordered[j].ID
	})

	var diffs []domain.CoverageDifference
	if pos, ok := firstWith(ordered, domain.LabelPositive); ok {
		if neg, ok := firstWith(ordered, domain.LabelNegative); ok {
			diffs = append(diffs, domain.CoverageDifference{
				Comparison: fmt.Sprintf("%q presents a positive view, while %q discusses negative aspects.", pos.Title, neg.Title),
				Impact:     "These contrasting viewpoints suggest mixed market reactions or controversial developments.",
			})
		}
	}

	byTopic := map[string][]domain.ScoredArticle{}
	for _, a := range scored {
		for t := range topicSet(a.Topics) {
			byTopic[t] = append(byTopic[t], a)
		}
	}
	topics := make([]string, 0, len(byTopic))
	for t, articles := range byTopic {
		if len(articles) >= 2 {
			topics = append(topics, t)
		}
	}
	sort.Strings(topics)

	for _, t := range topics {
		if len(diffs) >= limit {
			break
		}
		articles := byTopic[t]
		sort.Slice(articles, func(i, j int) bool {
			if !articles[i].PublishedAt.Equal(articles[j].PublishedAt) {
				return articles[i].PublishedAt.After(articles[j].PublishedAt)
			}
			return articles[i].ID < articles[j].ID
		})
		first, second := articles[0], articles[1]
		if first.Label == second.Label {
			continue
		}
		diffs = append(diffs, domain.CoverageDifference{
			Comparison: fmt.Sprintf("Articles about %q show differing perspectives: %q is %s while %q is %s.",
				t, first.Title, first.Label, second.Title, second.Label),
			Impact: fmt.Sprintf("The %q aspect may be a point of contention or uncertainty.", t),
		})
	}

	if len(diffs) > limit {
		diffs = diffs[:limit]
	}
	return diffs
}

func firstWith(ordered []domain.ScoredArticle, label domain.Label) (domain.ScoredArticle, bool) {
	for _, a := range ordered {
		if a.Label == label {
			return a, true
		}
	}
	return domain.ScoredArticle{}, false
}

func topicSet(topics []string) map[string]struct{} {
	set := make(map[string]struct{}, len(topics))
	for _, t := range topics {
		set[t] = struct{}{}
	}
	return set
}
