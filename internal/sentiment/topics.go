package sentiment

import (
	"sort"
	"strings"

	"NewsSentiment/internal/ports"
)

// DefaultMaxTopics caps topics per article.
const DefaultMaxTopics = 5

var stopwords = toSet([]string{
	"the", "and", "for", "with", "that", "this", "from", "have", "has", "had", "were", "was",
	"will", "would", "could", "should", "their", "there", "they", "them", "been", "being",
	"said", "says", "also", "into", "about", "after", "before", "over", "more", "most",
	"than", "then", "when", "which", "while", "where", "what", "your", "ours", "other",
	"such", "some", "only", "very", "just", "year", "years", "company", "companies",
	"per", "cent", "percent", "according", "including",
})

// KeywordExtractor ranks content words by frequency. Words of three letters or
// fewer and stopwords are ignored; ties go to the lexically smaller word.
type KeywordExtractor struct {
	exclude map[string]struct{}
}

var _ ports.TopicExtractor = (*KeywordExtractor)(nil)

// NewKeywordExtractor returns an extractor that additionally ignores the given
// words, typically the company name being analysed.
func NewKeywordExtractor(exclude ...string) *KeywordExtractor {
	ex := make(map[string]struct{}, len(exclude))
	for _, phrase := range exclude {
		for _, w := range strings.FieldsFunc(strings.ToLower(phrase), notLetter) {
			ex[w] = struct{}{}
		}
	}
	return &KeywordExtractor{exclude: ex}
}

// Excluding returns a copy that also ignores the words of the given phrases.
func (k *KeywordExtractor) Excluding(phrases ...string) *KeywordExtractor {
	next := NewKeywordExtractor(phrases...)
	for w := range k.exclude {
		next.exclude[w] = struct{}{}
	}
	return next
}

// Extract returns up to limit lower-cased keywords.
func (k *KeywordExtractor) Extract(text string, limit int) []string {
	if limit <= 0 {
		return nil
	}

	freq := map[string]int{}
	for _, w := range strings.FieldsFunc(strings.ToLower(text), notLetter) {
		if len([]rune(w)) <= 3 {
			continue
		}
		if _, skip := stopwords[w]; skip {
			continue
		}
		if _, skip := k.exclude[w]; skip {
			continue
		}
		freq[w]++
	}

	words := make([]string, 0, len(freq))
	for w := range freq {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if freq[words[i]] != freq[words[j]] {
			return freq[words[i]] > freq[words[j]]
		}
		return words[i] < words[j]
	})

	if len(words) > limit {
		words = words[:limit]
	}
	return words
}

// normalizeTopics enforces the topic invariants regardless of extractor:
// lower-cased, trimmed, deduplicated, at most limit entries.
func normalizeTopics(topics []string, limit int) []string {
	out := make([]string, 0, len(topics))
	seen := make(map[string]struct{}, len(topics))
	for _, t := range topics {
		t = strings.ToLower(strings.Join(strings.Fields(t), " "))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
		if len(out) == limit {
			break
		}
	}
	return out
}
