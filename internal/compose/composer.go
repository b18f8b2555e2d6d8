// Package compose turns an aggregate report into the short narrative that is
// sent to speech rendering.
package compose

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"NewsSentiment/internal/domain"
	"NewsSentiment/internal/textutil"
)

const (
	DefaultMaxLength = 5000

	maxClusters = 2
	maxOutliers = 2
)

// Composer is deterministic: identical inputs always produce identical text.
type Composer struct {
	maxLength int
}

// New builds a Composer; maxLength <= 0 selects DefaultMaxLength.
func New(maxLength int) *Composer {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	return &Composer{maxLength: maxLength}
}

// MaxLength reports the narrative cap in runes.
func (c *Composer) MaxLength() int {
	return c.maxLength
}

// Empty is the narrative for runs with nothing to analyze.
func (c *Composer) Empty(company string) string {
	return c.fit([]string{fmt.Sprintf("No analyzable content found for %s.", displayName(company))})
}

// Compose states the dominant sentiment and its share, the article count,
// the leading topic clusters and up to two disagreeing articles.
func (c *Composer) Compose(company string, report domain.AggregateReport, scored []domain.ScoredArticle) string {
	total := report.Total()
	if total == 0 {
		return c.Empty(company)
	}

	dominant := report.Distribution[report.DominantLabel]
	share := int(math.Round(100 * float64(dominant) / float64(total)))

	sentences := []string{
		fmt.Sprintf("News sentiment report for %s, based on %s analyzed.", displayName(company), plural(total, "article")),
		fmt.Sprintf("The dominant sentiment is %s, with %d of %d articles (%d%%).", report.DominantLabel, dominant, total, share),
	}
	if report.OverallTone != "" {
		sentences = append(sentences, fmt.Sprintf("Overall, the coverage is %s, with an average confidence of %.2f.", report.OverallTone, report.MeanConfidence))
	}

	if clusters := TopicClusters(report, scored, maxClusters); len(clusters) > 0 {
		sentences = append(sentences, fmt.Sprintf("Coverage overlaps most around %s.", joinWords(clusters)))
	} else if len(report.CommonTopics) > 0 {
		sentences = append(sentences, fmt.Sprintf("The most frequent topic is %s.", report.CommonTopics[0].Topic))
	}

	byID := make(map[string]domain.ScoredArticle, len(scored))
	for _, a := range scored {
		byID[a.ID] = a
	}
	named := 0
	for _, id := range report.OutlierArticles {
		if named == maxOutliers {
			break
		}
		a, ok := byID[id]
		if !ok {
			continue
		}
		sentences = append(sentences, fmt.Sprintf("In contrast, the article %q is %s.", titleOf(a), a.Label))
		named++
	}
	switch rest := len(report.OutlierArticles) - named; {
	case named == 0 || rest <= 0:
	case rest == 1:
		sentences = append(sentences, "One other article also disagrees with the dominant view.")
	default:
		sentences = append(sentences, fmt.Sprintf("%d other articles also disagree with the dominant view.", rest))
	}

	return c.fit(sentences)
}

// TopicClusters ranks topics by the summed similarity of the overlapping
// pairs in which both articles carry the topic.
func TopicClusters(report domain.AggregateReport, scored []domain.ScoredArticle, limit int) []string {
	topicsByID := make(map[string]map[string]struct{}, len(scored))
	for _, a := range scored {
		set := make(map[string]struct{}, len(a.Topics))
		for _, t := range a.Topics {
			set[t] = struct{}{}
		}
		topicsByID[a.ID] = set
	}

	scores := map[string]float64{}
	for pair, sim := range report.TopicOverlap {
		left, right := topicsByID[pair.A], topicsByID[pair.B]
		for t := range left {
			if _, ok := right[t]; ok {
				scores[t] += sim
			}
		}
	}

	topics := make([]string, 0, len(scores))
	for t := range scores {
		topics = append(topics, t)
	}
	sort.Slice(topics, func(i, j int) bool {
		if scores[topics[i]] != scores[topics[j]] {
			return scores[topics[i]] > scores[topics[j]]
		}
		return topics[i] < topics[j]
	})
	if len(topics) > limit {
		topics = topics[:limit]
	}
	return topics
}

// fit joins whole sentences while they stay within the cap. If even the first
// sentence is too long it is cut at a word boundary and closed with a period.
func (c *Composer) fit(sentences []string) string {
	var (
		b      strings.Builder
		length int
	)
	for _, s := range sentences {
		n := textutil.Len(s)
		if length > 0 {
			n++
		}
		if length+n > c.maxLength {
			break
		}
		if length > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s)
		length += n
	}
	if length > 0 || len(sentences) == 0 {
		return b.String()
	}

	cut := strings.TrimRight(textutil.CutAtWord(sentences[0], c.maxLength-1), ",;:- ")
	if cut == "" {
		return ""
	}
	if r := []rune(cut); textutil.IsTerminal(r[len(r)-1]) {
		return cut
	}
	return cut + "."
}

func titleOf(a domain.ScoredArticle) string {
	title := strings.Trim(a.Title, `"' `)
	if title == "" {
		return a.ID
	}
	return strings.ReplaceAll(title, `"`, "'")
}

func displayName(company string) string {
	company = textutil.CollapseSpaces(company)
	if company == "" {
		return "the requested company"
	}
	return company
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func joinWords(words []string) string {
	switch len(words) {
	case 0:
		return ""
	case 1:
		return words[0]
	default:
		return strings.Join(words[:len(words)-1], ", ") + " and " + words[len(words)-1]
	}
}
