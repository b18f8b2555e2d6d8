package compose

import (
	"strings"
	"testing"

	"NewsSentiment/internal/aggregate"
	"NewsSentiment/internal/domain"
	"NewsSentiment/internal/textutil"
)

func fixture(t *testing.T) (domain.AggregateReport, []domain.ScoredArticle) {
	t.Helper()

	scored := []domain.ScoredArticle{
		{CanonicalArticle: domain.CanonicalArticle{ID: "a", Title: "Acme beats estimates"}, Label: domain.LabelPositive, Confidence: 0.9, Topics: []string{"earnings", "guidance"}},
		{CanonicalArticle: domain.CanonicalArticle{ID: "b", Title: "Acme raises outlook"}, Label: domain.LabelPositive, Confidence: 0.8, Topics: []string{"earnings", "guidance", "outlook"}},
		{CanonicalArticle: domain.CanonicalArticle{ID: "c", Title: `Acme sued over "defective" chips`}, Label: domain.LabelNegative, Confidence: 0.7, Topics: []string{"lawsuit", "chips"}},
		{CanonicalArticle: domain.CanonicalArticle{ID: "d", Title: "Acme board meets"}, Label: domain.LabelNeutral, Confidence: 0.6, Topics: []string{"board", "earnings"}},
	}
	report, err := aggregate.Aggregate(scored)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	return report, scored
}

func TestComposeNarrative(t *testing.T) {
	t.Parallel()

	report, scored := fixture(t)
	got := New(0).Compose("Acme", report, scored)

	for _, want := range []string{
		"based on 4 articles analyzed.",
		"The dominant sentiment is positive, with 2 of 4 articles (50%).",
		"Coverage overlaps most around earnings and guidance.",
		`In contrast, the article "Acme sued over 'defective' chips" is negative.`,
		`In contrast, the article "Acme board meets" is neutral.`,
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("narrative missing %q:\n%s", want, got)
		}
	}
	if strings.Index(got, "Acme sued") > strings.Index(got, "Acme board meets") {
		t.Fatalf("most confident outlier must come first:\n%s", got)
	}
}

func TestComposeIsDeterministic(t *testing.T) {
	t.Parallel()

	report, scored := fixture(t)
	c := New(0)
	first := c.Compose("Acme", report, scored)
	for i := 0; i < 10; i++ {
		if again := c.Compose("Acme", report, scored); again != first {
			t.Fatalf("narrative changed between calls:\n%s\n%s", first, again)
		}
	}
}

func TestComposeRespectsLengthCap(t *testing.T) {
	t.Parallel()

	report, scored := fixture(t)
	full := New(0).Compose("Acme", report, scored)

	for limit := 10; limit <= textutil.Len(full)+5; limit += 7 {
		got := New(limit).Compose("Acme", report, scored)
		if textutil.Len(got) > limit {
			t.Fatalf("limit %d: narrative has %d runes", limit, textutil.Len(got))
		}
		if got == "" {
			continue
		}
		if last := []rune(got)[textutil.Len(got)-1]; !textutil.IsTerminal(last) {
			t.Fatalf("limit %d: narrative does not end at a sentence boundary: %q", limit, got)
		}
	}
}

func TestComposeTruncatesAtSentenceBoundary(t *testing.T) {
	t.Parallel()

	report, scored := fixture(t)
	full := New(0).Compose("Acme", report, scored)
	sentences := textutil.Sentences(full)

	limit := textutil.Len(sentences[0]) + 1 + textutil.Len(sentences[1]) + 5
	got := New(limit).Compose("Acme", report, scored)
	if got != sentences[0]+" "+sentences[1] {
		t.Fatalf("expected the first two sentences, got %q", got)
	}
}

func TestEmptyNarrative(t *testing.T) {
	t.Parallel()

	got := New(0).Empty("Acme")
	if !strings.Contains(strings.ToLower(got), "no analyzable content") {
		t.Fatalf("unexpected empty narrative: %q", got)
	}
	if got := New(0).Compose("Acme", domain.EmptyReport(), nil); !strings.Contains(got, "No analyzable content") {
		t.Fatalf("empty report should compose the empty narrative, got %q", got)
	}
}
