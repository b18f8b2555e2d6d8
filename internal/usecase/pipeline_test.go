package usecase

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"NewsSentiment/internal/domain"
	"NewsSentiment/internal/ports"
	"NewsSentiment/internal/sentiment"
)

// scriptedBackend answers with a label chosen by a keyword in the text.
type scriptedBackend struct {
	calls atomic.Int32
	fn    func(ctx context.Context, text string) (domain.Prediction, error)
}

func (s *scriptedBackend) Name() string { return "scripted" }

func (s *scriptedBackend) Classify(ctx context.Context, text string) (domain.Prediction, error) {
	s.calls.Add(1)
	return s.fn(ctx, text)
}

func byKeyword(ctx context.Context, text string) (domain.Prediction, error) {
	switch {
	case strings.Contains(text, "HANG"):
		<-ctx.Done()
		return domain.Prediction{}, ctx.Err()
	case strings.Contains(text, "BROKEN"):
		return domain.Prediction{}, domain.ErrClassifierUnavailable
	case strings.Contains(text, "GOOD"):
		return domain.Prediction{Label: domain.LabelPositive, Confidence: 0.9}, nil
	case strings.Contains(text, "BAD"):
		return domain.Prediction{Label: domain.LabelNegative, Confidence: 0.8}, nil
	default:
		return domain.Prediction{Label: domain.LabelNeutral, Confidence: 0.7}, nil
	}
}

func raw(url, title, body string) domain.RawArticle {
	return domain.RawArticle{SourceURL: url, Title: title, BodyText: body}
}

func newTestPipeline(backends ...ports.SentimentBackend) *Pipeline {
	adapter := sentiment.NewAdapter(sentiment.NewChain(backends...), nil, sentiment.Options{Timeout: 50 * time.Millisecond}, nil)
	return NewPipeline(PipelineDeps{Classifier: adapter, Workers: 2})
}

func TestRunMajorityScenario(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(&scriptedBackend{fn: byKeyword})
	result, err := p.Run(context.Background(), "Acme", []domain.RawArticle{
		raw("https://x/1", "Acme one", "GOOD quarter for Acme with revenue growth across every division."),
		raw("https://x/2", "Acme two", "GOOD outlook as Acme raises its full year guidance for investors."),
		raw("https://x/3", "Acme three", "BAD news as regulators open a probe into Acme accounting practices."),
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	agg := result.Aggregate
	if agg.Distribution[domain.LabelPositive] != 2 || agg.Distribution[domain.LabelNegative] != 1 || len(agg.Distribution) != 2 {
		t.Fatalf("unexpected distribution %v", agg.Distribution)
	}
	if agg.DominantLabel != domain.LabelPositive {
		t.Fatalf("dominant = %s", agg.DominantLabel)
	}
	if len(agg.OutlierArticles) != 1 || agg.OutlierArticles[0] != result.ScoredArticles[2].ID {
		t.Fatalf("outliers = %v", agg.OutlierArticles)
	}
	if len(result.PartialFailures) != 0 {
		t.Fatalf("unexpected failures %+v", result.PartialFailures)
	}
	if !strings.Contains(result.Narrative, "positive") {
		t.Fatalf("narrative does not mention dominant label: %s", result.Narrative)
	}
}

func TestRunEmptyInput(t *testing.T) {
	t.Parallel()

	backend := &scriptedBackend{fn: byKeyword}
	p := newTestPipeline(backend)
	result, err := p.Run(context.Background(), "Acme", nil)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if !strings.Contains(strings.ToLower(result.Narrative), "no analyzable content") {
		t.Fatalf("unexpected narrative %q", result.Narrative)
	}
	if len(result.Aggregate.Distribution) != 0 || result.Aggregate.Distribution == nil {
		t.Fatalf("expected empty non-nil distribution, got %v", result.Aggregate.Distribution)
	}
	if backend.calls.Load() != 0 {
		t.Fatalf("classifier must not be called for empty input")
	}
}

func TestRunDeduplicates(t *testing.T) {
	t.Parallel()

	body := "GOOD results: Acme posted strong revenue and raised its dividend."
	p := newTestPipeline(&scriptedBackend{fn: byKeyword})
	result, err := p.Run(context.Background(), "Acme", []domain.RawArticle{
		raw("https://x/1", "Acme results", body),
		raw("https://y/1", "Acme results", body),
		raw("https://x/2", "Acme layoffs", "BAD: Acme cuts 500 jobs as demand for its products slows sharply."),
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(result.ScoredArticles) != 2 {
		t.Fatalf("expected 2 scored articles, got %d", len(result.ScoredArticles))
	}
	if len(result.Skipped) != 1 || result.Skipped[0].Reason != domain.SkippedDuplicate {
		t.Fatalf("unexpected skipped %+v", result.Skipped)
	}
	if len(result.PartialFailures) != 0 {
		t.Fatalf("duplicates must not be failures: %+v", result.PartialFailures)
	}
}

func TestRunPrimaryTimeoutUsesFallback(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(&scriptedBackend{fn: byKeyword}, sentiment.NewLexicon(0))
	result, err := p.Run(context.Background(), "Acme", []domain.RawArticle{
		raw("https://x/1", "Acme one", "GOOD quarter for Acme with revenue growth across every division."),
		raw("https://x/2", "Acme two", "HANG: Acme reported record profit and strong growth this quarter."),
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(result.PartialFailures) != 0 {
		t.Fatalf("fallback success must not be a failure: %+v", result.PartialFailures)
	}
	if len(result.ScoredArticles) != 2 {
		t.Fatalf("expected both articles scored, got %d", len(result.ScoredArticles))
	}
	slow := result.ScoredArticles[1]
	if !slow.Fallback || slow.Confidence != sentiment.FallbackConfidence {
		t.Fatalf("expected fallback score with confidence %v, got %+v", sentiment.FallbackConfidence, slow)
	}
}

func TestRunRecordsClassificationFailures(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(&scriptedBackend{fn: byKeyword})
	result, err := p.Run(context.Background(), "Acme", []domain.RawArticle{
		raw("https://x/1", "Acme one", "GOOD quarter for Acme with revenue growth across every division."),
		raw("https://x/2", "Acme two", "BROKEN backend response for this particular article about Acme."),
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(result.ScoredArticles) != 1 {
		t.Fatalf("expected one scored article, got %d", len(result.ScoredArticles))
	}
	if len(result.PartialFailures) != 1 || result.PartialFailures[0].Kind != domain.ClassificationFailed {
		t.Fatalf("unexpected failures %+v", result.PartialFailures)
	}
	if result.Aggregate.Total() != 1 {
		t.Fatalf("aggregate must only count scored articles")
	}
}

func TestRunAllFailedIsDegenerate(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(&scriptedBackend{fn: byKeyword})
	result, err := p.Run(context.Background(), "Acme", []domain.RawArticle{
		raw("https://x/1", "Acme one", "BROKEN backend response for this particular article about Acme."),
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(result.PartialFailures) != 1 {
		t.Fatalf("expected one failure, got %+v", result.PartialFailures)
	}
	if !strings.Contains(result.Narrative, "No analyzable content") {
		t.Fatalf("unexpected narrative %q", result.Narrative)
	}
}

func TestRunSharedTopicOverlap(t *testing.T) {
	t.Parallel()

	topics := map[string][]string{
		"Acme one": {"earnings", "revenue"},
		"Acme two": {"earnings", "guidance"},
	}
	adapter := sentiment.NewAdapter(sentiment.NewChain(sentiment.NewLexicon(0)), fakeTopics(topics), sentiment.Options{}, nil)
	p := NewPipeline(PipelineDeps{Classifier: adapter})

	result, err := p.Run(context.Background(), "Acme", []domain.RawArticle{
		raw("https://x/1", "Acme one", "Acme one: the quarterly report was published this morning."),
		raw("https://x/2", "Acme two", "Acme two: analysts discussed the quarterly report at length."),
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	overlap := result.Aggregate.TopicOverlap
	if len(overlap) != 1 {
		t.Fatalf("expected exactly one overlapping pair, got %v", overlap)
	}
	for _, sim := range overlap {
		if sim != 1.0/3.0 {
			t.Fatalf("similarity = %v, want 1/3", sim)
		}
	}
}

type fakeTopics map[string][]string

func (f fakeTopics) Extract(text string, _ int) []string {
	for prefix, topics := range f {
		if strings.HasPrefix(text, prefix+" ") {
			return topics
		}
	}
	return nil
}

func TestRunCancelledDiscardsResults(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{}, 4)
	backend := &scriptedBackend{fn: func(ctx context.Context, _ string) (domain.Prediction, error) {
		started <- struct{}{}
		<-ctx.Done()
		return domain.Prediction{}, ctx.Err()
	}}
	adapter := sentiment.NewAdapter(sentiment.NewChain(backend, sentiment.NewLexicon(0)), nil, sentiment.Options{Timeout: time.Minute}, nil)
	p := NewPipeline(PipelineDeps{Classifier: adapter, Workers: 2})

	go func() {
		<-started
		cancel()
	}()

	result, err := p.Run(ctx, "Acme", []domain.RawArticle{
		raw("https://x/1", "Acme one", "Acme one: the quarterly report was published this morning."),
		raw("https://x/2", "Acme two", "Acme two: analysts discussed the quarterly report at length."),
		raw("https://x/3", "Acme three", "Acme three: shareholders gather for the annual meeting today."),
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result.CompanyName != "" || len(result.ScoredArticles) != 0 {
		t.Fatalf("partial results must be discarded, got %+v", result)
	}
}
