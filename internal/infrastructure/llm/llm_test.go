package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"NewsSentiment/internal/config"
	"NewsSentiment/internal/domain"
)

type stubGenerator struct {
	replies []string
	errs    []error
	calls   int
	last    []*schema.Message
}

func (s *stubGenerator) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	i := s.calls
	s.calls++
	s.last = input
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	reply := ""
	if i < len(s.replies) {
		reply = s.replies[i]
	}
	return &schema.Message{Role: schema.Assistant, Content: reply}, nil
}

func TestSentimentBackendParsesFencedJSON(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{replies: []string{"```json\n{\"label\": \"Negative\", \"confidence\": 0.82}\n```"}}
	backend := NewSentimentBackend(NewClient(gen, 0, 0))

	pred, err := backend.Classify(context.Background(), "shares slumped after the recall")
	if err != nil {
		t.Fatalf("Classify error: %v", err)
	}
	if pred.Label != domain.LabelNegative || pred.Confidence != 0.82 {
		t.Fatalf("unexpected prediction %+v", pred)
	}
	if len(gen.last) != 2 || gen.last[0].Role != schema.System || gen.last[1].Content != "shares slumped after the recall" {
		t.Fatalf("unexpected prompt %+v", gen.last)
	}
}

func TestSentimentBackendErrors(t *testing.T) {
	t.Parallel()

	down := NewSentimentBackend(NewClient(&stubGenerator{errs: []error{errors.New("connection refused")}}, 0, 0))
	if _, err := down.Classify(context.Background(), "x"); !errors.Is(err, domain.ErrClassifierUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}

	chatty := NewSentimentBackend(NewClient(&stubGenerator{replies: []string{"I think it is positive."}}, 0, 0))
	if _, err := chatty.Classify(context.Background(), "x"); !errors.Is(err, domain.ErrInvalidPrediction) {
		t.Fatalf("expected invalid prediction, got %v", err)
	}

	odd := NewSentimentBackend(NewClient(&stubGenerator{replies: []string{`{"label":"bullish","confidence":0.9}`}}, 0, 0))
	if _, err := odd.Classify(context.Background(), "x"); !errors.Is(err, domain.ErrInvalidPrediction) {
		t.Fatalf("expected invalid prediction, got %v", err)
	}
}

func TestCompleteRetriesThrottled(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{
		errs:    []error{errors.New("status 429: Too Many Requests")},
		replies: []string{"", " done "},
	}
	out, err := NewClient(gen, 0, 0).Complete(context.Background(), "sys", "user")
	if err != nil || out != "done" {
		t.Fatalf("Complete = %q, %v", out, err)
	}
	if gen.calls != 2 {
		t.Fatalf("expected one retry, got %d calls", gen.calls)
	}
}

func TestTranslator(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{replies: []string{"अनुवाद"}}
	tr := NewTranslator(NewClient(gen, 0, 0))

	out, err := tr.Translate(context.Background(), "Report for Acme.", "hi")
	if err != nil || out != "अनुवाद" {
		t.Fatalf("Translate = %q, %v", out, err)
	}
	if !strings.Contains(gen.last[0].Content, "Hindi") {
		t.Fatalf("language name missing from prompt: %q", gen.last[0].Content)
	}

	empty := NewTranslator(NewClient(&stubGenerator{replies: []string{"  "}}, 0, 0))
	if _, err := empty.Translate(context.Background(), "text", "xx"); err == nil {
		t.Fatalf("expected error for empty translation")
	}
}

func TestNewChatModelRequiresCredentials(t *testing.T) {
	t.Parallel()

	if _, err := NewChatModel(context.Background(), config.LLMConfig{Model: "gpt-4o-mini"}); err == nil {
		t.Fatalf("expected error without api key")
	}
}
