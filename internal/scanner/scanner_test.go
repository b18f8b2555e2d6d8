package scanner

import (
	"context"
	"testing"

	"NewsSentiment/internal/domain"
)

type namedScanner string

func (n namedScanner) Name() string { return string(n) }

func (n namedScanner) Scan(context.Context, Request) ([]domain.RawArticle, error) {
	return nil, nil
}

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(namedScanner("feed"))

	if s, err := reg.Resolve("feed"); err != nil || s.Name() != "feed" {
		t.Fatalf("Resolve(feed) = %v, %v", s, err)
	}
	if _, err := reg.Resolve("missing"); err == nil {
		t.Fatalf("expected error for unknown scanner")
	}

	var zero Registry
	zero.Register(namedScanner("listing"))
	if _, err := zero.Resolve("listing"); err != nil {
		t.Fatalf("zero registry should accept registrations: %v", err)
	}
}

func TestRequestOption(t *testing.T) {
	t.Parallel()

	req := Request{Options: map[string]string{"url": "https://x", "empty": ""}}
	if got := req.Option("url", "d"); got != "https://x" {
		t.Fatalf("Option(url) = %q", got)
	}
	if got := req.Option("empty", "d"); got != "d" {
		t.Fatalf("Option(empty) = %q", got)
	}
	if got := (Request{}).Option("url", "d"); got != "d" {
		t.Fatalf("nil options should fall back, got %q", got)
	}
}
