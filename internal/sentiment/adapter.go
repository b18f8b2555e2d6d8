// Package sentiment wraps ordered scoring backends behind a single
// classifier that always produces a confidence, falling back to a lexicon
// scorer when the primary backend is unavailable.
package sentiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"NewsSentiment/internal/domain"
	"NewsSentiment/internal/ports"
	"NewsSentiment/internal/textutil"
)

const (
	DefaultTimeout       = 10 * time.Second
	DefaultMaxInputRunes = 1000
	DefaultSummaryLength = 200
)

// Chain is the fallback-ordering strategy: backends are tried first to last.
type Chain []ports.SentimentBackend

// NewChain drops nil backends, keeping primary ahead of fallback.
func NewChain(backends ...ports.SentimentBackend) Chain {
	chain := make(Chain, 0, len(backends))
	for _, b := range backends {
		if b != nil {
			chain = append(chain, b)
		}
	}
	return chain
}

// Options tune the adapter; zero values fall back to defaults.
type Options struct {
	Timeout       time.Duration
	MaxTopics     int
	MaxInputRunes int
	SummaryLength int
}

// Adapter implements ports.Classifier over a backend chain.
type Adapter struct {
	chain  Chain
	topics ports.TopicExtractor
	opts   Options
	logger *slog.Logger
}

var _ ports.Classifier = (*Adapter)(nil)

// NewAdapter wires a chain and a topic extractor. A nil extractor selects
// KeywordExtractor.
func NewAdapter(chain Chain, topics ports.TopicExtractor, opts Options, logger *slog.Logger) *Adapter {
	if topics == nil {
		topics = NewKeywordExtractor()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxTopics <= 0 {
		opts.MaxTopics = DefaultMaxTopics
	}
	if opts.MaxInputRunes <= 0 {
		opts.MaxInputRunes = DefaultMaxInputRunes
	}
	if opts.SummaryLength <= 0 {
		opts.SummaryLength = DefaultSummaryLength
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{chain: chain, topics: topics, opts: opts, logger: logger}
}

// WithTopics returns a copy of the adapter using a different extractor.
func (a *Adapter) WithTopics(topics ports.TopicExtractor) *Adapter {
	clone := *a
	if topics != nil {
		clone.topics = topics
	}
	return &clone
}

// ForCompany excludes the company's own name from keyword topics.
func (a *Adapter) ForCompany(company string) ports.Classifier {
	if k, ok := a.topics.(*KeywordExtractor); ok {
		return a.WithTopics(k.Excluding(company))
	}
	return a
}

// Classify scores the article with the first backend that answers within the
// timeout and conforms to the label/confidence contract. If every backend
// fails the error wraps domain.ErrClassificationFailed; if ctx itself is done
// its error is returned instead.
func (a *Adapter) Classify(ctx context.Context, article domain.CanonicalArticle) (domain.ScoredArticle, error) {
	text := textutil.Truncate(article.BodyText, a.opts.MaxInputRunes)

	var errs []error
	for i, backend := range a.chain {
		pred, err := a.attempt(ctx, backend, text)
		if err == nil {
			if i > 0 {
				a.logger.Warn("classified via fallback", "article", article.ID, "backend", backend.Name())
			}
			return domain.ScoredArticle{
				CanonicalArticle: article,
				Label:            pred.Label,
				Confidence:       pred.Confidence,
				Topics:           normalizeTopics(a.topics.Extract(article.Title+" "+article.BodyText, a.opts.MaxTopics), a.opts.MaxTopics),
				Summary:          Summarize(article.BodyText, a.opts.SummaryLength),
				Backend:          backend.Name(),
				Fallback:         i > 0,
			}, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.ScoredArticle{}, ctxErr
		}
		a.logger.Debug("backend failed", "article", article.ID, "backend", backend.Name(), "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", backend.Name(), err))
	}

	if len(errs) == 0 {
		errs = append(errs, errors.New("no backends configured"))
	}
	return domain.ScoredArticle{}, fmt.Errorf("%w: %w", domain.ErrClassificationFailed, errors.Join(errs...))
}

type outcome struct {
	pred domain.Prediction
	err  error
}

// attempt runs one backend under the per-article timeout. The call runs in its
// own goroutine so a backend that ignores ctx still cannot block the run.
func (a *Adapter) attempt(ctx context.Context, backend ports.SentimentBackend, text string) (domain.Prediction, error) {
	ctx, cancel := context.WithTimeout(ctx, a.opts.Timeout)
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("%w: backend panic: %v", domain.ErrClassifierUnavailable, r)}
			}
		}()
		p, err := backend.Classify(ctx, text)
		done <- outcome{pred: p, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			if errors.Is(res.err, context.DeadlineExceeded) {
				return domain.Prediction{}, fmt.Errorf("%w: %w", domain.ErrClassifierUnavailable, res.err)
			}
			return domain.Prediction{}, res.err
		}
		if err := Validate(res.pred); err != nil {
			return domain.Prediction{}, err
		}
		return res.pred, nil
	case <-ctx.Done():
		return domain.Prediction{}, fmt.Errorf("%w: %w", domain.ErrClassifierUnavailable, ctx.Err())
	}
}

// Validate rejects predictions outside the backend contract.
func Validate(p domain.Prediction) error {
	if !p.Label.Valid() {
		return fmt.Errorf("%w: label %q", domain.ErrInvalidPrediction, p.Label)
	}
	if math.IsNaN(p.Confidence) || p.Confidence < 0 || p.Confidence > 1 {
		return fmt.Errorf("%w: confidence %v", domain.ErrInvalidPrediction, p.Confidence)
	}
	return nil
}

// Summarize keeps the leading whole sentences of text that fit in maxLength runes.
func Summarize(text string, maxLength int) string {
	if textutil.Len(text) <= maxLength {
		return text
	}

	var (
		summary string
		length  int
	)
	for _, sentence := range textutil.Sentences(text) {
		n := textutil.Len(sentence)
		if length > 0 {
			n++
		}
		if length+n > maxLength {
			break
		}
		if length > 0 {
			summary += " "
		}
		summary += sentence
		length += n
	}

	if summary == "" {
		return textutil.CutAtWord(text, maxLength)
	}
	return summary
}
