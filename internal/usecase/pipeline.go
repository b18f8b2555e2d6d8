package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"NewsSentiment/internal/aggregate"
	"NewsSentiment/internal/compose"
	"NewsSentiment/internal/domain"
	"NewsSentiment/internal/normalize"
	"NewsSentiment/internal/ports"
)

// DefaultWorkers bounds concurrent classifications when PipelineDeps.Workers is unset.
const DefaultWorkers = 4

// PipelineDeps wires the analysis stages into the orchestrator.
type PipelineDeps struct {
	Normalizer *normalize.Normalizer
	Classifier ports.Classifier
	Composer   *compose.Composer
	Workers    int
	Logger     *slog.Logger
}

// companyScoped is implemented by classifiers that tailor themselves to the
// company under analysis.
type companyScoped interface {
	ForCompany(company string) ports.Classifier
}

// Pipeline runs normalize -> classify -> aggregate -> compose for one company.
// It keeps no state between runs.
type Pipeline struct {
	normalizer *normalize.Normalizer
	classifier ports.Classifier
	composer   *compose.Composer
	workers    int
	logger     *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	p := &Pipeline{
		normalizer: deps.Normalizer,
		classifier: deps.Classifier,
		composer:   deps.Composer,
		workers:    deps.Workers,
		logger:     deps.Logger,
	}
	if p.normalizer == nil {
		p.normalizer = normalize.New(normalize.Options{})
	}
	if p.composer == nil {
		p.composer = compose.New(0)
	}
	if p.workers <= 0 {
		p.workers = DefaultWorkers
	}
	if p.logger == nil {
		p.logger = slog.New(slog.DiscardHandler)
	}
	return p
}

// Run analyzes raw articles about company. Articles that fail classification
// are listed in PartialFailures and never abort the run; when nothing can be
// analyzed the result carries an empty aggregate and a "no analyzable content"
// narrative. The only error is ctx's, in which case partial results are dropped.
func (p *Pipeline) Run(ctx context.Context, company string, raw []domain.RawArticle) (domain.AnalysisResult, error) {
	if p.classifier == nil {
		return domain.AnalysisResult{}, errors.New("pipeline: classifier is not configured")
	}

	started := time.Now()
	result := domain.AnalysisResult{
		CompanyName:     company,
		ScoredArticles:  []domain.ScoredArticle{},
		PartialFailures: []domain.PartialFailure{},
	}

	normalized := p.normalizer.Normalize(raw)
	result.Skipped = normalized.Skipped
	p.logger.Debug("normalized articles",
		"company", company,
		"raw", len(raw),
		"canonical", len(normalized.Articles),
		"skipped", len(normalized.Skipped))

	if len(normalized.Articles) == 0 {
		return p.degenerate(result), nil
	}

	classifier := p.classifier
	if scoped, ok := classifier.(companyScoped); ok {
		classifier = scoped.ForCompany(company)
	}

	scored, failures, err := p.classifyAll(ctx, classifier, normalized.Articles)
	if err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("classify articles: %w", err)
	}
	result.ScoredArticles = scored
	result.PartialFailures = failures

	report, err := aggregate.Aggregate(scored)
	if errors.Is(err, domain.ErrEmptyInput) {
		p.logger.Warn("no article could be classified", "company", company, "failures", len(failures))
		return p.degenerate(result), nil
	}
	if err != nil {
		return domain.AnalysisResult{}, err
	}

	result.Aggregate = report
	result.Narrative = p.composer.Compose(company, report, scored)

	p.logger.Info("analysis finished",
		"company", company,
		"scored", len(scored),
		"failed", len(failures),
		"dominant", report.DominantLabel,
		"elapsed", time.Since(started).Round(time.Millisecond))
	return result, nil
}

func (p *Pipeline) degenerate(result domain.AnalysisResult) domain.AnalysisResult {
	result.Aggregate = domain.EmptyReport()
	result.Narrative = p.composer.Empty(result.CompanyName)
	return result
}

// classifyAll fans articles out to a bounded worker pool and waits for every
// task. Each task writes only its own slot, so no locking is needed; the
// returned slices preserve input order.
func (p *Pipeline) classifyAll(ctx context.Context, classifier ports.Classifier, articles []domain.CanonicalArticle) ([]domain.ScoredArticle, []domain.PartialFailure, error) {
	type slot struct {
		scored  domain.ScoredArticle
		failure *domain.PartialFailure
	}
	slots := make([]slot, len(articles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i := range articles {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			article := articles[i]
			scored, err := classifier.Classify(gctx, article)
			switch {
			case err == nil:
				slots[i].scored = scored
				return nil
			case gctx.Err() != nil:
				return gctx.Err()
			default:
				p.logger.Warn("article classification failed", "article", article.ID, "error", err)
				slots[i].failure = &domain.PartialFailure{
					Ref:    failureRef(article),
					Kind:   domain.ClassificationFailed,
					Detail: err.Error(),
				}
				return nil
			}
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	scored := make([]domain.ScoredArticle, 0, len(articles))
	failures := []domain.PartialFailure{}
	for _, s := range slots {
		if s.failure != nil {
			failures = append(failures, *s.failure)
			continue
		}
		scored = append(scored, s.scored)
	}
	return scored, failures, nil
}

func failureRef(article domain.CanonicalArticle) string {
	if article.ID != "" {
		return article.ID
	}
	return article.SourceURL
}
