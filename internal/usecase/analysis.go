package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"NewsSentiment/internal/domain"
	"NewsSentiment/internal/ports"
)

// AnalysisDeps wires the article source, the pipeline and the optional
// delivery adapters.
type AnalysisDeps struct {
	Source     ports.ArticleSource
	Pipeline   *Pipeline
	Translator ports.Translator
	Speech     ports.SpeechSink
	Notifier   ports.Notifier
	Repository ports.ResultRepository
	Language   string
	Limit      int
	Logger     *slog.Logger
}

// Analysis fetches articles for a company, runs the pipeline and delivers
// the outcome to speech, chat and storage sinks.
type Analysis struct {
	source     ports.ArticleSource
	pipeline   *Pipeline
	translator ports.Translator
	speech     ports.SpeechSink
	notifier   ports.Notifier
	repository ports.ResultRepository
	language   string
	limit      int
	logger     *slog.Logger
}

// Outcome is an AnalysisResult plus what happened while delivering it.
// Delivery problems are warnings; they never invalidate the result.
type Outcome struct {
	Result    domain.AnalysisResult `json:"result"`
	Spoken    string                `json:"spoken_text,omitempty"`
	AudioPath string                `json:"audio_path,omitempty"`
	RunID     int64                 `json:"run_id,omitempty"`
	Warnings  []string              `json:"warnings,omitempty"`
}

// NewAnalysis constructs the use case.
func NewAnalysis(deps AnalysisDeps) *Analysis {
	a := &Analysis{
		source:     deps.Source,
		pipeline:   deps.Pipeline,
		translator: deps.Translator,
		speech:     deps.Speech,
		notifier:   deps.Notifier,
		repository: deps.Repository,
		language:   deps.Language,
		limit:      deps.Limit,
		logger:     deps.Logger,
	}
	if a.logger == nil {
		a.logger = slog.New(slog.DiscardHandler)
	}
	return a
}

// Analyze runs one company query end to end.
func (a *Analysis) Analyze(ctx context.Context, company string) (Outcome, error) {
	company = strings.TrimSpace(company)
	if company == "" {
		return Outcome{}, errors.New("company name is required")
	}
	if a.source == nil || a.pipeline == nil {
		return Outcome{}, errors.New("analysis is not configured")
	}

	raw, err := a.source.FetchCompany(ctx, company, a.limit)
	if err != nil {
		return Outcome{}, fmt.Errorf("fetch articles: %w", err)
	}

	return a.AnalyzeArticles(ctx, company, raw)
}

// AnalyzeArticles runs the pipeline over articles supplied by the caller and
// delivers the result.
func (a *Analysis) AnalyzeArticles(ctx context.Context, company string, raw []domain.RawArticle) (Outcome, error) {
	result, err := a.pipeline.Run(ctx, company, raw)
	if err != nil {
		return Outcome{}, err
	}

	out := Outcome{Result: result, Spoken: result.Narrative}
	warn := func(stage string, err error) {
		a.logger.Warn("delivery failed", "company", company, "stage", stage, "error", err)
		out.Warnings = append(out.Warnings, fmt.Sprintf("%s: %v", stage, err))
	}

	if a.translator != nil && a.language != "" {
		translated, err := a.translator.Translate(ctx, result.Narrative, a.language)
		if err != nil {
			warn("translate", err)
		} else if translated = strings.TrimSpace(translated); translated != "" {
			out.Spoken = translated
		}
	}

	if a.speech != nil {
		path, err := a.speech.Render(ctx, company, out.Spoken)
		if err != nil {
			warn("speech", err)
		} else {
			out.AudioPath = path
		}
	}

	if a.repository != nil {
		id, err := a.repository.SaveResult(ctx, result)
		if err != nil {
			warn("persist", err)
		} else {
			out.RunID = id
		}
	}

	if a.notifier != nil {
		if err := a.notifier.PublishDigest(ctx, buildDigestMessage(result)); err != nil {
			warn("notify", err)
		}
	}

	return out, nil
}

func buildDigestMessage(result domain.AnalysisResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n%s\n\n", result.CompanyName, result.Narrative)

	for _, a := range result.ScoredArticles {
		fmt.Fprintf(&b, "- %s\n%s (%.2f)", a.Title, a.Label, a.Confidence)
		if a.Fallback {
			b.WriteString(" [fallback]")
		}
		b.WriteByte('\n')
		if a.SourceURL != "" {
			fmt.Fprintf(&b, "%s\n", a.SourceURL)
		}
	}

	if len(result.PartialFailures) > 0 {
		fmt.Fprintf(&b, "\n%d article(s) could not be classified.\n", len(result.PartialFailures))
	}
	return b.String()
}
