package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"NewsSentiment/internal/compose"
	"NewsSentiment/internal/config"
	"NewsSentiment/internal/infrastructure/llm"
	"NewsSentiment/internal/infrastructure/ml"
	"NewsSentiment/internal/infrastructure/parser"
	"NewsSentiment/internal/infrastructure/scheduler"
	"NewsSentiment/internal/infrastructure/speech"
	"NewsSentiment/internal/infrastructure/storage"
	"NewsSentiment/internal/infrastructure/telegram"
	"NewsSentiment/internal/logging"
	"NewsSentiment/internal/normalize"
	"NewsSentiment/internal/ports"
	"NewsSentiment/internal/scanner"
	"NewsSentiment/internal/sentiment"
	"NewsSentiment/internal/usecase"
)

// DefaultArticleLimit caps articles fetched per source.
const DefaultArticleLimit = 10

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	analysis  *usecase.Analysis
	scheduler *usecase.Scheduler
	db        *sql.DB
	logger    *slog.Logger
}

// New builds the application. Optional integrations that cannot be set up
// are logged and left out; only invalid core configuration is an error.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	a := &Application{cfg: cfg, logger: baseLogger.With("component", "app")}

	registry := scanner.NewRegistry()
	registry.Register(parser.NewFeedScanner(nil))
	registry.Register(parser.NewListingScanner(nil))
	source := parser.NewStrategySource(registry, cfg.Sources, baseLogger.With("component", "source"))

	var chatModel llm.Generator
	if cfg.LLM.APIKey != "" {
		model, err := llm.NewChatModel(ctx, cfg.LLM)
		if err != nil {
			a.logger.Warn("llm disabled", "error", err)
		} else {
			chatModel = model
		}
	}

	primary, err := a.primaryBackend(cfg.Classifier, cfg.Inference, chatModel)
	if err != nil {
		return nil, err
	}
	chain := sentiment.NewChain(primary, sentiment.NewLexicon(cfg.Classifier.FallbackConfidence))
	classifier := sentiment.NewAdapter(chain, nil, sentiment.Options{
		Timeout:   cfg.Classifier.Timeout,
		MaxTopics: cfg.Classifier.MaxTopics,
	}, baseLogger.With("component", "classifier"))

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Normalizer: normalize.New(normalize.Options{
			Denylist:       cfg.Normalizer.Denylist,
			MinBodyLength:  cfg.Normalizer.MinBodyLength,
			IDPrefixLength: cfg.Normalizer.IDPrefixLength,
		}),
		Classifier: classifier,
		Composer:   compose.New(cfg.Composer.MaxLength),
		Workers:    cfg.Classifier.Workers,
		Logger:     baseLogger.With("component", "pipeline"),
	})

	deps := usecase.AnalysisDeps{
		Source:   source,
		Pipeline: pipeline,
		Language: cfg.Speech.Language,
		Limit:    DefaultArticleLimit,
		Logger:   baseLogger.With("component", "analysis"),
	}
	if chatModel != nil {
		deps.Translator = llm.NewTranslator(llm.NewClient(chatModel, cfg.Classifier.RPS, cfg.Classifier.Burst))
	}
	if len(cfg.Speech.Endpoints) > 0 {
		deps.Speech = speech.NewTTS(cfg.Speech, baseLogger.With("component", "speech"))
	}
	if notifier := telegram.NewNotifier(cfg.Notifications.Telegram); notifier.Enabled() {
		deps.Notifier = notifier
	}
	if repo := a.openRepository(ctx, cfg.Database); repo != nil {
		deps.Repository = repo
	}

	a.analysis = usecase.NewAnalysis(deps)
	a.scheduler = usecase.NewScheduler(
		scheduler.NewIntervalScheduler(cfg.Scheduler.Interval),
		a.analysis,
		cfg.Watchlist,
		baseLogger.With("component", "scheduler"),
	)
	return a, nil
}

func (a *Application) primaryBackend(cfg config.ClassifierConfig, inference config.InferenceConfig, chatModel llm.Generator) (ports.SentimentBackend, error) {
	switch cfg.Primary {
	case config.PrimaryHTTP, "":
		if inference.URL == "" {
			return nil, errors.New("classifier: inference url is required for the http backend")
		}
		return ml.NewClient(inference.URL, inference.APIKey, cfg.RPS, cfg.Burst), nil
	case config.PrimaryLLM:
		if chatModel == nil {
			a.logger.Warn("llm backend unavailable, classifying with lexicon only")
			return nil, nil
		}
		return llm.NewSentimentBackend(llm.NewClient(chatModel, cfg.RPS, cfg.Burst)), nil
	case config.PrimaryNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("classifier: unknown primary backend %q", cfg.Primary)
	}
}

func (a *Application) openRepository(ctx context.Context, cfg config.DatabaseConfig) *storage.PostgresRepository {
	if cfg.DSN == "" {
		return nil
	}
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		a.logger.Warn("persistence disabled", "error", err)
		return nil
	}
	repo := storage.NewPostgresRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		a.logger.Warn("persistence disabled", "error", err)
		_ = db.Close()
		return nil
	}
	a.db = db
	return repo
}

// Analyze runs one company query end to end.
func (a *Application) Analyze(ctx context.Context, company string) (usecase.Outcome, error) {
	return a.analysis.Analyze(ctx, company)
}

// Watch analyzes the watchlist on every scheduler tick until ctx is done.
func (a *Application) Watch(ctx context.Context) error {
	if len(a.cfg.Watchlist) == 0 {
		return errors.New("watchlist is empty")
	}
	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("watching companies", "count", len(a.cfg.Watchlist), "interval", a.cfg.Scheduler.Interval)

	<-ctx.Done()
	return a.scheduler.Stop(context.WithoutCancel(ctx))
}

// Close releases the database handle, if any.
func (a *Application) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
