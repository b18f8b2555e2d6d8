package ports

import (
	"context"
	"time"

	"NewsSentiment/internal/domain"
)

// ArticleSource pulls raw news articles about a company from upstream providers.
type ArticleSource interface {
	FetchCompany(ctx context.Context, company string, limit int) ([]domain.RawArticle, error)
}

// SentimentBackend scores a piece of text. Implementations signal an outage
// with domain.ErrClassifierUnavailable.
type SentimentBackend interface {
	Name() string
	Classify(ctx context.Context, text string) (domain.Prediction, error)
}

// TopicExtractor derives salient keywords from article text.
type TopicExtractor interface {
	Extract(text string, limit int) []string
}

// Classifier turns a canonical article into a scored one.
type Classifier interface {
	Classify(ctx context.Context, article domain.CanonicalArticle) (domain.ScoredArticle, error)
}

// Translator renders narrative text in the target language (e.g. "hi").
type Translator interface {
	Translate(ctx context.Context, text, language string) (string, error)
}

// SpeechSink renders the final narrative to audio and returns its location.
type SpeechSink interface {
	Render(ctx context.Context, name, text string) (string, error)
}

// Notifier streams digests to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// ResultRepository keeps an audit trail of finished runs.
type ResultRepository interface {
	SaveResult(ctx context.Context, result domain.AnalysisResult) (int64, error)
}

// Scheduler controls when watchlist runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
