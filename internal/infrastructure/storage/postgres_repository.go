package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"NewsSentiment/internal/domain"
	"NewsSentiment/internal/ports"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS analysis_runs (
		id               BIGSERIAL PRIMARY KEY,
		company          TEXT NOT NULL,
		narrative        TEXT NOT NULL,
		dominant_label   TEXT NOT NULL,
		mean_confidence  DOUBLE PRECISION NOT NULL,
		overall_tone     TEXT NOT NULL,
		distribution     JSONB NOT NULL,
		common_topics    TEXT[] NOT NULL DEFAULT '{}',
		outlier_articles TEXT[] NOT NULL DEFAULT '{}',
		partial_failures JSONB NOT NULL DEFAULT '[]',
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS scored_articles (
		run_id       BIGINT NOT NULL REFERENCES analysis_runs(id) ON DELETE CASCADE,
		article_id   TEXT NOT NULL,
		title        TEXT NOT NULL,
		source       TEXT NOT NULL DEFAULT '',
		source_url   TEXT NOT NULL DEFAULT '',
		published_at TIMESTAMPTZ,
		label        TEXT NOT NULL,
		confidence   DOUBLE PRECISION NOT NULL,
		topics       TEXT[] NOT NULL DEFAULT '{}',
		summary      TEXT NOT NULL DEFAULT '',
		backend      TEXT NOT NULL,
		fallback     BOOLEAN NOT NULL DEFAULT FALSE,
		PRIMARY KEY (run_id, article_id)
	)`,
}

// PostgresRepository persists finished analysis runs into Postgres.
type PostgresRepository struct {
	db *sql.DB
}

var _ ports.ResultRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// EnsureSchema creates the tables when they are missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if r.db == nil {
		return errors.New("postgres repository has no database")
	}
	for _, stmt := range schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// SaveResult stores the run and its scored articles in one transaction and
// returns the run id.
func (r *PostgresRepository) SaveResult(ctx context.Context, result domain.AnalysisResult) (int64, error) {
	if r.db == nil {
		return 0, errors.New("postgres repository has no database")
	}

	runQuery, runArgs, err := buildRunInsert(result)
	if err != nil {
		return 0, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var runID int64
	if err := tx.QueryRowContext(ctx, runQuery, runArgs...).Scan(&runID); err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}

	if len(result.ScoredArticles) > 0 {
		query, args, err := buildArticleInsert(runID, result.ScoredArticles)
		if err != nil {
			return 0, err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("insert articles: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return runID, nil
}

func buildRunInsert(result domain.AnalysisResult) (string, []any, error) {
	report := result.Aggregate

	distribution, err := json.Marshal(report.Distribution)
	if err != nil {
		return "", nil, fmt.Errorf("marshal distribution: %w", err)
	}
	failures := result.PartialFailures
	if failures == nil {
		failures = []domain.PartialFailure{}
	}
	failuresJSON, err := json.Marshal(failures)
	if err != nil {
		return "", nil, fmt.Errorf("marshal failures: %w", err)
	}

	commonTopics := make([]string, 0, len(report.CommonTopics))
	for _, tc := range report.CommonTopics {
		commonTopics = append(commonTopics, tc.Topic)
	}

	query, args, err := psql.Insert("analysis_runs").
		Columns("company", "narrative", "dominant_label", "mean_confidence", "overall_tone",
			"distribution", "common_topics", "outlier_articles", "partial_failures").
		Values(result.CompanyName, result.Narrative, string(report.DominantLabel), report.MeanConfidence,
			report.OverallTone, string(distribution), textArray(commonTopics),
			textArray(report.OutlierArticles), string(failuresJSON)).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build run insert: %w", err)
	}
	return query, args, nil
}

func buildArticleInsert(runID int64, articles []domain.ScoredArticle) (string, []any, error) {
	insert := psql.Insert("scored_articles").
		Columns("run_id", "article_id", "title", "source", "source_url", "published_at",
			"label", "confidence", "topics", "summary", "backend", "fallback")

	for _, a := range articles {
		published := sql.NullTime{Time: a.PublishedAt, Valid: !a.PublishedAt.IsZero()}
		insert = insert.Values(runID, a.ID, a.Title, a.Source, a.SourceURL, published,
			string(a.Label), a.Confidence, textArray(a.Topics), a.Summary, a.Backend, a.Fallback)
	}

	query, args, err := insert.
		Suffix("ON CONFLICT (run_id, article_id) DO NOTHING").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build article insert: %w", err)
	}
	return query, args, nil
}

// textArray encodes nil as an empty array so NOT NULL columns accept it.
func textArray(values []string) pq.StringArray {
	if values == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(values)
}
