package usecase

import (
	"context"
	"log/slog"
	"time"

	"NewsSentiment/internal/ports"
)

// Scheduler re-runs the analysis for every watched company on each tick.
type Scheduler struct {
	driver    ports.Scheduler
	analysis  *Analysis
	watchlist []string
	logger    *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring watchlist runs.
func NewScheduler(driver ports.Scheduler, analysis *Analysis, watchlist []string, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scheduler{driver: driver, analysis: analysis, watchlist: watchlist, logger: logger}
}

// Start registers the watchlist job with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.analysis == nil || len(s.watchlist) == 0 {
		return nil
	}

	return s.driver.Start(ctx, func(trigger time.Time) {
		s.RunOnce(ctx, trigger)
	})
}

// RunOnce analyzes each watched company in turn; a failing company is logged
// and does not stop the rest.
func (s *Scheduler) RunOnce(ctx context.Context, trigger time.Time) {
	for _, company := range s.watchlist {
		if ctx.Err() != nil {
			return
		}
		out, err := s.analysis.Analyze(ctx, company)
		if err != nil {
			s.logger.Error("watchlist run failed", "company", company, "trigger", trigger, "error", err)
			continue
		}
		s.logger.Info("watchlist run done",
			"company", company,
			"articles", len(out.Result.ScoredArticles),
			"dominant", out.Result.Aggregate.DominantLabel,
			"warnings", len(out.Warnings))
	}
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
