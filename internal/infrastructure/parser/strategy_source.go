package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"NewsSentiment/internal/config"
	"NewsSentiment/internal/domain"
	"NewsSentiment/internal/ports"
	"NewsSentiment/internal/scanner"
)

// StrategySource implements ArticleSource via registered scanner strategies.
type StrategySource struct {
	registry *scanner.Registry
	sites    []config.SourceConfig
	logger   *slog.Logger
}

var _ ports.ArticleSource = (*StrategySource)(nil)

// NewStrategySource wires scanner registry with config-defined sources.
func NewStrategySource(reg *scanner.Registry, sites []config.SourceConfig, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		sites:    sites,
		logger:   log,
	}
}

// FetchCompany queries every configured source for the company; limit
// applies per source. A failing source is logged and skipped, the call only
// fails when no source succeeded.
func (s *StrategySource) FetchCompany(ctx context.Context, company string, limit int) ([]domain.RawArticle, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}
	if len(s.sites) == 0 {
		return nil, fmt.Errorf("no article sources configured")
	}

	s.debug("fetch company", "company", company, "sites", len(s.sites), "limit", limit)

	var (
		aggregated []domain.RawArticle
		failures   []error
	)
	for _, site := range s.sites {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		s.debug("process site", "site", site.Name, "scanner", site.Scanner)
		results, err := s.scanSite(ctx, site, company, limit)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.warn("source failed", "site", site.Name, "error", err)
			failures = append(failures, err)
			continue
		}

		for i := range results {
			if results[i].Source == "" {
				results[i].Source = site.Name
			}
		}
		s.debug("site produced articles", "site", site.Name, "count", len(results))
		aggregated = append(aggregated, results...)
	}

	if len(failures) == len(s.sites) {
		return nil, fmt.Errorf("all sources failed: %w", errors.Join(failures...))
	}

	s.debug("strategy source done", "total_articles", len(aggregated))
	return aggregated, nil
}

func (s *StrategySource) scanSite(ctx context.Context, site config.SourceConfig, company string, limit int) ([]domain.RawArticle, error) {
	strategy, err := s.registry.Resolve(site.Scanner)
	if err != nil {
		return nil, fmt.Errorf("site %s: %w", site.Name, err)
	}

	req := scanner.Request{
		Company:  company,
		SiteName: site.Name,
		Limit:    limit,
		Options:  site.Options,
	}

	results, err := strategy.Scan(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("scan site %s: %w", site.Name, err)
	}
	return results, nil
}

func (s *StrategySource) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *StrategySource) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
