package parser

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"NewsSentiment/internal/domain"
	"NewsSentiment/internal/scanner"
)

// QueryPlaceholder marks where the escaped company name goes in a search URL.
const QueryPlaceholder = "{query}"

// FeedScanner queries an RSS/Atom news search and downloads each hit.
type FeedScanner struct {
	fetcher pageFetcher
}

// NewFeedScanner wires an HTTP client; a nil client gets a 20s timeout.
func NewFeedScanner(client *http.Client) *FeedScanner {
	return &FeedScanner{fetcher: newPageFetcher(client)}
}

// Name identifies the strategy inside the registry.
func (s *FeedScanner) Name() string {
	return "feed"
}

// Scan reads the search feed for req.Company (option "url") and returns at
// most req.Limit articles.
func (s *FeedScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.RawArticle, error) {
	template := req.Option("url", "")
	if template == "" {
		return nil, fmt.Errorf("no feed url provided for site %s", req.SiteName)
	}

	raw, err := s.fetcher.get(ctx, searchURL(template, req.Company))
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	entries := make([]entry, 0, len(feed.Items))
	seen := map[string]struct{}{}
	for _, item := range feed.Items {
		if item == nil || item.Link == "" {
			continue
		}
		if _, ok := seen[item.Link]; ok {
			continue
		}
		seen[item.Link] = struct{}{}
		entries = append(entries, entry{
			Link:        item.Link,
			Title:       strings.TrimSpace(item.Title),
			Summary:     itemSummary(item),
			PublishedAt: itemTime(item),
		})
		if req.Limit > 0 && len(entries) == req.Limit {
			break
		}
	}

	return s.fetcher.fetchBodies(ctx, entries, req.SiteName)
}

func searchURL(template, company string) string {
	return strings.ReplaceAll(template, QueryPlaceholder, url.QueryEscape(strings.TrimSpace(company)))
}

func itemSummary(item *gofeed.Item) string {
	if strings.TrimSpace(item.Content) != "" {
		return item.Content
	}
	return item.Description
}

func itemTime(item *gofeed.Item) time.Time {
	switch {
	case item.PublishedParsed != nil:
		return item.PublishedParsed.UTC()
	case item.UpdatedParsed != nil:
		return item.UpdatedParsed.UTC()
	default:
		return time.Time{}
	}
}
