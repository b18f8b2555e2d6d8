package parser

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"NewsSentiment/internal/domain"
	"NewsSentiment/internal/scanner"
	"NewsSentiment/internal/textutil"
)

var dateExpr = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// ListingScanner crawls an HTML search-results page using CSS selectors
// from the site options ("item", "link", "title", "summary", "date").
type ListingScanner struct {
	fetcher pageFetcher
}

// NewListingScanner wires an HTTP client; a nil client gets a 20s timeout.
func NewListingScanner(client *http.Client) *ListingScanner {
	return &ListingScanner{fetcher: newPageFetcher(client)}
}

// Name identifies the strategy inside the registry.
func (s *ListingScanner) Name() string {
	return "listing"
}

// Scan loads the results page for req.Company and follows every result link.
func (s *ListingScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.RawArticle, error) {
	template := req.Option("url", "")
	if template == "" {
		return nil, fmt.Errorf("no listing url provided for site %s", req.SiteName)
	}

	pageURL := searchURL(template, req.Company)
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid listing url %s: %w", pageURL, err)
	}

	raw, err := s.fetcher.get(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch listing: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	entries := extractEntries(doc, base, req)
	return s.fetcher.fetchBodies(ctx, entries, req.SiteName)
}

func extractEntries(doc *goquery.Document, base *url.URL, req scanner.Request) []entry {
	var (
		collected []entry
		seen      = map[string]struct{}{}
	)

	doc.Find(req.Option("item", "article")).EachWithBreak(func(_ int, item *goquery.Selection) bool {
		e, ok := parseEntry(item, base, req)
		if !ok {
			return true
		}
		if _, dup := seen[e.Link]; dup {
			return true
		}
		seen[e.Link] = struct{}{}
		collected = append(collected, e)

		return req.Limit <= 0 || len(collected) < req.Limit
	})

	return collected
}

func parseEntry(item *goquery.Selection, base *url.URL, req scanner.Request) (entry, bool) {
	href, exists := item.Find(req.Option("link", "a[href]")).First().Attr("href")
	if !exists || strings.TrimSpace(href) == "" {
		return entry{}, false
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return entry{}, false
	}

	title := textutil.CollapseSpaces(item.Find(req.Option("title", "h2, h3")).First().Text())
	if title == "" {
		title = textutil.CollapseSpaces(item.Find(req.Option("link", "a[href]")).First().Text())
	}

	var publishedAt time.Time
	dateSel := item.Find(req.Option("date", "time"))
	dateText, _ := dateSel.First().Attr("datetime")
	if dateText == "" {
		dateText = dateSel.First().Text()
	}
	if match := dateExpr.FindString(dateText); match != "" {
		if parsed, err := time.Parse("2006-01-02", match); err == nil {
			publishedAt = parsed
		}
	}

	return entry{
		Link:        base.ResolveReference(ref).String(),
		Title:       title,
		Summary:     textutil.CollapseSpaces(item.Find(req.Option("summary", "p")).First().Text()),
		PublishedAt: publishedAt,
	}, true
}
