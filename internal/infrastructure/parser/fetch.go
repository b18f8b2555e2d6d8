package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/sync/errgroup"

	"NewsSentiment/internal/domain"
	"NewsSentiment/internal/textutil"
)

const (
	userAgent      = "NewsSentiment/1.0"
	maxPageBytes   = 4 << 20
	fetchWorkers   = 4
	defaultTimeout = 20 * time.Second
)

// entry is one search hit before its article page has been fetched.
type entry struct {
	Link        string
	Title       string
	Summary     string
	PublishedAt time.Time
}

// pageFetcher downloads article pages and extracts their readable text.
type pageFetcher struct {
	client *http.Client
}

func newPageFetcher(client *http.Client) pageFetcher {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return pageFetcher{client: client}
}

func (f pageFetcher) get(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned %s", pageURL, resp.Status)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", pageURL, err)
	}
	return raw, nil
}

// extract returns the page title and main text. Readability is tried first;
// paragraphs collected with goquery serve pages it cannot parse.
func (f pageFetcher) extract(ctx context.Context, link string) (string, string, error) {
	raw, err := f.get(ctx, link)
	if err != nil {
		return "", "", err
	}

	pageURL, err := url.Parse(link)
	if err != nil {
		return "", "", fmt.Errorf("parse link %s: %w", link, err)
	}

	if article, err := readability.FromReader(bytes.NewReader(raw), pageURL); err == nil {
		if text := strings.TrimSpace(article.TextContent); text != "" {
			return strings.TrimSpace(article.Title), text, nil
		}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return "", "", fmt.Errorf("parse document: %w", err)
	}
	paragraphs := doc.Find("article p, main p")
	if paragraphs.Length() == 0 {
		paragraphs = doc.Find("p")
	}
	var parts []string
	paragraphs.Each(func(_ int, p *goquery.Selection) {
		if text := textutil.CollapseSpaces(p.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	return textutil.CollapseSpaces(doc.Find("title").First().Text()), strings.Join(parts, "\n"), nil
}

// fetchBodies resolves every entry to a raw article. A page that cannot be
// fetched keeps the entry summary as its body.
func (f pageFetcher) fetchBodies(ctx context.Context, entries []entry, site string) ([]domain.RawArticle, error) {
	articles := make([]domain.RawArticle, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchWorkers)
	for i, e := range entries {
		g.Go(func() error {
			articles[i] = domain.RawArticle{
				SourceURL:   e.Link,
				Source:      site,
				Title:       e.Title,
				BodyText:    e.Summary,
				PublishedAt: e.PublishedAt,
			}
			title, body, err := f.extract(gctx, e.Link)
			if err != nil {
				return gctx.Err()
			}
			if strings.TrimSpace(body) != "" {
				articles[i].BodyText = body
			}
			if articles[i].Title == "" {
				articles[i].Title = title
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return articles, nil
}
