// Package normalize turns raw extracted articles into a deduplicated,
// length-filtered canonical set.
package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"NewsSentiment/internal/domain"
	"NewsSentiment/internal/textutil"
)

const (
	DefaultMinBodyLength  = 40
	DefaultIDPrefixLength = 500

	// cleaning reaches a fixed point well before this; the cap only guards
	// against pathological input.
	maxCleanPasses = 8
)

// DefaultDenylist contains boilerplate fragments commonly left by extractors.
var DefaultDenylist = []string{
	"accept all cookies",
	"we use cookies to improve your experience",
	"this website uses cookies",
	"subscribe to our newsletter",
	"sign up for our newsletter",
	"click here to subscribe",
	"advertisement",
}

var markupExpr = regexp.MustCompile(`<[a-zA-Z!/][^>]*>`)

// Options tune the normalizer; zero values fall back to defaults.
type Options struct {
	Denylist       []string
	MinBodyLength  int
	IDPrefixLength int
}

// Result carries canonical articles in input order plus the skipped inputs.
type Result struct {
	Articles []domain.CanonicalArticle
	Skipped  []domain.Skip
}

// Normalizer cleans and deduplicates raw articles. It holds no state between calls.
type Normalizer struct {
	denylist       []*regexp.Regexp
	minBodyLength  int
	idPrefixLength int
}

// New builds a Normalizer, applying defaults for unset options.
func New(opts Options) *Normalizer {
	denylist := opts.Denylist
	if denylist == nil {
		denylist = DefaultDenylist
	}
	patterns := make([]*regexp.Regexp, 0, len(denylist))
	for _, item := range denylist {
		item = textutil.CollapseSpaces(item)
		if item != "" {
			patterns = append(patterns, regexp.MustCompile("(?i)"+regexp.QuoteMeta(item)))
		}
	}

	n := &Normalizer{
		denylist:       patterns,
		minBodyLength:  opts.MinBodyLength,
		idPrefixLength: opts.IDPrefixLength,
	}
	if n.minBodyLength <= 0 {
		n.minBodyLength = DefaultMinBodyLength
	}
	if n.idPrefixLength <= 0 {
		n.idPrefixLength = DefaultIDPrefixLength
	}
	return n
}

// Normalize cleans every raw article, drops the ones with too little content
// and keeps only the first occurrence of each id.
func (n *Normalizer) Normalize(raw []domain.RawArticle) Result {
	result := Result{Articles: make([]domain.CanonicalArticle, 0, len(raw))}
	seen := make(map[string]struct{}, len(raw))

	for _, item := range raw {
		title := n.CleanTitle(item.Title)
		body := n.CleanBody(item.BodyText)

		if textutil.Len(body) < n.minBodyLength {
			result.Skipped = append(result.Skipped, domain.Skip{Ref: ref(item), Reason: domain.SkippedTooShort})
			continue
		}

		id := n.ArticleID(title, body)
		if _, dup := seen[id]; dup {
			result.Skipped = append(result.Skipped, domain.Skip{Ref: ref(item), Reason: domain.SkippedDuplicate})
			continue
		}
		seen[id] = struct{}{}

		result.Articles = append(result.Articles, domain.CanonicalArticle{
			ID:          id,
			SourceURL:   strings.TrimSpace(item.SourceURL),
			Source:      textutil.CollapseSpaces(item.Source),
			Title:       title,
			BodyText:    body,
			PublishedAt: item.PublishedAt,
		})
	}

	return result
}

// Canonicalize re-runs normalization over an already canonical set.
func (n *Normalizer) Canonicalize(articles []domain.CanonicalArticle) Result {
	raw := make([]domain.RawArticle, len(articles))
	for i, a := range articles {
		raw[i] = domain.RawArticle{
			SourceURL:   a.SourceURL,
			Source:      a.Source,
			Title:       a.Title,
			BodyText:    a.BodyText,
			PublishedAt: a.PublishedAt,
		}
	}
	return n.Normalize(raw)
}

// ArticleID hashes the lower-cased title and body prefix.
func (n *Normalizer) ArticleID(title, body string) string {
	h := sha256.New()
	h.Write([]byte(strings.ToLower(title)))
	h.Write([]byte{0})
	h.Write([]byte(strings.ToLower(textutil.Truncate(body, n.idPrefixLength))))
	return hex.EncodeToString(h.Sum(nil)[:16])
}

// CleanTitle strips markup and collapses whitespace.
func (n *Normalizer) CleanTitle(title string) string {
	for i := 0; i < maxCleanPasses; i++ {
		next := textutil.CollapseSpaces(stripMarkup(title))
		if next == title {
			break
		}
		title = next
	}
	return title
}

// CleanBody strips markup, removes denylisted boilerplate and collapses whitespace.
// The output is a fixed point: cleaning it again returns it unchanged.
func (n *Normalizer) CleanBody(body string) string {
	for i := 0; i < maxCleanPasses; i++ {
		next := textutil.CollapseSpaces(n.removeBoilerplate(stripMarkup(body)))
		if next == body {
			break
		}
		body = next
	}
	return body
}

func (n *Normalizer) removeBoilerplate(text string) string {
	text = textutil.CollapseSpaces(text)
	for _, expr := range n.denylist {
		text = expr.ReplaceAllString(text, " ")
	}
	return text
}

func stripMarkup(text string) string {
	if !markupExpr.MatchString(text) {
		return text
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return markupExpr.ReplaceAllString(text, " ")
	}
	doc.Find("script, style, noscript, iframe").Remove()
	doc.Find("br, p, div, li, h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml(" ")
	})
	return doc.Text()
}

func ref(item domain.RawArticle) string {
	if item.SourceURL != "" {
		return item.SourceURL
	}
	return item.Title
}
