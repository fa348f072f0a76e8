// Package research retrieves real web sources for a topic and turns
// them into prompt context, so generated articles can cite pages that
// exist. Entirely best-effort: any failure degrades to no context.
package research

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"geogate/internal/topics"
)

const searchEndpoint = "https://html.duckduckgo.com/html/"

// Source is one retrieved search result.
type Source struct {
	Title   string
	URL     string
	Snippet string
}

// Searcher queries the DuckDuckGo HTML endpoint and scrapes results.
type Searcher struct {
	http       *http.Client
	logger     *slog.Logger
	maxResults int
}

// New creates a Searcher returning at most maxResults sources per
// topic.
func New(logger *slog.Logger, maxResults int) *Searcher {
	if logger == nil {
		logger = slog.Default()
	}
	if maxResults <= 0 {
		maxResults = 5
	}
	return &Searcher{
		http:       &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
		maxResults: maxResults,
	}
}

// Context implements pipeline.ContextProvider: it renders the search
// results for a topic as a bulleted context block, or "" when the
// search fails or finds nothing.
func (s *Searcher) Context(ctx context.Context, t topics.Topic) string {
	query := t.Title
	if len(t.Keywords) > 0 {
		query += " " + strings.Join(t.Keywords, " ")
	}

	sources, err := s.Search(ctx, query)
	if err != nil {
		s.logger.Warn("web research failed, generating without context",
			slog.String("topic", t.Title), slog.Any("error", err))
		return ""
	}
	if len(sources) == 0 {
		return ""
	}

	var b strings.Builder
	for _, src := range sources {
		fmt.Fprintf(&b, "- %s (%s)", src.Title, src.URL)
		if src.Snippet != "" {
			fmt.Fprintf(&b, ": %s", src.Snippet)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Search scrapes the top results for a query.
func (s *Searcher) Search(ctx context.Context, query string) ([]Source, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		searchEndpoint+"?q="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; geogate/0.1)")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("research: search returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}
	return s.parseResults(doc), nil
}

func (s *Searcher) parseResults(doc *goquery.Document) []Source {
	var sources []Source
	doc.Find(".result").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		link := sel.Find(".result__a")
		href, ok := link.Attr("href")
		if !ok {
			return true
		}

		src := Source{
			Title:   strings.TrimSpace(link.Text()),
			URL:     resolveRedirect(href),
			Snippet: strings.TrimSpace(sel.Find(".result__snippet").Text()),
		}
		if src.Title == "" || src.URL == "" {
			return true
		}

		sources = append(sources, src)
		return len(sources) < s.maxResults
	})
	return sources
}

// resolveRedirect unwraps DuckDuckGo's uddg redirect parameter to the
// actual destination URL.
func resolveRedirect(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if actual := u.Query().Get("uddg"); actual != "" {
		return actual
	}
	if u.Host == "" {
		return ""
	}
	return href
}
