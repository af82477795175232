package enrich

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
)

const (
	// defaultTimeout bounds one article fetch.
	defaultTimeout = 15 * time.Second

	// maxBodySize caps how much of a page is read.
	maxBodySize = 4 << 20 // 4 MiB

	userAgent = "newsletter-rag/1.0"
)

// Fetcher downloads linked articles and extracts their readable text, so the
// index can hold full article content instead of just the newsletter blurb.
type Fetcher struct {
	client *http.Client
	logger *slog.Logger
}

// NewFetcher creates a fetcher with a bounded HTTP client.
func NewFetcher(logger *slog.Logger) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: defaultTimeout},
		logger: logger,
	}
}

// FetchArticle downloads the page at rawURL and returns its readable text.
// Pages that fail to download or parse return an error; callers are expected
// to degrade to the newsletter's own content.
func (f *Fetcher) FetchArticle(ctx context.Context, rawURL string) (string, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid article URL %q: %w", rawURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s returned status %d", rawURL, resp.StatusCode)
	}

	article, err := readability.FromReader(io.LimitReader(resp.Body, maxBodySize), pageURL)
	if err != nil {
		return "", fmt.Errorf("failed to extract readable content from %s: %w", rawURL, err)
	}

	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return "", fmt.Errorf("no readable content at %s", rawURL)
	}

	f.logger.Debug("Fetched article", "url", rawURL, "title", article.Title, "chars", len(text))
	return text, nil
}
