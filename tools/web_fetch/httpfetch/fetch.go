package httpfetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"

	"github.com/rageebridwan/newsmind/internal/rag"
	"github.com/rageebridwan/newsmind/tools/web_fetch/models"
)

const userAgent = "Mozilla/5.0 (compatible; newsmind/1.0)"

// Fetch retrieves pages over plain HTTP and extracts the readable article
// text. Pages that render their content with JavaScript need the chromedp
// fetcher instead.
type Fetch struct {
	Timeout  time.Duration // per-request timeout
	MaxChars int           // maximum characters kept from the article text
}

func (f Fetch) Exec(ctx context.Context, rawURL string) (rag.Page, error) {
	if strings.TrimSpace(rawURL) == "" {
		return rag.Page{}, errors.New("invalid url")
	}

	ctx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return models.Failure(rawURL, err), nil
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return models.Failure(rawURL, err), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return models.Failure(rawURL, fmt.Errorf("status %d", resp.StatusCode)), nil
	}

	article, err := readability.FromReader(resp.Body, mustParseURL(rawURL))
	if err != nil {
		return models.Failure(rawURL, err), nil
	}

	text := article.TextContent
	if f.MaxChars > 0 && len(text) > f.MaxChars {
		text = text[:f.MaxChars]
	}
	return models.Success(rawURL, article.Title, text), nil
}

func mustParseURL(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		return &url.URL{}
	}
	return u
}
