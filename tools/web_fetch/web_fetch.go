package web_fetch

import (
	"context"
	"errors"
	"time"

	"github.com/rageebridwan/newsmind/internal/rag"
	"github.com/rageebridwan/newsmind/tools/web_fetch/chromedp"
	"github.com/rageebridwan/newsmind/tools/web_fetch/httpfetch"
	"github.com/rageebridwan/newsmind/tools/web_fetch/models"
)

const (
	DefaultTimeout  = 15 * time.Second
	MaxCharsDefault = 20000

	// DefaultDelay is the pause between consecutive fetches of one batch.
	DefaultDelay = time.Second
)

// WebFetcher fetches one URL and extracts its article content. A fetch
// failure is reported through the returned page's Success flag, not the
// error; the error is reserved for unusable input.
type WebFetcher interface {
	Exec(ctx context.Context, url string) (rag.Page, error)
}

type FetcherType string

const (
	HTTPFetcherType     FetcherType = "http"
	ChromedpFetcherType FetcherType = "chromedp"
)

func NewWebFetcher(fetcherType FetcherType, timeout time.Duration, maxChars int) (WebFetcher, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxChars <= 0 {
		maxChars = MaxCharsDefault
	}

	switch fetcherType {
	case HTTPFetcherType:
		return &httpfetch.Fetch{Timeout: timeout, MaxChars: maxChars}, nil
	case ChromedpFetcherType:
		return &chromedp.Fetch{Timeout: timeout, MaxChars: maxChars}, nil
	default:
		return nil, errors.New("unsupported fetcher type")
	}
}

// FetchAll fetches every URL in order, pausing between requests so hosts
// are not hammered. Per-URL failures become failure pages; the only error
// is context cancellation, which returns the pages collected so far.
func FetchAll(ctx context.Context, f WebFetcher, urls []string, delay time.Duration) ([]rag.Page, error) {
	if delay < 0 {
		delay = DefaultDelay
	}
	var pages []rag.Page
	for i, u := range urls {
		page, err := f.Exec(ctx, u)
		if err != nil {
			page = models.Failure(u, err)
		}
		pages = append(pages, page)

		if i == len(urls)-1 || delay == 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return pages, ctx.Err()
		case <-time.After(delay):
		}
	}
	return pages, nil
}
