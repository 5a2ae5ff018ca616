package web_fetch

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rageebridwan/newsmind/internal/helpers"
	"github.com/rageebridwan/newsmind/internal/rag"
)

// cachedFetcher fronts a fetcher with a Redis page cache keyed by the
// canonical URL fingerprint. Only successful pages are cached; failures
// are retried on the next request.
type cachedFetcher struct {
	inner  WebFetcher
	rdb    *redis.Client
	ttl    time.Duration
	logger *log.Logger
}

// WithCache wraps a fetcher with a Redis page cache. A nil client returns
// the fetcher unchanged, so caching stays optional.
func WithCache(inner WebFetcher, rdb *redis.Client, ttl time.Duration) WebFetcher {
	if rdb == nil {
		return inner
	}
	return &cachedFetcher{
		inner:  inner,
		rdb:    rdb,
		ttl:    ttl,
		logger: log.New(log.Writer(), "[FETCH] ", log.LstdFlags),
	}
}

func (c *cachedFetcher) Exec(ctx context.Context, url string) (rag.Page, error) {
	key := cacheKey(url)
	if data, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var page rag.Page
		if json.Unmarshal(data, &page) == nil {
			return page, nil
		}
	}

	page, err := c.inner.Exec(ctx, url)
	if err != nil {
		return page, err
	}
	if page.Success {
		data, err := json.Marshal(page)
		if err == nil {
			if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
				c.logger.Printf("cache write failed for %s: %v", url, err)
			}
		}
	}
	return page, nil
}

func cacheKey(raw string) string {
	fp, err := helpers.URLFingerprint(raw)
	if err != nil {
		fp = raw
	}
	return "fetch:page:" + fp
}
