package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/finledger/finledger/internal/billing"
)

const pdfCacheTTL = 24 * time.Hour

// PDFCacheKey is where a rendered document PDF is stored in Redis.
func PDFCacheKey(documentID int64) string {
	return fmt.Sprintf("pdf:document:%d", documentID)
}

// CachedRenderer wraps a Renderer with a Redis byte cache. Confirmed
// documents are immutable, so a hit never goes stale; drafts are rendered
// fresh every time.
type CachedRenderer struct {
	renderer *Renderer
	cache    *redis.Client
}

func NewCachedRenderer(renderer *Renderer, cache *redis.Client) *CachedRenderer {
	return &CachedRenderer{renderer: renderer, cache: cache}
}

func (c *CachedRenderer) Render(ctx context.Context, d billing.Document) ([]byte, error) {
	cacheable := c.cache != nil && d.Status == billing.StatusConfirmed

	if cacheable {
		pdf, err := c.cache.Get(ctx, PDFCacheKey(d.ID)).Bytes()
		if err == nil {
			return pdf, nil
		}
		if !errors.Is(err, redis.Nil) {
			return nil, err
		}
	}

	pdf, err := c.renderer.Render(ctx, d)
	if err != nil {
		return nil, err
	}
	if cacheable {
		if err := c.cache.Set(ctx, PDFCacheKey(d.ID), pdf, pdfCacheTTL).Err(); err != nil {
			return nil, err
		}
	}
	return pdf, nil
}
