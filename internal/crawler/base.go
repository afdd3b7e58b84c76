package crawler

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"sjsage522/refundscraper/helpers"
	"sjsage522/refundscraper/logger"
	apperrors "sjsage522/refundscraper/pkg/errors"
	"sjsage522/refundscraper/services/cache"
)

// BaseScraper provides fetching with rate-limit flags and a page cache
type BaseScraper struct {
	Channel    string
	ListingURL string
	CacheKey   string
	CacheSvc   cache.CacheService
	BlockTime  time.Duration
	PageTTL    time.Duration
	Fetcher    helpers.Fetcher
	log        *logger.Logger
}

// fetchListing fetches the listing page unless the source is rate limited.
// Any failure here fails the whole scrape.
func (c *BaseScraper) fetchListing(ctx context.Context) (string, error) {
	if c.CacheSvc != nil && c.CacheKey != "" {
		if _, err := c.CacheSvc.Get(c.CacheKey); err == nil {
			return "", apperrors.NewRateLimit(c.Channel, c.BlockTime)
		}
	}

	status, body, err := c.Fetcher.Get(ctx, c.ListingURL, nil)
	if err != nil {
		return "", apperrors.NewNetwork(c.Channel, "fetch listing "+c.ListingURL, err)
	}

	if status == http.StatusTooManyRequests && c.CacheSvc != nil && c.CacheKey != "" {
		// Set rate limiting cache
		if err := c.CacheSvc.Set(c.CacheKey, []byte(fmt.Sprintf("%d", c.BlockTime/time.Second)), c.BlockTime); err != nil {
			c.log.Debug().Err(err).Msg("Failed to set rate limit flag")
		}
	}
	if !isSuccess(status) {
		return "", apperrors.NewHTTPStatus(c.Channel, c.ListingURL, status)
	}

	return body, nil
}

// fetchPage fetches a detail page, serving it from the page cache when a
// previous round already fetched it.
func (c *BaseScraper) fetchPage(ctx context.Context, url string) (string, error) {
	key := "page:" + helpers.URLID(url)
	if c.CacheSvc != nil && c.PageTTL > 0 {
		if cached, err := c.CacheSvc.Get(key); err == nil {
			return string(cached), nil
		}
	}

	status, body, err := c.Fetcher.Get(ctx, url, nil)
	if err != nil {
		return "", apperrors.NewNetwork(c.Channel, "fetch "+url, err)
	}
	if !isSuccess(status) {
		return "", apperrors.NewHTTPStatus(c.Channel, url, status)
	}

	if c.CacheSvc != nil && c.PageTTL > 0 {
		if err := c.CacheSvc.Set(key, []byte(body), c.PageTTL); err != nil {
			c.log.Debug().Err(err).Str("url", url).Msg("Page not cached")
		}
	}
	return body, nil
}

// GetName returns the scraper name for logging
func (c *BaseScraper) GetName() string {
	return strings.ReplaceAll(c.Channel, " ", "") + "Scraper"
}

// GetChannel returns the broadcaster name
func (c *BaseScraper) GetChannel() string {
	return c.Channel
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
