package crawler

import (
	"context"

	"sjsage522/refundscraper/internal/extractor"
)

// Scraper interface defines the contract for every broadcaster scraper
type Scraper interface {
	// ScrapeAll fetches the listing page and extracts every linked game page
	ScrapeAll(ctx context.Context) ([]extractor.GameRecord, error)

	// GetName returns the scraper's name for logging and identification
	GetName() string

	// GetChannel returns the broadcaster the scraper covers
	GetChannel() string
}

// SourceConfig describes one broadcaster site
type SourceConfig struct {
	Channel    string
	ListingURL string
	// Origin resolves relative links found on the listing page
	Origin    string
	CacheKey  string
	BlockTime int
	// LinkPatterns are href regexes with the URL in group 1, tried before the
	// generic anchor patterns
	LinkPatterns []string
	Keywords     []string
	// Seeds replace discovery results when the listing yields no relevant link
	Seeds []string
}
