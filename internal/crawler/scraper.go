package crawler

import (
	"context"
	"time"

	"sjsage522/refundscraper/helpers"
	"sjsage522/refundscraper/internal/extractor"
	"sjsage522/refundscraper/logger"
	"sjsage522/refundscraper/services/cache"
)

// GameCatalogScraper walks one broadcaster's listing page and extracts a
// GameRecord from every linked game page
type GameCatalogScraper struct {
	BaseScraper
	discovery *LinkDiscovery
	extractor *extractor.PageExtractor
}

// Options tunes scraper construction
type Options struct {
	CacheSvc   cache.CacheService
	Fetcher    helpers.Fetcher
	PageTTL    time.Duration
	Extractors []extractor.Option
}

// NewGameCatalogScraper creates a scraper for a source
func NewGameCatalogScraper(cfg SourceConfig, opts Options) (*GameCatalogScraper, error) {
	discovery, err := NewLinkDiscovery(cfg.Origin, cfg.LinkPatterns, cfg.Keywords, cfg.Seeds)
	if err != nil {
		return nil, err
	}

	return &GameCatalogScraper{
		BaseScraper: BaseScraper{
			Channel:    cfg.Channel,
			ListingURL: cfg.ListingURL,
			CacheKey:   cfg.CacheKey,
			CacheSvc:   opts.CacheSvc,
			BlockTime:  time.Duration(cfg.BlockTime) * time.Second,
			PageTTL:    opts.PageTTL,
			Fetcher:    opts.Fetcher,
			log:        logger.ForScraper(cfg.Channel),
		},
		discovery: discovery,
		extractor: extractor.NewPageExtractor(cfg.Channel, opts.Extractors...),
	}, nil
}

// ScrapeAll fails only when the listing page cannot be fetched. Detail pages
// are fetched one at a time; a page that fails is logged and skipped.
func (s *GameCatalogScraper) ScrapeAll(ctx context.Context) ([]extractor.GameRecord, error) {
	listing, err := s.fetchListing(ctx)
	if err != nil {
		return nil, err
	}

	links := s.discovery.Discover(listing)
	s.log.Debug().Int("links", len(links)).Msg("Discovered game pages")

	records := make([]extractor.GameRecord, 0, len(links))
	for _, link := range links {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		body, err := s.fetchPage(ctx, link)
		if err != nil {
			s.log.Warn().Err(err).Str("url", link).Msg("Skipping game page")
			continue
		}

		records = append(records, s.extractor.Extract(link, body))
	}

	s.log.Info().
		Int("links", len(links)).
		Int("records", len(records)).
		Msg("Scrape completed")

	return records, nil
}
