package crawler

import (
	"sjsage522/refundscraper/config"
	"sjsage522/refundscraper/helpers"
	"sjsage522/refundscraper/logger"
	"sjsage522/refundscraper/services/cache"
)

// Sources returns the broadcaster table. A source whose listing URL is
// configured empty is disabled.
func Sources(cfg *config.Config) []SourceConfig {
	return []SourceConfig{
		{
			Channel:    "TF1",
			ListingURL: cfg.TF1ListingURL,
			Origin:     "https://www.tf1.fr",
			CacheKey:   "tf1_rate_limited",
			BlockTime:  900,
			LinkPatterns: []string{
				`(?i)href\s*=\s*["'](/tf1/[^"'/]+/jeux[^"']*)["']`,
				`(?i)href\s*=\s*["'](https://www\.tf1\.fr/[^"']*(?:reglement|gagnants)[^"']*)["']`,
			},
			Seeds: []string{
				"https://www.tf1.fr/tf1/jeux/reglements-et-gagnants",
				"https://www.tf1.fr/tf1/les-12-coups-de-midi/jeux/reglement",
				"https://www.tf1.fr/tf1/koh-lanta/jeux/reglement",
			},
		},
		{
			Channel:    "M6",
			ListingURL: cfg.M6ListingURL,
			Origin:     "https://www.6play.fr",
			CacheKey:   "m6_rate_limited",
			BlockTime:  900,
			LinkPatterns: []string{
				`(?i)href\s*=\s*["']([^"']*/jeux-concours/[^"']+)["']`,
			},
			Seeds: []string{
				"https://www.6play.fr/jeux-concours/reglements",
			},
		},
		{
			Channel:    "France TV",
			ListingURL: cfg.FranceTVListingURL,
			Origin:     "https://www.france.tv",
			CacheKey:   "francetv_rate_limited",
			BlockTime:  900,
			LinkPatterns: []string{
				`(?i)href\s*=\s*["']([^"']*/jeux/[^"']*reglement[^"']*)["']`,
			},
			Seeds: []string{
				"https://www.france.tv/jeux/reglements",
			},
		},
	}
}

// CreateScrapers creates one scraper per enabled broadcaster
func CreateScrapers(cfg *config.Config, cacheSvc cache.CacheService, fetcher helpers.Fetcher) []Scraper {
	var scrapers []Scraper
	for _, src := range Sources(cfg) {
		if src.ListingURL == "" {
			continue
		}

		s, err := NewGameCatalogScraper(src, Options{
			CacheSvc: cacheSvc,
			Fetcher:  fetcher,
			PageTTL:  cfg.PageCacheTTL,
		})
		if err != nil {
			logger.LogError("factory", err, "Skipping source %s", src.Channel)
			continue
		}
		scrapers = append(scrapers, s)
	}

	logger.Info("Created %d scrapers", len(scrapers))
	return scrapers
}
