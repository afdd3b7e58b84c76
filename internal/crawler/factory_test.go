package crawler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sjsage522/refundscraper/config"
)

func TestCreateScrapers(t *testing.T) {
	cfg := &config.Config{
		TF1ListingURL:      "https://www.tf1.fr/tf1/jeux",
		M6ListingURL:       "",
		FranceTVListingURL: "https://www.france.tv/jeux",
	}

	scrapers := CreateScrapers(cfg, NewMockCacheService(), newFakeFetcher())

	var names []string
	for _, s := range scrapers {
		names = append(names, s.GetName())
	}
	assert.Equal(t, []string{"TF1Scraper", "FranceTVScraper"}, names)
}

func TestSourcesCompile(t *testing.T) {
	for _, src := range Sources(&config.Config{}) {
		_, err := NewLinkDiscovery(src.Origin, src.LinkPatterns, src.Keywords, src.Seeds)
		assert.NoError(t, err, src.Channel)
		assert.NotEmpty(t, src.Seeds, src.Channel)
	}
}
