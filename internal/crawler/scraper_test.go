package crawler

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjsage522/refundscraper/helpers"
	"sjsage522/refundscraper/internal/extractor"
	apperrors "sjsage522/refundscraper/pkg/errors"
)

const listingURL = "https://www.tf1.fr/tf1/jeux"

const listingPage = `<html><body>
	<a href="/tf1/koh-lanta/jeux/reglement">Koh-Lanta</a>
	<a href="/tf1/the-voice/jeux/reglement">The Voice</a>
	<a href="/tf1/star-academy/jeux/reglement">Star Academy</a>
</body></html>`

const gamePage = `<html><body><h1>Koh-Lanta : Règlement du jeu</h1>
	<p>Envoyez KOH au 71414 (0,99€ par SMS).</p></body></html>`

var testClock = extractor.WithClock(func() time.Time {
	return time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
})

func testSource() SourceConfig {
	return SourceConfig{
		Channel:    "TF1",
		ListingURL: listingURL,
		Origin:     "https://www.tf1.fr",
		CacheKey:   "tf1_rate_limited",
		BlockTime:  900,
		Seeds:      []string{"https://www.tf1.fr/tf1/jeux/reglements-et-gagnants"},
	}
}

func newTestScraper(t *testing.T, fetcher helpers.Fetcher, cacheSvc *MockCacheService, pageTTL time.Duration) *GameCatalogScraper {
	t.Helper()
	opts := Options{Fetcher: fetcher, PageTTL: pageTTL, Extractors: []extractor.Option{testClock}}
	if cacheSvc != nil {
		opts.CacheSvc = cacheSvc
	}
	s, err := NewGameCatalogScraper(testSource(), opts)
	require.NoError(t, err)
	return s
}

func TestScrapeAllSkipsFailingPages(t *testing.T) {
	fetcher := newFakeFetcher().
		on(listingURL, http.StatusOK, listingPage).
		on("https://www.tf1.fr/tf1/koh-lanta/jeux/reglement", http.StatusOK, gamePage).
		fail("https://www.tf1.fr/tf1/the-voice/jeux/reglement", errors.New("connection reset")).
		on("https://www.tf1.fr/tf1/star-academy/jeux/reglement", http.StatusOK, gamePage)

	s := newTestScraper(t, fetcher, nil, 0)

	records, err := s.ScrapeAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "https://www.tf1.fr/tf1/koh-lanta/jeux/reglement", records[0].SourceURL)
	assert.Equal(t, "https://www.tf1.fr/tf1/star-academy/jeux/reglement", records[1].SourceURL)
	assert.Equal(t, "Koh-Lanta", records[0].Title)
	assert.Equal(t, "TF1", records[0].Channel)
	assert.Equal(t, "71414", records[0].PhoneNumber)
}

func TestScrapeAllSkipsNon2xxPages(t *testing.T) {
	fetcher := newFakeFetcher().
		on(listingURL, http.StatusOK, listingPage).
		on("https://www.tf1.fr/tf1/koh-lanta/jeux/reglement", http.StatusNotFound, "").
		on("https://www.tf1.fr/tf1/the-voice/jeux/reglement", http.StatusOK, gamePage).
		on("https://www.tf1.fr/tf1/star-academy/jeux/reglement", http.StatusInternalServerError, "")

	records, err := newTestScraper(t, fetcher, nil, 0).ScrapeAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "https://www.tf1.fr/tf1/the-voice/jeux/reglement", records[0].SourceURL)
}

func TestScrapeAllListingFailure(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		fetcher := newFakeFetcher().on(listingURL, http.StatusServiceUnavailable, "")

		records, err := newTestScraper(t, fetcher, nil, 0).ScrapeAll(context.Background())
		assert.Nil(t, records)
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.ErrorTypeNetwork))

		var pe *apperrors.PipelineError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, http.StatusServiceUnavailable, pe.Status)
		assert.Equal(t, "TF1", pe.Source)
	})

	t.Run("transport", func(t *testing.T) {
		fetcher := newFakeFetcher().fail(listingURL, errors.New("dial tcp: no such host"))

		_, err := newTestScraper(t, fetcher, nil, 0).ScrapeAll(context.Background())
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.ErrorTypeNetwork))
		assert.Equal(t, 1, fetcher.callCount(listingURL))
	})
}

func TestScrapeAllFallsBackToSeeds(t *testing.T) {
	seed := "https://www.tf1.fr/tf1/jeux/reglements-et-gagnants"
	fetcher := newFakeFetcher().
		on(listingURL, http.StatusOK, `<a href="/news">News</a>`).
		on(seed, http.StatusOK, gamePage)

	records, err := newTestScraper(t, fetcher, nil, 0).ScrapeAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, seed, records[0].SourceURL)
}

func TestScrapeAllRateLimit(t *testing.T) {
	cacheSvc := NewMockCacheService()
	fetcher := newFakeFetcher().on(listingURL, http.StatusTooManyRequests, "")
	s := newTestScraper(t, fetcher, cacheSvc, 0)

	_, err := s.ScrapeAll(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeNetwork))

	flag, err := cacheSvc.Get("tf1_rate_limited")
	require.NoError(t, err)
	assert.Equal(t, "900", string(flag))

	// While the flag is set the source is not contacted
	_, err = s.ScrapeAll(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeRateLimit))
	assert.Equal(t, 1, fetcher.callCount(listingURL))
}

func TestScrapeAllUsesPageCache(t *testing.T) {
	cacheSvc := NewMockCacheService()
	fetcher := newFakeFetcher().
		on(listingURL, http.StatusOK, `<a href="/tf1/koh-lanta/jeux/reglement">Koh-Lanta</a>`).
		on("https://www.tf1.fr/tf1/koh-lanta/jeux/reglement", http.StatusOK, gamePage)
	s := newTestScraper(t, fetcher, cacheSvc, time.Hour)

	first, err := s.ScrapeAll(context.Background())
	require.NoError(t, err)
	second, err := s.ScrapeAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, fetcher.callCount(listingURL))
	assert.Equal(t, 1, fetcher.callCount("https://www.tf1.fr/tf1/koh-lanta/jeux/reglement"))
}

func TestScrapeAllStopsOnCancelledContext(t *testing.T) {
	fetcher := newFakeFetcher().on(listingURL, http.StatusOK, listingPage)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestScraper(t, fetcher, nil, 0).ScrapeAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGetName(t *testing.T) {
	s := newTestScraper(t, newFakeFetcher(), nil, 0)
	assert.Equal(t, "TF1Scraper", s.GetName())
	assert.Equal(t, "TF1", s.GetChannel())
}
