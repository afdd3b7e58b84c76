package worker

import (
	"context"
	"os"
	"sync"
	"time"

	"sjsage522/refundscraper/internal/crawler"
	"sjsage522/refundscraper/internal/extractor"
	"sjsage522/refundscraper/logger"
	"sjsage522/refundscraper/pkg/errors"
	"sjsage522/refundscraper/services/publisher"
	"sjsage522/refundscraper/services/sink"
)

// Result is the outcome of one scraper in a round
type Result struct {
	Scraper string
	Channel string
	Records []extractor.GameRecord
	Saved   int
	Err     error
	// Retryable is set when Err is expected to clear up by the next round
	Retryable bool
}

// Worker handles the scraping and saving process
type Worker struct {
	ctx            context.Context
	scrapers       []crawler.Scraper
	sink           sink.Sink
	publisher      publisher.Publisher
	log            *logger.Logger
	scrapeInterval time.Duration
	production     bool
}

// NewWorker creates a new worker. pub may be nil when nothing publishes to
// streams.
func NewWorker(
	ctx context.Context,
	scrapers []crawler.Scraper,
	s sink.Sink,
	pub publisher.Publisher,
	scrapeInterval time.Duration,
) *Worker {
	return &Worker{
		ctx:            ctx,
		scrapers:       scrapers,
		sink:           s,
		publisher:      pub,
		log:            logger.ForWorker(),
		scrapeInterval: scrapeInterval,
		production:     os.Getenv("REFUND_ENVIRONMENT") == "production",
	}
}

// Start runs a round every interval until the context is cancelled
func (w *Worker) Start() error {
	for {
		start := time.Now()
		w.RunOnce()
		elapsed := time.Since(start)
		if !w.production {
			w.log.Info().Dur("elapsed", elapsed).Msg("Scrape round finished")
		}

		select {
		case <-w.ctx.Done():
			return nil
		case <-time.After(w.scrapeInterval):
		}
	}
}

// RunOnce runs all the scrapers in parallel and then trims the streams.
// Results come back in scraper order.
func (w *Worker) RunOnce() []Result {
	results := make([]Result, len(w.scrapers))

	var wg sync.WaitGroup
	for i, s := range w.scrapers {
		wg.Add(1)
		go func(i int, s crawler.Scraper) {
			defer wg.Done()
			results[i] = w.scrapeAndSave(s)
		}(i, s)
	}
	wg.Wait()

	// Trim all streams after scraping
	if w.publisher != nil {
		if err := w.publisher.TrimStreams(); err != nil {
			w.log.Error().Err(err).Msg("Stream trimming failed")
		}
	}

	return results
}

// scrapeAndSave scrapes one broadcaster and saves its records
func (w *Worker) scrapeAndSave(s crawler.Scraper) Result {
	result := Result{Scraper: s.GetName(), Channel: s.GetChannel()}
	log := w.log.WithField("scraper", result.Scraper)

	records, err := s.ScrapeAll(w.ctx)
	if err != nil {
		result.Err = err
		result.Retryable = errors.Retryable(err)
		if result.Retryable {
			log.Warn().Err(err).Dur("retry_in", w.scrapeInterval).Msg("Scrape failed, retrying next round")
		} else {
			log.Error().Err(err).Msg("Scrape failed")
		}
		return result
	}
	result.Records = records

	for _, record := range records {
		if err := w.sink.SaveGame(w.ctx, record); err != nil {
			log.Error().Err(err).Str("url", record.SourceURL).Msg("Failed to save game")
			continue
		}
		result.Saved++
	}

	if !w.production && len(records) > 0 {
		// Log only the first record for each broadcaster
		first := records[0]
		log.Info().
			Str("title", first.Title).
			Str("phone_number", first.PhoneNumber).
			Str("cost", first.Cost.String()).
			Str("game_type", string(first.GameType)).
			Msg("Scraped game")
	}

	log.Info().Int("records", len(records)).Int("saved", result.Saved).Msg("Scraper finished")
	return result
}
