package internal

import (
	"errors"

	"github.com/jmoiron/sqlx"

	"sjsage522/refundscraper/helpers"
	"sjsage522/refundscraper/services/cache"
	"sjsage522/refundscraper/services/catalog"
	"sjsage522/refundscraper/services/publisher"
	"sjsage522/refundscraper/services/sink"
)

// Dependencies holds all service dependencies
type Dependencies struct {
	Cache     cache.CacheService
	Publisher publisher.Publisher
	Catalog   catalog.Catalog
	Sink      sink.Sink
	Fetcher   helpers.Fetcher
	// DB is nil when the catalog lives in memory
	DB *sqlx.DB
}

// Close releases the connections held by the dependencies
func (d *Dependencies) Close() error {
	var errs []error
	if d.Publisher != nil {
		errs = append(errs, d.Publisher.Close())
	}
	if d.DB != nil {
		errs = append(errs, d.DB.Close())
	}
	return errors.Join(errs...)
}
