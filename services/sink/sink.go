package sink

import (
	"context"
	"encoding/json"
	"errors"

	"sjsage522/refundscraper/internal/extractor"
	"sjsage522/refundscraper/internal/invoice"
	"sjsage522/refundscraper/logger"
	apperrors "sjsage522/refundscraper/pkg/errors"
	"sjsage522/refundscraper/services/catalog"
	"sjsage522/refundscraper/services/publisher"
)

// Sink persists scraped games and invoice fees
type Sink interface {
	SaveGame(ctx context.Context, record extractor.GameRecord) error
	SaveFee(ctx context.Context, fee invoice.InvoiceGameFee) error
}

// StreamSink publishes records as JSON on the Redis streams
type StreamSink struct {
	publisher publisher.Publisher
}

// NewStreamSink creates a sink publishing through p
func NewStreamSink(p publisher.Publisher) *StreamSink {
	return &StreamSink{publisher: p}
}

// GameKey is the stream key of a scraped game
func GameKey(channel string) string {
	return "game:" + channel
}

// FeeKey is the stream key of an invoice fee
func FeeKey(invoiceID string) string {
	return "fee:" + invoiceID
}

func (s *StreamSink) SaveGame(_ context.Context, record extractor.GameRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return apperrors.NewParsing("sink", "encode game "+record.SourceURL, err)
	}
	return s.publisher.Publish(GameKey(record.Channel), data)
}

func (s *StreamSink) SaveFee(_ context.Context, fee invoice.InvoiceGameFee) error {
	data, err := json.Marshal(fee)
	if err != nil {
		return apperrors.NewParsing("sink", "encode fee "+fee.ID, err)
	}
	return s.publisher.Publish(FeeKey(fee.InvoiceID), data)
}

// CatalogSink registers scraped games in the catalog. Fees are not catalog
// data and are ignored.
type CatalogSink struct {
	catalog catalog.Catalog
}

// NewCatalogSink creates a sink writing to c
func NewCatalogSink(c catalog.Catalog) *CatalogSink {
	return &CatalogSink{catalog: c}
}

func (s *CatalogSink) SaveGame(ctx context.Context, record extractor.GameRecord) error {
	_, err := s.catalog.SaveGame(ctx, record)
	return err
}

func (s *CatalogSink) SaveFee(context.Context, invoice.InvoiceGameFee) error {
	return nil
}

// Multi saves to every sink in order. A failing sink does not stop the
// others; all errors are returned joined.
type Multi []Sink

func (m Multi) SaveGame(ctx context.Context, record extractor.GameRecord) error {
	var errs []error
	for _, s := range m {
		if err := s.SaveGame(ctx, record); err != nil {
			errs = append(errs, err)
		}
	}
	return join(errs, "game", record.SourceURL)
}

func (m Multi) SaveFee(ctx context.Context, fee invoice.InvoiceGameFee) error {
	var errs []error
	for _, s := range m {
		if err := s.SaveFee(ctx, fee); err != nil {
			errs = append(errs, err)
		}
	}
	return join(errs, "fee", fee.ID)
}

func join(errs []error, kind, id string) error {
	if len(errs) == 0 {
		return nil
	}
	logger.ForSink().Debug().Str(kind, id).Int("failures", len(errs)).Msg("Sink failures")
	return errors.Join(errs...)
}
