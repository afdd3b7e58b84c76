package invoice

import (
	"context"
	"os"

	"sjsage522/refundscraper/logger"
	apperrors "sjsage522/refundscraper/pkg/errors"
	"sjsage522/refundscraper/services/catalog"
)

// FeeSink persists fees found on invoices
type FeeSink interface {
	SaveFee(ctx context.Context, fee InvoiceGameFee) error
}

// Analyzer reads invoices and records the game fees they contain
type Analyzer struct {
	catalog catalog.Catalog
	matcher *Matcher
	sink    FeeSink
	pdf     TextExtractor
	log     *logger.Logger
}

// AnalyzerOption configures an Analyzer
type AnalyzerOption func(*Analyzer)

// WithTextExtractor replaces the PDF reader
func WithTextExtractor(x TextExtractor) AnalyzerOption {
	return func(a *Analyzer) {
		a.pdf = x
	}
}

// WithKeywords replaces the fallback keyword list
func WithKeywords(keywords []string) AnalyzerOption {
	return func(a *Analyzer) {
		a.matcher = NewMatcher(a.catalog, keywords)
	}
}

// NewAnalyzer creates an analyzer. A nil sink keeps fees in the result only.
func NewAnalyzer(c catalog.Catalog, sink FeeSink, opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		catalog: c,
		matcher: NewMatcher(c, nil),
		sink:    sink,
		pdf:     PDFExtractor{},
		log:     logger.ForMatcher(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AnalyzeInvoice matches text against a snapshot of the catalog and saves
// every fee found. A fee that fails to save is logged and still returned.
func (a *Analyzer) AnalyzeInvoice(ctx context.Context, text string, inv Invoice) ([]InvoiceGameFee, error) {
	known, err := a.catalog.AllKnownGames(ctx)
	if err != nil {
		return nil, err
	}

	fees, err := a.matcher.Match(ctx, text, inv, known)
	if err != nil {
		return nil, err
	}

	if a.sink != nil {
		for _, fee := range fees {
			if err := a.sink.SaveFee(ctx, fee); err != nil {
				a.log.Error().Err(err).
					Str("invoice_id", inv.ID).
					Str("phone_number", fee.PhoneNumber).
					Msg("Failed to save fee")
			}
		}
	}

	a.log.Info().
		Str("invoice_id", inv.ID).
		Int("known_games", len(known)).
		Int("fees", len(fees)).
		Msg("Invoice analyzed")

	return fees, nil
}

// AnalyzeFile reads the invoice PDF and analyzes its text
func (a *Analyzer) AnalyzeFile(ctx context.Context, inv Invoice) ([]InvoiceGameFee, error) {
	if !inv.Downloaded {
		return nil, apperrors.NewNotDownloaded(inv.ID)
	}
	if inv.FilePath == "" {
		return nil, apperrors.NewFileMissing(inv.ID, inv.FilePath, os.ErrNotExist)
	}
	if _, err := os.Stat(inv.FilePath); err != nil {
		return nil, apperrors.NewFileMissing(inv.ID, inv.FilePath, err)
	}

	text, err := a.pdf.ExtractText(inv.FilePath)
	if err != nil {
		return nil, apperrors.NewPDF(inv.ID, "extract text", err)
	}

	return a.AnalyzeInvoice(ctx, text, inv)
}
