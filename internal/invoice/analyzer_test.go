package invoice

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "sjsage522/refundscraper/pkg/errors"
	"sjsage522/refundscraper/services/catalog"
)

type fakeExtractor struct {
	text string
	err  error
}

func (f fakeExtractor) ExtractText(string) (string, error) {
	return f.text, f.err
}

type recordingSink struct {
	mu   sync.Mutex
	fees []InvoiceGameFee
	err  error
}

func (s *recordingSink) SaveFee(_ context.Context, fee InvoiceGameFee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fees = append(s.fees, fee)
	return s.err
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "facture.pdf")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestAnalyzeInvoiceSavesFees(t *testing.T) {
	store := catalog.NewMemoryCatalog(catalog.Game{ID: "koh", PhoneNumber: "71414"})
	sink := &recordingSink{}
	a := NewAnalyzer(store, sink)

	fees, err := a.AnalyzeInvoice(context.Background(), billText, testInvoice)
	require.NoError(t, err)
	require.Len(t, fees, 1)
	assert.Equal(t, fees, sink.fees)
}

func TestAnalyzeInvoiceKeepsFeesWhenSaveFails(t *testing.T) {
	store := catalog.NewMemoryCatalog(catalog.Game{ID: "koh", PhoneNumber: "71414"})
	a := NewAnalyzer(store, &recordingSink{err: errors.New("stream down")})

	fees, err := a.AnalyzeInvoice(context.Background(), billText, testInvoice)
	require.NoError(t, err)
	assert.Len(t, fees, 1)
}

func TestAnalyzeFileErrors(t *testing.T) {
	store := catalog.NewMemoryCatalog()

	t.Run("not downloaded", func(t *testing.T) {
		inv := testInvoice
		inv.Downloaded = false

		_, err := NewAnalyzer(store, nil).AnalyzeFile(context.Background(), inv)
		assert.True(t, apperrors.Is(err, apperrors.ErrorTypeNotDownloaded))
		assert.False(t, apperrors.Is(err, apperrors.ErrorTypeFileMissing))
	})

	t.Run("file missing", func(t *testing.T) {
		inv := testInvoice
		inv.FilePath = filepath.Join(t.TempDir(), "absent.pdf")

		_, err := NewAnalyzer(store, nil).AnalyzeFile(context.Background(), inv)
		assert.True(t, apperrors.Is(err, apperrors.ErrorTypeFileMissing))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("no path", func(t *testing.T) {
		inv := testInvoice
		inv.FilePath = ""

		_, err := NewAnalyzer(store, nil).AnalyzeFile(context.Background(), inv)
		assert.True(t, apperrors.Is(err, apperrors.ErrorTypeFileMissing))
	})

	t.Run("unreadable", func(t *testing.T) {
		inv := testInvoice
		inv.FilePath = writeFile(t, "not a pdf")

		_, err := NewAnalyzer(store, nil).AnalyzeFile(context.Background(), inv)
		assert.True(t, apperrors.Is(err, apperrors.ErrorTypePDF))
	})
}

func TestAnalyzeFile(t *testing.T) {
	store := catalog.NewMemoryCatalog()
	sink := &recordingSink{}
	inv := testInvoice
	inv.FilePath = writeFile(t, "%PDF-1.4")

	a := NewAnalyzer(store, sink, WithTextExtractor(fakeExtractor{text: "Jeu 81234 2,00€"}))

	fees, err := a.AnalyzeFile(context.Background(), inv)
	require.NoError(t, err)
	require.Len(t, fees, 1)
	assert.Equal(t, "81234", fees[0].PhoneNumber)
	assert.Len(t, sink.fees, 1)
}

func TestAnalyzeFileWithoutFees(t *testing.T) {
	inv := testInvoice
	inv.FilePath = writeFile(t, "%PDF-1.4")

	a := NewAnalyzer(catalog.NewMemoryCatalog(), nil,
		WithTextExtractor(fakeExtractor{text: "Abonnement 19,99€"}),
		WithKeywords([]string{"jeu"}))

	fees, err := a.AnalyzeFile(context.Background(), inv)
	require.NoError(t, err)
	assert.Empty(t, fees)
}
