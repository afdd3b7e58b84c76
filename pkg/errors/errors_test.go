package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPipelineErrorMessage(t *testing.T) {
	err := NewHTTPStatus("TF1", "https://www.tf1.fr/jeux", 503)
	assert.Equal(t, "[network] TF1: unexpected response from https://www.tf1.fr/jeux (status 503)", err.Error())

	wrapped := NewNetwork("M6", "fetch listing", stderrors.New("connection refused"))
	assert.Contains(t, wrapped.Error(), "connection refused")
	assert.ErrorContains(t, wrapped, "[network] M6")
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("analyze: %w", NewNotDownloaded("inv-1"))
	assert.True(t, Is(err, ErrorTypeNotDownloaded))
	assert.False(t, Is(err, ErrorTypeFileMissing))
	assert.False(t, Is(stderrors.New("plain"), ErrorTypeNetwork))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, NewNetwork("TF1", "timeout", nil).IsRetryable())
	assert.True(t, NewHTTPStatus("TF1", "u", 502).IsRetryable())
	assert.False(t, NewHTTPStatus("TF1", "u", 404).IsRetryable())
	assert.False(t, NewRateLimit("TF1", time.Minute).IsRetryable())
	assert.False(t, NewFileMissing("inv", "/tmp/x.pdf", nil).IsRetryable())

	assert.True(t, Retryable(fmt.Errorf("round: %w", NewHTTPStatus("TF1", "u", 503))))
	assert.False(t, Retryable(stderrors.New("plain")))
}

func TestUnwrap(t *testing.T) {
	root := stderrors.New("disk")
	err := NewPDF("inv-2", "open pdf", root)
	assert.ErrorIs(t, err, root)
}
