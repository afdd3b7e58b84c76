package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNetwork represents page fetch failures, including non-2xx responses
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeRateLimit represents a source that is temporarily blocked
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeParsing represents HTML parsing errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeCache represents cache-related errors
	ErrorTypeCache ErrorType = "cache"
	// ErrorTypePublisher represents publisher-related errors
	ErrorTypePublisher ErrorType = "publisher"
	// ErrorTypeCatalog represents game catalog read/write errors
	ErrorTypeCatalog ErrorType = "catalog"
	// ErrorTypeNotDownloaded represents an invoice whose PDF was never downloaded
	ErrorTypeNotDownloaded ErrorType = "not_downloaded"
	// ErrorTypeFileMissing represents an invoice PDF absent from disk
	ErrorTypeFileMissing ErrorType = "file_missing"
	// ErrorTypePDF represents an unreadable PDF
	ErrorTypePDF ErrorType = "pdf"
	// ErrorTypeValidation represents validation errors
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// PipelineError is the typed error returned by scraping and invoice analysis
type PipelineError struct {
	Type    ErrorType
	Source  string
	Message string
	Status  int
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *PipelineError) Error() string {
	msg := e.Message
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Source, msg, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Source, msg)
}

// Unwrap returns the underlying error
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is retryable
func (e *PipelineError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeNetwork:
		return e.Status == 0 || e.Status >= 500
	case ErrorTypeCatalog, ErrorTypePublisher, ErrorTypeCache:
		return true
	default:
		return false
	}
}

// Retryable reports whether err carries a PipelineError worth retrying
func Retryable(err error) bool {
	var pe *PipelineError
	if stderrors.As(err, &pe) {
		return pe.IsRetryable()
	}
	return false
}

// Is reports whether err carries a PipelineError of the given type
func Is(err error, errType ErrorType) bool {
	var pe *PipelineError
	if stderrors.As(err, &pe) {
		return pe.Type == errType
	}
	return false
}

// New creates a new PipelineError
func New(errType ErrorType, source, message string, err error) *PipelineError {
	return &PipelineError{
		Type:    errType,
		Source:  source,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewNetwork creates a new network error
func NewNetwork(source, message string, err error) *PipelineError {
	return New(ErrorTypeNetwork, source, message, err)
}

// NewHTTPStatus creates a network error for a non-2xx response
func NewHTTPStatus(source, url string, status int) *PipelineError {
	e := New(ErrorTypeNetwork, source, "unexpected response from "+url, nil)
	e.Status = status
	return e
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(source string, duration time.Duration) *PipelineError {
	message := fmt.Sprintf("rate limited for %v", duration)
	return New(ErrorTypeRateLimit, source, message, nil)
}

// NewParsing creates a new parsing error
func NewParsing(source, message string, err error) *PipelineError {
	return New(ErrorTypeParsing, source, message, err)
}

// NewCache creates a new cache error
func NewCache(source, message string, err error) *PipelineError {
	return New(ErrorTypeCache, source, message, err)
}

// NewPublisher creates a new publisher error
func NewPublisher(source, message string, err error) *PipelineError {
	return New(ErrorTypePublisher, source, message, err)
}

// NewCatalog creates a new catalog error
func NewCatalog(message string, err error) *PipelineError {
	return New(ErrorTypeCatalog, "catalog", message, err)
}

// NewNotDownloaded reports an invoice whose PDF has not been downloaded yet
func NewNotDownloaded(invoiceID string) *PipelineError {
	return New(ErrorTypeNotDownloaded, invoiceID, "invoice PDF has not been downloaded", nil)
}

// NewFileMissing reports an invoice PDF that is expected on disk but absent
func NewFileMissing(invoiceID, path string, err error) *PipelineError {
	return New(ErrorTypeFileMissing, invoiceID, "invoice PDF not found at "+path, err)
}

// NewPDF reports a PDF that exists but cannot be read
func NewPDF(invoiceID, message string, err error) *PipelineError {
	return New(ErrorTypePDF, invoiceID, message, err)
}

// NewValidation creates a new validation error
func NewValidation(source, message string) *PipelineError {
	return New(ErrorTypeValidation, source, message, nil)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *PipelineError {
	return New(ErrorTypeConfiguration, "", message, err)
}
