package invoice

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// TextExtractor converts a PDF file to text
type TextExtractor interface {
	ExtractText(path string) (string, error)
}

// PDFExtractor reads the plain text layer of a PDF
type PDFExtractor struct{}

// ExtractText returns the text of every page, one page per line block.
// The pdf reader panics on some malformed files; that is reported as an error.
func (PDFExtractor) ExtractText(path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read %s: %v", path, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		b.WriteString(content)
		b.WriteString("\n")
	}
	return b.String(), nil
}
