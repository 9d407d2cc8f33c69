// Package pdf extracts page text from PDF documents.
package pdf

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/prescribewise/prescribewise-cli/internal/core/domain"
	"github.com/prescribewise/prescribewise-cli/internal/core/ports/driven"
	"github.com/prescribewise/prescribewise-cli/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.PageExtractor = (*Extractor)(nil)

// Extractor parses PDF bytes into ordered pages.
//
// Extraction degrades per page: a page whose content stream cannot be
// parsed becomes an empty-text Page, and only a document that is unreadable
// as a whole returns an error. Empty pages keep their page number so
// attribution stays aligned with the physical document.
type Extractor struct{}

// NewExtractor creates a PDF page extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractPages returns one Page per physical page, ordered by page number
// starting at 1.
func (e *Extractor) ExtractPages(ctx context.Context, data []byte) ([]domain.Page, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("pdf: open document: %w", err)
	}

	total := reader.NumPage()
	if total == 0 {
		return nil, fmt.Errorf("pdf: %w", domain.ErrNoExtractableText)
	}

	pages := make([]domain.Page, 0, total)
	empty := 0

	for num := 1; num <= total; num++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text := extractPageText(reader, num)
		if text == "" {
			empty++
		}
		pages = append(pages, domain.Page{Number: num, Text: text})
	}

	if empty > 0 {
		logger.Info("PDF extraction: %d of %d pages had no extractable text", empty, total)
	}
	return pages, nil
}

// extractPageText reads one page's plain text, yielding "" for any page
// that cannot be parsed. The underlying parser panics on some malformed
// content streams, so this recovers as well as checking errors.
func extractPageText(reader *pdf.Reader, num int) (text string) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("Page %d: parser panic: %v", num, r)
			text = ""
		}
	}()

	page := reader.Page(num)
	if page.V.IsNull() {
		return ""
	}

	text, err := page.GetPlainText(nil)
	if err != nil {
		logger.Warn("Page %d: %v", num, err)
		return ""
	}
	return text
}
