// Package pdf extracts page text and document metadata from PDF files
// using github.com/ledongthuc/pdf.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// headerWindow is how far into the file the %PDF- marker may appear.
const headerWindow = 1024

var pdfHeader = []byte("%PDF-")

// Extractor reads PDFs held in memory.
type Extractor struct{}

// New creates a PDF extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract returns the document's pages in order with its Title and Author.
// Missing metadata is left empty for the caller to default.
func (e *Extractor) Extract(ctx context.Context, filename string, content []byte) (ext *domain.Extraction, err error) {
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return nil, fmt.Errorf("%s: not a .pdf file: %w", filename, domain.ErrUnsupportedFormat)
	}
	if !hasPDFHeader(content) {
		return nil, fmt.Errorf("%s: missing PDF header: %w", filename, domain.ErrUnsupportedFormat)
	}

	// The parser panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			ext = nil
			err = fmt.Errorf("%s: corrupted PDF: %v: %w", filename, r, domain.ErrUnsupportedFormat)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		if isEncryptionError(err) {
			return nil, fmt.Errorf("%s: %w", filename, domain.ErrEncryptedDocument)
		}
		return nil, fmt.Errorf("%s: %v: %w", filename, err, domain.ErrUnsupportedFormat)
	}

	numPages := reader.NumPage()
	ext = &domain.Extraction{
		Metadata: readMetadata(reader),
		Pages:    make([]domain.Page, 0, numPages),
	}
	ext.Metadata.PageCount = numPages

	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ext.Pages = append(ext.Pages, domain.Page{
			Number: i,
			Text:   pageText(reader, i, filename),
		})
	}

	if isEncrypted(reader) && !hasText(ext.Pages) {
		// Opened with the empty user password but nothing decrypted to text.
		return nil, fmt.Errorf("%s: no readable text in encrypted PDF: %w", filename, domain.ErrEncryptedDocument)
	}

	logger.Debug("extracted %d pages from %s", numPages, filename)
	return ext, nil
}

func hasPDFHeader(content []byte) bool {
	window := content
	if len(window) > headerWindow {
		window = window[:headerWindow]
	}
	return bytes.Contains(window, pdfHeader)
}

func isEncryptionError(err error) bool {
	if errors.Is(err, pdf.ErrInvalidPassword) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "encrypt") || strings.Contains(msg, "password")
}

// isEncrypted reports whether the trailer carries an /Encrypt dictionary.
func isEncrypted(reader *pdf.Reader) bool {
	return !reader.Trailer().Key("Encrypt").IsNull()
}

func hasText(pages []domain.Page) bool {
	for _, p := range pages {
		if strings.TrimSpace(p.Text) != "" {
			return true
		}
	}
	return false
}

func readMetadata(reader *pdf.Reader) domain.DocumentMetadata {
	info := reader.Trailer().Key("Info")
	if info.IsNull() {
		return domain.DocumentMetadata{}
	}
	return domain.DocumentMetadata{
		Title:  strings.TrimSpace(info.Key("Title").Text()),
		Author: strings.TrimSpace(info.Key("Author").Text()),
	}
}

// pageText returns a page's plain text. Unreadable pages yield "".
func pageText(reader *pdf.Reader, number int, filename string) string {
	page := reader.Page(number)
	if page.V.IsNull() {
		return ""
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		logger.Warn("%s: page %d: %v", filename, number, err)
		return ""
	}
	return text
}
