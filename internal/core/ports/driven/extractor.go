package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// Extractor turns uploaded bytes into ordered page texts and document metadata.
type Extractor interface {
	// Extract parses content. Pages are numbered from 1 in document order.
	// Fails with domain.ErrUnsupportedFormat on non-PDF or corrupted input and
	// domain.ErrEncryptedDocument on password-protected input.
	Extract(ctx context.Context, filename string, content []byte) (*domain.Extraction, error)
}
