package driven

import (
	"context"

	"github.com/prescribewise/prescribewise-cli/internal/core/domain"
)

// PageExtractor turns raw document bytes into an ordered page sequence.
//
// A page that cannot be parsed yields an empty-text Page rather than an
// error: extraction degrades per page and only fails for a document that is
// unreadable as a whole.
type PageExtractor interface {
	// ExtractPages returns one Page per physical page, ordered by page
	// number starting at 1. The whole document is held in memory.
	ExtractPages(ctx context.Context, data []byte) ([]domain.Page, error)
}
