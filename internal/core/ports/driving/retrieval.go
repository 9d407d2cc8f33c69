package driving

import (
	"context"

	"github.com/prescribewise/prescribewise-cli/internal/core/domain"
)

// RetrievalService finds the passages most semantically similar to a query.
type RetrievalService interface {
	// Retrieve embeds the query, searches the index, and returns at most
	// k results in descending score order. No relevance filtering is
	// applied here; callers that need a floor apply it themselves, which
	// keeps retrieval reusable for diagnostics like `search`.
	Retrieve(ctx context.Context, query string, k int) ([]domain.SearchResult, error)
}
