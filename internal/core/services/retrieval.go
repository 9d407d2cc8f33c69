package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/prescribewise/prescribewise-cli/internal/core/domain"
	"github.com/prescribewise/prescribewise-cli/internal/core/ports/driven"
	"github.com/prescribewise/prescribewise-cli/internal/core/ports/driving"
	"github.com/prescribewise/prescribewise-cli/internal/logger"
)

// Ensure Retriever implements the interface.
var _ driving.RetrievalService = (*Retriever)(nil)

// CorpusProvider hands out the current published corpus and exposes build
// state. The Ingestor satisfies it.
type CorpusProvider interface {
	Corpus() (*Corpus, bool)
	Status() driving.BuildStatus
}

// Retriever answers similarity queries: it embeds the query text, searches
// the corpus index, and hydrates the hits into full chunks. Each query runs
// against one corpus snapshot, so a rebuild happening concurrently never
// mixes old chunks with new index rows. It applies no relevance floor;
// callers that need one filter the results themselves.
type Retriever struct {
	provider CorpusProvider
	embedder driven.EmbeddingService
}

// NewRetriever creates a retrieval service over a built corpus.
func NewRetriever(provider CorpusProvider, embedder driven.EmbeddingService) *Retriever {
	return &Retriever{
		provider: provider,
		embedder: embedder,
	}
}

// Retrieve returns at most k chunks in descending similarity order.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidInput, k)
	}

	corpus, ok := r.provider.Corpus()
	if !ok {
		if r.provider.Status().Running {
			return nil, domain.ErrBuildInProgress
		}
		return nil, domain.ErrIndexNotBuilt
	}

	logger.Section("Retrieval")
	logger.Debug("Query: %q, k=%d", query, k)

	embedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	logger.Debug("Query embedding: %d dimensions", len(embedding))

	hits, err := corpus.Search(ctx, embedding, k)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	logger.Debug("Vector search: %d hits", len(hits))

	results := make([]domain.SearchResult, 0, len(hits))
	for _, hit := range hits {
		chunk, ok := corpus.ChunkByID(hit.ChunkID)
		if !ok {
			// The index and corpus are built together; a miss means
			// they diverged.
			return nil, fmt.Errorf("chunk %d in index but not in corpus", hit.ChunkID)
		}
		results = append(results, domain.SearchResult{
			Chunk: chunk,
			Score: hit.Similarity,
		})
	}

	logger.Info("Retrieved %d results", len(results))
	return results, nil
}
