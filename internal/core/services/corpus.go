package services

import (
	"context"

	"github.com/prescribewise/prescribewise-cli/internal/core/domain"
	"github.com/prescribewise/prescribewise-cli/internal/core/ports/driven"
)

// Corpus is an immutable pairing of chunks and the vector index built over
// them. A build assembles a Corpus privately and publishes it in one step,
// so readers never observe an index that disagrees with its chunks.
type Corpus struct {
	chunks []domain.Chunk
	index  driven.VectorIndex
}

func newCorpus(chunks []domain.Chunk, index driven.VectorIndex) *Corpus {
	return &Corpus{chunks: chunks, index: index}
}

// ChunkByID returns the chunk with the given id.
func (c *Corpus) ChunkByID(id int) (domain.Chunk, bool) {
	if id < 0 || id >= len(c.chunks) {
		return domain.Chunk{}, false
	}
	return c.chunks[id], true
}

// Search queries the corpus index.
func (c *Corpus) Search(ctx context.Context, embedding []float32, k int) ([]driven.VectorHit, error) {
	return c.index.Search(ctx, embedding, k)
}

// Len returns the number of chunks in the corpus.
func (c *Corpus) Len() int {
	return len(c.chunks)
}
