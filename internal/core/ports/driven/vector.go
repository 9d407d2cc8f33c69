package driven

import "context"

// VectorIndex provides semantic similarity search over chunk vectors.
//
// Row id i corresponds to Chunk i: the ingest service populates a fresh
// index in chunk order and never mutates it after publishing, so the index
// is safe for concurrent readers once built.
type VectorIndex interface {
	// Add inserts the vector for the given chunk id. Implementations
	// normalise vectors on insertion so Search can score by dot product.
	Add(ctx context.Context, chunkID int, embedding []float32) error

	// Search finds the k nearest neighbours to the query vector by cosine
	// similarity, in descending score order. k is clamped to the corpus
	// size; asking for more neighbours than exist is not an error. Equal
	// scores order by ascending chunk id.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Len returns the number of stored vectors.
	Len() int

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ChunkID is the matched chunk.
	ChunkID int

	// Similarity is the cosine similarity score in [-1, 1].
	Similarity float64
}
