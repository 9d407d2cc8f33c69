// Package memory provides an in-memory vector index with brute-force
// cosine search. The corpus is a single document's chunks (a few thousand
// vectors at most), so exact scan beats approximate-nearest-neighbour
// structures in both simplicity and recall.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/prescribewise/prescribewise-cli/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// row is one normalised vector keyed by chunk id.
type row struct {
	chunkID int
	vector  []float32
}

// Index stores L2-normalised vectors so Search scores by plain dot product,
// which equals cosine similarity for unit vectors.
type Index struct {
	mu   sync.RWMutex
	dims int
	rows []row
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{}
}

// Add inserts the vector for the given chunk id, normalising it to unit
// length. The first vector fixes the index dimensionality.
func (x *Index) Add(_ context.Context, chunkID int, embedding []float32) error {
	if len(embedding) == 0 {
		return fmt.Errorf("add vector: empty embedding for chunk %d", chunkID)
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if x.dims == 0 {
		x.dims = len(embedding)
	} else if len(embedding) != x.dims {
		return fmt.Errorf("add vector: chunk %d has %d dimensions, index has %d",
			chunkID, len(embedding), x.dims)
	}

	x.rows = append(x.rows, row{chunkID: chunkID, vector: normalise(embedding)})
	return nil
}

// Search returns the k most similar chunks in descending score order.
// k is clamped to the corpus size. Equal scores order by ascending chunk id
// so results are deterministic.
func (x *Index) Search(_ context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if len(x.rows) == 0 || k <= 0 {
		return nil, nil
	}
	if len(query) != x.dims {
		return nil, fmt.Errorf("search: query has %d dimensions, index has %d", len(query), x.dims)
	}

	q := normalise(query)

	hits := make([]driven.VectorHit, 0, len(x.rows))
	for _, r := range x.rows {
		hits = append(hits, driven.VectorHit{
			ChunkID:    r.chunkID,
			Similarity: dot(q, r.vector),
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].ChunkID < hits[j].ChunkID
	})

	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

// Len returns the number of stored vectors.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.rows)
}

// Close releases resources. Nothing to release for the in-memory index.
func (x *Index) Close() error {
	return nil
}

// normalise returns a unit-length copy of v. A zero vector is returned
// unchanged; it scores 0 against everything.
func normalise(v []float32) []float32 {
	var sum float64
	for _, val := range v {
		sum += float64(val) * float64(val)
	}
	mag := math.Sqrt(sum)
	if mag == 0 {
		return v
	}

	out := make([]float32, len(v))
	for i, val := range v {
		out[i] = float32(float64(val) / mag)
	}
	return out
}

// dot computes the dot product of two equal-length vectors.
func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
