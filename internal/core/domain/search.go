package domain

// SearchResult represents a single retrieval hit for one query.
// Results are ephemeral: produced per query, ordered by descending score.
type SearchResult struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// Score is the cosine similarity between the query vector and the
	// chunk vector, in [-1, 1]. Higher means more semantically similar.
	Score float64
}

// Source is a citation entry: the page attribution and score of one
// retrieved chunk, with the untruncated chunk text kept available so the
// caller can render citations independently of whatever prose the
// generator produces. Page numbers here always trace back to real
// retrieved chunks, never to generator output.
type Source struct {
	// Index is the 1-based rank of this source in the assembled context.
	Index int

	// Pages is the ascending page attribution of the underlying chunk.
	Pages []int

	// Score is the chunk's similarity score for the query.
	Score float64

	// Text is the full, untruncated chunk text.
	Text string
}

// PageLabel renders the source's page attribution for display.
func (s Source) PageLabel() string {
	return FormatPages(s.Pages)
}
