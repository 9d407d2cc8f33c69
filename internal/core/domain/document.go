package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Page is one physical page of the source document.
// Pages are produced once by extraction, ordered by Number, and never mutated.
type Page struct {
	// Number is the 1-based physical page number.
	Number int

	// Text is the extracted plain text. It may be empty when the page
	// carries no extractable text (e.g. a scanned image); downstream
	// stages must tolerate empty pages without failing.
	Text string
}

// Chunk is a bounded, page-attributed slice of the document text.
// It is the unit of retrieval: embeddings and search results are per chunk.
// Chunks are created once at ingestion time and immutable afterwards.
type Chunk struct {
	// ID is the stable 0-based emission index within the corpus.
	// Row ID in the vector index equals Chunk ID by construction.
	ID int

	// Text is the chunk content.
	Text string

	// Pages lists, in ascending order, every page whose character range
	// overlaps this chunk's window in the concatenated document text.
	// A page never appears here without an actual character overlap.
	Pages []int
}

// PageLabel renders the chunk's page attribution for citations,
// collapsing a contiguous run to a "12-14" range.
func (c Chunk) PageLabel() string {
	return FormatPages(c.Pages)
}

// FormatPages renders an ascending page-number list as a human-readable
// label: "7" for a single page, "7-9" for a contiguous run, and a
// comma-separated list otherwise.
func FormatPages(pages []int) string {
	if len(pages) == 0 {
		return "?"
	}
	if len(pages) == 1 {
		return strconv.Itoa(pages[0])
	}
	contiguous := true
	for i := 1; i < len(pages); i++ {
		if pages[i] != pages[i-1]+1 {
			contiguous = false
			break
		}
	}
	if contiguous {
		return fmt.Sprintf("%d-%d", pages[0], pages[len(pages)-1])
	}
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, ", ")
}
