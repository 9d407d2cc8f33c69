// Package chunker splits an extracted page sequence into overlapping,
// page-attributed chunks sized for retrieval.
package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/prescribewise/prescribewise-cli/internal/core/domain"
)

// DefaultChunkSize is the default target chunk length in characters.
const DefaultChunkSize = 1200

// DefaultOverlap is the default number of characters repeated at the start
// of the next chunk.
const DefaultOverlap = 200

// DefaultMinChunkChars is the default minimum trimmed length below which a
// window is discarded as index noise (typically the trailing partial window).
const DefaultMinChunkChars = 100

// Chunker slides a fixed window across the concatenated page text and
// attributes each window to pages by character-offset intersection.
//
// Chunking is a pure function of (pages, chunk size, overlap): identical
// inputs always produce identical chunk sequences and ids. Chunk id is the
// 0-based emission order.
type Chunker struct {
	chunkSize int
	overlap   int
	minChars  int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the target chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between consecutive chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// WithMinChunkChars sets the minimum trimmed chunk length to keep.
func WithMinChunkChars(n int) Option {
	return func(c *Chunker) {
		if n > 0 {
			c.minChars = n
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
		minChars:  DefaultMinChunkChars,
	}

	for _, opt := range opts {
		opt(c)
	}

	// The window must always advance.
	if c.overlap >= c.chunkSize {
		c.overlap = c.chunkSize / 4
	}

	return c
}

// pageInterval is the half-open [start, end) character range one page
// occupies in the concatenated buffer. An empty page occupies a zero-length
// interval and therefore never intersects any window.
type pageInterval struct {
	number int
	start  int
	end    int
}

// Chunk produces overlapping, page-attributed chunks from the page sequence.
//
// Page texts are concatenated into one buffer, separated by a newline that
// belongs to no page, and each page's [start, end) offsets are recorded. A
// window of chunkSize characters slides across the buffer with step
// chunkSize-overlap; the window's source pages are exactly the pages whose
// interval intersects it (max of starts < min of ends). Window edges that
// land inside a multibyte rune back off to the rune start so every chunk is
// valid UTF-8. Windows whose trimmed text is shorter than the minimum are
// discarded.
func (c *Chunker) Chunk(pages []domain.Page) []domain.Chunk {
	var buf strings.Builder
	intervals := make([]pageInterval, 0, len(pages))

	for _, p := range pages {
		start := buf.Len()
		buf.WriteString(p.Text)
		intervals = append(intervals, pageInterval{number: p.Number, start: start, end: buf.Len()})
		if p.Text != "" {
			buf.WriteByte('\n')
		}
	}

	text := buf.String()
	if len(text) == 0 {
		return nil
	}

	step := c.chunkSize - c.overlap
	var chunks []domain.Chunk

	for start := 0; start < len(text); start += step {
		end := start + c.chunkSize
		if end > len(text) {
			end = len(text)
		}

		ws := runeStart(text, start)
		we := runeStart(text, end)

		slice := strings.TrimSpace(text[ws:we])
		if len(slice) >= c.minChars {
			chunks = append(chunks, domain.Chunk{
				ID:    len(chunks),
				Text:  slice,
				Pages: pagesInWindow(intervals, ws, we),
			})
		}

		if end == len(text) {
			break
		}
	}

	return chunks
}

// runeStart backs a byte offset off to the start of the rune it falls
// inside. Offsets at or past the end of the text map to the end.
func runeStart(s string, i int) int {
	if i >= len(s) {
		return len(s)
	}
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}

// pagesInWindow returns, in ascending order, every page whose interval
// intersects the half-open window [start, end).
func pagesInWindow(intervals []pageInterval, start, end int) []int {
	var pages []int
	for _, iv := range intervals {
		if max(start, iv.start) < min(end, iv.end) {
			pages = append(pages, iv.number)
		}
	}
	return pages
}
