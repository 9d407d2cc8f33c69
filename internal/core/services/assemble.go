package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/prescribewise/prescribewise-cli/internal/core/domain"
)

// sourceDelimiter separates source blocks in the assembled context.
const sourceDelimiter = "\n\n---\n\n"

// truncationMarker flags a source block that was cut at the character
// budget, so the generator never mistakes a cut-off sentence for a complete
// statement.
const truncationMarker = " [...truncated]"

// AssembleContext renders retrieved results into the grounding context
// handed to the generator, plus the citation list.
//
// Each result becomes one block in rank order, headed by its source number,
// page attribution and relevance score, with the chunk text truncated to
// maxCharsPerSource. The returned sources keep the untruncated text, so
// citations are rendered from retrieval data rather than from whatever the
// generator chooses to repeat.
func AssembleContext(results []domain.SearchResult, maxCharsPerSource int) (string, []domain.Source) {
	if len(results) == 0 {
		return "", nil
	}

	blocks := make([]string, 0, len(results))
	sources := make([]domain.Source, 0, len(results))

	for i, res := range results {
		source := domain.Source{
			Index: i + 1,
			Pages: res.Chunk.Pages,
			Score: res.Score,
			Text:  res.Chunk.Text,
		}
		sources = append(sources, source)

		text := res.Chunk.Text
		if maxCharsPerSource > 0 && len(text) > maxCharsPerSource {
			// Back the cut off to a rune boundary so the truncated
			// block stays valid UTF-8.
			cut := maxCharsPerSource
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
			text = text[:cut] + truncationMarker
		}

		blocks = append(blocks, fmt.Sprintf("[Source %d; pages %s; relevance %.2f]\n%s",
			source.Index, source.PageLabel(), source.Score, text))
	}

	return strings.Join(blocks, sourceDelimiter), sources
}
