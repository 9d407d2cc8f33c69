package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prescribewise/prescribewise-cli/internal/core/domain"
	"github.com/prescribewise/prescribewise-cli/internal/core/ports/driven"
)

// --- Test helpers ---

func testSettings(t *testing.T) domain.AppSettings {
	t.Helper()

	docPath := filepath.Join(t.TempDir(), "guideline.pdf")
	require.NoError(t, os.WriteFile(docPath, []byte("%PDF-1.7 test document"), 0o600))

	s := domain.DefaultAppSettings()
	s.Document.Path = docPath
	s.Retrieval.ChunkSize = 50
	s.Retrieval.ChunkOverlap = 10
	s.Retrieval.MinChunkChars = 5
	s.Retrieval.EmbeddingBatchSize = 2
	return s
}

func testDocPages() []domain.Page {
	return []domain.Page{
		{Number: 1, Text: strings.Repeat("amoxicillin is first line ", 5)},
		{Number: 2, Text: strings.Repeat("ceftriaxone is watch group ", 5)},
	}
}

// --- Tests ---

func TestIngestor_Build(t *testing.T) {
	extractor := &mockExtractor{pages: testDocPages()}
	embedder := &mockEmbedder{}
	factory := &mockIndexFactory{}

	ing := NewIngestor(testSettings(t), extractor, embedder, factory.new, nil)
	require.NoError(t, ing.Build(context.Background()))

	status := ing.Status()
	assert.True(t, status.Ready)
	assert.False(t, status.Running)
	assert.Equal(t, 2, status.Pages)
	assert.Equal(t, status.TotalChunks, status.EmbeddedChunks)
	assert.Positive(t, status.TotalChunks)

	// Vector rows are added in chunk id order starting at 0.
	require.Len(t, factory.created, 1)
	index := factory.last()
	require.Equal(t, status.TotalChunks, len(index.added))
	for i, id := range index.added {
		assert.Equal(t, i, id)
	}

	chunk, ok := ing.ChunkByID(0)
	require.True(t, ok)
	assert.Equal(t, 0, chunk.ID)
	assert.NotEmpty(t, chunk.Text)

	_, ok = ing.ChunkByID(status.TotalChunks)
	assert.False(t, ok)
}

func TestIngestor_Build_Memoized(t *testing.T) {
	extractor := &mockExtractor{pages: testDocPages()}
	embedder := &mockEmbedder{}
	factory := &mockIndexFactory{}
	ctx := context.Background()

	ing := NewIngestor(testSettings(t), extractor, embedder, factory.new, nil)
	require.NoError(t, ing.Build(ctx))
	require.NoError(t, ing.Build(ctx))

	assert.Equal(t, 1, extractor.calls, "unchanged document should not be re-extracted")
	assert.Len(t, factory.created, 1, "a memoized build should not create a new index")
}

func TestIngestor_Invalidate(t *testing.T) {
	extractor := &mockExtractor{pages: testDocPages()}
	factory := &mockIndexFactory{}
	ctx := context.Background()

	ing := NewIngestor(testSettings(t), extractor, &mockEmbedder{}, factory.new, nil)
	require.NoError(t, ing.Build(ctx))

	ing.Invalidate()
	require.NoError(t, ing.Build(ctx))

	assert.Equal(t, 2, extractor.calls)
	// The rebuild populated a fresh index and released the first one.
	require.Len(t, factory.created, 2)
	assert.True(t, factory.created[0].closed)
	assert.False(t, factory.created[1].closed)
}

func TestIngestor_Build_MissingDocument(t *testing.T) {
	s := testSettings(t)
	s.Document.Path = filepath.Join(t.TempDir(), "absent.pdf")
	factory := &mockIndexFactory{}

	ing := NewIngestor(s, &mockExtractor{}, &mockEmbedder{}, factory.new, nil)
	err := ing.Build(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
	assert.False(t, ing.Status().Ready)
}

func TestIngestor_Build_NoExtractableText(t *testing.T) {
	extractor := &mockExtractor{pages: []domain.Page{
		{Number: 1, Text: ""},
		{Number: 2, Text: "   "},
	}}
	factory := &mockIndexFactory{}

	ing := NewIngestor(testSettings(t), extractor, &mockEmbedder{}, factory.new, nil)
	err := ing.Build(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNoExtractableText)
}

func TestIngestor_Build_BatchFallback(t *testing.T) {
	embedder := &mockEmbedder{batchErr: errors.New("rate limited")}
	extractor := &mockExtractor{pages: testDocPages()}
	factory := &mockIndexFactory{}

	ing := NewIngestor(testSettings(t), extractor, embedder, factory.new, nil)
	require.NoError(t, ing.Build(context.Background()))

	// Every batch failed, so every chunk was embedded individually.
	assert.Equal(t, ing.Status().TotalChunks, embedder.embedCalls)
	assert.Equal(t, ing.Status().TotalChunks, len(factory.last().added))
}

func TestIngestor_Build_ChunkFailureIsFatal(t *testing.T) {
	embedder := &mockEmbedder{
		batchErr: errors.New("rate limited"),
		embedErr: errors.New("boom"),
	}
	factory := &mockIndexFactory{}

	ing := NewIngestor(testSettings(t), &mockExtractor{pages: testDocPages()}, embedder, factory.new, nil)
	err := ing.Build(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "embed chunks 0-1")
	assert.False(t, ing.Status().Ready)
}

func TestIngestor_Build_AddFailureDiscardsIndex(t *testing.T) {
	factory := &mockIndexFactory{addErr: errors.New("out of memory")}

	ing := NewIngestor(testSettings(t), &mockExtractor{pages: testDocPages()}, &mockEmbedder{}, factory.new, nil)
	err := ing.Build(context.Background())

	require.Error(t, err)
	assert.False(t, ing.Status().Ready)
	// The half-built index was closed, never published.
	require.Len(t, factory.created, 1)
	assert.True(t, factory.created[0].closed)
	_, ok := ing.Corpus()
	assert.False(t, ok)
}

func TestIngestor_Build_RestoresSnapshot(t *testing.T) {
	store := &mockIndexStore{
		chunks: []domain.Chunk{
			{ID: 0, Text: "first-line options", Pages: []int{1}},
			{ID: 1, Text: "watch group options", Pages: []int{2}},
		},
		vectors: [][]float32{{1, 0, 0}, {0, 1, 0}},
	}
	extractor := &mockExtractor{pages: testDocPages()}
	factory := &mockIndexFactory{}

	ing := NewIngestor(testSettings(t), extractor, &mockEmbedder{}, factory.new, store)
	require.NoError(t, ing.Build(context.Background()))

	assert.Equal(t, 0, extractor.calls, "a cached index should skip extraction")
	assert.Equal(t, []int{0, 1}, factory.last().added)
	assert.True(t, ing.Status().Ready)

	chunk, ok := ing.ChunkByID(1)
	require.True(t, ok)
	assert.Equal(t, "watch group options", chunk.Text)
}

func TestIngestor_Build_StaleSnapshotRebuilds(t *testing.T) {
	store := &mockIndexStore{loadErr: domain.ErrStaleIndex}
	extractor := &mockExtractor{pages: testDocPages()}
	factory := &mockIndexFactory{}

	ing := NewIngestor(testSettings(t), extractor, &mockEmbedder{}, factory.new, store)
	require.NoError(t, ing.Build(context.Background()))

	assert.Equal(t, 1, extractor.calls)
	assert.Equal(t, 1, store.saveCalls)
	assert.NotEmpty(t, store.savedFingerprint)
	assert.Equal(t, ing.Status().TotalChunks, len(store.savedChunks))
}

// Queries racing a rebuild must only ever see a complete corpus: every
// result set is either the full old corpus or the full new one, never a
// partially populated index.
func TestIngestor_Rebuild_ServesCompleteCorpus(t *testing.T) {
	pagesWith := func(word string, repeats int) []domain.Page {
		return []domain.Page{
			{Number: 1, Text: strings.Repeat(word+" first line therapy ", repeats)},
			{Number: 2, Text: strings.Repeat(word+" reserve group use ", repeats)},
		}
	}
	alphaPages := pagesWith("alpha", 10)
	betaPages := pagesWith("beta", 16)

	// Chunking is deterministic, so a throwaway build gives the corpus
	// size the rebuild must converge on.
	countChunks := func(pages []domain.Page) int {
		t.Helper()
		s := testSettings(t)
		s.Retrieval.EmbeddingBatchSize = 100
		factory := &mockIndexFactory{}
		ing := NewIngestor(s, &mockExtractor{pages: pages}, &mockEmbedder{}, factory.new, nil)
		require.NoError(t, ing.Build(context.Background()))
		return ing.Status().TotalChunks
	}
	alphaLen := countChunks(alphaPages)
	betaLen := countChunks(betaPages)
	require.Positive(t, alphaLen)
	require.Positive(t, betaLen)
	require.NotEqual(t, alphaLen, betaLen)

	settings := testSettings(t)
	settings.Retrieval.EmbeddingBatchSize = 100

	extractor := &mockExtractor{pages: alphaPages}
	embedder := &mockEmbedder{}
	newIndex := func() driven.VectorIndex {
		return &slowVectorIndex{delay: 2 * time.Millisecond}
	}

	ing := NewIngestor(settings, extractor, embedder, newIndex, nil)
	r := NewRetriever(ing, embedder)
	ctx := context.Background()

	require.NoError(t, ing.Build(ctx))

	// Change the document, then query continuously while the rebuild runs.
	require.NoError(t, os.WriteFile(settings.Document.Path, []byte("%PDF-1.7 revised"), 0o600))
	extractor.pages = betaPages
	ing.Invalidate()

	done := make(chan error, 1)
	go func() { done <- ing.Build(ctx) }()

	for building := true; building; {
		select {
		case err := <-done:
			require.NoError(t, err)
			building = false
		default:
		}

		results, err := r.Retrieve(ctx, "reserve group use", 100)
		require.NoError(t, err)
		require.NotEmpty(t, results)

		word, want := "alpha", alphaLen
		if strings.Contains(results[0].Chunk.Text, "beta") {
			word, want = "beta", betaLen
		}
		require.Len(t, results, want, "query saw a partially built corpus")
		for _, res := range results {
			require.Contains(t, res.Chunk.Text, word, "query mixed chunks from two corpora")
		}
	}

	results, err := r.Retrieve(ctx, "reserve group use", 100)
	require.NoError(t, err)
	require.Len(t, results, betaLen)
}

func TestIngestor_Build_NoSnapshotPersists(t *testing.T) {
	store := &mockIndexStore{loadErr: domain.ErrNotFound}
	factory := &mockIndexFactory{}

	ing := NewIngestor(testSettings(t), &mockExtractor{pages: testDocPages()}, &mockEmbedder{}, factory.new, store)
	require.NoError(t, ing.Build(context.Background()))

	assert.Equal(t, 1, store.saveCalls)
}
