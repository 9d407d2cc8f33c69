package services

import (
	"context"
	"sync"
	"time"

	"github.com/prescribewise/prescribewise-cli/internal/core/domain"
	"github.com/prescribewise/prescribewise-cli/internal/core/ports/driven"
	"github.com/prescribewise/prescribewise-cli/internal/core/ports/driving"
)

// --- Mock implementations ---

// mockExtractor implements driven.PageExtractor for testing.
type mockExtractor struct {
	pages      []domain.Page
	extractErr error
	calls      int
}

func (m *mockExtractor) ExtractPages(_ context.Context, _ []byte) ([]domain.Page, error) {
	m.calls++
	if m.extractErr != nil {
		return nil, m.extractErr
	}
	return m.pages, nil
}

// mockEmbedder implements driven.EmbeddingService for testing. It produces
// a fixed-dimension vector derived from the text length so different texts
// get different vectors.
type mockEmbedder struct {
	batchErr   error
	embedErr   error
	batchCalls int
	embedCalls int
	mu         sync.Mutex
}

func (m *mockEmbedder) vectorFor(text string) []float32 {
	return []float32{float32(len(text)), 1, 0}
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.embedCalls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.vectorFor(text), nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batchCalls++
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	result := make([][]float32, len(texts))
	for i, t := range texts {
		result[i] = m.vectorFor(t)
	}
	return result, nil
}

func (m *mockEmbedder) Dimensions() int { return 3 }

func (m *mockEmbedder) ModelName() string { return "mock-embed" }

func (m *mockEmbedder) Ping(_ context.Context) error { return nil }

func (m *mockEmbedder) Close() error { return nil }

// mockVectorIndex implements driven.VectorIndex for testing.
type mockVectorIndex struct {
	added  []int // chunk ids in Add order
	hits   []driven.VectorHit
	addErr error
	closed bool
}

func (m *mockVectorIndex) Add(_ context.Context, chunkID int, _ []float32) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.added = append(m.added, chunkID)
	return nil
}

func (m *mockVectorIndex) Search(_ context.Context, _ []float32, k int) ([]driven.VectorHit, error) {
	if k > len(m.hits) {
		return m.hits, nil
	}
	return m.hits[:k], nil
}

func (m *mockVectorIndex) Len() int { return len(m.added) }

func (m *mockVectorIndex) Close() error {
	m.closed = true
	return nil
}

// mockIndexFactory hands out a fresh mockVectorIndex per build and records
// every index it created.
type mockIndexFactory struct {
	hits    []driven.VectorHit
	addErr  error
	created []*mockVectorIndex
}

func (f *mockIndexFactory) new() driven.VectorIndex {
	idx := &mockVectorIndex{hits: f.hits, addErr: f.addErr}
	f.created = append(f.created, idx)
	return idx
}

func (f *mockIndexFactory) last() *mockVectorIndex {
	if len(f.created) == 0 {
		return nil
	}
	return f.created[len(f.created)-1]
}

// slowVectorIndex delays every insert so an in-flight build stays observable
// from concurrent readers. Search returns the stored ids in insertion order.
type slowVectorIndex struct {
	mu    sync.Mutex
	added []int
	delay time.Duration
}

func (s *slowVectorIndex) Add(_ context.Context, chunkID int, _ []float32) error {
	time.Sleep(s.delay)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.added = append(s.added, chunkID)
	return nil
}

func (s *slowVectorIndex) Search(_ context.Context, _ []float32, k int) ([]driven.VectorHit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	hits := make([]driven.VectorHit, 0, len(s.added))
	for i, id := range s.added {
		if i == k {
			break
		}
		hits = append(hits, driven.VectorHit{ChunkID: id, Similarity: 1 - float64(i)/1000})
	}
	return hits, nil
}

func (s *slowVectorIndex) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.added)
}

func (s *slowVectorIndex) Close() error { return nil }

// mockIndexStore implements driven.IndexStore for testing.
type mockIndexStore struct {
	chunks  []domain.Chunk
	vectors [][]float32
	loadErr error

	savedFingerprint string
	savedChunks      []domain.Chunk
	saveCalls        int
}

func (m *mockIndexStore) Save(_ context.Context, fingerprint string, chunks []domain.Chunk, vectors [][]float32) error {
	m.saveCalls++
	m.savedFingerprint = fingerprint
	m.savedChunks = chunks
	m.vectors = vectors
	return nil
}

func (m *mockIndexStore) Load(_ context.Context, _ string) ([]domain.Chunk, [][]float32, error) {
	if m.loadErr != nil {
		return nil, nil, m.loadErr
	}
	return m.chunks, m.vectors, nil
}

func (m *mockIndexStore) Close() error { return nil }

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	reply   string
	chatErr error

	lastMessages []driven.ChatMessage
}

func (m *mockLLMService) Chat(_ context.Context, messages []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	m.lastMessages = messages
	if m.chatErr != nil {
		return "", m.chatErr
	}
	return m.reply, nil
}

func (m *mockLLMService) ModelName() string { return "mock-llm" }

func (m *mockLLMService) Ping(_ context.Context) error { return nil }

func (m *mockLLMService) Close() error { return nil }

// mockRetriever implements driving.RetrievalService for testing.
type mockRetriever struct {
	results     []domain.SearchResult
	retrieveErr error
	lastQuery   string
	lastK       int
}

func (m *mockRetriever) Retrieve(_ context.Context, query string, k int) ([]domain.SearchResult, error) {
	m.lastQuery = query
	m.lastK = k
	if m.retrieveErr != nil {
		return nil, m.retrieveErr
	}
	return m.results, nil
}

// mockCorpus implements CorpusProvider for testing.
type mockCorpus struct {
	corpus *Corpus
	status driving.BuildStatus
}

func (m *mockCorpus) Corpus() (*Corpus, bool) { return m.corpus, m.corpus != nil }

func (m *mockCorpus) Status() driving.BuildStatus { return m.status }
