package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/prescribewise/prescribewise-cli/internal/chunker"
	"github.com/prescribewise/prescribewise-cli/internal/core/domain"
	"github.com/prescribewise/prescribewise-cli/internal/core/ports/driven"
	"github.com/prescribewise/prescribewise-cli/internal/core/ports/driving"
	"github.com/prescribewise/prescribewise-cli/internal/logger"
)

// Ensure Ingestor implements the interfaces.
var (
	_ driving.IngestService = (*Ingestor)(nil)
	_ CorpusProvider        = (*Ingestor)(nil)
)

// embedBatchInterval is the minimum spacing between bulk embedding calls,
// to stay under provider rate limits during a corpus build.
const embedBatchInterval = 100 * time.Millisecond

// Ingestor builds the retrieval index: it reads the configured document,
// extracts pages, chunks them, embeds the chunks in batches, and loads the
// vectors into the index.
//
// Each build populates a fresh index from the factory and publishes it
// together with its chunks as one Corpus, so queries running during a
// rebuild keep hitting the previous complete corpus.
//
// Builds are memoized by a fingerprint of the document bytes, the chunking
// parameters and the embedding model, so repeated Build calls against an
// unchanged document are no-ops. A single mutex serialises builds; callers
// arriving during a build block until it finishes and then hit the memo.
type Ingestor struct {
	settings  domain.AppSettings
	extractor driven.PageExtractor
	embedder  driven.EmbeddingService
	newIndex  func() driven.VectorIndex
	store     driven.IndexStore // optional, may be nil
	chunker   *chunker.Chunker
	limiter   *rate.Limiter

	buildMu sync.Mutex
	state   buildState
}

// NewIngestor creates an ingest service. newIndex supplies an empty vector
// index for each build. The index store is optional; when nil, every process
// start rebuilds the index from scratch.
func NewIngestor(
	settings domain.AppSettings,
	extractor driven.PageExtractor,
	embedder driven.EmbeddingService,
	newIndex func() driven.VectorIndex,
	store driven.IndexStore,
) *Ingestor {
	settings.Normalise()
	r := settings.Retrieval
	return &Ingestor{
		settings:  settings,
		extractor: extractor,
		embedder:  embedder,
		newIndex:  newIndex,
		store:     store,
		chunker: chunker.New(
			chunker.WithChunkSize(r.ChunkSize),
			chunker.WithOverlap(r.ChunkOverlap),
			chunker.WithMinChunkChars(r.MinChunkChars),
		),
		limiter: rate.NewLimiter(rate.Every(embedBatchInterval), 1),
	}
}

// Build ensures the index exists for the current document bytes.
func (g *Ingestor) Build(ctx context.Context) error {
	g.buildMu.Lock()
	defer g.buildMu.Unlock()

	data, err := os.ReadFile(g.settings.Document.Path)
	if err != nil {
		return fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, g.settings.Document.Path)
	}

	fp := g.fingerprint(data)
	if g.state.readyFor(fp) {
		logger.Debug("Index up to date for fingerprint %s", fp[:12])
		return nil
	}

	g.state.begin()
	defer g.state.finish()

	// A persisted snapshot for this exact fingerprint skips extraction
	// and embedding entirely.
	if g.store != nil {
		if loaded, err := g.loadSnapshot(ctx, fp); err != nil {
			return err
		} else if loaded {
			return nil
		}
	}

	logger.Section("Index Build")
	logger.Info("Document: %s (%d bytes)", g.settings.Document.Path, len(data))

	pages, err := g.extractor.ExtractPages(ctx, data)
	if err != nil {
		return fmt.Errorf("extract pages: %w", err)
	}
	g.state.setPages(len(pages))
	logger.Info("Extracted %d pages", len(pages))

	chunks := g.chunker.Chunk(pages)
	if len(chunks) == 0 {
		return fmt.Errorf("%w: %s", domain.ErrNoExtractableText, g.settings.Document.Path)
	}
	g.state.setTotal(len(chunks))
	logger.Info("Chunked into %d chunks", len(chunks))

	vectors, err := g.embedAll(ctx, chunks)
	if err != nil {
		return err
	}

	index, err := g.loadIndex(ctx, chunks, vectors)
	if err != nil {
		return err
	}

	if g.store != nil {
		if err := g.store.Save(ctx, fp, chunks, vectors); err != nil {
			// Persistence is an optimisation; the in-memory index is
			// complete either way.
			logger.Warn("Persist index: %v", err)
		} else {
			logger.Debug("Index persisted under fingerprint %s", fp[:12])
		}
	}

	g.publish(fp, chunks, index)
	logger.Info("Index ready: %d chunks", len(chunks))
	return nil
}

// publish swaps the completed corpus in and releases the one it replaced.
func (g *Ingestor) publish(fp string, chunks []domain.Chunk, index driven.VectorIndex) {
	if old := g.state.publish(fp, newCorpus(chunks, index)); old != nil {
		if err := old.index.Close(); err != nil {
			logger.Warn("Close superseded index: %v", err)
		}
	}
}

// Invalidate discards the memoized fingerprint so the next Build re-reads
// the document from disk.
func (g *Ingestor) Invalidate() {
	g.state.invalidate()
	logger.Info("Index invalidated")
}

// Status reports build progress.
func (g *Ingestor) Status() driving.BuildStatus {
	return g.state.snapshot()
}

// ChunkByID returns the chunk with the given id from the built corpus.
func (g *Ingestor) ChunkByID(id int) (domain.Chunk, bool) {
	return g.state.chunk(id)
}

// Corpus returns the published corpus. ok is false until the first build
// completes; after that it always returns a complete corpus, including while
// a rebuild is running.
func (g *Ingestor) Corpus() (*Corpus, bool) {
	return g.state.current()
}

// fingerprint derives the memoization key: document bytes plus every
// parameter whose change invalidates stored vectors.
func (g *Ingestor) fingerprint(data []byte) string {
	r := g.settings.Retrieval
	h := sha256.New()
	h.Write(data)
	fmt.Fprintf(h, "|size=%d|overlap=%d|min=%d|model=%s",
		r.ChunkSize, r.ChunkOverlap, r.MinChunkChars, g.embedder.ModelName())
	return hex.EncodeToString(h.Sum(nil))
}

// loadSnapshot restores a persisted corpus. It returns true when the index
// was populated from the snapshot. A missing or stale snapshot is not an
// error; it just means a full build is needed.
func (g *Ingestor) loadSnapshot(ctx context.Context, fp string) (bool, error) {
	chunks, vectors, err := g.store.Load(ctx, fp)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		logger.Debug("No persisted index")
		return false, nil
	case errors.Is(err, domain.ErrStaleIndex):
		logger.Info("Persisted index is stale, rebuilding")
		return false, nil
	case err != nil:
		return false, fmt.Errorf("load persisted index: %w", err)
	}

	g.state.setTotal(len(chunks))
	index, err := g.loadIndex(ctx, chunks, vectors)
	if err != nil {
		return false, err
	}
	g.state.setEmbedded(len(chunks))
	g.publish(fp, chunks, index)
	logger.Info("Index restored from cache: %d chunks", len(chunks))
	return true, nil
}

// embedAll generates vectors for the whole corpus in bounded batches,
// keeping input order. A failed batch falls back to embedding its items one
// by one; an item that still fails aborts the build, naming the batch.
func (g *Ingestor) embedAll(ctx context.Context, chunks []domain.Chunk) ([][]float32, error) {
	batchSize := g.settings.Retrieval.EmbeddingBatchSize
	vectors := make([][]float32, 0, len(chunks))

	for start := 0; start < len(chunks); start += batchSize {
		end := min(start+batchSize, len(chunks))
		batch := chunks[start:end]

		if err := g.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("embed corpus: %w", err)
		}

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}

		embedded, err := g.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			logger.Warn("Batch %d-%d failed (%v), retrying per chunk", start, end-1, err)
			embedded, err = g.embedOneByOne(ctx, batch)
			if err != nil {
				return nil, fmt.Errorf("embed chunks %d-%d: %w", start, end-1, err)
			}
		}
		if len(embedded) != len(batch) {
			return nil, fmt.Errorf("embed chunks %d-%d: got %d vectors for %d texts",
				start, end-1, len(embedded), len(batch))
		}

		vectors = append(vectors, embedded...)
		g.state.setEmbedded(len(vectors))
		logger.Debug("Embedded %d/%d chunks", len(vectors), len(chunks))
	}

	return vectors, nil
}

// embedOneByOne isolates a batch failure to the individual chunk that
// caused it.
func (g *Ingestor) embedOneByOne(ctx context.Context, batch []domain.Chunk) ([][]float32, error) {
	vectors := make([][]float32, 0, len(batch))
	for _, c := range batch {
		v, err := g.embedder.Embed(ctx, c.Text)
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", c.ID, err)
		}
		vectors = append(vectors, v)
	}
	return vectors, nil
}

// loadIndex populates a fresh vector index with the given corpus. Vector i
// belongs to chunk i. The index stays private until it is published, so a
// failed or in-progress load is never visible to queries.
func (g *Ingestor) loadIndex(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) (driven.VectorIndex, error) {
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("load index: %d vectors for %d chunks", len(vectors), len(chunks))
	}
	index := g.newIndex()
	for i, c := range chunks {
		if err := index.Add(ctx, c.ID, vectors[i]); err != nil {
			_ = index.Close()
			return nil, fmt.Errorf("add vector for chunk %d: %w", c.ID, err)
		}
	}
	return index, nil
}
