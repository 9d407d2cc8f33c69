package driven

import (
	"context"

	"github.com/prescribewise/prescribewise-cli/internal/core/domain"
)

// IndexStore persists a built index so a process restart can skip
// re-extraction and re-embedding.
//
// Chunks and vectors are stored row-aligned: vector i belongs to chunk i.
// Every snapshot carries the fingerprint it was built from (a hash of the
// document bytes, chunking parameters and embedding model); loading with a
// different fingerprint reports domain.ErrStaleIndex so the caller rebuilds
// instead of silently serving a stale corpus.
type IndexStore interface {
	// Save replaces any persisted snapshot with the given corpus.
	Save(ctx context.Context, fingerprint string, chunks []domain.Chunk, vectors [][]float32) error

	// Load returns the persisted corpus for the given fingerprint.
	// Returns domain.ErrNotFound when nothing is persisted, and
	// domain.ErrStaleIndex when a snapshot exists under a different
	// fingerprint.
	Load(ctx context.Context, fingerprint string) ([]domain.Chunk, [][]float32, error)

	// Close releases resources.
	Close() error
}
