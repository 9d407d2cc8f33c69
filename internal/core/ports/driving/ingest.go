package driving

import (
	"context"
	"time"
)

// IngestService builds the retrieval index for the configured document.
//
// The build (extract, chunk, embed, index) is a one-time, potentially
// long-running operation; queries are rejected until it completes. Builds
// are memoized by document fingerprint, so repeated calls against an
// unchanged document are cheap no-ops.
type IngestService interface {
	// Build ensures the index exists for the current document bytes and
	// chunking configuration. Safe to call concurrently; only one build
	// runs at a time and duplicates wait for its outcome.
	Build(ctx context.Context) error

	// Invalidate discards the memoized fingerprint so the next Build
	// re-reads the document (used when the file changes on disk).
	Invalidate()

	// Status reports build progress for external display.
	Status() BuildStatus
}

// BuildStatus is a snapshot of index build progress. It exposes enough for
// a caller to compute ETA; rendering is the caller's concern.
type BuildStatus struct {
	// Running reports whether a build is currently in progress.
	Running bool

	// Ready reports whether a completed index is available for queries.
	Ready bool

	// TotalChunks is the corpus size being embedded (0 until chunking
	// completes).
	TotalChunks int

	// EmbeddedChunks is the number of chunks embedded so far.
	EmbeddedChunks int

	// StartedAt is when the current or last build began.
	StartedAt time.Time

	// Elapsed is the duration of the current or last build.
	Elapsed time.Duration

	// Pages is the page count of the ingested document.
	Pages int
}
