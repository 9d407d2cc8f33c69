package services

import (
	"sync"
	"time"

	"github.com/prescribewise/prescribewise-cli/internal/core/domain"
	"github.com/prescribewise/prescribewise-cli/internal/core/ports/driving"
)

// buildState tracks the published corpus and build progress behind its own
// lock so Status and ChunkByID stay readable while a build runs.
type buildState struct {
	mu          sync.RWMutex
	running     bool
	isReady     bool
	fingerprint string
	corpus      *Corpus
	pages       int
	total       int
	embedded    int
	startedAt   time.Time
	finishedAt  time.Time
}

// readyFor reports whether a completed corpus exists for the fingerprint.
func (s *buildState) readyFor(fp string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isReady && s.fingerprint == fp
}

func (s *buildState) begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = true
	s.pages = 0
	s.total = 0
	s.embedded = 0
	s.startedAt = time.Now()
	s.finishedAt = time.Time{}
}

func (s *buildState) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.finishedAt = time.Now()
}

func (s *buildState) setPages(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages = n
}

func (s *buildState) setTotal(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total = n
}

func (s *buildState) setEmbedded(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.embedded = n
}

// publish swaps in a completed corpus under its fingerprint and returns the
// corpus it superseded, if any, so the caller can release it.
func (s *buildState) publish(fp string, c *Corpus) *Corpus {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.corpus
	s.isReady = true
	s.fingerprint = fp
	s.corpus = c
	s.total = c.Len()
	s.embedded = c.Len()
	return old
}

// current returns the published corpus. ok is false until the first build
// completes.
func (s *buildState) current() (*Corpus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.corpus, s.isReady && s.corpus != nil
}

// invalidate forgets the fingerprint but keeps serving the old corpus until
// the next Build replaces it.
func (s *buildState) invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fingerprint = ""
}

func (s *buildState) chunk(id int) (domain.Chunk, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.corpus == nil {
		return domain.Chunk{}, false
	}
	return s.corpus.ChunkByID(id)
}

func (s *buildState) snapshot() driving.BuildStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	elapsed := time.Duration(0)
	switch {
	case s.running:
		elapsed = time.Since(s.startedAt)
	case !s.startedAt.IsZero():
		elapsed = s.finishedAt.Sub(s.startedAt)
	}

	return driving.BuildStatus{
		Running:        s.running,
		Ready:          s.isReady,
		TotalChunks:    s.total,
		EmbeddedChunks: s.embedded,
		StartedAt:      s.startedAt,
		Elapsed:        elapsed,
		Pages:          s.pages,
	}
}
