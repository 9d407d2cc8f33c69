package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
//
// The build-time taxonomy deliberately distinguishes a missing document, a
// document with no extractable text, and an unreachable external service,
// because the remediation differs (fetch the file vs. OCR vs. check
// credentials).
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDocumentNotFound indicates the guideline document is missing or
	// unreadable. Fatal at build time; no query can be served.
	ErrDocumentNotFound = errors.New("guideline document not found")

	// ErrNoExtractableText indicates extraction and chunking produced an
	// empty corpus (e.g. a fully scanned, image-only document).
	ErrNoExtractableText = errors.New("document contains no extractable text")

	// ErrIndexNotBuilt indicates a query arrived before the one-time
	// index build completed. A partially built index is never exposed.
	ErrIndexNotBuilt = errors.New("index not built")

	// ErrBuildInProgress indicates an index build is already running for
	// this document.
	ErrBuildInProgress = errors.New("index build in progress")

	// ErrStaleIndex indicates a persisted index was built from a
	// different document or chunking configuration and must be rebuilt.
	ErrStaleIndex = errors.New("persisted index is stale")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Neither indexing nor retrieval can run without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates the generation service is not
	// configured. Retrieval still works; answer generation is disabled.
	ErrLLMUnavailable = errors.New("LLM service unavailable")
)
