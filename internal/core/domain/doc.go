// Package domain defines the core business entities for PrescribeWise.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Page: One physical page of the guideline document
//   - Chunk: A page-attributed slice of document text, the unit of retrieval
//   - SearchResult: A chunk with its similarity score for one query
//   - Answer: The grounded-or-ungrounded outcome of one question
//   - Settings: The tunable retrieval configuration
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
