// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - PageExtractor: Turns raw document bytes into ordered pages
//   - EmbeddingService: Generates vector embeddings (bulk and single-query)
//   - VectorIndex: Stores chunk vectors and answers nearest-neighbour queries
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Answer generation. Without it, retrieval still works but
//     `ask` is disabled.
//   - IndexStore: Persists the built index so a restart avoids re-embedding.
//   - ConfigStore: Application configuration persistence.
//   - DocumentWatcher: Invalidates a cached index when the document changes.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
