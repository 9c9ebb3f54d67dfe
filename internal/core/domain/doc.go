// Package domain defines the core business entities for the medical
// forum assistant.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - ThreadRecord: A scraped forum thread with its comments
//   - Chunk: A retrieval unit derived from a thread
//   - IndexEntry: An embedded chunk held by the vector index
//   - AnswerResult: The grounded answer produced for a query
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
