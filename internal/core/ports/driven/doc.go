// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - ThreadStore: Content store persistence (JSONL dataset)
//   - ForumClient: Listing discovery and thread detail fetching
//   - VectorIndex: Embedding storage and similarity search
//   - IndexEntryStore: Durable persistence behind the vector index
//   - EmbeddingService: Generates vector embeddings
//   - LLMService: Generates grounded answers
//   - ConfigStore: Application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
