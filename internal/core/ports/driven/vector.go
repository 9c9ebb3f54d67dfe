package driven

import (
	"context"

	"github.com/custodia-labs/medforum-cli/internal/core/domain"
)

// EmbedFunc produces an embedding for one text. The index calls it
// only for chunks it has not already embedded.
type EmbedFunc func(ctx context.Context, text string) ([]float32, error)

// VectorIndex stores embedded chunks and answers nearest-neighbour
// queries. One writer (the ingest pipeline) mutates it; the answer
// engine reads it concurrently.
type VectorIndex interface {
	// UpsertBatch indexes the given chunks. A chunk whose id is
	// already present with identical text is skipped without an
	// embedding call; a stale entry under the same id is replaced.
	// Returns the count of chunks newly embedded.
	UpsertBatch(ctx context.Context, chunks []domain.Chunk, meta map[string]domain.EntryMetadata, embed EmbedFunc) (int, error)

	// Search returns up to k entries most similar to the query vector,
	// descending by cosine similarity, ties broken by insertion order.
	// An empty index yields an empty slice, not an error.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Len returns the number of stored entries.
	Len() int

	// Dimensions returns the fixed vector width of this index, or zero
	// before the first insert.
	Dimensions() int

	// Close persists pending state and releases resources.
	Close() error
}

// VectorHit is a similarity search result.
type VectorHit struct {
	// Entry is the matched index entry.
	Entry domain.IndexEntry

	// Similarity is the cosine similarity score.
	Similarity float64
}
