package driven

import (
	"context"

	"github.com/custodia-labs/medforum-cli/internal/core/domain"
)

// IndexEntryStore persists embedded index entries between runs so the
// vector index can be rebuilt without re-embedding the corpus.
type IndexEntryStore interface {
	// SaveEntries stores or replaces entries keyed by chunk id.
	SaveEntries(ctx context.Context, entries []domain.IndexEntry) error

	// LoadEntries returns all stored entries in insertion order.
	LoadEntries(ctx context.Context) ([]domain.IndexEntry, error)

	// DeleteEntries removes the entries with the given chunk ids.
	// Unknown ids are ignored.
	DeleteEntries(ctx context.Context, chunkIDs []string) error

	// Count returns the number of stored entries.
	Count(ctx context.Context) (int, error)

	// Close releases the underlying resources.
	Close() error
}
