package driven

import (
	"context"

	"github.com/custodia-labs/medforum-cli/internal/core/domain"
)

// ThreadStore persists scraped forum threads. The durable form is one
// JSON-encoded record per line; the scraper is the only writer while
// the answer engine and statistics read concurrently.
type ThreadStore interface {
	// Load returns every stored record in insertion order, together
	// with the count of malformed lines that were skipped. Blank lines
	// are tolerated; later records for the same thread id supersede
	// earlier ones.
	Load(ctx context.Context) ([]domain.ThreadRecord, int, error)

	// Upsert inserts the record if its thread id is absent, otherwise
	// replaces the stored record in its original position. Upserting
	// identical content is a no-op. The returned flag is true when the
	// stored content changed (insert or replacement).
	Upsert(ctx context.Context, record domain.ThreadRecord) (bool, error)

	// Contains reports whether a thread id is stored.
	Contains(ctx context.Context, threadID string) (bool, error)

	// AllIDs returns the set of stored thread ids.
	AllIDs(ctx context.Context) (map[string]struct{}, error)
}
