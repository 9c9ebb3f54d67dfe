package driving

import (
	"context"

	"github.com/custodia-labs/medforum-cli/internal/core/domain"
)

// IngestService keeps the vector index in step with the content store.
type IngestService interface {
	// Ingest chunks every stored thread and embeds chunks the index
	// has not seen. Unchanged chunks are skipped, so repeated calls
	// after a no-op scrape embed nothing.
	Ingest(ctx context.Context) (*domain.IngestReport, error)

	// Watch re-ingests whenever the dataset file changes, until the
	// context is cancelled. Changes are debounced.
	Watch(ctx context.Context) error
}
