package driving

import (
	"context"

	"github.com/custodia-labs/medforum-cli/internal/core/domain"
)

// StatsService aggregates corpus statistics for analytics consumers.
type StatsService interface {
	// Snapshot computes aggregate counts over the content store.
	// Records with missing optional fields fall into "unknown"
	// buckets; a malformed stored record is skipped, never fatal.
	Snapshot(ctx context.Context) (*domain.CorpusStats, error)
}
