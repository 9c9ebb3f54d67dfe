package driving

import (
	"context"

	"github.com/custodia-labs/medforum-cli/internal/core/domain"
)

// AnswerService answers free-text health questions grounded on
// retrieved forum passages.
type AnswerService interface {
	// Answer embeds the query, retrieves the k most similar passages,
	// and generates a cited answer. A k of zero or less falls back to
	// the configured default.
	Answer(ctx context.Context, query string, k int) (*domain.AnswerResult, error)
}
