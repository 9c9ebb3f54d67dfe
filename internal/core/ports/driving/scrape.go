package driving

import (
	"context"

	"github.com/custodia-labs/medforum-cli/internal/core/domain"
)

// ScrapeService runs scrape runs against the forum site.
type ScrapeService interface {
	// Run executes one scrape run in the given mode and reports the
	// outcome. At most one run may be in flight at a time; a second
	// caller gets domain.ErrScrapeInProgress.
	Run(ctx context.Context, mode domain.ScrapeMode) (*domain.ScrapeRunReport, error)

	// Status returns the in-flight run status, or nil when idle.
	Status(ctx context.Context) *ScrapeStatus
}

// ScrapeStatus is the progress of an in-flight scrape run.
type ScrapeStatus struct {
	// RunID identifies the run.
	RunID string

	// Mode is the run's scrape mode.
	Mode domain.ScrapeMode

	// Fetched is the number of threads stored so far.
	Fetched int

	// Skipped is the number of threads abandoned so far.
	Skipped int
}
