package domain

import "time"

// ScrapeMode selects how a scrape run treats already-stored threads.
type ScrapeMode string

// Available scrape modes.
const (
	// ScrapeModeFull discovers the complete listing and re-fetches
	// every thread, overwriting prior content.
	ScrapeModeFull ScrapeMode = "full"

	// ScrapeModeUpdate fetches only threads absent from the store.
	// Existing threads are not re-fetched, so new comments on old
	// threads are missed. This is a deliberate cost trade-off.
	ScrapeModeUpdate ScrapeMode = "update"
)

// IsValid returns true if the scrape mode is recognised.
func (m ScrapeMode) IsValid() bool {
	switch m {
	case ScrapeModeFull, ScrapeModeUpdate:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m ScrapeMode) String() string {
	return string(m)
}

// ScrapeRunReport summarises a completed scrape run.
type ScrapeRunReport struct {
	// RunID identifies the run for logging.
	RunID string `json:"run_id"`

	// Mode is the mode the run executed in.
	Mode ScrapeMode `json:"mode"`

	// Fetched is the count of threads fetched and stored.
	Fetched int `json:"fetched"`

	// Skipped is the count of threads abandoned after retries.
	Skipped int `json:"skipped"`

	// Updated is the count of stored threads whose content changed.
	Updated int `json:"updated"`

	// Duration is the wall-clock time of the run.
	Duration time.Duration `json:"duration"`
}

// IngestReport summarises an indexing pass over the content store.
type IngestReport struct {
	// Threads is the number of records read from the store.
	Threads int `json:"threads"`

	// Chunks is the total number of chunks produced.
	Chunks int `json:"chunks"`

	// Embedded is the count of chunks newly embedded this pass.
	Embedded int `json:"embedded"`

	// Skipped is the count of chunks already indexed and unchanged.
	Skipped int `json:"skipped"`

	// Duration is the wall-clock time of the pass.
	Duration time.Duration `json:"duration"`
}
