package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrFetchFailed indicates a thread page could not be fetched or
	// parsed. Per-thread: recovered by skip-and-log, never aborts a run.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrEmbeddingFailed indicates the embedding provider failed after
	// bounded retries. Surfaced to the caller with no partial answer.
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrGenerationFailed indicates the completion provider failed
	// after bounded retries. The engine never substitutes a canned
	// answer for it.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrTimeout indicates a suspension point exceeded its deadline.
	// Surfaced immediately, no retry.
	ErrTimeout = errors.New("timed out")

	// ErrConfiguration indicates a fatal startup misconfiguration,
	// such as an embedding dimension mismatch or a missing API key.
	ErrConfiguration = errors.New("configuration error")

	// ErrDataIntegrity indicates a malformed stored record. Loads skip
	// such records and report a count; they never abort the whole load.
	ErrDataIntegrity = errors.New("data integrity")

	// ErrScrapeInProgress indicates a scrape run is already running.
	ErrScrapeInProgress = errors.New("scrape in progress")

	// ErrRateLimited indicates the provider rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
