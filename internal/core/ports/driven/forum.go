package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/medforum-cli/internal/core/domain"
)

// ThreadListing is one entry of the forum's thread listing.
type ThreadListing struct {
	// ThreadID is the stable external identifier.
	ThreadID string

	// URL is the thread detail location.
	URL string

	// Title is the headline shown on the listing page.
	Title string

	// Tags are the symptom labels shown on the listing card.
	Tags []string

	// GenderAge is the demographic line shown on the listing card.
	GenderAge string

	// Posted is the thread date shown on the listing card, zero when
	// the card carries no parseable date.
	Posted time.Time

	// Likes is the thumbs-up count shown on the listing card.
	Likes int

	// Preview is the truncated question text from the listing card,
	// used as a fallback when the detail page cannot be parsed.
	Preview string
}

// ForumClient fetches pages from the forum site. The site is an
// unversioned, unreliable HTML source: schema drift is caught at the
// extraction boundary and surfaces as domain.ErrFetchFailed, never as
// a crash.
type ForumClient interface {
	// DiscoverThreads walks the paginated listing and returns up to
	// maxThreads entries, deduplicated across pages.
	DiscoverThreads(ctx context.Context, maxThreads int) ([]ThreadListing, error)

	// FetchThread fetches and parses one thread detail page into a
	// full record. Listing metadata fills fields the detail page lacks.
	FetchThread(ctx context.Context, listing ThreadListing) (*domain.ThreadRecord, error)

	// Close releases resources.
	Close() error
}
