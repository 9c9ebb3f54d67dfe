// Package agnos provides a forum client adapter for the Agnos Health
// community forum.
//
// The forum is an unversioned HTML site, so extraction is regex-based
// against the Tailwind class names the site renders with. Listing
// discovery walks the paginated search page; thread fetches parse the
// detail page and backfill from the listing card. Requests are paced
// with a rate limiter and retried with exponential backoff; client
// errors are permanent.
//
// Schema drift surfaces as domain.ErrFetchFailed at the extraction
// boundary, never as a crash.
package agnos
