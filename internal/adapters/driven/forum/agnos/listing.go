package agnos

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/medforum-cli/internal/core/ports/driven"
	"github.com/custodia-labs/medforum-cli/internal/logger"
)

// Pre-compiled regular expressions for listing page extraction. The
// site is a Tailwind-styled app, so class names double as selectors.
var (
	cardPattern      = regexp.MustCompile(`(?is)<a[^>]*href="([^"]+)"[^>]*>\s*<article[^>]*>(.*?)</article>`)
	titlePattern     = regexp.MustCompile(`(?is)<p[^>]*class="[^"]*font-bold[^"]*"[^>]*>(.*?)</p>`)
	genderAgePattern = regexp.MustCompile(`(?is)<p[^>]*class="[^"]*text-gray-500[^"]*"[^>]*>(.*?)</p>`)
	previewPattern   = regexp.MustCompile(`(?is)<p[^>]*class="[^"]*line-clamp-3[^"]*"[^>]*>(.*?)</p>`)
	tagItemPattern   = regexp.MustCompile(`(?is)<li[^>]*>(.*?)</li>`)
	datePattern      = regexp.MustCompile(`(?is)<time[^>]*>.*?<span[^>]*>(.*?)</span>`)
	likesPattern     = regexp.MustCompile(`(?is)<img[^>]*alt="thumbs-up"[^>]*>\s*<p[^>]*>(.*?)</p>`)
	innerTagPattern  = regexp.MustCompile(`<[^>]+>`)
	spacePattern     = regexp.MustCompile(`\s+`)
)

// DiscoverThreads walks the paginated search listing and returns up to
// maxThreads entries, deduplicated across pages. The walk stops at the
// page cap or after two consecutive pages yield nothing new.
func (c *Client) DiscoverThreads(ctx context.Context, maxThreads int) ([]driven.ThreadListing, error) {
	if maxThreads <= 0 {
		return nil, nil
	}

	var (
		listings         []driven.ThreadListing
		seen             = make(map[string]struct{})
		consecutiveEmpty int
	)

	for page := 1; page <= c.maxPages; page++ {
		pageURL := c.listingURL(page)
		logger.Debug("Fetching listing page %d: %s", page, pageURL)

		body, err := c.get(ctx, pageURL)
		if err != nil {
			if len(listings) > 0 {
				// A mid-walk failure still yields the pages already parsed.
				logger.Warn("Listing page %d failed, stopping discovery: %v", page, err)
				break
			}
			return nil, err
		}

		pageListings := c.parseListing(string(body))

		added := 0
		for _, listing := range pageListings {
			if len(listings) >= maxThreads {
				break
			}
			if _, dup := seen[listing.ThreadID]; dup {
				continue
			}
			seen[listing.ThreadID] = struct{}{}
			listings = append(listings, listing)
			added++
		}
		logger.Debug("Listing page %d: %d new thread(s)", page, added)

		if added == 0 {
			consecutiveEmpty++
			if consecutiveEmpty >= 2 {
				break
			}
		} else {
			consecutiveEmpty = 0
		}

		if len(listings) >= maxThreads {
			break
		}
	}

	return listings, nil
}

// listingURL builds the search page URL; page one carries no query.
func (c *Client) listingURL(page int) string {
	if page == 1 {
		return c.resolve("/forums/search")
	}
	return c.resolve(fmt.Sprintf("/forums/search?page=%d", page))
}

// parseListing extracts thread cards from one listing page. Cards that
// lack a usable link are dropped silently; the page layout drifts and
// partial extraction beats none.
func (c *Client) parseListing(page string) []driven.ThreadListing {
	cards := cardPattern.FindAllStringSubmatch(page, -1)

	listings := make([]driven.ThreadListing, 0, len(cards))
	for _, card := range cards {
		href, body := card[1], card[2]

		threadURL := c.resolve(href)
		threadID := threadIDFromURL(threadURL)
		if threadID == "" {
			continue
		}

		listing := driven.ThreadListing{
			ThreadID: threadID,
			URL:      threadURL,
			Title:    firstMatch(titlePattern, body),
			Preview:  firstMatch(previewPattern, body),
			Posted:   parseListingDate(firstMatch(datePattern, body)),
			Tags:     parseTags(body),
		}

		if likes, err := strconv.Atoi(firstMatch(likesPattern, body)); err == nil {
			listing.Likes = likes
		}

		// The demographic line shares its classes with the preview;
		// take the first gray paragraph that is not the preview.
		for _, m := range genderAgePattern.FindAllStringSubmatch(body, -1) {
			text := cleanText(m[1])
			if text != "" && text != listing.Preview {
				listing.GenderAge = text
				break
			}
		}

		listings = append(listings, listing)
	}

	return listings
}

// parseTags extracts symptom labels, skipping overflow markers like "+3".
func parseTags(body string) []string {
	var tags []string
	for _, m := range tagItemPattern.FindAllStringSubmatch(body, -1) {
		tag := cleanText(m[1])
		if tag == "" || strings.HasPrefix(tag, "+") {
			continue
		}
		tags = append(tags, tag)
	}
	return tags
}

// parseListingDate parses the M/D/YYYY date shown on listing cards.
func parseListingDate(text string) time.Time {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}
	}

	parts := strings.Split(text, "/")
	if len(parts) != 3 {
		return time.Time{}
	}
	month, errM := strconv.Atoi(strings.TrimSpace(parts[0]))
	day, errD := strconv.Atoi(strings.TrimSpace(parts[1]))
	year, errY := strconv.Atoi(strings.TrimSpace(parts[2]))
	if errM != nil || errD != nil || errY != nil {
		return time.Time{}
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// threadIDFromURL takes the final path segment as the stable id.
func threadIDFromURL(threadURL string) string {
	parsed, err := url.Parse(threadURL)
	if err != nil {
		return ""
	}
	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	last := segments[len(segments)-1]
	if last == "" || last == "forums" || last == "search" {
		return ""
	}
	if unescaped, err := url.PathUnescape(last); err == nil {
		return unescaped
	}
	return last
}

// firstMatch returns the cleaned first capture of pattern, or "".
func firstMatch(pattern *regexp.Regexp, body string) string {
	m := pattern.FindStringSubmatch(body)
	if len(m) < 2 {
		return ""
	}
	return cleanText(m[1])
}

// cleanText strips nested tags, decodes entities and collapses whitespace.
func cleanText(fragment string) string {
	text := innerTagPattern.ReplaceAllString(fragment, " ")
	text = html.UnescapeString(text)
	text = spacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
