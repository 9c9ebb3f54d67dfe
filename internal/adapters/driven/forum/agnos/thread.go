package agnos

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/custodia-labs/medforum-cli/internal/core/domain"
	"github.com/custodia-labs/medforum-cli/internal/core/ports/driven"
	"github.com/custodia-labs/medforum-cli/internal/logger"
)

// Pre-compiled regular expressions for thread detail extraction.
var (
	mainPattern        = regexp.MustCompile(`(?is)<main[^>]*>(.*?)</main>`)
	questionPattern    = regexp.MustCompile(`(?is)<p[^>]*class="[^"]*(?:prose|content|text-gray-700)[^"]*"[^>]*>(.*?)</p>`)
	commentPattern     = regexp.MustCompile(`(?is)<div[^>]*class="[^"]*(?:comment|answer|reply|response)[^"]*"[^>]*>(.*?)</div>`)
	authorPattern      = regexp.MustCompile(`(?is)<p[^>]*class="[^"]*author[^"]*"[^>]*>(.*?)</p>`)
	bodyPattern        = regexp.MustCompile(`(?is)<p[^>]*class="[^"]*body[^"]*"[^>]*>(.*?)</p>`)
	timestampPattern   = regexp.MustCompile(`(?is)<time[^>]*datetime="([^"]+)"`)
	verifiedPattern    = regexp.MustCompile(`(?i)class="[^"]*verified[^"]*"`)
	doctorNamePattern  = regexp.MustCompile(`^(นพ\.|พญ\.|นพญ\.|Dr\.|แพทย์)`)
	paragraphPattern   = regexp.MustCompile(`(?is)<p[^>]*>(.*?)</p>`)
)

// FetchThread fetches and parses one thread detail page. Listing
// metadata fills the fields the detail page lacks; a page with no
// extractable question falls back to the listing preview.
func (c *Client) FetchThread(ctx context.Context, listing driven.ThreadListing) (*domain.ThreadRecord, error) {
	if listing.ThreadID == "" || listing.URL == "" {
		return nil, fmt.Errorf("%w: listing needs a thread id and URL", domain.ErrInvalidInput)
	}

	body, err := c.get(ctx, listing.URL)
	if err != nil {
		return nil, err
	}

	record := parseThreadPage(string(body), listing)
	record.ScrapedAt = time.Now().UTC()
	if record.QuestionText == "" {
		return nil, fmt.Errorf("%w: no question text on %s", domain.ErrFetchFailed, listing.URL)
	}

	logger.Debug("Fetched thread %s: %d comment(s)", record.ThreadID, len(record.Comments))
	return record, nil
}

// parseThreadPage assembles a record from the detail page and listing.
func parseThreadPage(page string, listing driven.ThreadListing) *domain.ThreadRecord {
	record := &domain.ThreadRecord{
		ThreadID:  listing.ThreadID,
		URL:       listing.URL,
		Title:     listing.Title,
		Tags:      listing.Tags,
		GenderAge: listing.GenderAge,
		Likes:     listing.Likes,
		PostedAt:  listing.Posted,
	}

	content := page
	if m := mainPattern.FindStringSubmatch(page); len(m) > 1 {
		content = m[1]
	}

	record.QuestionText = firstMatch(questionPattern, content)
	if record.QuestionText == "" {
		record.QuestionText = strings.TrimSpace(listing.Preview)
	}

	// The detail page shows its own likes count; prefer it over the card.
	if likes := firstMatch(likesPattern, content); likes != "" {
		if n, err := parseCount(likes); err == nil {
			record.Likes = n
		}
	}

	record.Comments = parseComments(page)
	return record
}

// parseComments extracts the reply sections in page order.
func parseComments(page string) []domain.Comment {
	var comments []domain.Comment
	for _, m := range commentPattern.FindAllStringSubmatch(page, -1) {
		block := m[1]

		comment := domain.Comment{
			AuthorName: firstMatch(authorPattern, block),
			Text:       commentText(block),
			Timestamp:  parseTimestamp(block),
		}
		if comment.Text == "" {
			continue
		}

		comment.AuthorRole = classifyAuthor(comment.AuthorName, m[0])
		comments = append(comments, comment)
	}
	return comments
}

// commentText picks the reply body, preferring a marked body paragraph
// over the concatenated block text.
func commentText(block string) string {
	if text := firstMatch(bodyPattern, block); text != "" {
		return text
	}

	var parts []string
	for _, m := range paragraphPattern.FindAllStringSubmatch(block, -1) {
		if authorPattern.MatchString(m[0]) {
			continue
		}
		if text := cleanText(m[1]); text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}
	return cleanText(block)
}

// classifyAuthor decides the commenter role. Verified-doctor badges and
// medical honorifics mark doctors; a bare name reads as a patient and a
// missing byline stays unknown.
func classifyAuthor(authorName, rawBlock string) domain.Role {
	if doctorNamePattern.MatchString(strings.TrimSpace(authorName)) || verifiedPattern.MatchString(rawBlock) {
		return domain.RoleDoctor
	}
	if strings.TrimSpace(authorName) != "" {
		return domain.RolePatient
	}
	return domain.RoleUnknown
}

// parseTimestamp reads an RFC 3339 datetime attribute when present.
func parseTimestamp(block string) time.Time {
	m := timestampPattern.FindStringSubmatch(block)
	if len(m) < 2 {
		return time.Time{}
	}
	ts, err := time.Parse(time.RFC3339, m[1])
	if err != nil {
		return time.Time{}
	}
	return ts.UTC()
}

// parseCount parses a small display number like "12" or "1,204".
func parseCount(text string) (int, error) {
	text = strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	var n int
	_, err := fmt.Sscanf(text, "%d", &n)
	return n, err
}
