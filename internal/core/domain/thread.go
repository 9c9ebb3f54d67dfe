package domain

import "time"

// Role classifies the author of a forum comment.
type Role string

// Recognised comment author roles.
const (
	// RoleDoctor marks a comment by a verified medical professional.
	RoleDoctor Role = "doctor"

	// RolePatient marks a comment by the thread author or another patient.
	RolePatient Role = "patient"

	// RoleUnknown marks a comment whose author could not be classified.
	RoleUnknown Role = "unknown"
)

// IsValid returns true if the role is recognised.
func (r Role) IsValid() bool {
	switch r {
	case RoleDoctor, RolePatient, RoleUnknown:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (r Role) String() string {
	return string(r)
}

// Comment is a single reply within a forum thread.
type Comment struct {
	// AuthorRole classifies who wrote the comment.
	AuthorRole Role `json:"author_role"`

	// AuthorName is the display name from the page, if any.
	AuthorName string `json:"author_name,omitempty"`

	// Text is the comment body after normalisation.
	Text string `json:"text"`

	// Timestamp is the publication time, zero when the page omits it.
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// ThreadRecord is one scraped forum thread. It is the unit of storage
// in the content store; ThreadID is unique across the whole dataset.
type ThreadRecord struct {
	// ThreadID is the stable external identifier from the forum site.
	ThreadID string `json:"thread_id"`

	// URL is the canonical thread location.
	URL string `json:"url"`

	// Title is the thread headline, usually the suspected condition.
	Title string `json:"title"`

	// Tags are the ordered category labels attached to the thread.
	Tags []string `json:"tags"`

	// GenderAge is the patient demographic line from the listing page.
	GenderAge string `json:"gender_age,omitempty"`

	// Likes is the thumbs-up count at scrape time.
	Likes int `json:"likes"`

	// QuestionText is the patient-authored opening post.
	QuestionText string `json:"question_text"`

	// Comments are the replies in page order.
	Comments []Comment `json:"comments"`

	// PostedAt is the thread publication date from the listing.
	PostedAt time.Time `json:"posted_at,omitempty"`

	// ScrapedAt is the time of the last successful fetch.
	ScrapedAt time.Time `json:"scraped_at"`
}

// HasDoctorReply returns true if at least one comment is doctor-authored.
func (t *ThreadRecord) HasDoctorReply() bool {
	for i := range t.Comments {
		if t.Comments[i].AuthorRole == RoleDoctor {
			return true
		}
	}
	return false
}

// Equal reports whether two records carry identical content.
// Used by stores to detect no-op upserts during incremental runs.
// ScrapedAt is deliberately excluded: a re-fetch that finds nothing
// new must not count as a change.
func (t *ThreadRecord) Equal(other *ThreadRecord) bool {
	if other == nil {
		return false
	}
	if t.ThreadID != other.ThreadID ||
		t.URL != other.URL ||
		t.Title != other.Title ||
		t.GenderAge != other.GenderAge ||
		t.Likes != other.Likes ||
		t.QuestionText != other.QuestionText ||
		!t.PostedAt.Equal(other.PostedAt) {
		return false
	}
	if len(t.Tags) != len(other.Tags) || len(t.Comments) != len(other.Comments) {
		return false
	}
	for i := range t.Tags {
		if t.Tags[i] != other.Tags[i] {
			return false
		}
	}
	for i := range t.Comments {
		a, b := &t.Comments[i], &other.Comments[i]
		if a.AuthorRole != b.AuthorRole || a.AuthorName != b.AuthorName ||
			a.Text != b.Text || !a.Timestamp.Equal(b.Timestamp) {
			return false
		}
	}
	return true
}
