package domain

// UnknownBucket labels aggregates for records missing the source field.
const UnknownBucket = "unknown"

// AgeSummary describes the age distribution of thread authors.
type AgeSummary struct {
	// Min and Max are the observed bounds.
	Min int `json:"min"`
	Max int `json:"max"`

	// Mean is the arithmetic average.
	Mean float64 `json:"mean"`

	// Count is the number of threads an age could be read from.
	Count int `json:"count"`
}

// LikedThread is one entry of the most-liked leaderboard.
type LikedThread struct {
	// ThreadID identifies the thread.
	ThreadID string `json:"thread_id"`

	// Title is the thread headline.
	Title string `json:"title"`

	// Likes is the thumbs-up count.
	Likes int `json:"likes"`
}

// CorpusStats is a read-side aggregation over the content store,
// consumed by the dashboard collaborator.
type CorpusStats struct {
	// TotalThreads is the record count.
	TotalThreads int `json:"total_threads"`

	// ThreadsWithDoctorReply counts threads holding at least one
	// doctor-authored comment.
	ThreadsWithDoctorReply int `json:"threads_with_doctor_reply"`

	// MalformedRecords is the count of stored lines skipped during
	// load because they could not be decoded.
	MalformedRecords int `json:"malformed_records"`

	// TagCounts maps tag label to occurrence count. Threads without
	// tags contribute to the "unknown" bucket.
	TagCounts map[string]int `json:"tag_counts"`

	// ThreadsPerDay buckets thread publication dates (YYYY-MM-DD).
	// Threads without a date land in the "unknown" bucket.
	ThreadsPerDay map[string]int `json:"threads_per_day"`

	// CommentCountDist maps comment count to thread count.
	CommentCountDist map[int]int `json:"comment_count_dist"`

	// GenderCounts maps detected gender ("female"/"male"/"unknown")
	// to thread count.
	GenderCounts map[string]int `json:"gender_counts"`

	// Ages summarises ages parsed from the demographic line.
	Ages AgeSummary `json:"ages"`

	// TopLiked holds the five most-liked threads, descending.
	TopLiked []LikedThread `json:"top_liked"`
}
