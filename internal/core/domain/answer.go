package domain

// Language identifies the lexicon and prompt template used for a query.
type Language string

// Supported query languages.
const (
	// LanguageThai is selected when the query is mostly Thai script.
	LanguageThai Language = "th"

	// LanguageEnglish is the fallback for Latin-script queries.
	LanguageEnglish Language = "en"
)

// IsValid returns true if the language is recognised.
func (l Language) IsValid() bool {
	switch l {
	case LanguageThai, LanguageEnglish:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (l Language) String() string {
	return string(l)
}

// Reference points an answer back at the forum passage that grounds it.
type Reference struct {
	// ThreadID is the source thread.
	ThreadID string `json:"thread_id"`

	// Title is the source thread title.
	Title string `json:"title"`

	// URL is the source thread location.
	URL string `json:"url"`

	// Role is the conversation side of the cited passage.
	Role Role `json:"role"`

	// Excerpt is a short snippet of the cited passage.
	Excerpt string `json:"excerpt"`

	// Relevance is the cosine similarity between query and passage.
	Relevance float64 `json:"relevance"`
}

// Condition is a disease candidate extracted from retrieved context.
type Condition struct {
	// Label is the lexicon entry that matched.
	Label string `json:"label"`

	// Score is the mention count across retrieved chunks.
	Score int `json:"score"`
}

// AnswerResult is the outcome of a single query. It is produced per
// call and never persisted.
type AnswerResult struct {
	// QueryID identifies the query for logging and the HTTP API.
	QueryID string `json:"query_id"`

	// Answer is the generated response text.
	Answer string `json:"answer"`

	// References are the grounding passages, descending by relevance.
	References []Reference `json:"references"`

	// Symptoms are the lexicon symptom keywords found in the
	// retrieved context, sorted alphabetically.
	Symptoms []string `json:"symptoms"`

	// Conditions are disease candidates, descending by mention count,
	// ties broken alphabetically.
	Conditions []Condition `json:"conditions"`

	// Confidence estimates how well-grounded the answer is, in [0,1].
	// More and more-similar references raise it; zero references clamp
	// it to a fixed floor.
	Confidence float64 `json:"confidence"`

	// Language is the detected query language.
	Language Language `json:"language"`
}
