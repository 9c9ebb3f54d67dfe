package domain

import "fmt"

// Chunk field names used in chunk identifiers.
const (
	// ChunkFieldQuestion marks chunks cut from the opening post.
	ChunkFieldQuestion = "question"

	// ChunkFieldComment is the prefix for chunks cut from comments.
	// The full field is "comment/<index>".
	ChunkFieldComment = "comment"
)

// Chunk is a bounded passage of thread text, the atomic retrieval unit.
// Chunks never span the question/comment boundary so retrieval preserves
// which side of the conversation a passage came from.
type Chunk struct {
	// ChunkID is derived deterministically from the source thread,
	// field and rune offset, so re-chunking unchanged text yields
	// identical identifiers.
	ChunkID string `json:"chunk_id"`

	// SourceThreadID is a non-owning back-reference to the thread.
	SourceThreadID string `json:"source_thread_id"`

	// Role is the side of the conversation the text came from.
	Role Role `json:"role"`

	// Text is the passage content.
	Text string `json:"text"`

	// Start and End are the rune offsets within the source field.
	Start int `json:"start"`
	End   int `json:"end"`
}

// ChunkID builds the deterministic identifier for a passage.
func ChunkID(threadID, field string, offset int) string {
	return fmt.Sprintf("%s:%s:%d", threadID, field, offset)
}

// IndexEntry is an embedded chunk as held by the vector index.
// Entries are owned exclusively by the index.
type IndexEntry struct {
	// ChunkID identifies the embedded chunk.
	ChunkID string `json:"chunk_id"`

	// Embedding is the vector representation; its length is fixed per
	// index instance and must match the embedding model's dimension.
	Embedding []float32 `json:"embedding"`

	// Text is the chunk content that was embedded.
	Text string `json:"text"`

	// Metadata carries the source context used to build references.
	Metadata EntryMetadata `json:"metadata"`
}

// EntryMetadata is the source context stored alongside an embedding.
type EntryMetadata struct {
	// ThreadID is the source thread.
	ThreadID string `json:"thread_id"`

	// Role is the conversation side of the source passage.
	Role Role `json:"role"`

	// Title is the source thread title.
	Title string `json:"title"`

	// URL is the source thread location.
	URL string `json:"url"`
}
