// Package chunker provides a deterministic fixed-size text chunking
// processor for thread records.
package chunker

import (
	"fmt"

	"github.com/custodia-labs/medforum-cli/internal/core/domain"
)

// DefaultChunkSize is the default number of runes per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping runes.
const DefaultChunkOverlap = 200

// Processor splits thread text into fixed-size overlapping chunks.
// The question and each comment are split independently so a chunk
// never mixes both sides of the conversation. Chunk identifiers are
// derived from the source thread, field and offset, making the output
// a pure function of the input record.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in runes.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in runes.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Chunk splits a thread record into retrieval units. The question text
// yields chunks with the patient role; each comment yields chunks with
// its author's role. Empty fields produce no chunks.
func (p *Processor) Chunk(thread *domain.ThreadRecord) []domain.Chunk {
	if thread == nil {
		return nil
	}

	var chunks []domain.Chunk

	chunks = append(chunks, p.splitField(
		thread, domain.ChunkFieldQuestion, domain.RolePatient, thread.QuestionText)...)

	for i := range thread.Comments {
		field := fmt.Sprintf("%s/%d", domain.ChunkFieldComment, i)
		chunks = append(chunks, p.splitField(
			thread, field, thread.Comments[i].AuthorRole, thread.Comments[i].Text)...)
	}

	return chunks
}

// splitField cuts one text field into greedy overlapping windows.
// The last window may be shorter than the chunk size but is never
// empty; text shorter than one window yields exactly one chunk.
func (p *Processor) splitField(thread *domain.ThreadRecord, field string, role domain.Role, text string) []domain.Chunk {
	if text == "" {
		return nil
	}

	runes := []rune(text)
	total := len(runes)
	step := p.chunkSize - p.overlap

	// Estimate number of chunks
	chunks := make([]domain.Chunk, 0, total/step+1)

	for start := 0; start < total; start += step {
		end := start + p.chunkSize
		if end > total {
			end = total
		}

		chunks = append(chunks, domain.Chunk{
			ChunkID:        domain.ChunkID(thread.ThreadID, field, start),
			SourceThreadID: thread.ThreadID,
			Role:           role,
			Text:           string(runes[start:end]),
			Start:          start,
			End:            end,
		})

		if end == total {
			break
		}
	}

	return chunks
}

// ChunkSize returns the configured window width in runes.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the configured overlap in runes.
func (p *Processor) Overlap() int {
	return p.overlap
}
