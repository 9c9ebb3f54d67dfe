package chunker

import (
	"strings"
	"testing"

	"github.com/custodia-labs/medforum-cli/internal/core/domain"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		p := New()
		if p.chunkSize != DefaultChunkSize {
			t.Errorf("expected chunkSize %d, got %d", DefaultChunkSize, p.chunkSize)
		}
		if p.overlap != DefaultChunkOverlap {
			t.Errorf("expected overlap %d, got %d", DefaultChunkOverlap, p.overlap)
		}
	})

	t.Run("custom chunk size", func(t *testing.T) {
		p := New(WithChunkSize(500))
		if p.chunkSize != 500 {
			t.Errorf("expected chunkSize 500, got %d", p.chunkSize)
		}
	})

	t.Run("overlap exceeds chunk size", func(t *testing.T) {
		p := New(WithChunkSize(100), WithOverlap(150))
		if p.overlap >= p.chunkSize {
			t.Error("overlap should be reduced when it exceeds chunk size")
		}
	})

	t.Run("zero values ignored", func(t *testing.T) {
		p := New(WithChunkSize(0), WithOverlap(-1))
		if p.chunkSize != DefaultChunkSize {
			t.Errorf("expected default chunkSize, got %d", p.chunkSize)
		}
		if p.overlap != DefaultChunkOverlap {
			t.Errorf("expected default overlap, got %d", p.overlap)
		}
	})
}

func TestProcessor_Chunk_NilThread(t *testing.T) {
	p := New()
	if chunks := p.Chunk(nil); chunks != nil {
		t.Errorf("expected nil chunks for nil thread, got %d", len(chunks))
	}
}

func TestProcessor_Chunk_EmptyThread(t *testing.T) {
	p := New()
	thread := &domain.ThreadRecord{ThreadID: "t1"}

	chunks := p.Chunk(thread)
	if len(chunks) != 0 {
		t.Errorf("expected 0 chunks for empty thread, got %d", len(chunks))
	}
}

func TestProcessor_Chunk_ShortQuestion(t *testing.T) {
	p := New(WithChunkSize(100), WithOverlap(20))
	thread := &domain.ThreadRecord{
		ThreadID:     "t1",
		QuestionText: "ปวดหัวมาก",
	}

	chunks := p.Chunk(thread)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk for short question, got %d", len(chunks))
	}
	if chunks[0].ChunkID != "t1:question:0" {
		t.Errorf("unexpected chunk id %q", chunks[0].ChunkID)
	}
	if chunks[0].Role != domain.RolePatient {
		t.Errorf("expected patient role, got %q", chunks[0].Role)
	}
	if chunks[0].Text != thread.QuestionText {
		t.Errorf("expected chunk text to equal source text")
	}
}

func TestProcessor_Chunk_OverlappingWindows(t *testing.T) {
	p := New(WithChunkSize(10), WithOverlap(3))
	thread := &domain.ThreadRecord{
		ThreadID:     "t1",
		QuestionText: strings.Repeat("a", 25),
	}

	chunks := p.Chunk(thread)
	// step=7: windows [0,10) [7,17) [14,24) [21,25)
	if len(chunks) != 4 {
		t.Fatalf("expected 4 chunks, got %d", len(chunks))
	}

	for i, c := range chunks {
		if c.Text == "" {
			t.Errorf("chunk %d is empty", i)
		}
		if len([]rune(c.Text)) > 10 {
			t.Errorf("chunk %d exceeds chunk size: %d runes", i, len([]rune(c.Text)))
		}
	}

	// Consecutive windows share the configured overlap.
	if chunks[1].Start != chunks[0].End-3 {
		t.Errorf("expected second window to start at %d, got %d", chunks[0].End-3, chunks[1].Start)
	}
	// Final window is short but non-empty.
	if chunks[3].End-chunks[3].Start != 4 {
		t.Errorf("expected final window of 4 runes, got %d", chunks[3].End-chunks[3].Start)
	}
}

func TestProcessor_Chunk_CommentsSplitIndependently(t *testing.T) {
	p := New(WithChunkSize(50), WithOverlap(10))
	thread := &domain.ThreadRecord{
		ThreadID:     "t1",
		QuestionText: "short question",
		Comments: []domain.Comment{
			{AuthorRole: domain.RoleDoctor, Text: "doctor reply"},
			{AuthorRole: domain.RoleUnknown, Text: "anonymous reply"},
			{AuthorRole: domain.RolePatient, Text: ""},
		},
	}

	chunks := p.Chunk(thread)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}

	if chunks[1].ChunkID != "t1:comment/0:0" {
		t.Errorf("unexpected comment chunk id %q", chunks[1].ChunkID)
	}
	if chunks[1].Role != domain.RoleDoctor {
		t.Errorf("expected doctor role, got %q", chunks[1].Role)
	}
	if chunks[2].Role != domain.RoleUnknown {
		t.Errorf("expected unknown role, got %q", chunks[2].Role)
	}
}

func TestProcessor_Chunk_Deterministic(t *testing.T) {
	p := New(WithChunkSize(12), WithOverlap(4))
	thread := &domain.ThreadRecord{
		ThreadID:     "t9",
		QuestionText: strings.Repeat("นอนไม่หลับ ", 20),
		Comments: []domain.Comment{
			{AuthorRole: domain.RoleDoctor, Text: strings.Repeat("พักผ่อน ", 15)},
		},
	}

	first := p.Chunk(thread)
	second := p.Chunk(thread)

	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ChunkID != second[i].ChunkID {
			t.Errorf("chunk %d id differs: %q vs %q", i, first[i].ChunkID, second[i].ChunkID)
		}
		if first[i].Text != second[i].Text {
			t.Errorf("chunk %d text differs", i)
		}
	}
}

func TestProcessor_Chunk_ThaiRuneBoundaries(t *testing.T) {
	// Thai text is multi-byte; windows must cut on rune boundaries.
	p := New(WithChunkSize(5), WithOverlap(1))
	thread := &domain.ThreadRecord{
		ThreadID:     "t1",
		QuestionText: "ปวดหัวและมีไข้สูง",
	}

	for _, c := range p.Chunk(thread) {
		for _, r := range c.Text {
			if r == '�' {
				t.Fatalf("chunk %q contains a broken rune", c.Text)
			}
		}
	}
}
