// Package memory provides an in-memory cosine similarity vector index.
//
// The index holds every entry in RAM and scans linearly on search, which is
// the right trade-off for a corpus of forum threads in the low tens of
// thousands of chunks. An optional entry store persists embeddings between
// runs so restarts do not re-embed the corpus.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/medforum-cli/internal/core/domain"
	"github.com/custodia-labs/medforum-cli/internal/core/ports/driven"
)

// Index is an in-memory vector index with brute-force cosine search.
type Index struct {
	mu      sync.RWMutex
	entries []domain.IndexEntry
	byID    map[string]int
	dims    int
	store   driven.IndexEntryStore
}

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Option configures an Index.
type Option func(*Index)

// WithPersistence backs the index with an entry store. Entries are loaded
// at construction and every upsert is written through. The index takes
// ownership of the store and closes it on Close.
func WithPersistence(store driven.IndexEntryStore) Option {
	return func(idx *Index) {
		idx.store = store
	}
}

// NewIndex creates an index, loading persisted entries when a store is
// configured.
func NewIndex(opts ...Option) (*Index, error) {
	idx := &Index{
		byID: make(map[string]int),
	}
	for _, opt := range opts {
		opt(idx)
	}

	if idx.store != nil {
		entries, err := idx.store.LoadEntries(context.Background())
		if err != nil {
			return nil, fmt.Errorf("loading persisted entries: %w", err)
		}
		for _, entry := range entries {
			idx.byID[entry.ChunkID] = len(idx.entries)
			idx.entries = append(idx.entries, entry)
			if idx.dims == 0 {
				idx.dims = len(entry.Embedding)
			}
		}
	}

	return idx, nil
}

// UpsertBatch indexes the given chunks. Chunks already present with
// identical text are skipped without an embedding call. Returns the
// number of chunks newly embedded.
func (idx *Index) UpsertBatch(
	ctx context.Context,
	chunks []domain.Chunk,
	meta map[string]domain.EntryMetadata,
	embed driven.EmbedFunc,
) (int, error) {
	if embed == nil {
		return 0, fmt.Errorf("%w: embed function is required", domain.ErrInvalidInput)
	}

	var (
		embedded int
		changed  []domain.IndexEntry
	)

	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return embedded, err
		}

		idx.mu.RLock()
		pos, exists := idx.byID[chunk.ChunkID]
		unchanged := exists && idx.entries[pos].Text == chunk.Text
		idx.mu.RUnlock()
		if unchanged {
			continue
		}

		vec, err := embed(ctx, chunk.Text)
		if err != nil {
			return embedded, fmt.Errorf("embedding chunk %s: %w", chunk.ChunkID, err)
		}

		entryMeta, ok := meta[chunk.ChunkID]
		if !ok {
			entryMeta = domain.EntryMetadata{
				ThreadID: chunk.SourceThreadID,
				Role:     chunk.Role,
			}
		}

		entry := domain.IndexEntry{
			ChunkID:   chunk.ChunkID,
			Embedding: vec,
			Text:      chunk.Text,
			Metadata:  entryMeta,
		}

		if err := idx.insert(entry); err != nil {
			return embedded, err
		}
		embedded++
		changed = append(changed, entry)
	}

	if idx.store != nil && len(changed) > 0 {
		if err := idx.store.SaveEntries(ctx, changed); err != nil {
			return embedded, fmt.Errorf("persisting entries: %w", err)
		}
	}

	return embedded, nil
}

// insert adds or replaces one entry, enforcing a consistent vector width.
func (idx *Index) insert(entry domain.IndexEntry) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.dims == 0 {
		idx.dims = len(entry.Embedding)
	} else if len(entry.Embedding) != idx.dims {
		return fmt.Errorf("%w: embedding width %d does not match index width %d",
			domain.ErrConfiguration, len(entry.Embedding), idx.dims)
	}

	if pos, ok := idx.byID[entry.ChunkID]; ok {
		idx.entries[pos] = entry
		return nil
	}

	idx.byID[entry.ChunkID] = len(idx.entries)
	idx.entries = append(idx.entries, entry)
	return nil
}

// Search returns up to k entries most similar to the query vector,
// descending by cosine similarity, ties broken by insertion order.
func (idx *Index) Search(_ context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if len(idx.entries) == 0 || k <= 0 {
		return []driven.VectorHit{}, nil
	}
	if len(query) != idx.dims {
		return nil, fmt.Errorf("%w: query width %d does not match index width %d",
			domain.ErrConfiguration, len(query), idx.dims)
	}

	hits := make([]driven.VectorHit, 0, len(idx.entries))
	for _, entry := range idx.entries {
		hits = append(hits, driven.VectorHit{
			Entry:      entry,
			Similarity: cosineSimilarity(query, entry.Embedding),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Similarity > hits[j].Similarity
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// Len returns the number of stored entries.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}

// Dimensions returns the fixed vector width, or zero before the first insert.
func (idx *Index) Dimensions() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.dims
}

// Close releases the backing store when one is configured.
func (idx *Index) Close() error {
	if idx.store != nil {
		return idx.store.Close()
	}
	return nil
}

// cosineSimilarity computes the cosine of the angle between two vectors,
// accumulating in float64 to limit rounding drift. A zero vector scores 0.
func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
