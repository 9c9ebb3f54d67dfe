package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/medforum-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/medforum-cli/internal/core/domain"
)

// fixedEmbedder maps chunk text to a predetermined vector and counts calls.
type fixedEmbedder struct {
	vectors map[string][]float32
	calls   int
}

func (f *fixedEmbedder) embed(_ context.Context, text string) ([]float32, error) {
	f.calls++
	vec, ok := f.vectors[text]
	if !ok {
		return []float32{0, 0, 0}, nil
	}
	return vec, nil
}

func chunk(id, threadID, text string) domain.Chunk {
	return domain.Chunk{
		ChunkID:        id,
		SourceThreadID: threadID,
		Role:           domain.RolePatient,
		Text:           text,
	}
}

func TestUpsertBatch_EmbedsAndCounts(t *testing.T) {
	idx, err := NewIndex()
	require.NoError(t, err)

	emb := &fixedEmbedder{vectors: map[string][]float32{
		"alpha": {1, 0, 0},
		"beta":  {0, 1, 0},
	}}

	n, err := idx.UpsertBatch(context.Background(), []domain.Chunk{
		chunk("t1:question:0", "t1", "alpha"),
		chunk("t2:question:0", "t2", "beta"),
	}, nil, emb.embed)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, idx.Len())
	assert.Equal(t, 3, idx.Dimensions())
}

func TestUpsertBatch_SkipsUnchangedText(t *testing.T) {
	idx, err := NewIndex()
	require.NoError(t, err)
	ctx := context.Background()

	emb := &fixedEmbedder{vectors: map[string][]float32{"alpha": {1, 0, 0}}}
	chunks := []domain.Chunk{chunk("t1:question:0", "t1", "alpha")}

	n, err := idx.UpsertBatch(ctx, chunks, nil, emb.embed)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// Same id, same text: no embedding call, no count.
	n, err = idx.UpsertBatch(ctx, chunks, nil, emb.embed)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 1, emb.calls)
	assert.Equal(t, 1, idx.Len())
}

func TestUpsertBatch_ReplacesStaleEntry(t *testing.T) {
	idx, err := NewIndex()
	require.NoError(t, err)
	ctx := context.Background()

	emb := &fixedEmbedder{vectors: map[string][]float32{
		"old": {1, 0, 0},
		"new": {0, 1, 0},
	}}

	_, err = idx.UpsertBatch(ctx, []domain.Chunk{chunk("c1", "t1", "old")}, nil, emb.embed)
	require.NoError(t, err)

	n, err := idx.UpsertBatch(ctx, []domain.Chunk{chunk("c1", "t1", "new")}, nil, emb.embed)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, idx.Len())

	hits, err := idx.Search(ctx, []float32{0, 1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "new", hits[0].Entry.Text)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-9)
}

func TestUpsertBatch_DimensionMismatch(t *testing.T) {
	idx, err := NewIndex()
	require.NoError(t, err)
	ctx := context.Background()

	emb := &fixedEmbedder{vectors: map[string][]float32{
		"alpha": {1, 0, 0},
		"wide":  {1, 0, 0, 0},
	}}

	_, err = idx.UpsertBatch(ctx, []domain.Chunk{chunk("c1", "t1", "alpha")}, nil, emb.embed)
	require.NoError(t, err)

	_, err = idx.UpsertBatch(ctx, []domain.Chunk{chunk("c2", "t1", "wide")}, nil, emb.embed)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestUpsertBatch_UsesProvidedMetadata(t *testing.T) {
	idx, err := NewIndex()
	require.NoError(t, err)
	ctx := context.Background()

	emb := &fixedEmbedder{vectors: map[string][]float32{"alpha": {1, 0, 0}}}
	meta := map[string]domain.EntryMetadata{
		"c1": {ThreadID: "t1", Role: domain.RoleDoctor, Title: "fever thread", URL: "https://forum.example/forums/t1"},
	}

	_, err = idx.UpsertBatch(ctx, []domain.Chunk{chunk("c1", "t1", "alpha")}, meta, emb.embed)
	require.NoError(t, err)

	hits, err := idx.Search(ctx, []float32{1, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "fever thread", hits[0].Entry.Metadata.Title)
	assert.Equal(t, domain.RoleDoctor, hits[0].Entry.Metadata.Role)
}

func TestSearch_OrdersBySimilarity(t *testing.T) {
	idx, err := NewIndex()
	require.NoError(t, err)
	ctx := context.Background()

	emb := &fixedEmbedder{vectors: map[string][]float32{
		"exact":      {1, 0, 0},
		"close":      {1, 0.2, 0},
		"orthogonal": {0, 0, 1},
	}}

	_, err = idx.UpsertBatch(ctx, []domain.Chunk{
		chunk("c1", "t1", "orthogonal"),
		chunk("c2", "t2", "close"),
		chunk("c3", "t3", "exact"),
	}, nil, emb.embed)
	require.NoError(t, err)

	hits, err := idx.Search(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "c3", hits[0].Entry.ChunkID)
	assert.Equal(t, "c2", hits[1].Entry.ChunkID)
	assert.Greater(t, hits[0].Similarity, hits[1].Similarity)
}

func TestSearch_TiesBreakByInsertionOrder(t *testing.T) {
	idx, err := NewIndex()
	require.NoError(t, err)
	ctx := context.Background()

	emb := &fixedEmbedder{vectors: map[string][]float32{
		"same-a": {0, 1, 0},
		"same-b": {0, 1, 0},
	}}

	_, err = idx.UpsertBatch(ctx, []domain.Chunk{
		chunk("first", "t1", "same-a"),
		chunk("second", "t2", "same-b"),
	}, nil, emb.embed)
	require.NoError(t, err)

	hits, err := idx.Search(ctx, []float32{0, 1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "first", hits[0].Entry.ChunkID)
	assert.Equal(t, "second", hits[1].Entry.ChunkID)
}

func TestSearch_EmptyIndex(t *testing.T) {
	idx, err := NewIndex()
	require.NoError(t, err)

	hits, err := idx.Search(context.Background(), []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.NotNil(t, hits)
	assert.Empty(t, hits)
}

func TestSearch_QueryDimensionMismatch(t *testing.T) {
	idx, err := NewIndex()
	require.NoError(t, err)
	ctx := context.Background()

	emb := &fixedEmbedder{vectors: map[string][]float32{"alpha": {1, 0, 0}}}
	_, err = idx.UpsertBatch(ctx, []domain.Chunk{chunk("c1", "t1", "alpha")}, nil, emb.embed)
	require.NoError(t, err)

	_, err = idx.Search(ctx, []float32{1, 0}, 1)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestPersistence_ReloadsAcrossRestart(t *testing.T) {
	dataDir := t.TempDir()
	ctx := context.Background()

	store, err := sqlite.NewStore(dataDir)
	require.NoError(t, err)

	idx, err := NewIndex(WithPersistence(store))
	require.NoError(t, err)

	emb := &fixedEmbedder{vectors: map[string][]float32{
		"alpha": {1, 0, 0},
		"beta":  {0, 1, 0},
	}}
	_, err = idx.UpsertBatch(ctx, []domain.Chunk{
		chunk("c1", "t1", "alpha"),
		chunk("c2", "t2", "beta"),
	}, nil, emb.embed)
	require.NoError(t, err)
	require.NoError(t, idx.Close())

	reopenedStore, err := sqlite.NewStore(dataDir)
	require.NoError(t, err)

	reopened, err := NewIndex(WithPersistence(reopenedStore))
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, 2, reopened.Len())
	assert.Equal(t, 3, reopened.Dimensions())

	// Unchanged chunks must not be re-embedded after a reload.
	fresh := &fixedEmbedder{vectors: map[string][]float32{"alpha": {1, 0, 0}}}
	n, err := reopened.UpsertBatch(ctx, []domain.Chunk{chunk("c1", "t1", "alpha")}, nil, fresh.embed)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, fresh.calls)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{2, 0}, []float32{5, 0}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, cosineSimilarity([]float32{1, 0}, []float32{-3, 0}), 1e-9)
	assert.Zero(t, cosineSimilarity([]float32{0, 0}, []float32{1, 1}))
}
