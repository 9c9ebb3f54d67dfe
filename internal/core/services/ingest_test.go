package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/medforum-cli/internal/adapters/driven/storage/memory"
	vectormem "github.com/custodia-labs/medforum-cli/internal/adapters/driven/vector/memory"
	"github.com/custodia-labs/medforum-cli/internal/core/domain"
)

// ingestMockEmbedding implements driven.EmbeddingService for testing.
type ingestMockEmbedding struct {
	mu    sync.Mutex
	calls int
	err   error
	// errsBefore fails this many calls before succeeding.
	errsBefore int
}

func (m *ingestMockEmbedding) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if m.errsBefore > 0 {
		m.errsBefore--
		return nil, domain.ErrRateLimited
	}
	// Deterministic per-text vector.
	sum := float32(0)
	for _, r := range text {
		sum += float32(r%13) / 13
	}
	return []float32{sum, float32(len(text)), 1}, nil
}

func (m *ingestMockEmbedding) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vector, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vector
	}
	return out, nil
}

func (m *ingestMockEmbedding) Dimensions() int              { return 3 }
func (m *ingestMockEmbedding) ModelName() string            { return "mock-embedding" }
func (m *ingestMockEmbedding) Ping(_ context.Context) error { return nil }
func (m *ingestMockEmbedding) Close() error                 { return nil }

func (m *ingestMockEmbedding) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func ingestTestSettings() domain.Settings {
	settings := domain.DefaultSettings()
	settings.ChunkSize = 100
	settings.ChunkOverlap = 20
	settings.FetchRetries = 2
	return settings
}

func storeWithThreads(t *testing.T, records ...domain.ThreadRecord) *memory.ThreadStore {
	t.Helper()
	store := memory.NewThreadStore()
	for _, record := range records {
		_, err := store.Upsert(context.Background(), record)
		require.NoError(t, err)
	}
	return store
}

func TestIngest_EmbedsAllChunks(t *testing.T) {
	store := storeWithThreads(t,
		domain.ThreadRecord{
			ThreadID:     "t1",
			Title:        "ปวดหัวไมเกรน",
			URL:          "https://www.agnoshealth.com/forums/t1",
			QuestionText: "ปวดหัวข้างเดียวมาสามวัน",
			Comments: []domain.Comment{
				{AuthorRole: domain.RoleDoctor, Text: "อาการเข้าได้กับไมเกรน ควรพักผ่อน"},
			},
		},
		domain.ThreadRecord{ThreadID: "t2", QuestionText: "มีไข้ต่ำ ๆ"},
	)
	index, err := vectormem.NewIndex()
	require.NoError(t, err)
	embedding := &ingestMockEmbedding{}

	svc := NewIngestService(store, index, embedding, ingestTestSettings())
	report, err := svc.Ingest(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Threads)
	assert.Equal(t, 3, report.Chunks)
	assert.Equal(t, 3, report.Embedded)
	assert.Zero(t, report.Skipped)
	assert.Equal(t, 3, index.Len())
}

func TestIngest_SecondPassEmbedsNothing(t *testing.T) {
	store := storeWithThreads(t,
		domain.ThreadRecord{ThreadID: "t1", QuestionText: "ปวดท้องน้อย"},
	)
	index, err := vectormem.NewIndex()
	require.NoError(t, err)
	embedding := &ingestMockEmbedding{}
	svc := NewIngestService(store, index, embedding, ingestTestSettings())

	_, err = svc.Ingest(context.Background())
	require.NoError(t, err)
	first := embedding.callCount()

	report, err := svc.Ingest(context.Background())
	require.NoError(t, err)

	assert.Zero(t, report.Embedded)
	assert.Equal(t, report.Chunks, report.Skipped)
	assert.Equal(t, first, embedding.callCount())
}

func TestIngest_CarriesThreadMetadata(t *testing.T) {
	store := storeWithThreads(t,
		domain.ThreadRecord{
			ThreadID:     "t1",
			Title:        "ไมเกรน",
			URL:          "https://www.agnoshealth.com/forums/t1",
			QuestionText: "ปวดหัว",
		},
	)
	index, err := vectormem.NewIndex()
	require.NoError(t, err)
	svc := NewIngestService(store, index, &ingestMockEmbedding{}, ingestTestSettings())

	_, err = svc.Ingest(context.Background())
	require.NoError(t, err)

	hits, err := index.Search(context.Background(), []float32{1, 1, 1}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "t1", hits[0].Entry.Metadata.ThreadID)
	assert.Equal(t, "ไมเกรน", hits[0].Entry.Metadata.Title)
	assert.Equal(t, "https://www.agnoshealth.com/forums/t1", hits[0].Entry.Metadata.URL)
	assert.Equal(t, domain.RolePatient, hits[0].Entry.Metadata.Role)
}

func TestIngest_RetriesRateLimit(t *testing.T) {
	store := storeWithThreads(t,
		domain.ThreadRecord{ThreadID: "t1", QuestionText: "ปวดหัว"},
	)
	index, err := vectormem.NewIndex()
	require.NoError(t, err)
	embedding := &ingestMockEmbedding{errsBefore: 1}
	svc := NewIngestService(store, index, embedding, ingestTestSettings())

	report, err := svc.Ingest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Embedded)
	assert.Equal(t, 2, embedding.callCount())
}

func TestIngest_ConfigurationErrorIsNotRetried(t *testing.T) {
	store := storeWithThreads(t,
		domain.ThreadRecord{ThreadID: "t1", QuestionText: "ปวดหัว"},
	)
	index, err := vectormem.NewIndex()
	require.NoError(t, err)
	embedding := &ingestMockEmbedding{err: domain.ErrConfiguration}
	svc := NewIngestService(store, index, embedding, ingestTestSettings())

	_, err = svc.Ingest(context.Background())
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Equal(t, 1, embedding.callCount())
}

func TestIngest_EmptyStore(t *testing.T) {
	index, err := vectormem.NewIndex()
	require.NoError(t, err)
	svc := NewIngestService(memory.NewThreadStore(), index, &ingestMockEmbedding{}, ingestTestSettings())

	report, err := svc.Ingest(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Threads)
	assert.Zero(t, report.Chunks)
	assert.Zero(t, report.Embedded)
}

func TestWatch_CancelledContext(t *testing.T) {
	index, err := vectormem.NewIndex()
	require.NoError(t, err)
	settings := ingestTestSettings()
	settings.DataPath = t.TempDir() + "/forum_data.jsonl"
	svc := NewIngestService(memory.NewThreadStore(), index, &ingestMockEmbedding{}, settings)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Watch(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop on cancellation")
	}
}