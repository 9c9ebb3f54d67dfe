package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/medforum-cli/internal/core/domain"
)

func mustUpsert(t *testing.T, store *ThreadStore, rec domain.ThreadRecord) {
	t.Helper()
	_, err := store.Upsert(context.Background(), rec)
	require.NoError(t, err)
}

func TestUpsert_InsertAndReplace(t *testing.T) {
	store := NewThreadStore()
	ctx := context.Background()

	mustUpsert(t, store, domain.ThreadRecord{ThreadID: "a", QuestionText: "first"})
	mustUpsert(t, store, domain.ThreadRecord{ThreadID: "b", QuestionText: "second"})

	changed, err := store.Upsert(ctx, domain.ThreadRecord{ThreadID: "a", QuestionText: "revised"})
	require.NoError(t, err)
	assert.True(t, changed)

	records, malformed, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Zero(t, malformed)
	require.Len(t, records, 2)
	assert.Equal(t, "a", records[0].ThreadID)
	assert.Equal(t, "revised", records[0].QuestionText)
	assert.Equal(t, "b", records[1].ThreadID)
}

func TestUpsert_IdenticalContentIsNoOp(t *testing.T) {
	store := NewThreadStore()
	ctx := context.Background()

	rec := domain.ThreadRecord{ThreadID: "a", QuestionText: "same"}
	changed, err := store.Upsert(ctx, rec)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = store.Upsert(ctx, rec)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestUpsert_EmptyIDRejected(t *testing.T) {
	store := NewThreadStore()
	changed, err := store.Upsert(context.Background(), domain.ThreadRecord{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.False(t, changed)
}

func TestContainsAndAllIDs(t *testing.T) {
	store := NewThreadStore()
	ctx := context.Background()

	mustUpsert(t, store, domain.ThreadRecord{ThreadID: "a"})

	ok, err := store.Contains(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Contains(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	ids, err := store.AllIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"a": {}}, ids)
}

func TestLoad_ReturnsCopies(t *testing.T) {
	store := NewThreadStore()
	ctx := context.Background()

	mustUpsert(t, store, domain.ThreadRecord{ThreadID: "a", Tags: []string{"x"}})

	records, _, err := store.Load(ctx)
	require.NoError(t, err)
	records[0].ThreadID = "mutated"

	again, _, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", again[0].ThreadID)
}
