package task

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db)
}

func TestAdd_AssignsSequentialIDs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.Add(ctx, "buy milk", PriorityMedium)
	require.NoError(t, err)
	second, err := store.Add(ctx, "fix bug", PriorityHigh)
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	assert.False(t, first.Done)
	assert.False(t, first.CreatedAt.IsZero())
}

func TestAdd_RejectsUnknownPriority(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Add(context.Background(), "task", "critical")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "critical")
}

func TestIDsAreNotReusedAfterDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.Add(ctx, "one", PriorityLow)
	require.NoError(t, err)
	_, err = store.Delete(ctx, first.ID)
	require.NoError(t, err)

	second, err := store.Add(ctx, "two", PriorityLow)
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.ID, "AUTOINCREMENT must not recycle ids")
}

func TestGet_NotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Get(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList_InsertionOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, text := range []string{"a", "b", "c"} {
		_, err := store.Add(ctx, text, PriorityMedium)
		require.NoError(t, err)
	}

	items, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "a", items[0].Text)
	assert.Equal(t, "c", items[2].Text)
}

func TestMarkDone_AndIdempotence(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	item, err := store.Add(ctx, "task", PriorityHigh)
	require.NoError(t, err)

	done, err := store.MarkDone(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, done.Done)

	again, err := store.MarkDone(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, again.Done)

	_, err = store.MarkDone(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestToggle_FlipsBothWays(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	item, err := store.Add(ctx, "task", PriorityLow)
	require.NoError(t, err)

	on, err := store.Toggle(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, on.Done)

	off, err := store.Toggle(ctx, item.ID)
	require.NoError(t, err)
	assert.False(t, off.Done)

	_, err = store.Toggle(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete_ReturnsDeletedRecord(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	item, err := store.Add(ctx, "ephemeral", PriorityMedium)
	require.NoError(t, err)

	deleted, err := store.Delete(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "ephemeral", deleted.Text)

	_, err = store.Get(ctx, item.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Delete(ctx, item.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClear_ReturnsCount(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := store.Add(ctx, "task", PriorityMedium)
		require.NoError(t, err)
	}

	n, err := store.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	items, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	n, err = store.Clear(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCounts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a, _ := store.Add(ctx, "a", PriorityMedium)
	_, err := store.Add(ctx, "b", PriorityMedium)
	require.NoError(t, err)
	_, err = store.MarkDone(ctx, a.ID)
	require.NoError(t, err)

	total, completed, err := store.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, 1, completed)
}

func TestPriorityWeight(t *testing.T) {
	assert.Greater(t, PriorityWeight(PriorityHigh), PriorityWeight(PriorityMedium))
	assert.Greater(t, PriorityWeight(PriorityMedium), PriorityWeight(PriorityLow))
	assert.Zero(t, PriorityWeight("bogus"))
	assert.True(t, ValidPriority(PriorityLow))
	assert.False(t, ValidPriority(""))
}
