package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"linkedin-content-platform/internal/store"
)

func TestEnqueueDeduplicates(t *testing.T) {
	q := NewJobQueue(store.NewMemoryStore())
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, "acme", "https://youtu.be/abc"))
	require.NoError(t, q.Enqueue(ctx, "acme", "https://youtu.be/abc"))
	require.NoError(t, q.Enqueue(ctx, "acme", "https://youtu.be/def"))

	urls, err := q.List(ctx, "acme")
	require.NoError(t, err)
	require.Equal(t, []string{"https://youtu.be/abc", "https://youtu.be/def"}, urls)
}

func TestDequeueNextFIFO(t *testing.T) {
	q := NewJobQueue(store.NewMemoryStore())
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, "acme", "u1"))
	require.NoError(t, q.Enqueue(ctx, "acme", "u2"))

	first, err := q.DequeueNext(ctx, "acme")
	require.NoError(t, err)
	require.Equal(t, "u1", first)

	second, err := q.DequeueNext(ctx, "acme")
	require.NoError(t, err)
	require.Equal(t, "u2", second)

	empty, err := q.DequeueNext(ctx, "acme")
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestQueuesAreIsolatedPerClient(t *testing.T) {
	q := NewJobQueue(store.NewMemoryStore())
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, "acme", "u1"))
	require.NoError(t, q.Enqueue(ctx, "globex", "u2"))

	urls, err := q.List(ctx, "acme")
	require.NoError(t, err)
	require.Equal(t, []string{"u1"}, urls)

	// Same URL may sit in two different client queues at once.
	require.NoError(t, q.Enqueue(ctx, "globex", "u1"))
	urls, err = q.List(ctx, "globex")
	require.NoError(t, err)
	require.Equal(t, []string{"u2", "u1"}, urls)
}

func TestRemoveAt(t *testing.T) {
	q := NewJobQueue(store.NewMemoryStore())
	ctx := context.Background()

	for _, u := range []string{"u1", "u2", "u3"} {
		require.NoError(t, q.Enqueue(ctx, "acme", u))
	}

	require.NoError(t, q.RemoveAt(ctx, "acme", 2))
	urls, err := q.List(ctx, "acme")
	require.NoError(t, err)
	require.Equal(t, []string{"u1", "u3"}, urls)

	require.ErrorIs(t, q.RemoveAt(ctx, "acme", 0), ErrIndexOutOfRange)
	require.ErrorIs(t, q.RemoveAt(ctx, "acme", 3), ErrIndexOutOfRange)
}

func TestClear(t *testing.T) {
	q := NewJobQueue(store.NewMemoryStore())
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, "acme", "u1"))
	require.NoError(t, q.Clear(ctx, "acme"))

	urls, err := q.List(ctx, "acme")
	require.NoError(t, err)
	require.Empty(t, urls)
}

func TestHistoryIsBoundedAndNewestFirst(t *testing.T) {
	q := NewJobQueue(store.NewMemoryStore())
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		require.NoError(t, q.RecordDone(ctx, "acme", fmt.Sprintf("url-%d", i)))
	}

	records, err := q.History(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, records, historyLimit)
	require.Equal(t, "url-24", records[0].URL)
	require.Equal(t, "url-5", records[len(records)-1].URL)
}

func TestHistorySkipsMalformedRecords(t *testing.T) {
	s := store.NewMemoryStore()
	q := NewJobQueue(s)
	ctx := context.Background()

	require.NoError(t, q.RecordDone(ctx, "acme", "good"))
	require.NoError(t, s.LPush(ctx, historyKey("acme"), "not-json"))

	records, err := q.History(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "good", records[0].URL)
}

func TestLockIsExclusivePerClientAndPurpose(t *testing.T) {
	q := NewJobQueue(store.NewMemoryStore())
	ctx := context.Background()

	ok, err := q.AcquireLock(ctx, "acme", LockPurposeProcessing, DefaultLockTTL)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = q.AcquireLock(ctx, "acme", LockPurposeProcessing, DefaultLockTTL)
	require.NoError(t, err)
	require.False(t, ok)

	// Different purpose and different client are independent.
	ok, err = q.AcquireLock(ctx, "acme", LockPurposeTest, DefaultLockTTL)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = q.AcquireLock(ctx, "globex", LockPurposeProcessing, DefaultLockTTL)
	require.NoError(t, err)
	require.True(t, ok)

	q.ReleaseLock(ctx, "acme", LockPurposeProcessing)
	ok, err = q.AcquireLock(ctx, "acme", LockPurposeProcessing, DefaultLockTTL)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestLockExpiresAfterTTL(t *testing.T) {
	s := store.NewMemoryStore()
	q := NewJobQueue(s)
	ctx := context.Background()

	now := time.Now()
	s.SetClock(func() time.Time { return now })

	ok, err := q.AcquireLock(ctx, "acme", LockPurposeProcessing, DefaultLockTTL)
	require.NoError(t, err)
	require.True(t, ok)

	now = now.Add(DefaultLockTTL + time.Second)

	ok, err = q.AcquireLock(ctx, "acme", LockPurposeProcessing, DefaultLockTTL)
	require.NoError(t, err)
	require.True(t, ok)
}
