package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGetSetDel(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "k", "v", 0))
	val, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "v", val)

	require.NoError(t, s.Del(ctx, "k"))
	_, err = s.Get(ctx, "k")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSetWithTTLExpires(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	now := time.Now()
	s.SetClock(func() time.Time { return now })

	require.NoError(t, s.Set(ctx, "k", "v", time.Minute))
	_, err := s.Get(ctx, "k")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = s.Get(ctx, "k")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSetNX(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	ok, err := s.SetNX(ctx, "k", "first", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.SetNX(ctx, "k", "second", time.Minute)
	require.NoError(t, err)
	require.False(t, ok)

	val, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "first", val)
}

func TestIncrAndExpire(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	now := time.Now()
	s.SetClock(func() time.Time { return now })

	n, err := s.Incr(ctx, "counter")
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	n, err = s.Incr(ctx, "counter")
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	require.NoError(t, s.Expire(ctx, "counter", time.Minute))
	now = now.Add(2 * time.Minute)

	n, err = s.Incr(ctx, "counter")
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
}

func TestListOperations(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.RPush(ctx, "l", "a", "b"))
	require.NoError(t, s.LPush(ctx, "l", "z"))

	all, err := s.LRange(ctx, "l", 0, -1)
	require.NoError(t, err)
	require.Equal(t, []string{"z", "a", "b"}, all)

	head, err := s.LPop(ctx, "l")
	require.NoError(t, err)
	require.Equal(t, "z", head)

	_, err = s.LPop(ctx, "empty")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLRangeNegativeIndices(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.RPush(ctx, "l", "a", "b", "c", "d"))

	tail, err := s.LRange(ctx, "l", -2, -1)
	require.NoError(t, err)
	require.Equal(t, []string{"c", "d"}, tail)

	out, err := s.LRange(ctx, "l", 2, 100)
	require.NoError(t, err)
	require.Equal(t, []string{"c", "d"}, out)

	empty, err := s.LRange(ctx, "l", 3, 1)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestLTrimBounds(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for _, v := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, s.RPush(ctx, "l", v))
	}

	require.NoError(t, s.LTrim(ctx, "l", 0, 2))
	all, err := s.LRange(ctx, "l", 0, -1)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, all)

	// A range that resolves to nothing empties the list.
	require.NoError(t, s.LTrim(ctx, "l", 5, 10))
	all, err = s.LRange(ctx, "l", 0, -1)
	require.NoError(t, err)
	require.Empty(t, all)
}
