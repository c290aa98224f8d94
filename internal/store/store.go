// Package store abstracts the shared key/value store that holds all
// platform state: client registry, per-client queues, processing locks,
// daily counters, experiments and preview stages.
//
// Two implementations exist. RedisStore is the durable production backend.
// MemoryStore is an ephemeral in-process fallback used when no Redis URL is
// configured; it is non-durable and its locks do not protect against other
// processes, which callers must treat as degraded mode.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get and LPop when the key does not exist.
var ErrNotFound = errors.New("store: key not found")

// Store is the key/value + list + counter contract shared by all services.
// A zero ttl on Set/SetNX means no expiry.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error

	LPush(ctx context.Context, key string, values ...string) error
	RPush(ctx context.Context, key string, values ...string) error
	LPop(ctx context.Context, key string) (string, error)
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	LTrim(ctx context.Context, key string, start, stop int64) error
}
