package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"linkedin-content-platform/internal/logger"
	"linkedin-content-platform/internal/store"
	"linkedin-content-platform/models"
)

const (
	historyLimit = 20

	// LockPurposeProcessing guards pipeline runs; LockPurposeTest is used by
	// operator dry-run commands.
	LockPurposeProcessing = "processing"
	LockPurposeTest       = "test"

	// DefaultLockTTL bounds how long a crashed holder can block a client.
	DefaultLockTTL = 5 * time.Minute
)

// JobQueue manages per-client FIFO queues of source URLs, a bounded
// done-history and TTL-based processing locks. All state lives in the
// shared store; with the in-memory store the locks are advisory within a
// single process only.
type JobQueue struct {
	store store.Store
}

func NewJobQueue(s store.Store) *JobQueue {
	return &JobQueue{store: s}
}

// Enqueue appends url to the client's queue. Re-adding a queued URL is a
// silent no-op.
func (q *JobQueue) Enqueue(ctx context.Context, client, url string) error {
	urls, err := q.List(ctx, client)
	if err != nil {
		return err
	}
	for _, u := range urls {
		if u == url {
			return nil
		}
	}
	return q.store.RPush(ctx, queueKey(client), url)
}

// List returns the client's queue in insertion order.
func (q *JobQueue) List(ctx context.Context, client string) ([]string, error) {
	return q.store.LRange(ctx, queueKey(client), 0, -1)
}

// DequeueNext pops and returns the head of the queue. An empty queue
// returns "" with no error.
func (q *JobQueue) DequeueNext(ctx context.Context, client string) (string, error) {
	url, err := q.store.LPop(ctx, queueKey(client))
	if errors.Is(err, store.ErrNotFound) {
		return "", nil
	}
	return url, err
}

// RemoveAt removes the queue entry at the given 1-based index.
func (q *JobQueue) RemoveAt(ctx context.Context, client string, index int) error {
	urls, err := q.List(ctx, client)
	if err != nil {
		return err
	}
	if index < 1 || index > len(urls) {
		return ErrIndexOutOfRange
	}

	remaining := append(append([]string{}, urls[:index-1]...), urls[index:]...)
	key := queueKey(client)
	if err := q.store.Del(ctx, key); err != nil {
		return err
	}
	if len(remaining) == 0 {
		return nil
	}
	return q.store.RPush(ctx, key, remaining...)
}

// Clear empties the client's queue.
func (q *JobQueue) Clear(ctx context.Context, client string) error {
	return q.store.Del(ctx, queueKey(client))
}

// RecordDone pushes a history record and trims to the most recent entries.
func (q *JobQueue) RecordDone(ctx context.Context, client, url string) error {
	rec, err := json.Marshal(models.HistoryRecord{URL: url, DoneAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	key := historyKey(client)
	if err := q.store.LPush(ctx, key, string(rec)); err != nil {
		return err
	}
	return q.store.LTrim(ctx, key, 0, historyLimit-1)
}

// History returns the client's done-history, most recent first. Entries
// that fail to decode are skipped.
func (q *JobQueue) History(ctx context.Context, client string) ([]models.HistoryRecord, error) {
	raw, err := q.store.LRange(ctx, historyKey(client), 0, historyLimit-1)
	if err != nil {
		return nil, err
	}
	records := make([]models.HistoryRecord, 0, len(raw))
	for _, item := range raw {
		var rec models.HistoryRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			logger.Warn("skipping malformed history record", "client", client, "error", err.Error())
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// AcquireLock sets a short-lived exclusive marker for (client, purpose).
// Returns false when another holder is live; callers treat that as "busy,
// skip this trigger".
func (q *JobQueue) AcquireLock(ctx context.Context, client, purpose string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	return q.store.SetNX(ctx, lockKey(client, purpose), time.Now().UTC().Format(time.RFC3339), ttl)
}

// ReleaseLock deletes the lock marker. Best effort: failures are logged,
// never surfaced, since the TTL self-heals.
func (q *JobQueue) ReleaseLock(ctx context.Context, client, purpose string) {
	if err := q.store.Del(ctx, lockKey(client, purpose)); err != nil {
		logger.Warn("lock release failed", "client", client, "purpose", purpose, "error", err.Error())
	}
}

// ClearAllLocks force-releases every lock for the given clients. Operator
// escape hatch for stuck holders; normal recovery is TTL expiry.
func (q *JobQueue) ClearAllLocks(ctx context.Context, clients []string) {
	for _, c := range clients {
		q.ReleaseLock(ctx, c, LockPurposeProcessing)
		q.ReleaseLock(ctx, c, LockPurposeTest)
	}
}
