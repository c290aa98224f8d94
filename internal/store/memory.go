package store

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// MemoryStore is an in-process Store used when no Redis URL is configured.
// State is lost on restart and locks are only honored within this process,
// so it provides no mutual exclusion across instances. It doubles as the
// backend for unit tests.
type MemoryStore struct {
	mu      sync.Mutex
	strings map[string]string
	lists   map[string][]string
	expiry  map[string]time.Time
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		strings: make(map[string]string),
		lists:   make(map[string][]string),
		expiry:  make(map[string]time.Time),
		now:     time.Now,
	}
}

// SetClock overrides the time source; used by tests to exercise TTL expiry.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// expireLocked drops the key if its TTL has lapsed. Caller holds the mutex.
func (s *MemoryStore) expireLocked(key string) {
	if deadline, ok := s.expiry[key]; ok && s.now().After(deadline) {
		delete(s.strings, key)
		delete(s.lists, key)
		delete(s.expiry, key)
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(key)
	val, ok := s.strings[key]
	if !ok {
		return "", ErrNotFound
	}
	return val, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.strings[key] = value
	if ttl > 0 {
		s.expiry[key] = s.now().Add(ttl)
	} else {
		delete(s.expiry, key)
	}
	return nil
}

func (s *MemoryStore) SetNX(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(key)
	if _, exists := s.strings[key]; exists {
		return false, nil
	}
	s.strings[key] = value
	if ttl > 0 {
		s.expiry[key] = s.now().Add(ttl)
	}
	return true, nil
}

func (s *MemoryStore) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.strings, key)
		delete(s.lists, key)
		delete(s.expiry, key)
	}
	return nil
}

func (s *MemoryStore) Incr(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(key)
	n, _ := strconv.ParseInt(s.strings[key], 10, 64)
	n++
	s.strings[key] = strconv.FormatInt(n, 10)
	return n, nil
}

func (s *MemoryStore) Expire(_ context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, hasStr := s.strings[key]
	_, hasList := s.lists[key]
	if hasStr || hasList {
		s.expiry[key] = s.now().Add(ttl)
	}
	return nil
}

func (s *MemoryStore) LPush(_ context.Context, key string, values ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(key)
	// LPush prepends values one at a time, so the last value ends up first.
	list := s.lists[key]
	for _, v := range values {
		list = append([]string{v}, list...)
	}
	s.lists[key] = list
	return nil
}

func (s *MemoryStore) RPush(_ context.Context, key string, values ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(key)
	s.lists[key] = append(s.lists[key], values...)
	return nil
}

func (s *MemoryStore) LPop(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(key)
	list := s.lists[key]
	if len(list) == 0 {
		return "", ErrNotFound
	}
	head := list[0]
	s.lists[key] = list[1:]
	return head, nil
}

func (s *MemoryStore) LRange(_ context.Context, key string, start, stop int64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(key)
	list := s.lists[key]
	from, to, ok := normalizeRange(start, stop, int64(len(list)))
	if !ok {
		return []string{}, nil
	}
	out := make([]string, to-from+1)
	copy(out, list[from:to+1])
	return out, nil
}

func (s *MemoryStore) LTrim(_ context.Context, key string, start, stop int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(key)
	list := s.lists[key]
	from, to, ok := normalizeRange(start, stop, int64(len(list)))
	if !ok {
		delete(s.lists, key)
		return nil
	}
	s.lists[key] = append([]string(nil), list[from:to+1]...)
	return nil
}

// normalizeRange resolves Redis-style negative indices against a list of
// length n. ok is false when the resolved range is empty.
func normalizeRange(start, stop, n int64) (int64, int64, bool) {
	if n == 0 {
		return 0, 0, false
	}
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop || start >= n || stop < 0 {
		return 0, 0, false
	}
	return start, stop, true
}
