package store

import (
	"context"
	"fmt"
	"sync"
)

// DefaultQuotaBytes mirrors the per-origin budget browsers give local storage.
const DefaultQuotaBytes = 5 << 20

// QuotaStore bounds the total size of keys and values it has seen.
// Sizes are learned on Get and Put, so keys written by another process count only once read.
type QuotaStore struct {
	inner Store
	limit int64

	mu    sync.Mutex
	sizes map[string]int64
	total int64
}

// WithQuota wraps inner; a limit <= 0 returns inner unchanged.
func WithQuota(inner Store, limit int64) Store {
	if limit <= 0 {
		return inner
	}
	return &QuotaStore{inner: inner, limit: limit, sizes: make(map[string]int64)}
}

func (q *QuotaStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, ok, err := q.inner.Get(ctx, key)
	if err == nil && ok {
		q.mu.Lock()
		q.trackLocked(key, entrySize(key, value))
		q.mu.Unlock()
	}
	return value, ok, err
}

func (q *QuotaStore) Put(ctx context.Context, key string, value []byte) error {
	size := entrySize(key, value)

	q.mu.Lock()
	defer q.mu.Unlock()
	if next := q.total - q.sizes[key] + size; next > q.limit {
		return fmt.Errorf("%w: writing %q needs %d of %d bytes", ErrQuotaExceeded, key, next, q.limit)
	}
	if err := q.inner.Put(ctx, key, value); err != nil {
		return err
	}
	q.trackLocked(key, size)
	return nil
}

func (q *QuotaStore) Close() error {
	return q.inner.Close()
}

// Used reports the bytes currently accounted for.
func (q *QuotaStore) Used() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.total
}

func (q *QuotaStore) trackLocked(key string, size int64) {
	q.total += size - q.sizes[key]
	q.sizes[key] = size
}

func entrySize(key string, value []byte) int64 {
	return int64(len(key) + len(value))
}
