package store

import (
	"context"
	"errors"
)

// ErrQuotaExceeded is returned when a write would grow the store beyond its byte quota.
var ErrQuotaExceeded = errors.New("store quota exceeded")

// Store is a flat key-value store for whole JSON documents.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}
