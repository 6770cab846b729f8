// Package db defines the storage contract shared by the Redis/Valkey and Badger backends.
// Documents live in hashes under owner-scoped keys; the embedding cache uses plain values.
package db

import (
	"context"
	"time"
)

// Store is what a backend provides. Callers depend on the narrow interfaces below.
type Store interface {
	Pinger
	HashStore
	KVStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger reports backend liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashStore holds documents as field maps.
// HGetAll of a missing key returns an empty map; Scan patterns use glob syntax (prefix:*).
type HashStore interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// KVStore holds opaque values, optionally expiring. Get of a missing key returns ErrKeyNotFound.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
