// Package cache stores rendered board images between runs.
//
// Rendering a face means parsing every layer file and writing a large SVG,
// so the result is kept under a key derived from the content hash of the
// layer files, the face and the palette. The same board opened from another
// folder, or by another process sharing the backend, hits the same entry.
//
// Backends:
//
//   - [NullCache]: stores nothing (--no-cache).
//   - [FileCache]: one file per entry under the user cache directory.
//   - [RedisCache]: a shared Redis instance, entries expire with their TTL.
//   - [MongoCache]: a MongoDB collection with a TTL index.
//
// [Open] builds the backend named in [Options].
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional expiry. A miss is (nil, false, nil);
// errors are reserved for backend failures.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by backends that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}
