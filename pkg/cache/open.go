package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Backend names accepted by Open.
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Options selects and configures a backend.
type Options struct {
	Backend         string
	Dir             string // file backend root; defaults to DefaultDir
	Namespace       string // key prefix for shared backends
	RedisURL        string
	MongoURI        string
	MongoDatabase   string
	MongoCollection string
}

// Open returns the backend named by opts.Backend. An empty backend means
// the file cache.
func Open(ctx context.Context, opts Options) (Cache, error) {
	switch opts.Backend {
	case BackendNone:
		return NewNullCache(), nil
	case "", BackendFile:
		dir := opts.Dir
		if dir == "" {
			d, err := DefaultDir("boardview")
			if err != nil {
				return nil, err
			}
			dir = d
		}
		return NewFileCache(dir)
	case BackendRedis:
		if opts.RedisURL == "" {
			return nil, fmt.Errorf("redis cache: no url configured")
		}
		return NewRedisCache(ctx, opts.RedisURL, opts.Namespace)
	case BackendMongo:
		if opts.MongoURI == "" {
			return nil, fmt.Errorf("mongo cache: no uri configured")
		}
		db, coll := opts.MongoDatabase, opts.MongoCollection
		if db == "" {
			db = "boardview"
		}
		if coll == "" {
			coll = "render_cache"
		}
		return NewMongoCache(ctx, opts.MongoURI, db, coll, opts.Namespace)
	}
	return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
}

// DefaultDir returns the XDG cache directory for app (~/.cache/app).
func DefaultDir(app string) (string, error) {
	if base := os.Getenv("XDG_CACHE_HOME"); base != "" {
		return filepath.Join(base, app), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", app), nil
}
