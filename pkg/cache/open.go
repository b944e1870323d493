package cache

import (
	"context"
	"fmt"
)

// Backend names accepted by Open.
const (
	BackendNone   = "none"
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Clearer is implemented by backends that can drop all their entries.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}

// Options selects and configures a backend.
type Options struct {
	Backend         string
	Dir             string
	MemoryBytes     int64
	RedisAddr       string
	RedisDB         int
	RedisPrefix     string
	MongoURI        string
	MongoDatabase   string
	MongoCollection string
}

// Open constructs the backend named by opts.Backend. An empty backend
// means BackendFile when Dir is set and BackendMemory otherwise.
func Open(ctx context.Context, opts Options) (Cache, error) {
	backend := opts.Backend
	if backend == "" {
		backend = BackendMemory
		if opts.Dir != "" {
			backend = BackendFile
		}
	}

	switch backend {
	case BackendNone:
		return NewNullCache(), nil
	case BackendFile:
		if opts.Dir == "" {
			return nil, fmt.Errorf("file cache: no directory")
		}
		c, err := NewFileCache(opts.Dir)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendMemory:
		c, err := NewMemoryCache(opts.MemoryBytes)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendRedis:
		if opts.RedisAddr == "" {
			return nil, fmt.Errorf("redis cache: no address")
		}
		c, err := NewRedisCache(ctx, opts.RedisAddr, opts.RedisDB, opts.RedisPrefix)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendMongo:
		if opts.MongoURI == "" {
			return nil, fmt.Errorf("mongo cache: no uri")
		}
		db, coll := opts.MongoDatabase, opts.MongoCollection
		if db == "" {
			db = "chartgeom"
		}
		if coll == "" {
			coll = "cache"
		}
		c, err := NewMongoCache(ctx, opts.MongoURI, db, coll)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrBackend, backend)
}
