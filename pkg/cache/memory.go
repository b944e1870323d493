package cache

import (
	"context"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"
)

// MemoryCache is an in-process cache bounded by total byte cost.
type MemoryCache struct {
	mu    sync.Mutex // guards Clear against concurrent Close
	cache *ristretto.Cache
}

// DefaultMemoryBytes bounds a MemoryCache when no size is given.
const DefaultMemoryBytes = 64 << 20

// NewMemoryCache returns a cache holding at most maxBytes of values.
func NewMemoryCache(maxBytes int64) (*MemoryCache, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMemoryBytes
	}
	c, err := ristretto.NewCache(&ristretto.Config{
		// Ten counters per expected entry, assuming ~1KiB entries.
		NumCounters: maxBytes / 100,
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &MemoryCache{cache: c}, nil
}

// Get returns a copy of the cached value.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, ok := c.cache.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), b...), true, nil
}

// Set stores a copy of data. Ristretto admits writes asynchronously, so the
// call waits for the write buffer to drain before returning; a value may
// still be rejected by the admission policy.
func (c *MemoryCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	cp := append([]byte(nil), data...)
	cost := int64(len(cp)) + int64(len(key))
	if ttl > 0 {
		c.cache.SetWithTTL(key, cp, cost, ttl)
	} else {
		c.cache.Set(key, cp, cost)
	}
	c.cache.Wait()
	return nil
}

// Delete removes key.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.cache.Del(key)
	return nil
}

// Clear drops all entries. The count is not tracked and is always 0.
func (c *MemoryCache) Clear(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Clear()
	return 0, nil
}

// Close stops ristretto's background goroutines.
func (c *MemoryCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Close()
	return nil
}

var (
	_ Cache   = (*MemoryCache)(nil)
	_ Clearer = (*MemoryCache)(nil)
)
