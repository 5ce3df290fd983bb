// Package ristretto backs the cache port with an in-process
// dgraph-io/ristretto cache. It holds serialized board snapshots and
// dashboard payloads between refresh ticks.
package ristretto

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// Cache stores []byte values keyed by string, cost-bounded by the total
// byte size of the cached values.
type Cache struct {
	inner *ristretto.Cache[string, []byte]
}

// New builds a cache admitting up to maxCostBytes of values. Snapshot
// payloads average a few KB, so counters are sized for roughly ten
// tracked keys per expected entry.
func New(maxCostBytes int64) (*Cache, error) {
	inner, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: maxCostBytes / 100 * 10,
		MaxCost:     maxCostBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{inner: inner}, nil
}

// Get reports the cached value for key, if admitted and not expired.
func (c *Cache) Get(_ context.Context, key string) (data []byte, ok bool, err error) {
	val, found := c.inner.Get(key)
	if !found {
		return nil, false, nil
	}
	return val, true, nil
}

// Set stores value under key for at most ttl. The entry's cost is its
// byte length. Admission is asynchronous and best effort.
func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.inner.SetWithTTL(key, value, int64(len(value)), ttl)
	return nil
}

// Delete drops key from the cache.
func (c *Cache) Delete(_ context.Context, key string) error {
	c.inner.Del(key)
	return nil
}

// Close stops the cache's background goroutines.
func (c *Cache) Close() {
	c.inner.Close()
}
