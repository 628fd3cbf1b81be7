package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// DefaultMaxCost bounds the memory cache at 64 MiB of entry data.
const DefaultMaxCost = 64 << 20

// MemoryCache is an in-process cache whose size is bounded by the total
// byte length of its values. Admission is probabilistic, so a Set may be
// dropped under pressure.
type MemoryCache struct {
	cache *ristretto.Cache[string, []byte]
}

// NewMemoryCache creates a memory cache holding up to maxCost bytes.
// maxCost <= 0 selects DefaultMaxCost.
func NewMemoryCache(maxCost int64) (*MemoryCache, error) {
	if maxCost <= 0 {
		maxCost = DefaultMaxCost
	}
	// Badges are a few KiB each; track roughly 10x the number that fit.
	counters := maxCost / 1024 * 10
	if counters < 1000 {
		counters = 1000
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: counters,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create memory cache: %w", err)
	}
	return &MemoryCache{cache: c}, nil
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := c.cache.Get(key)
	return v, ok, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	c.cache.SetWithTTL(key, data, int64(len(data))+1, ttl)
	c.cache.Wait()
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.cache.Del(key)
	return nil
}

func (c *MemoryCache) Close() error {
	c.cache.Close()
	return nil
}

var _ Cache = (*MemoryCache)(nil)
