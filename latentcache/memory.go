package latentcache

import (
	"context"

	"github.com/hupe1980/latentset/internal/cache"
	"github.com/hupe1980/latentset/tensor"
)

// MemoryCache keeps recently used latents in memory in front of another Cache.
// Reads and writes fall through to the inner cache, which remains the source of truth.
type MemoryCache struct {
	inner Cache
	lru   *cache.LRU[*tensor.Tensor]
}

// NewMemoryCache wraps inner with an LRU holding up to capacityBytes of latent data.
func NewMemoryCache(inner Cache, capacityBytes int64) *MemoryCache {
	return &MemoryCache{
		inner: inner,
		lru:   cache.NewLRU(capacityBytes, (*tensor.Tensor).SizeBytes),
	}
}

// Exists implements Cache.
func (m *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	if _, ok := m.lru.Get(key); ok {
		return true, nil
	}
	return m.inner.Exists(ctx, key)
}

// Read implements Cache. Callers receive a private copy.
func (m *MemoryCache) Read(ctx context.Context, key string) (*tensor.Tensor, error) {
	if t, ok := m.lru.Get(key); ok {
		return t.Clone(), nil
	}
	t, err := m.inner.Read(ctx, key)
	if err != nil {
		return nil, err
	}
	m.lru.Set(key, t.Clone())
	return t, nil
}

// Write implements Cache.
func (m *MemoryCache) Write(ctx context.Context, key string, latent *tensor.Tensor) error {
	if err := m.inner.Write(ctx, key, latent); err != nil {
		return err
	}
	m.lru.Set(key, latent.Clone())
	return nil
}

// Stats returns in-memory hit and miss counts.
func (m *MemoryCache) Stats() (hits, misses int64) {
	return m.lru.Stats()
}
