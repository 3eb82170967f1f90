package latentcache

import (
	"context"
	"fmt"

	"github.com/hupe1980/latentset/blobstore"
	"github.com/hupe1980/latentset/codec"
	"github.com/hupe1980/latentset/tensor"
)

// BlobCache persists latents in a blobstore.Store using the latent codec.
type BlobCache struct {
	store blobstore.Store
	codec codec.Codec
}

// BlobOption configures a BlobCache.
type BlobOption func(*BlobCache)

// WithCodec sets the codec used for new entries. Existing entries are
// self-describing and decode regardless of this setting.
func WithCodec(c codec.Codec) BlobOption {
	return func(b *BlobCache) { b.codec = c }
}

// NewBlobCache creates a cache backed by store.
func NewBlobCache(store blobstore.Store, opts ...BlobOption) *BlobCache {
	b := &BlobCache{store: store, codec: codec.Default}
	for _, o := range opts {
		o(b)
	}
	return b
}

// NewLocalCache stores entries as files at the key path itself, which with the
// default key function places them next to the source videos.
func NewLocalCache(opts ...BlobOption) *BlobCache {
	return NewBlobCache(blobstore.NewLocalStore(""), opts...)
}

// Exists implements Cache.
func (b *BlobCache) Exists(ctx context.Context, key string) (bool, error) {
	return b.store.Exists(ctx, key)
}

// Read implements Cache. Store errors are returned unchanged.
func (b *BlobCache) Read(ctx context.Context, key string) (*tensor.Tensor, error) {
	data, err := blobstore.ReadAll(ctx, b.store, key)
	if err != nil {
		return nil, err
	}
	t, err := codec.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("latent %s: %w", key, err)
	}
	return t, nil
}

// Write implements Cache.
func (b *BlobCache) Write(ctx context.Context, key string, latent *tensor.Tensor) error {
	data, err := b.codec.Marshal(latent)
	if err != nil {
		return err
	}
	return b.store.Put(ctx, key, data)
}
