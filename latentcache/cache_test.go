package latentcache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/latentset/blobstore"
	"github.com/hupe1980/latentset/codec"
	"github.com/hupe1980/latentset/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLatent(t *testing.T, fill float32) *tensor.Tensor {
	t.Helper()
	x, err := tensor.Zeros(4, 2, 3, 3)
	require.NoError(t, err)
	for i := range x.Data() {
		x.Data()[i] = fill + float32(i)/8
	}
	return x
}

func TestLatentPath(t *testing.T) {
	tests := []struct {
		video string
		want  string
	}{
		{"/data/videos/clip1.mp4", "/data/videos/latent/clip1.pt"},
		{"/data/videos/clip.v2.mov", "/data/videos/latent/clip.v2.pt"},
		{"clip", "latent/clip.pt"},
		{"/data/.hidden", "/data/latent/.hidden.pt"},
	}
	for _, tt := range tests {
		t.Run(tt.video, func(t *testing.T) {
			assert.Equal(t, filepath.FromSlash(tt.want), LatentPath(filepath.FromSlash(tt.video)))
		})
	}
}

func TestLatentPath_IsPure(t *testing.T) {
	p := filepath.FromSlash("/data/videos/clip1.mp4")
	assert.Equal(t, LatentPath(p), LatentPath(p))
}

func TestRelativeKey(t *testing.T) {
	root := filepath.FromSlash("/data")
	key := RelativeKey(root)

	assert.Equal(t, "videos/latent/clip1.pt", key(filepath.FromSlash("/data/videos/clip1.mp4")))
	assert.Equal(t, "/elsewhere/latent/x.pt", key(filepath.FromSlash("/elsewhere/x.mp4")))
}

func TestBlobCache_LocalRoundTrip(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "videos", "clip1.mp4")
	key := LatentPath(video)
	c := NewLocalCache()
	ctx := context.Background()

	ok, err := c.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = c.Read(ctx, key)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	in := newLatent(t, 0.5)
	require.NoError(t, c.Write(ctx, key, in))

	_, err = os.Stat(filepath.Join(dir, "videos", "latent", "clip1.pt"))
	require.NoError(t, err, "cache directory and entry are created on write")

	ok, err = c.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	out, err := c.Read(ctx, key)
	require.NoError(t, err)
	assert.True(t, in.Equal(out))
}

func TestBlobCache_CodecIsSelfDescribing(t *testing.T) {
	store := blobstore.NewMemoryStore()
	ctx := context.Background()
	in := newLatent(t, 1)

	writer := NewBlobCache(store, WithCodec(codec.Codec{DType: codec.Float32, Compression: codec.ZSTD}))
	require.NoError(t, writer.Write(ctx, "a/latent/x.pt", in))

	reader := NewBlobCache(store)
	out, err := reader.Read(ctx, "a/latent/x.pt")
	require.NoError(t, err)
	assert.True(t, in.Equal(out))
}

func TestBlobCache_CorruptEntry(t *testing.T) {
	store := blobstore.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "bad.pt", []byte("garbage")))

	_, err := NewBlobCache(store).Read(ctx, "bad.pt")
	require.ErrorIs(t, err, codec.ErrCorrupt)
}

type countingCache struct {
	Cache
	reads  int
	writes int
}

func (c *countingCache) Read(ctx context.Context, key string) (*tensor.Tensor, error) {
	c.reads++
	return c.Cache.Read(ctx, key)
}

func (c *countingCache) Write(ctx context.Context, key string, latent *tensor.Tensor) error {
	c.writes++
	return c.Cache.Write(ctx, key, latent)
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	inner := &countingCache{Cache: NewBlobCache(blobstore.NewMemoryStore())}
	in := newLatent(t, 0)
	mc := NewMemoryCache(inner, in.SizeBytes()*2)

	require.NoError(t, mc.Write(ctx, "k1", in))
	assert.Equal(t, 1, inner.writes)

	out, err := mc.Read(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, in.Equal(out))
	assert.Equal(t, 0, inner.reads, "served from memory")

	// Mutating the returned tensor must not corrupt the cached copy.
	out.Data()[0] = 42
	again, err := mc.Read(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, in.Equal(again))

	ok, err := mc.Exists(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, ok)

	// Entry written behind the memory layer is read through once, then cached.
	require.NoError(t, inner.Cache.Write(ctx, "k2", newLatent(t, 3)))
	_, err = mc.Read(ctx, "k2")
	require.NoError(t, err)
	_, err = mc.Read(ctx, "k2")
	require.NoError(t, err)
	assert.Equal(t, 1, inner.reads)

	hits, _ := mc.Stats()
	assert.GreaterOrEqual(t, hits, int64(3))
}
