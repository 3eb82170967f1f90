package minio

import (
	"context"
	"testing"

	"github.com/hupe1980/latentset/blobstore"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMinioStore_Integration requires a running MinIO instance.
// Skip if not available.
func TestMinioStore_Integration(t *testing.T) {
	client, err := minio.New("localhost:9000", &minio.Options{
		Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
		Secure: false,
	})
	if err != nil {
		t.Skipf("MinIO client creation failed: %v", err)
	}

	ctx := context.Background()
	if _, err := client.ListBuckets(ctx); err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	bucket := "test-latentset"
	exists, err := client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	store := NewStore(client, bucket, "test-prefix/")

	ok, err := store.Exists(ctx, "clips/latent/missing.pt")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = store.Open(ctx, "clips/latent/missing.pt")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	data := []byte("hello minio latent")
	require.NoError(t, store.Put(ctx, "clips/latent/a.pt", data))

	got, err := blobstore.ReadAll(ctx, store, "clips/latent/a.pt")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	names, err := store.List(ctx, "clips/")
	require.NoError(t, err)
	assert.Contains(t, names, "clips/latent/a.pt")

	require.NoError(t, store.Delete(ctx, "clips/latent/a.pt"))
	ok, err = store.Exists(ctx, "clips/latent/a.pt")
	require.NoError(t, err)
	assert.False(t, ok)
}
