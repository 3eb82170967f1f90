package blobstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/latentset/internal/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_Lifecycle(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewLocalStore(tmpDir)
	ctx := context.Background()

	ok, err := store.Exists(ctx, "clips/latent/a.pt")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = store.Open(ctx, "clips/latent/a.pt")
	assert.True(t, errors.Is(err, ErrNotFound))

	data := []byte("latent payload")
	require.NoError(t, store.Put(ctx, "clips/latent/a.pt", data))
	require.NoError(t, store.Put(ctx, "clips/latent/b.pt", []byte("other")))

	ok, err = store.Exists(ctx, "clips/latent/a.pt")
	require.NoError(t, err)
	assert.True(t, ok)

	fi, err := os.Stat(filepath.Join(tmpDir, "clips", "latent", "a.pt"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), fi.Mode().Perm())

	got, err := ReadAll(ctx, store, "clips/latent/a.pt")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	names, err := store.List(ctx, "clips/")
	require.NoError(t, err)
	assert.Equal(t, []string{"clips/latent/a.pt", "clips/latent/b.pt"}, names)

	require.NoError(t, store.Delete(ctx, "clips/latent/a.pt"))
	require.NoError(t, store.Delete(ctx, "clips/latent/a.pt"))

	names, err = store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"clips/latent/b.pt"}, names)
}

func TestLocalStore_PutReplaces(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "x.pt", []byte("first")))
	require.NoError(t, store.Put(ctx, "x.pt", []byte("second")))

	got, err := ReadAll(ctx, store, "x.pt")
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))
}

func TestLocalStore_EmptyRootUsesPathsDirectly(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore("")
	ctx := context.Background()

	name := filepath.ToSlash(filepath.Join(dir, "latent", "clip.pt"))
	require.NoError(t, store.Put(ctx, name, []byte("abc")))

	_, err := os.Stat(filepath.Join(dir, "latent", "clip.pt"))
	require.NoError(t, err)
}

func TestLocalStore_FailedWriteLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	ffs := fs.NewFaultyFS(nil)
	ffs.AddRule(".clip.pt.tmp-", fs.Fault{FailAfterBytes: 2})
	store := NewLocalStore(dir, WithFileSystem(ffs))
	ctx := context.Background()

	err := store.Put(ctx, "latent/clip.pt", []byte("too long"))
	require.ErrorIs(t, err, fs.ErrInjected)

	entries, err := os.ReadDir(filepath.Join(dir, "latent"))
	require.NoError(t, err)
	assert.Empty(t, entries, "temp file must be cleaned up and nothing published")
}

func TestLocalStore_FailedRenamePropagates(t *testing.T) {
	dir := t.TempDir()
	ffs := fs.NewFaultyFS(nil)
	ffs.AddRule("clip.pt", fs.Fault{FailAfterBytes: -1, FailOnRename: true})
	store := NewLocalStore(dir, WithFileSystem(ffs))

	err := store.Put(context.Background(), "latent/clip.pt", []byte("abc"))
	require.ErrorIs(t, err, fs.ErrInjected)

	ok, err := store.Exists(context.Background(), "latent/clip.pt")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLocalStore_ReadThroughFileSystem(t *testing.T) {
	dir := t.TempDir()
	ffs := fs.NewFaultyFS(nil)
	store := NewLocalStore(dir, WithFileSystem(ffs))
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "a.pt", []byte("abc")))
	got, err := ReadAll(ctx, store, "a.pt")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	ffs.AddRule("a.pt", fs.Fault{FailAfterBytes: -1, FailOnRead: true})
	_, err = ReadAll(ctx, store, "a.pt")
	require.ErrorIs(t, err, fs.ErrInjected)
}

func TestLocalStore_CanceledContext(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, store.Put(ctx, "a.pt", []byte("x")), context.Canceled)
	_, err := store.Exists(ctx, "a.pt")
	require.ErrorIs(t, err, context.Canceled)
}
