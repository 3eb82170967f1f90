package blobstore

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hupe1980/latentset/internal/fs"
	"github.com/hupe1980/latentset/internal/mmap"
)

// LocalStore implements Store using the local file system.
//
// Names are slash-separated paths relative to root. An empty root means names
// are used as filesystem paths directly, which is how the dataset addresses
// latents stored next to their videos.
type LocalStore struct {
	root string
	fs   fs.FileSystem
}

const blobPerm os.FileMode = 0o644

// LocalOption configures a LocalStore.
type LocalOption func(*LocalStore)

// WithFileSystem replaces the filesystem, e.g. with fs.FaultyFS in tests.
// Reads then go through the filesystem instead of mmap.
func WithFileSystem(f fs.FileSystem) LocalOption {
	return func(s *LocalStore) {
		if f != nil {
			s.fs = f
		}
	}
}

// NewLocalStore creates a new LocalStore rooted at the given directory.
func NewLocalStore(root string, opts ...LocalOption) *LocalStore {
	s := &LocalStore{root: root, fs: fs.Default}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *LocalStore) path(name string) string {
	return filepath.Join(s.root, filepath.FromSlash(name))
}

// Open opens a blob for reading.
func (s *LocalStore) Open(ctx context.Context, name string) (Blob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := s.path(name)
	if _, ok := s.fs.(fs.LocalFS); ok {
		m, err := mmap.Open(path)
		if err != nil {
			return nil, err
		}
		return &localBlob{m: m}, nil
	}
	data, err := s.fs.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &memoryBlob{data: data}, nil
}

// Put writes data to a temporary file in the target directory, syncs it and
// renames it over the final name.
func (s *LocalStore) Put(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dst := s.path(name)
	dir := filepath.Dir(dst)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := s.fs.CreateTemp(dir, "."+filepath.Base(dst)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = s.fs.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := s.fs.Chmod(tmpName, blobPerm); err != nil {
		return err
	}
	if err := s.fs.Rename(tmpName, dst); err != nil {
		return err
	}
	committed = true
	return nil
}

// Exists reports whether name refers to a regular file.
func (s *LocalStore) Exists(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	fi, err := s.fs.Stat(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return fi.Mode().IsRegular(), nil
}

// Delete removes a blob.
func (s *LocalStore) Delete(_ context.Context, name string) error {
	err := s.fs.Remove(s.path(name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// List walks the store root and returns blob names with the given prefix.
// In-flight temporary files are skipped.
func (s *LocalStore) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	var walk func(dir, rel string) error
	walk = func(dir, rel string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		entries, err := s.fs.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		for _, e := range entries {
			name := e.Name()
			childRel := name
			if rel != "" {
				childRel = rel + "/" + name
			}
			if e.IsDir() {
				if err := walk(filepath.Join(dir, name), childRel); err != nil {
					return err
				}
				continue
			}
			if strings.HasPrefix(name, ".") && strings.Contains(name, ".tmp-") {
				continue
			}
			if strings.HasPrefix(childRel, prefix) {
				names = append(names, childRel)
			}
		}
		return nil
	}

	root := s.root
	if root == "" {
		root = "."
	}
	if err := walk(root, ""); err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

type localBlob struct {
	m *mmap.Mapping
}

func (b *localBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return b.m.ReadAt(p, off)
}

func (b *localBlob) Close() error { return b.m.Close() }

func (b *localBlob) Size() int64 { return int64(b.m.Size()) }

func (b *localBlob) Bytes() ([]byte, error) { return b.m.Bytes(), nil }
