package latentcache

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/hupe1980/latentset/tensor"
)

const (
	// DirName is the cache subdirectory created next to each video.
	DirName = "latent"
	// Ext is the extension of cache entries.
	Ext = ".pt"
)

// Cache is the latent cache abstraction used by the dataset.
type Cache interface {
	// Exists reports whether an entry is stored under key.
	Exists(ctx context.Context, key string) (bool, error)
	// Read loads the latent stored under key.
	Read(ctx context.Context, key string) (*tensor.Tensor, error)
	// Write stores latent under key, replacing any existing entry.
	Write(ctx context.Context, key string, latent *tensor.Tensor) error
}

// KeyFunc derives a cache key from a video path. It must be pure.
type KeyFunc func(videoPath string) string

// LatentPath returns <dir>/latent/<stem>.pt for a video at <dir>/<stem>.<ext>.
func LatentPath(videoPath string) string {
	dir, base := filepath.Split(videoPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = base
	}
	return filepath.Join(dir, DirName, stem+Ext)
}

// RelativeKey returns a KeyFunc producing slash-separated LatentPath keys
// relative to root, for object stores that should not see local prefixes.
// Videos outside root keep their full slash path.
func RelativeKey(root string) KeyFunc {
	return func(videoPath string) string {
		p := LatentPath(videoPath)
		if rel, err := filepath.Rel(root, p); err == nil && !strings.HasPrefix(rel, "..") {
			p = rel
		}
		return filepath.ToSlash(p)
	}
}
