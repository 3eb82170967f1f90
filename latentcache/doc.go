// Package latentcache stores encoded latents keyed by a pure function of the
// source video path.
//
// The default key for a video at <dir>/<name>.<ext> is <dir>/latent/<name>.pt.
// Entries are written once, on the first miss, and are never invalidated:
// replacing a video in place after its latent was cached serves the stale
// latent until the entry is deleted externally.
//
// Implementations:
//
//   - BlobCache: any blobstore.Store (local disk, MinIO, S3, memory)
//   - MemoryCache: an LRU layer in front of another Cache
package latentcache
