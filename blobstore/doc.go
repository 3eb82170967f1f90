// Package blobstore provides the storage backends behind the latent cache.
//
// Store is the interface for reading and writing immutable named blobs.
// Implementations must be safe for concurrent use, and Put must be atomic:
// readers observe either the previous blob or the complete new one.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, temp-file + rename writes, mmap reads
//   - MemoryStore: in-process map, for tests
//   - minio.Store: MinIO and other S3-compatible servers
//   - s3.Store: Amazon S3
//
// # Custom Implementations
//
//	type Store interface {
//	    Open(ctx, name) (Blob, error)
//	    Put(ctx, name, data) error
//	    Exists(ctx, name) (bool, error)
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
package blobstore
