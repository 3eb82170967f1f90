// Package fs provides the filesystem seam used by the local latent store.
//
//   - [LocalFS]: production implementation using the os package
//   - [FaultyFS]: test wrapper that injects I/O failures by path pattern
//
// Production code uses fs.Default. Tests inject FaultyFS to check that cache
// write failures surface from dataset retrieval:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("latent", fs.Fault{FailAfterBytes: 0})
//	store := blobstore.NewLocalStore("", blobstore.WithFileSystem(ffs))
//
// Calls take no context.Context; local syscalls are not interruptible.
package fs
