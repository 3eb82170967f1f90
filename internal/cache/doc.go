// Package cache provides a byte-budgeted LRU used to keep recently read
// latents in memory in front of a persistent latent cache.
package cache
