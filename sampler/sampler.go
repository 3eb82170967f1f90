// Package sampler groups dataset records into batches of equal latent shape.
package sampler

import (
	"context"
	"fmt"
	"iter"
	"math/rand/v2"

	"github.com/hupe1980/latentset"
)

// Source is the part of a latentset.Dataset the sampler needs.
type Source interface {
	Len() int
	Get(ctx context.Context, q latentset.Query) ([]*latentset.Record, error)
}

// BucketSampler walks a Source, buckets records by latent shape and yields a
// bucket as a Prefetched batch once it holds batchSize records. Feeding the
// batch back into Get returns it unchanged.
type BucketSampler struct {
	src       Source
	batchSize int
	shuffle   bool
	dropLast  bool
	rng       *rand.Rand
}

// Option configures a BucketSampler.
type Option func(*BucketSampler)

// WithShuffle visits samples in a random order and shuffles each batch,
// seeded for reproducibility.
func WithShuffle(seed uint64) Option {
	return func(s *BucketSampler) {
		s.shuffle = true
		s.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// WithDropLast discards incomplete buckets left over at the end of a pass.
func WithDropLast() Option {
	return func(s *BucketSampler) { s.dropLast = true }
}

// New returns a sampler producing batches of batchSize records.
func New(src Source, batchSize int, opts ...Option) (*BucketSampler, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("%w: batch size must be positive, got %d", latentset.ErrInvalidConfig, batchSize)
	}
	s := &BucketSampler{src: src, batchSize: batchSize}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Batches performs one pass over the source. Iteration stops after the first
// error, which is yielded with a nil batch.
func (s *BucketSampler) Batches(ctx context.Context) iter.Seq2[latentset.Prefetched, error] {
	return func(yield func(latentset.Prefetched, error) bool) {
		order := make([]int, s.src.Len())
		for i := range order {
			order[i] = i
		}
		if s.shuffle {
			s.rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		}

		buckets := make(map[latentset.Metadata]latentset.Prefetched)
		var keys []latentset.Metadata // first-seen order for leftovers

		for _, i := range order {
			recs, err := s.src.Get(ctx, latentset.Index(i))
			if err != nil {
				yield(nil, err)
				return
			}
			for _, r := range recs {
				key := r.Metadata
				b, seen := buckets[key]
				if !seen {
					keys = append(keys, key)
				}
				b = append(b, r)
				if len(b) < s.batchSize {
					buckets[key] = b
					continue
				}
				buckets[key] = nil
				if !yield(s.finish(b), nil) {
					return
				}
			}
		}

		if s.dropLast {
			return
		}
		for _, key := range keys {
			if b := buckets[key]; len(b) > 0 {
				if !yield(s.finish(b), nil) {
					return
				}
			}
		}
	}
}

func (s *BucketSampler) finish(b latentset.Prefetched) latentset.Prefetched {
	if s.shuffle {
		s.rng.Shuffle(len(b), func(i, j int) { b[i], b[j] = b[j], b[i] })
	}
	return b
}
