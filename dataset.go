package latentset

import (
	"context"
	"fmt"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/singleflight"

	"github.com/hupe1980/latentset/internal/fs"
	"github.com/hupe1980/latentset/latentcache"
	"github.com/hupe1980/latentset/preprocess"
	"github.com/hupe1980/latentset/tensor"
)

// Dataset pairs prompts with videos and serves encoded latents, computing
// and caching each latent on first access.
//
// A Dataset is safe for concurrent use when its Device, encoder and pipeline are.
type Dataset struct {
	root     string
	prompts  []string
	videos   []string
	pipeline preprocess.Pipeline
	device   Device
	encode   EncodeFunc
	cache    latentcache.Cache
	key      latentcache.KeyFunc
	metrics  MetricsCollector
	logger   *Logger
	inflight singleflight.Group
}

// New loads the caption and video lists found under root and validates them.
// Every video must be an existing regular file and both lists must have the
// same length. Video existence is checked first.
func New(root, captionsFile, videosFile string, pipeline preprocess.Pipeline, optFns ...Option) (*Dataset, error) {
	if pipeline == nil {
		return nil, fmt.Errorf("%w: pipeline is nil", ErrInvalidConfig)
	}
	o := applyOptions(optFns)

	prompts, err := loadLines(o.fs, resolve(root, captionsFile))
	if err != nil {
		return nil, err
	}
	videos, err := loadVideos(o.fs, root, resolve(root, videosFile))
	if err != nil {
		return nil, err
	}

	if err := checkVideos(o.fs, videos); err != nil {
		return nil, err
	}
	if len(prompts) != len(videos) {
		return nil, &CountMismatchError{Prompts: len(prompts), Videos: len(videos)}
	}

	d := &Dataset{
		root:     root,
		prompts:  prompts,
		videos:   videos,
		pipeline: pipeline,
		device:   o.device,
		encode:   o.encode,
		cache:    o.cache,
		key:      o.key,
		metrics:  o.metricsCollector,
		logger:   o.logger,
	}
	d.logger.LogLoaded(context.Background(), root, len(videos))
	return d, nil
}

func checkVideos(fsys fs.FileSystem, videos []string) error {
	for _, v := range videos {
		info, err := fsys.Stat(v)
		if err != nil || !info.Mode().IsRegular() {
			return &MissingVideoError{Path: v}
		}
	}
	return nil
}

// Len returns the number of samples.
func (d *Dataset) Len() int { return len(d.videos) }

// Prompt returns the prompt of sample i.
func (d *Dataset) Prompt(i int) string { return d.prompts[i] }

// Video returns the resolved video path of sample i.
func (d *Dataset) Video(i int) string { return d.videos[i] }

// Key returns the cache key of sample i.
func (d *Dataset) Key(i int) string { return d.key(d.videos[i]) }

// Get resolves a query. Prefetched batches are returned unchanged without
// touching the cache; an Index yields a single record.
func (d *Dataset) Get(ctx context.Context, q Query) ([]*Record, error) {
	switch q := q.(type) {
	case Prefetched:
		return q, nil
	case Index:
		r, err := d.At(ctx, int(q))
		if err != nil {
			return nil, err
		}
		return []*Record{r}, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidQuery, q)
	}
}

// At returns sample i. A cached latent is returned without decoding or
// encoding; otherwise the latent is computed, written to the cache and returned.
func (d *Dataset) At(ctx context.Context, i int) (*Record, error) {
	if i < 0 || i >= len(d.videos) {
		return nil, &IndexOutOfRangeError{Index: i, Len: len(d.videos)}
	}
	prompt, video := d.prompts[i], d.videos[i]
	key := d.key(video)

	start := time.Now()
	ok, err := d.cache.Exists(ctx, key)
	if err != nil {
		return nil, err
	}
	if ok {
		latent, err := d.cache.Read(ctx, key)
		d.metrics.RecordCacheHit(time.Since(start), err)
		if err != nil {
			return nil, err
		}
		d.logger.LogCacheHit(ctx, key)
		return newRecord(prompt, video, latent)
	}

	// Shared work runs detached from any one caller's cancellation; each
	// caller stops waiting when its own context ends.
	ch := d.inflight.DoChan(key, func() (any, error) {
		return d.compute(context.WithoutCancel(ctx), i, video, key)
	})
	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		res.Err = ctx.Err()
	}
	d.metrics.RecordCacheMiss(time.Since(start), res.Err)
	if res.Err != nil {
		return nil, res.Err
	}
	latent := res.Val.(*tensor.Tensor)
	if res.Shared {
		latent = latent.Clone()
	}
	return newRecord(prompt, video, latent)
}

// compute runs preprocess, device transfer, transform, encode and cache write
// for sample i and returns the host latent.
func (d *Dataset) compute(ctx context.Context, i int, video, key string) (*tensor.Tensor, error) {
	if d.encode == nil {
		return nil, fmt.Errorf("%w: latent for %s is not cached", ErrNoEncoder, video)
	}

	frames, err := d.pipeline.Preprocess(ctx, video)
	if err != nil {
		return nil, err
	}
	frames, err = d.device.ToDevice(ctx, frames)
	if err != nil {
		return nil, err
	}
	frames, err = d.pipeline.Transform(frames)
	if err != nil {
		return nil, err
	}

	// [F, C, H, W] -> [1, C, F, H, W]
	batch, err := frames.Unsqueeze(0)
	if err != nil {
		return nil, err
	}
	batch, err = batch.Permute(0, 2, 1, 3, 4)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	out, err := d.encode(ctx, batch)
	d.metrics.RecordEncode(time.Since(start), err)
	if err != nil {
		return nil, err
	}
	if out == nil || out.Rank() != 5 {
		var shape []int
		if out != nil {
			shape = out.Shape()
		}
		return nil, &ShapeError{Path: video, Shape: shape, Want: "encoder output [B, C, F, H, W]"}
	}

	latent, err := out.Index(0)
	if err != nil {
		return nil, err
	}
	latent, err = d.device.ToHost(ctx, latent)
	if err != nil {
		return nil, err
	}

	err = d.cache.Write(ctx, key, latent)
	d.logger.WithIndex(i).WithVideo(video).LogCacheWrite(ctx, key, latent.Shape(), err)
	if err != nil {
		return nil, err
	}
	return latent, nil
}

// CachedIndices returns the set of sample indices whose latent is cached.
func (d *Dataset) CachedIndices(ctx context.Context) (*roaring.Bitmap, error) {
	bm := roaring.New()
	for i, v := range d.videos {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ok, err := d.cache.Exists(ctx, d.key(v))
		if err != nil {
			return nil, err
		}
		if ok {
			bm.Add(uint32(i))
		}
	}
	return bm, nil
}
