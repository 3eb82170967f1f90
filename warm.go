package latentset

import (
	"context"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/latentset/internal/resource"
)

type warmOptions struct {
	workers   int
	opsPerSec float64
	burst     int
	indices   *roaring.Bitmap
	failFast  bool
}

// WarmOption configures Dataset.Warm.
type WarmOption func(*warmOptions)

// WithWorkers sets how many samples are processed concurrently. Default 1.
func WithWorkers(n int) WarmOption {
	return func(o *warmOptions) { o.workers = n }
}

// WithEncodeRate limits how many latents per second are computed. Cache hits
// are not limited. A zero rate means unlimited.
func WithEncodeRate(perSec float64, burst int) WarmOption {
	return func(o *warmOptions) {
		o.opsPerSec = perSec
		o.burst = burst
	}
}

// WithIndices restricts warming to a subset of samples.
func WithIndices(bm *roaring.Bitmap) WarmOption {
	return func(o *warmOptions) { o.indices = bm }
}

// WithFailFast stops at the first failing sample instead of recording it
// and moving on.
func WithFailFast() WarmOption {
	return func(o *warmOptions) { o.failFast = true }
}

// WarmReport summarizes a warm pass.
type WarmReport struct {
	// Cached holds indices whose latent already existed.
	Cached *roaring.Bitmap
	// Computed holds indices whose latent was computed by this pass.
	Computed *roaring.Bitmap
	// Failed holds indices that could not be computed. Errors has the cause.
	Failed  *roaring.Bitmap
	Errors  map[uint32]error
	Elapsed time.Duration

	mu sync.Mutex
}

func newWarmReport() *WarmReport {
	return &WarmReport{
		Cached:   roaring.New(),
		Computed: roaring.New(),
		Failed:   roaring.New(),
		Errors:   make(map[uint32]error),
	}
}

func (r *WarmReport) add(bm *roaring.Bitmap, i uint32) {
	r.mu.Lock()
	bm.Add(i)
	r.mu.Unlock()
}

func (r *WarmReport) fail(i uint32, err error) {
	r.mu.Lock()
	r.Failed.Add(i)
	r.Errors[i] = err
	r.mu.Unlock()
}

// Warm makes sure the latent of every selected sample is cached, computing
// missing ones in parallel. With WithFailFast the first error is returned;
// otherwise failures are only recorded in the report. The report is returned
// even when err is non-nil.
func (d *Dataset) Warm(ctx context.Context, optFns ...WarmOption) (*WarmReport, error) {
	o := warmOptions{workers: 1}
	for _, fn := range optFns {
		fn(&o)
	}

	indices := o.indices
	if indices == nil {
		indices = roaring.New()
		indices.AddRange(0, uint64(len(d.videos)))
	}
	report := newWarmReport()
	if !indices.IsEmpty() && int(indices.Maximum()) >= len(d.videos) {
		return report, &IndexOutOfRangeError{Index: int(indices.Maximum()), Len: len(d.videos)}
	}

	rc := resource.NewController(resource.Config{
		MaxWorkers: int64(o.workers),
		OpsPerSec:  o.opsPerSec,
		Burst:      o.burst,
	})

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	it := indices.Iterator()
	for it.HasNext() {
		i := it.Next()
		if err := rc.AcquireWorker(gctx); err != nil {
			break
		}
		g.Go(func() error {
			defer rc.ReleaseWorker()
			return d.warmOne(gctx, rc, i, report, o.failFast)
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	report.Elapsed = time.Since(start)
	visited := report.Cached.GetCardinality() + report.Computed.GetCardinality() + report.Failed.GetCardinality()
	d.metrics.RecordWarm(int(visited), int(report.Failed.GetCardinality()), report.Elapsed)
	d.logger.LogWarm(ctx, report.Cached.GetCardinality(), report.Computed.GetCardinality(),
		report.Failed.GetCardinality(), report.Elapsed)
	return report, err
}

func (d *Dataset) warmOne(ctx context.Context, rc *resource.Controller, i uint32, report *WarmReport, failFast bool) error {
	ok, err := d.cache.Exists(ctx, d.Key(int(i)))
	if err == nil && ok {
		report.add(report.Cached, i)
		return nil
	}
	if err == nil {
		err = rc.Wait(ctx)
	}
	if err == nil {
		_, err = d.At(ctx, int(i))
	}
	if err != nil {
		report.fail(i, err)
		if failFast {
			return err
		}
		return nil
	}
	report.add(report.Computed, i)
	return nil
}
