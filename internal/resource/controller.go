package resource

import (
	"context"
	"math"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource limits.
type Config struct {
	// MaxWorkers is the maximum number of concurrent workers.
	// If 0, defaults to 1.
	MaxWorkers int64

	// OpsPerSec limits how often Wait lets an operation start.
	// If 0, unlimited.
	OpsPerSec float64

	// Burst is the number of operations allowed at once when OpsPerSec is set.
	// If 0, defaults to max(1, ceil(OpsPerSec)).
	Burst int
}

// Controller bounds worker concurrency and operation rate.
type Controller struct {
	workers *semaphore.Weighted
	limiter *rate.Limiter // nil if unlimited
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 1
	}

	c := &Controller{
		workers: semaphore.NewWeighted(cfg.MaxWorkers),
	}

	if cfg.OpsPerSec > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = max(1, int(math.Ceil(cfg.OpsPerSec)))
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.OpsPerSec), burst)
	}

	return c
}

// AcquireWorker reserves a worker slot, blocking while all slots are busy.
func (c *Controller) AcquireWorker(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.workers.Acquire(ctx, 1)
}

// ReleaseWorker releases a worker slot.
func (c *Controller) ReleaseWorker() {
	if c == nil {
		return
	}
	c.workers.Release(1)
}

// Wait blocks until the rate limit allows one more operation.
func (c *Controller) Wait(ctx context.Context) error {
	if c == nil || c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}
