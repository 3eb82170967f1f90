package resource

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestController_Workers(t *testing.T) {
	c := NewController(Config{MaxWorkers: 2})

	var active, peak atomic.Int64
	var g errgroup.Group
	for range 8 {
		require.NoError(t, c.AcquireWorker(t.Context()))
		g.Go(func() error {
			defer c.ReleaseWorker()
			n := active.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			active.Add(-1)
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.LessOrEqual(t, peak.Load(), int64(2))
}

func TestController_DefaultsToOneWorker(t *testing.T) {
	c := NewController(Config{})
	require.NoError(t, c.AcquireWorker(t.Context()))
	defer c.ReleaseWorker()

	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.AcquireWorker(ctx), context.DeadlineExceeded)
}

func TestController_AcquireWorkerHonorsContext(t *testing.T) {
	c := NewController(Config{MaxWorkers: 1})
	require.NoError(t, c.AcquireWorker(t.Context()))

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	assert.ErrorIs(t, c.AcquireWorker(ctx), context.Canceled)

	c.ReleaseWorker()
	require.NoError(t, c.AcquireWorker(t.Context()))
	c.ReleaseWorker()
}

func TestController_RateLimit(t *testing.T) {
	c := NewController(Config{OpsPerSec: 1, Burst: 1})

	require.NoError(t, c.Wait(t.Context()))

	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, c.Wait(ctx))
}

func TestController_Unlimited(t *testing.T) {
	c := NewController(Config{MaxWorkers: 1})
	for range 100 {
		require.NoError(t, c.Wait(t.Context()))
	}
}

func TestController_Nil(t *testing.T) {
	var c *Controller
	require.NoError(t, c.AcquireWorker(t.Context()))
	c.ReleaseWorker()
	require.NoError(t, c.Wait(t.Context()))
}
