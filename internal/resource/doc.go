// Package resource governs background work: how many workers may run at once
// and how fast they may start expensive operations.
//
//	rc := resource.NewController(resource.Config{
//	    MaxWorkers: 4,
//	    OpsPerSec:  2, // at most two encodes per second
//	})
//
//	if err := rc.AcquireWorker(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseWorker()
//	if err := rc.Wait(ctx); err != nil {
//	    return err
//	}
//
// All methods handle a nil Controller as unlimited.
package resource
