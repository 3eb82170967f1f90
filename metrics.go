package latentset

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting dataset metrics.
// See the metrics/prometheus package for a Prometheus implementation.
type MetricsCollector interface {
	// RecordCacheHit is called after a latent was served from the cache.
	// duration covers the existence check and the read.
	RecordCacheHit(duration time.Duration, err error)

	// RecordCacheMiss is called after a latent was computed and written.
	// duration covers preprocessing, encoding and the cache write.
	RecordCacheMiss(duration time.Duration, err error)

	// RecordEncode is called after each encoder invocation.
	RecordEncode(duration time.Duration, err error)

	// RecordWarm is called after a warm pass with the number of indices
	// visited and how many of them failed.
	RecordWarm(count, failed int, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordCacheHit(time.Duration, error)  {}
func (NoopMetricsCollector) RecordCacheMiss(time.Duration, error) {}
func (NoopMetricsCollector) RecordEncode(time.Duration, error)    {}
func (NoopMetricsCollector) RecordWarm(int, int, time.Duration)   {}

// BasicMetricsCollector provides simple in-memory metrics collection.
type BasicMetricsCollector struct {
	HitCount       atomic.Int64
	HitErrors      atomic.Int64
	HitTotalNanos  atomic.Int64
	MissCount      atomic.Int64
	MissErrors     atomic.Int64
	MissTotalNanos atomic.Int64
	EncodeCount    atomic.Int64
	EncodeErrors   atomic.Int64
	WarmCount      atomic.Int64
	WarmItems      atomic.Int64
	WarmFailed     atomic.Int64
}

// RecordCacheHit implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCacheHit(duration time.Duration, err error) {
	b.HitCount.Add(1)
	b.HitTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.HitErrors.Add(1)
	}
}

// RecordCacheMiss implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCacheMiss(duration time.Duration, err error) {
	b.MissCount.Add(1)
	b.MissTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.MissErrors.Add(1)
	}
}

// RecordEncode implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEncode(duration time.Duration, err error) {
	b.EncodeCount.Add(1)
	if err != nil {
		b.EncodeErrors.Add(1)
	}
}

// RecordWarm implements MetricsCollector.
func (b *BasicMetricsCollector) RecordWarm(count, failed int, duration time.Duration) {
	b.WarmCount.Add(1)
	b.WarmItems.Add(int64(count))
	b.WarmFailed.Add(int64(failed))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		HitCount:     b.HitCount.Load(),
		HitErrors:    b.HitErrors.Load(),
		HitAvgNanos:  avg(b.HitTotalNanos.Load(), b.HitCount.Load()),
		MissCount:    b.MissCount.Load(),
		MissErrors:   b.MissErrors.Load(),
		MissAvgNanos: avg(b.MissTotalNanos.Load(), b.MissCount.Load()),
		EncodeCount:  b.EncodeCount.Load(),
		EncodeErrors: b.EncodeErrors.Load(),
		WarmCount:    b.WarmCount.Load(),
		WarmItems:    b.WarmItems.Load(),
		WarmFailed:   b.WarmFailed.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	HitCount     int64
	HitErrors    int64
	HitAvgNanos  int64
	MissCount    int64
	MissErrors   int64
	MissAvgNanos int64
	EncodeCount  int64
	EncodeErrors int64
	WarmCount    int64
	WarmItems    int64
	WarmFailed   int64
}
