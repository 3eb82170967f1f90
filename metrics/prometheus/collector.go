// Package prometheus exports latentset metrics to Prometheus.
package prometheus

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/latentset"
)

const namespace = "latentset"

// Collector implements latentset.MetricsCollector with Prometheus metrics.
type Collector struct {
	lookups      *prom.CounterVec
	lookupTime   *prom.HistogramVec
	encodes      *prom.CounterVec
	encodeTime   prom.Histogram
	warmItems    *prom.CounterVec
	warmDuration prom.Histogram
}

var _ latentset.MetricsCollector = (*Collector)(nil)

// NewCollector creates the metrics and registers them with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewCollector(reg prom.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	c := &Collector{
		lookups: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Latent lookups by cache result and status.",
		}, []string{"result", "status"}),
		lookupTime: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "lookup_duration_seconds",
			Help:      "Time to serve a latent, by cache result.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		}, []string{"result"}),
		encodes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "encodes_total",
			Help:      "Encoder invocations by status.",
		}, []string{"status"}),
		encodeTime: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "encode_duration_seconds",
			Help:      "Duration of a single encoder call.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		}),
		warmItems: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "warm_items_total",
			Help:      "Samples visited by warm passes, by status.",
		}, []string{"status"}),
		warmDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "warm_duration_seconds",
			Help:      "Duration of a warm pass.",
			Buckets:   prom.ExponentialBuckets(1, 4, 10),
		}),
	}

	for _, m := range []prom.Collector{c.lookups, c.lookupTime, c.encodes, c.encodeTime, c.warmItems, c.warmDuration} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordCacheHit implements latentset.MetricsCollector.
func (c *Collector) RecordCacheHit(d time.Duration, err error) {
	c.lookups.WithLabelValues("hit", status(err)).Inc()
	c.lookupTime.WithLabelValues("hit").Observe(d.Seconds())
}

// RecordCacheMiss implements latentset.MetricsCollector.
func (c *Collector) RecordCacheMiss(d time.Duration, err error) {
	c.lookups.WithLabelValues("miss", status(err)).Inc()
	c.lookupTime.WithLabelValues("miss").Observe(d.Seconds())
}

// RecordEncode implements latentset.MetricsCollector.
func (c *Collector) RecordEncode(d time.Duration, err error) {
	c.encodes.WithLabelValues(status(err)).Inc()
	c.encodeTime.Observe(d.Seconds())
}

// RecordWarm implements latentset.MetricsCollector.
func (c *Collector) RecordWarm(count, failed int, d time.Duration) {
	c.warmItems.WithLabelValues("ok").Add(float64(count - failed))
	c.warmItems.WithLabelValues("error").Add(float64(failed))
	c.warmDuration.Observe(d.Seconds())
}
