// Package prommetrics exports index and join metrics to Prometheus.
//
//	reg := prometheus.NewRegistry()
//	mc, err := prommetrics.New(reg, "zspatial")
//	if err != nil {
//	    return err
//	}
//	idx, err := zspatial.New(s, zspatial.WithMetricsCollector(mc))
package prommetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/zspatial/join"
)

// Collector records operation latencies and join statistics. Its methods
// match zspatial.MetricsCollector.
type Collector struct {
	opLatency  *prometheus.HistogramVec
	joinSteps  *prometheus.CounterVec
	joinPairs  *prometheus.CounterVec
	memoRatio  prometheus.Histogram
	snapBytes  *prometheus.CounterVec
	collectors []prometheus.Collector
}

// New creates a Collector and registers its metrics with reg. Metric names
// are prefixed with namespace.
func New(reg prometheus.Registerer, namespace string) (*Collector, error) {
	c := &Collector{
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_latency_seconds",
			Help:      "Latency of index operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op", "status"}),
		joinSteps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "join_steps_total",
			Help:      "Join engine steps by kind.",
		}, []string{"kind"}),
		joinPairs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "join_pairs_total",
			Help:      "Candidate pairs by outcome.",
		}, []string{"outcome"}),
		memoRatio: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "join_ancestor_memo_hit_ratio",
			Help:      "Share of ancestor probes answered by the memo, per join.",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		}),
		snapBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_bytes_total",
			Help:      "Bytes written or read by snapshots.",
		}, []string{"op"}),
	}
	c.collectors = []prometheus.Collector{c.opLatency, c.joinSteps, c.joinPairs, c.memoRatio, c.snapBytes}

	for _, m := range c.collectors {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Unregister removes the collector's metrics from reg.
func (c *Collector) Unregister(reg prometheus.Registerer) {
	for _, m := range c.collectors {
		reg.Unregister(m)
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordAdd observes an add.
func (c *Collector) RecordAdd(d time.Duration, err error) {
	c.opLatency.WithLabelValues("add", status(err)).Observe(d.Seconds())
}

// RecordRemove observes a remove.
func (c *Collector) RecordRemove(d time.Duration, err error) {
	c.opLatency.WithLabelValues("remove", status(err)).Observe(d.Seconds())
}

// RecordJoin observes a finished join and its statistics.
func (c *Collector) RecordJoin(stats join.Stats, d time.Duration, err error) {
	c.opLatency.WithLabelValues("join", status(err)).Observe(d.Seconds())

	c.joinSteps.WithLabelValues("entry").Add(float64(stats.Entries))
	c.joinSteps.WithLabelValues("exit").Add(float64(stats.Exits))
	c.joinSteps.WithLabelValues("skip_ahead").Add(float64(stats.SkipAheads))
	c.joinSteps.WithLabelValues("ancestor_probe").Add(float64(stats.AncestorProbes))

	c.joinPairs.WithLabelValues("emitted").Add(float64(stats.Emitted))
	c.joinPairs.WithLabelValues("filtered").Add(float64(stats.FilteredOut))
	c.joinPairs.WithLabelValues("duplicate").Add(float64(stats.Duplicates))

	if stats.AncestorProbes+stats.AncestorMemoHits > 0 {
		c.memoRatio.Observe(stats.MemoHitRate())
	}
}

// RecordSnapshot observes a snapshot save ("save") or load ("load").
func (c *Collector) RecordSnapshot(op string, bytes int64, d time.Duration, err error) {
	c.opLatency.WithLabelValues(op, status(err)).Observe(d.Seconds())
	if err == nil {
		c.snapBytes.WithLabelValues(op).Add(float64(bytes))
	}
}
