package zspatial

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/zspatial/join"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Package prommetrics provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordAdd is called after each add operation.
	// duration is the total time taken, err is nil if successful.
	RecordAdd(duration time.Duration, err error)

	// RecordRemove is called after each remove operation.
	RecordRemove(duration time.Duration, err error)

	// RecordJoin is called after each join and search with the statistics
	// of the finished join.
	RecordJoin(stats join.Stats, duration time.Duration, err error)

	// RecordSnapshot is called after each save ("save") and load ("load").
	// bytes is the stored size of the snapshot.
	RecordSnapshot(op string, bytes int64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAdd(time.Duration, error)                     {}
func (NoopMetricsCollector) RecordRemove(time.Duration, error)                  {}
func (NoopMetricsCollector) RecordJoin(join.Stats, time.Duration, error)        {}
func (NoopMetricsCollector) RecordSnapshot(string, int64, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	AddCount       atomic.Int64
	AddErrors      atomic.Int64
	AddTotalNanos  atomic.Int64
	RemoveCount    atomic.Int64
	RemoveErrors   atomic.Int64
	JoinCount      atomic.Int64
	JoinErrors     atomic.Int64
	JoinTotalNanos atomic.Int64
	JoinSteps      atomic.Int64
	JoinEmitted    atomic.Int64
	SaveCount      atomic.Int64
	LoadCount      atomic.Int64
	SnapshotErrors atomic.Int64
	SnapshotBytes  atomic.Int64
}

// RecordAdd implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAdd(duration time.Duration, err error) {
	b.AddCount.Add(1)
	b.AddTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.AddErrors.Add(1)
	}
}

// RecordRemove implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRemove(duration time.Duration, err error) {
	b.RemoveCount.Add(1)
	if err != nil {
		b.RemoveErrors.Add(1)
	}
}

// RecordJoin implements MetricsCollector.
func (b *BasicMetricsCollector) RecordJoin(stats join.Stats, duration time.Duration, err error) {
	b.JoinCount.Add(1)
	b.JoinTotalNanos.Add(duration.Nanoseconds())
	b.JoinSteps.Add(stats.Steps)
	b.JoinEmitted.Add(stats.Emitted)
	if err != nil {
		b.JoinErrors.Add(1)
	}
}

// RecordSnapshot implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSnapshot(op string, bytes int64, duration time.Duration, err error) {
	switch op {
	case "save":
		b.SaveCount.Add(1)
	case "load":
		b.LoadCount.Add(1)
	}
	if err != nil {
		b.SnapshotErrors.Add(1)
		return
	}
	b.SnapshotBytes.Add(bytes)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		AddCount:       b.AddCount.Load(),
		AddErrors:      b.AddErrors.Load(),
		AddAvgNanos:    avg(b.AddTotalNanos.Load(), b.AddCount.Load()),
		RemoveCount:    b.RemoveCount.Load(),
		RemoveErrors:   b.RemoveErrors.Load(),
		JoinCount:      b.JoinCount.Load(),
		JoinErrors:     b.JoinErrors.Load(),
		JoinAvgNanos:   avg(b.JoinTotalNanos.Load(), b.JoinCount.Load()),
		JoinSteps:      b.JoinSteps.Load(),
		JoinEmitted:    b.JoinEmitted.Load(),
		SaveCount:      b.SaveCount.Load(),
		LoadCount:      b.LoadCount.Load(),
		SnapshotErrors: b.SnapshotErrors.Load(),
		SnapshotBytes:  b.SnapshotBytes.Load(),
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
	AddCount       int64
	AddErrors      int64
	AddAvgNanos    int64
	RemoveCount    int64
	RemoveErrors   int64
	JoinCount      int64
	JoinErrors     int64
	JoinAvgNanos   int64
	JoinSteps      int64
	JoinEmitted    int64
	SaveCount      int64
	LoadCount      int64
	SnapshotErrors int64
	SnapshotBytes  int64
}
