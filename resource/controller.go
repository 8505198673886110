// Package resource bounds the memory, concurrency and IO bandwidth that index
// operations may consume. A nil *Controller imposes no limits.
package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes is the hard limit for managed memory, such as the
	// buffers of a snapshot being loaded.
	// If 0, no hard limit is enforced (only tracking).
	MemoryLimitBytes int64

	// MaxConcurrentJoins is the maximum number of spatial joins running at
	// the same time.
	// If 0, defaults to 1.
	MaxConcurrentJoins int64

	// IOLimitBytesPerSec is the maximum throughput of snapshot reads and writes.
	// If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller manages global resources (memory, concurrency, IO).
type Controller struct {
	cfg Config

	// Memory
	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	// Concurrency
	joinSem *semaphore.Weighted
	joins   atomic.Int64

	// IO
	ioLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxConcurrentJoins <= 0 {
		cfg.MaxConcurrentJoins = 1
	}

	c := &Controller{
		cfg:     cfg,
		joinSem: semaphore.NewWeighted(cfg.MaxConcurrentJoins),
	}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return c
}

// Config returns the limits the controller was created with.
func (c *Controller) Config() Config {
	if c == nil {
		return Config{}
	}
	return c.cfg
}

// AcquireMemory attempts to reserve memory.
// If a hard limit is configured and usage would exceed it,
// this blocks until memory is available or ctx is canceled.
func (c *Controller) AcquireMemory(ctx context.Context, bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}

	if c.memSem != nil {
		if bytes > c.cfg.MemoryLimitBytes {
			return &LimitError{Resource: "memory", Requested: bytes, Limit: c.cfg.MemoryLimitBytes}
		}
		if err := c.memSem.Acquire(ctx, bytes); err != nil {
			return err
		}
	}

	c.memUsed.Add(bytes)
	return nil
}

// TryAcquireMemory attempts to reserve memory without blocking.
// Returns true if acquired, false if limit would be exceeded.
func (c *Controller) TryAcquireMemory(bytes int64) bool {
	if c == nil || bytes <= 0 {
		return true
	}

	if c.memSem != nil {
		if !c.memSem.TryAcquire(bytes) {
			return false
		}
	}

	c.memUsed.Add(bytes)
	return true
}

// ReleaseMemory releases reserved memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the current memory usage in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// AcquireJoin reserves a join slot.
// Blocks if all slots are busy.
func (c *Controller) AcquireJoin(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if err := c.joinSem.Acquire(ctx, 1); err != nil {
		return err
	}
	c.joins.Add(1)
	return nil
}

// TryAcquireJoin attempts to reserve a join slot without blocking.
func (c *Controller) TryAcquireJoin() bool {
	if c == nil {
		return true
	}
	if !c.joinSem.TryAcquire(1) {
		return false
	}
	c.joins.Add(1)
	return true
}

// ReleaseJoin releases a join slot.
func (c *Controller) ReleaseJoin() {
	if c == nil {
		return
	}
	c.joins.Add(-1)
	c.joinSem.Release(1)
}

// ActiveJoins returns the number of join slots currently held.
func (c *Controller) ActiveJoins() int64 {
	if c == nil {
		return 0
	}
	return c.joins.Load()
}

// AcquireIO waits until the IO limit allows the specified number of bytes.
// Requests larger than one second of budget are split into burst-sized waits.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	burst := c.ioLimiter.Burst()
	for bytes > 0 {
		n := min(bytes, burst)
		if err := c.ioLimiter.WaitN(ctx, n); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}
