package resource

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Memory(t *testing.T) {
	// Test with limit
	c := NewController(Config{MemoryLimitBytes: 100})

	// Acquire 50
	err := c.AcquireMemory(context.Background(), 50)
	require.NoError(t, err)
	assert.Equal(t, int64(50), c.MemoryUsage())

	// Acquire 40
	err = c.AcquireMemory(context.Background(), 40)
	require.NoError(t, err)
	assert.Equal(t, int64(90), c.MemoryUsage())

	// TryAcquire 20 (should fail)
	ok := c.TryAcquireMemory(20)
	assert.False(t, ok)
	assert.Equal(t, int64(90), c.MemoryUsage())

	// Acquire 20 (should block/timeout)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err = c.AcquireMemory(ctx, 20)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// Release 50
	c.ReleaseMemory(50)
	assert.Equal(t, int64(40), c.MemoryUsage())

	// Now Acquire 20 should succeed
	err = c.AcquireMemory(context.Background(), 20)
	require.NoError(t, err)
	assert.Equal(t, int64(60), c.MemoryUsage())
}

func TestController_UnlimitedMemory(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 0})

	err := c.AcquireMemory(context.Background(), 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), c.MemoryUsage())

	c.ReleaseMemory(500)
	assert.Equal(t, int64(500), c.MemoryUsage())
}

func TestController_MemoryOverLimit(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})

	err := c.AcquireMemory(context.Background(), 101)
	var le *LimitError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "memory", le.Resource)
	assert.Zero(t, c.MemoryUsage())
}

func TestController_Joins(t *testing.T) {
	c := NewController(Config{MaxConcurrentJoins: 2})

	require.NoError(t, c.AcquireJoin(context.Background()))
	require.NoError(t, c.AcquireJoin(context.Background()))
	assert.Equal(t, int64(2), c.ActiveJoins())

	assert.False(t, c.TryAcquireJoin())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.AcquireJoin(ctx), context.DeadlineExceeded)

	c.ReleaseJoin()
	assert.True(t, c.TryAcquireJoin())
	assert.Equal(t, int64(2), c.ActiveJoins())
}

func TestController_DefaultsToOneJoin(t *testing.T) {
	c := NewController(Config{})
	assert.Equal(t, int64(1), c.Config().MaxConcurrentJoins)
	assert.True(t, c.TryAcquireJoin())
	assert.False(t, c.TryAcquireJoin())
}

func TestController_NilIsUnlimited(t *testing.T) {
	var c *Controller
	ctx := context.Background()

	require.NoError(t, c.AcquireMemory(ctx, 1<<40))
	assert.True(t, c.TryAcquireMemory(1<<40))
	c.ReleaseMemory(1 << 40)
	require.NoError(t, c.AcquireJoin(ctx))
	assert.True(t, c.TryAcquireJoin())
	c.ReleaseJoin()
	require.NoError(t, c.AcquireIO(ctx, 1<<30))
	assert.Zero(t, c.MemoryUsage())
	assert.Zero(t, c.ActiveJoins())
}

func TestController_IOLargerThanBurst(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})

	// The first burst is free; anything beyond waits for tokens.
	start := time.Now()
	require.NoError(t, c.AcquireIO(context.Background(), 1<<20))
	assert.Less(t, time.Since(start), 500*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, c.AcquireIO(ctx, 3<<20))
}

func TestRateLimitedIO(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})
	ctx := context.Background()

	var buf bytes.Buffer
	w := NewRateLimitedWriter(ctx, &buf, c)
	_, err := io.Copy(w, strings.NewReader("throttled payload"))
	require.NoError(t, err)

	r := NewRateLimitedReader(ctx, &buf, c)
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "throttled payload", string(out))

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = NewRateLimitedReader(canceled, strings.NewReader("x"), c).Read(make([]byte, 1))
	assert.ErrorIs(t, err, context.Canceled)
}
