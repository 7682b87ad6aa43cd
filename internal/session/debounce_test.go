package session

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncer_CoalescesBursts(t *testing.T) {
	t.Parallel()

	var runs int32
	d := NewDebouncer(20 * time.Millisecond)

	for i := 0; i < 10; i++ {
		d.Schedule(func() { atomic.AddInt32(&runs, 1) })
	}

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&runs) == 1
	}, time.Second, 5*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&runs), "only the last scheduled run may fire")
}

func TestDebouncer_FlushRunsImmediately(t *testing.T) {
	t.Parallel()

	var runs int32
	d := NewDebouncer(time.Hour)

	d.Schedule(func() { atomic.AddInt32(&runs, 1) })
	d.Flush()

	assert.Equal(t, int32(1), atomic.LoadInt32(&runs))

	// Nothing pending: flush is a no-op.
	d.Flush()
	assert.Equal(t, int32(1), atomic.LoadInt32(&runs))
}

func TestDebouncer_StopCancelsPendingWork(t *testing.T) {
	t.Parallel()

	var runs int32
	d := NewDebouncer(10 * time.Millisecond)

	d.Schedule(func() { atomic.AddInt32(&runs, 1) })
	d.Stop()

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, atomic.LoadInt32(&runs))
}

func TestDebouncer_LatestWins(t *testing.T) {
	t.Parallel()

	var got atomic.Value
	d := NewDebouncer(15 * time.Millisecond)

	d.Schedule(func() { got.Store("first") })
	d.Schedule(func() { got.Store("second") })

	require.Eventually(t, func() bool {
		return got.Load() != nil
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "second", got.Load())
}
