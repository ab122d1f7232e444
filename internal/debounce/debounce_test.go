package debounce

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestDebouncer_BurstCollapsesToOneCall(t *testing.T) {
	d := New(100 * time.Millisecond)
	defer d.Stop()

	var calls atomic.Int32
	start := time.Now()
	var firedAt atomic.Int64

	for i := 0; i < 5; i++ {
		d.Trigger(func() {
			calls.Add(1)
			firedAt.Store(int64(time.Since(start)))
		})
		time.Sleep(10 * time.Millisecond)
	}

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
	assert.GreaterOrEqual(t, time.Duration(firedAt.Load()), 100*time.Millisecond)
}

func TestDebouncer_LastFunctionWins(t *testing.T) {
	d := New(30 * time.Millisecond)
	defer d.Stop()

	var got atomic.Int32
	d.Trigger(func() { got.Store(1) })
	d.Trigger(func() { got.Store(2) })

	assert.Eventually(t, func() bool { return got.Load() == 2 }, time.Second, 5*time.Millisecond)
}

func TestDebouncer_SeparateBurstsFireSeparately(t *testing.T) {
	d := New(20 * time.Millisecond)
	defer d.Stop()

	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	d.Trigger(func() { calls.Add(1) })
	assert.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, 5*time.Millisecond)
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	d := New(20 * time.Millisecond)

	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })
	assert.True(t, d.pending())
	d.Stop()
	assert.False(t, d.pending())

	d.Trigger(func() { calls.Add(1) })
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}
