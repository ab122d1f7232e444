// Package debounce coalesces bursts of triggers into one deferred call.
package debounce

import (
	"sync"
	"time"
)

// Debouncer runs the most recently scheduled function once no new Schedule
// call has arrived for the configured delay. It is safe for concurrent use.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	stopped bool
}

func New(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Trigger schedules fn after the default delay.
func (d *Debouncer) Trigger(fn func()) {
	d.Schedule(d.delay, fn)
}

// Schedule cancels any pending call and arranges for fn to run after the
// given delay. A function already running is not interrupted.
func (d *Debouncer) Schedule(after time.Duration, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(after, func() {
		d.mu.Lock()
		current := gen == d.gen && !d.stopped
		if current {
			d.timer = nil
		}
		d.mu.Unlock()
		if current {
			fn()
		}
	})
}

// pending reports whether a call is scheduled and has not fired yet.
func (d *Debouncer) pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Stop cancels the pending call, if any, and ignores later Schedule calls.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
