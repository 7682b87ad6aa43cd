package session

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of work into a single delayed run. A generation
// counter makes superseded schedules cancel deterministically: only the most
// recent function ever runs.
type Debouncer struct {
	delay time.Duration

	mu    sync.Mutex
	gen   uint64
	timer *time.Timer
	fn    func()
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Schedule replaces any pending work with fn and restarts the delay.
func (d *Debouncer) Schedule(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	gen := d.gen
	d.fn = fn
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if gen != d.gen || d.fn == nil {
			d.mu.Unlock()
			return
		}
		run := d.fn
		d.fn = nil
		d.mu.Unlock()
		run()
	})
}

// Flush runs pending work immediately, if any.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
	}
	run := d.fn
	d.fn = nil
	d.mu.Unlock()

	if run != nil {
		run()
	}
}

// Stop cancels pending work without running it.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
	}
	d.fn = nil
}
