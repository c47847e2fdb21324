package aos

import (
	"sync"
	"time"
)

// debouncer coalesces bursts of triggers into one trailing call: each
// Trigger cancels the pending timer and schedules a new one, so only the
// last trigger within the window fires fn. This is a debounce, not a
// throttle — a steady stream of triggers delays fn indefinitely.
type debouncer struct {
	window time.Duration
	fn     func()

	mu    sync.Mutex
	timer *time.Timer
}

func newDebouncer(window time.Duration, fn func()) *debouncer {
	return &debouncer{window: window, fn: fn}
}

// Trigger schedules fn after the window, cancelling any pending schedule.
func (d *debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.fn)
}

// Stop cancels any pending call.
func (d *debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
