package mapping

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet period after the last viewport-settle event
// before secondary markers are recomputed.
const DefaultDebounce = 200 * time.Millisecond

// Debouncer runs fn with the most recent value once no new value has been
// triggered for the wait period. It holds a single pending slot: a new
// Trigger cancels and replaces whatever was scheduled.
type Debouncer[T any] struct {
	wait time.Duration
	fn   func(T)

	mu    sync.Mutex
	timer *time.Timer
	seq   uint64
}

// NewDebouncer creates a Debouncer.
func NewDebouncer[T any](wait time.Duration, fn func(T)) *Debouncer[T] {
	return &Debouncer[T]{wait: wait, fn: fn}
}

// Trigger schedules fn(v), dropping any run scheduled earlier.
func (d *Debouncer[T]) Trigger(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.timer = time.AfterFunc(d.wait, func() {
		d.mu.Lock()
		// A timer that already fired may lose the race with a newer Trigger.
		if seq != d.seq {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()
		d.fn(v)
	})
}

// Pending reports whether a run is scheduled.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Stop cancels the pending run, if any.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
}
