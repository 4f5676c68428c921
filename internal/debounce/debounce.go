// Package debounce coalesces bursts of calls into a single trailing call.
package debounce

import (
	"sync"
	"time"
)

// Debouncer delays fn until no Call has arrived for the configured delay,
// then invokes it once with the most recent value.
type Debouncer[T any] struct {
	delay time.Duration
	fn    func(T)

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	pending bool
	value   T
	stopped bool
}

// New creates a Debouncer that calls fn after delay of quiescence.
func New[T any](delay time.Duration, fn func(T)) *Debouncer[T] {
	return &Debouncer[T]{delay: delay, fn: fn}
}

// Call records v as the latest value and re-arms the timer, cancelling any
// dispatch that has not fired yet.
func (d *Debouncer[T]) Call(v T) {
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
	d.value = v
	d.pending = true
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

// fire runs fn if gen is still the latest arming. A timer that already
// fired when Stop or a later Call raced with it finds a newer gen and
// returns without dispatching.
func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	if d.stopped || gen != d.gen || !d.pending {
		d.mu.Unlock()
		return
	}
	v := d.value
	d.pending = false
	d.mu.Unlock()

	d.fn(v)
}

// Flush dispatches the pending value immediately, if there is one.
func (d *Debouncer[T]) Flush() {
	d.mu.Lock()
	if d.stopped || !d.pending {
		d.mu.Unlock()
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	v := d.value
	d.pending = false
	d.mu.Unlock()

	d.fn(v)
}

// Pending reports whether a dispatch is scheduled.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Stop cancels any pending dispatch. Later calls are ignored.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.pending = false
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
