// Package debounce coalesces bursts of calls into one trailing call.
package debounce

import (
	"sync"
	"time"
)

// Debouncer runs action once, delay after the most recent Trigger, with that
// Trigger's arguments. Each Trigger supersedes any pending one.
//
// Use one Debouncer per trigger source. The mutex only protects the timer
// slot from the timer goroutine.
type Debouncer[T any] struct {
	delay  time.Duration
	action func(T)

	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

// New returns an idle Debouncer.
func New[T any](delay time.Duration, action func(T)) *Debouncer[T] {
	return &Debouncer[T]{delay: delay, action: action}
}

// Trigger cancels the pending call, if any, and schedules action(args).
func (d *Debouncer[T]) Trigger(args T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen, args) })
}

// Pending reports whether a call is scheduled and has not fired yet.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

func (d *Debouncer[T]) fire(gen uint64, args T) {
	d.mu.Lock()
	// a timer that lost the race with Stop must not run stale args
	if gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()
	d.action(args)
}

// Func wraps a zero-argument action.
func Func(action func(), delay time.Duration) func() {
	d := New(delay, func(struct{}) { action() })
	return func() { d.Trigger(struct{}{}) }
}
