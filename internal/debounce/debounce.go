// Copyright (c) 2025 Vishal Bharadwaj
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package debounce coalesces rapidly-changing values so downstream
// consumers re-render at a bounded rate. The chat view feeds streamed
// message text through a Debouncer so the renderer sees at most one
// update per window while a stream is active, and every update
// instantly once it is not.
package debounce

import (
	"sync"
	"time"
)

// DefaultInterval is the debounce window used while streaming.
const DefaultInterval = 100 * time.Millisecond

// Debouncer is a trailing-edge, last-value-wins debouncer. While
// active, each Push (re)starts the timer and only the most recent value
// is delivered when it fires; intermediate values are never surfaced.
// While inactive, Push delivers immediately.
//
// Thread-safety: Push arrives from the streaming goroutine while
// SetActive/Stop run on the UI loop, so all state is mutex-guarded.
type Debouncer[T any] struct {
	mu       sync.Mutex
	interval time.Duration
	emit     func(T)

	active  bool
	stopped bool
	pending bool
	latest  T
	timer   *time.Timer
}

// New creates a debouncer delivering values through emit. A zero
// interval disables coalescing, so every Push emits immediately even
// while active; a negative interval falls back to DefaultInterval.
func New[T any](interval time.Duration, emit func(T)) *Debouncer[T] {
	if interval < 0 {
		interval = DefaultInterval
	}
	return &Debouncer[T]{
		interval: interval,
		emit:     emit,
	}
}

// Push submits a new value. Inactive debouncers pass the value through
// with zero delay.
func (d *Debouncer[T]) Push(v T) {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}

	d.latest = v

	if !d.active || d.interval == 0 {
		d.pending = false
		d.mu.Unlock()
		d.emit(v)
		return
	}

	d.pending = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, d.fire)
	d.mu.Unlock()
}

// fire delivers the most recent value when the timer elapses.
func (d *Debouncer[T]) fire() {
	d.mu.Lock()
	if d.stopped || !d.pending {
		d.mu.Unlock()
		return
	}
	d.pending = false
	v := d.latest
	d.mu.Unlock()

	d.emit(v)
}

// SetActive toggles the streaming flag. Deactivating flushes any
// pending value immediately so the final stream state is never held
// back by a timer.
func (d *Debouncer[T]) SetActive(active bool) {
	d.mu.Lock()
	if d.stopped || d.active == active {
		d.mu.Unlock()
		return
	}
	d.active = active

	if active {
		d.mu.Unlock()
		return
	}

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	flush := d.pending
	d.pending = false
	v := d.latest
	d.mu.Unlock()

	if flush {
		d.emit(v)
	}
}

// Active reports whether the debouncer is in its streaming window mode.
func (d *Debouncer[T]) Active() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

// Stop cancels any pending timer and prevents all future delivery.
// Call on view unmount so a destroyed view never receives an update.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	d.pending = false
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
