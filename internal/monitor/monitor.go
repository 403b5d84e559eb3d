// Package monitor tracks detached completion-monitor goroutines.
//
// When a driver has no native completion callbacks, the fence package
// spawns one goroutine per unfinished event at release time to block on
// the native wait and run the deferred cleanup. Nothing holds a
// reference to those goroutines, but a process should not exit (and a
// test should not finish) while cleanup work is still in flight. The Tracker gives
// them a join point without giving anyone a handle to an individual
// goroutine.
package monitor

import "sync"

// Tracker counts in-flight monitor goroutines and lets callers wait for
// all of them to drain. The zero value is ready to use.
//
// Thread safety: Tracker is safe for concurrent use.
type Tracker struct {
	wg sync.WaitGroup
}

// Go runs fn on a new goroutine tracked by t.
func (t *Tracker) Go(fn func()) {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		fn()
	}()
}

// Wait blocks until every goroutine started with Go has returned.
// Goroutines started while earlier ones are still running are waited
// for as well; a Go that races Wait with no goroutine in flight carries
// no such guarantee (the sync.WaitGroup reuse rule).
func (t *Tracker) Wait() {
	t.wg.Wait()
}

// Default is the process-wide tracker used by the fence package.
var Default = &Tracker{}

// Go runs fn on a goroutine tracked by the Default tracker.
func Go(fn func()) { Default.Go(fn) }

// Wait drains the Default tracker.
func Wait() { Default.Wait() }
