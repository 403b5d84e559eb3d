package fence

import "sync/atomic"

// Finalizer is a deferred completion action attached to an Event. The
// event guarantees Finish runs at most once, no matter how many paths
// race to trigger it: an explicit Wait, a driver completion callback, or
// a fallback monitor goroutine. Which goroutine runs Finish depends on
// which path wins; implementations must tolerate any of them.
type Finalizer interface {
	// Finish runs the completion action. It must not block and must not
	// panic; there is no caller to receive a failure.
	Finish()
}

// discarder is implemented by finalizers that take ownership of a
// resource at construction time and need to give it back when the event
// wrapping them fails to construct. Discard is distinct from Finish:
// the work never ran, so completion side effects must not be observed.
type discarder interface {
	Discard()
}

// payload pairs a Finalizer with the one-shot guard that enforces the
// at-most-once contract. The guard is a single atomic bool; the first
// caller to swap it from false to true owns the finalizer invocation and
// every other caller returns immediately. No lock is needed.
type payload struct {
	done atomic.Bool
	fin  Finalizer
}

// newPayload wraps fin, returning nil for a nil finalizer so events
// without deferred work carry no payload at all.
func newPayload(fin Finalizer) *payload {
	if fin == nil {
		return nil
	}
	return &payload{fin: fin}
}

// callFinish runs the finalizer on the first call. Later calls, from any
// goroutine, return immediately. Safe for concurrent use.
func (p *payload) callFinish() {
	if p.done.Swap(true) {
		return
	}
	p.fin.Finish()
}

// finished reports whether the finalizer has been claimed. Non-blocking;
// used at release time to decide whether deferred dispatch is needed.
func (p *payload) finished() bool {
	return p.done.Load()
}

// discard claims the payload without running the finalizer, then gives
// finalizers that own construction-time resources a chance to release
// them. Used on the event construction failure path.
func (p *payload) discard() {
	if p.done.Swap(true) {
		return
	}
	if d, ok := p.fin.(discarder); ok {
		d.Discard()
	}
}
