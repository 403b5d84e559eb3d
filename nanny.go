package fence

import (
	"sync/atomic"

	"github.com/gogpu/fence/hal"
)

// wardBox wraps the ward interface value so it can live in an
// atomic.Pointer.
type wardBox struct {
	ref ExternalRef
}

// wardFinalizer keeps a borrowed external reference (the "ward") alive
// until the device signals completion. The reference is taken at
// construction and given back exactly once by Finish.
type wardFinalizer struct {
	ward atomic.Pointer[wardBox]
}

// newWardFinalizer takes a reference on ward and wraps it. ward must be
// non-nil.
func newWardFinalizer(ward ExternalRef) *wardFinalizer {
	ward.Ref()
	w := &wardFinalizer{}
	w.ward.Store(&wardBox{ref: ward})
	return w
}

// Finish releases the ward's reference. The stored pointer is cleared
// first, with one atomic swap, so a concurrent Ward call can never
// observe a ward whose reference has already been released.
func (w *wardFinalizer) Finish() {
	if b := w.ward.Swap(nil); b != nil {
		b.ref.Deref()
	}
}

// Discard gives the construction-time reference back when the event
// wrapping this finalizer fails to construct. Same swap-then-deref as
// Finish; the distinction is semantic, not mechanical.
func (w *wardFinalizer) Discard() {
	w.Finish()
}

// Ward returns the ward while the finalizer has not run, nil after.
// Non-blocking and side-effect free.
func (w *wardFinalizer) Ward() ExternalRef {
	if b := w.ward.Load(); b != nil {
		return b.ref
	}
	return nil
}

// NannyEvent is an Event that keeps a borrowed external object (its
// ward) alive until the device operation completes. The ward's external
// reference count is incremented at construction and decremented exactly
// once when the event's finalizer runs, whichever completion path
// triggers it.
//
// A NannyEvent constructed with a nil ward behaves like a plain Event.
type NannyEvent struct {
	*Event

	// nanny is the ward-holding finalizer, nil when no ward was given.
	nanny *wardFinalizer
}

// NewNannyEvent wraps a native event handle and extends ward's lifetime
// until the event completes. See NewEvent for the handle and retain
// semantics.
//
// On a retain failure the reference taken on ward is released again
// before the error propagates, so the ward is never leaked by a failed
// construction.
func NewNannyEvent(d hal.Driver, h hal.EventID, retain bool, ward ExternalRef) (*NannyEvent, error) {
	var (
		w   *wardFinalizer
		fin Finalizer
	)
	if ward != nil {
		w = newWardFinalizer(ward)
		fin = w
	}

	e, err := NewEvent(d, h, retain, fin)
	if err != nil {
		// NewEvent has already discarded the payload, releasing the
		// ward reference through wardFinalizer.Discard.
		return nil, err
	}
	return &NannyEvent{Event: e, nanny: w}, nil
}

// Ward returns the object being kept alive, or nil once the finalizer
// has run (or when the event was constructed without a ward). A non-nil
// result is guaranteed to still hold the reference taken at
// construction time.
func (n *NannyEvent) Ward() ExternalRef {
	if n.nanny == nil {
		return nil
	}
	return n.nanny.Ward()
}
