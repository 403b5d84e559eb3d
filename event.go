package fence

import (
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/gogpu/fence/hal"
	"github.com/gogpu/fence/internal/monitor"
)

// Event wraps one native event handle and tracks its completion.
//
// An Event optionally carries a Finalizer that must run exactly once
// when the device operation completes. The finalizer runs on whichever
// path claims it first: a successful Wait, a driver completion callback
// registered at release time, or a fallback monitor goroutine.
//
// Thread Safety:
// Event is safe for concurrent use. Multiple goroutines may Wait on,
// query, and release the same Event; the finalizer still runs at most
// once. The only synchronization primitives used are atomics.
//
// Lifecycle:
//  1. Create via NewEvent() around a handle produced by enqueuing work
//  2. Optionally Wait() for completion, query Info()/ProfilingInfo()
//  3. Call Release() when the wrapper is no longer needed
//
// Release never blocks: if the finalizer has not run yet, it is handed
// to the driver's callback machinery or to a detached monitor goroutine.
// A runtime finalizer backstops forgotten Release calls, the same way
// Go OpenCL bindings backstop their Release methods.
type Event struct {
	// drv is the driver that issued the handle.
	drv hal.Driver

	// handle is the native event handle value.
	handle hal.EventID

	// payload holds the deferred completion action, nil when none.
	// Swapped to nil exactly once at release time; whichever completion
	// path receives it becomes its sole owner.
	payload atomic.Pointer[payload]

	// released guards against double release.
	released atomic.Bool
}

// NewEvent wraps a native event handle.
//
// If retain is true the driver's reference count on the handle is
// incremented; the matching release happens in Release. If the retain
// call fails, fin is discarded without being finalized and the driver
// failure propagates as a *NativeError.
//
// fin may be nil when the event has no deferred completion work.
func NewEvent(d hal.Driver, h hal.EventID, retain bool, fin Finalizer) (*Event, error) {
	p := newPayload(fin)
	if d == nil {
		if p != nil {
			p.discard()
		}
		return nil, ErrNilDriver
	}
	if retain {
		if st := d.RetainEvent(h); !st.Success() {
			if p != nil {
				p.discard()
			}
			return nil, &NativeError{Op: "RetainEvent", Status: st}
		}
	}

	e := &Event{drv: d, handle: h}
	e.payload.Store(p)
	runtime.SetFinalizer(e, (*Event).Release)
	return e, nil
}

// Handle returns the native event handle value.
func (e *Event) Handle() hal.EventID {
	return e.handle
}

// IsReleased reports whether Release has been called.
func (e *Event) IsReleased() bool {
	return e.released.Load()
}

// Wait blocks the calling goroutine until the native event signals
// completion, then runs the event's finalizer if it has not run yet.
// A caller returning from Wait therefore always observes the finalize
// side effects, even when an asynchronous dispatch path has not fired.
//
// Wait is safe to call from multiple goroutines; the finalizer still
// runs once.
func (e *Event) Wait() error {
	if e.released.Load() {
		return ErrEventReleased
	}
	if err := guarded("WaitForEvents", e.drv.WaitForEvents([]hal.EventID{e.handle})); err != nil {
		return err
	}
	if p := e.payload.Load(); p != nil {
		p.callFinish()
	}
	return nil
}

// Info queries one event info field. The dynamic type of the result
// depends on the field:
//
//   - [hal.EventInfoCommandQueue]: hal.QueueID
//   - [hal.EventInfoCommandType]: hal.CommandType
//   - [hal.EventInfoExecutionStatus]: hal.ExecStatus
//   - [hal.EventInfoReferenceCount]: uint32
//   - [hal.EventInfoContext]: hal.ContextID
//
// An unrecognized field fails with ErrInvalidInfoField. Prefer the typed
// getters (CommandQueue, CommandType, Status, ReferenceCount, Context)
// unless the field is chosen at runtime.
func (e *Event) Info(param hal.EventInfo) (any, error) {
	switch param {
	case hal.EventInfoCommandQueue:
		v, err := e.CommandQueue()
		return v, err
	case hal.EventInfoCommandType:
		v, err := e.CommandType()
		return v, err
	case hal.EventInfoExecutionStatus:
		v, err := e.Status()
		return v, err
	case hal.EventInfoReferenceCount:
		v, err := e.ReferenceCount()
		return v, err
	case hal.EventInfoContext:
		v, err := e.Context()
		return v, err
	default:
		return nil, fmt.Errorf("%w: %v", ErrInvalidInfoField, param)
	}
}

// CommandQueue returns the command queue the event was enqueued on.
func (e *Event) CommandQueue() (hal.QueueID, error) {
	q, st := e.drv.EventInfoQueue(e.handle)
	if !st.Success() {
		return 0, &NativeError{Op: "GetEventInfo", Status: st}
	}
	return q, nil
}

// CommandType returns the type of command the event tracks.
func (e *Event) CommandType() (hal.CommandType, error) {
	v, st := e.drv.EventInfoUint(e.handle, hal.EventInfoCommandType)
	if !st.Success() {
		return 0, &NativeError{Op: "GetEventInfo", Status: st}
	}
	return hal.CommandType(uint32(v)), nil
}

// Status returns the event's execution status. Negative values are
// driver error codes for abnormally terminated work.
func (e *Event) Status() (hal.ExecStatus, error) {
	v, st := e.drv.EventInfoUint(e.handle, hal.EventInfoExecutionStatus)
	if !st.Success() {
		return 0, &NativeError{Op: "GetEventInfo", Status: st}
	}
	return hal.ExecStatus(int32(uint32(v))), nil
}

// ReferenceCount returns the driver's reference count on the handle.
// Useful for debugging handle leaks; the count is inherently racy.
func (e *Event) ReferenceCount() (uint32, error) {
	v, st := e.drv.EventInfoUint(e.handle, hal.EventInfoReferenceCount)
	if !st.Success() {
		return 0, &NativeError{Op: "GetEventInfo", Status: st}
	}
	return uint32(v), nil
}

// Context returns the context owning the event.
func (e *Event) Context() (hal.ContextID, error) {
	c, st := e.drv.EventInfoContext(e.handle)
	if !st.Success() {
		return 0, &NativeError{Op: "GetEventInfo", Status: st}
	}
	return c, nil
}

// ProfilingInfo returns the requested timestamp in device clock ticks.
// The result is only meaningful when the originating queue was created
// with profiling enabled; otherwise it is driver-defined.
//
// An unrecognized field fails with ErrInvalidProfilingField.
func (e *Event) ProfilingInfo(param hal.ProfilingInfo) (uint64, error) {
	switch param {
	case hal.ProfilingQueued, hal.ProfilingSubmit, hal.ProfilingStart, hal.ProfilingEnd:
		v, st := e.drv.EventProfilingInfo(e.handle, param)
		if !st.Success() {
			return 0, &NativeError{Op: "GetEventProfilingInfo", Status: st}
		}
		return v, nil
	default:
		return 0, fmt.Errorf("%w: %v", ErrInvalidProfilingField, param)
	}
}

// SetCallback registers fn to run when the event reaches the trigger
// status. The driver invokes fn on a goroutine of its own choosing;
// ordering relative to other callbacks is driver-defined.
//
// Fails with ErrCallbacksUnsupported when the driver has no native
// callback support (see hal.Driver.SupportsEventCallbacks). Any external
// resource captured by fn is the caller's responsibility; see
// SetCallbackRef for the reference-counted variant.
func (e *Event) SetCallback(trigger hal.ExecStatus, fn func(hal.ExecStatus)) error {
	if fn == nil {
		return ErrCallbackNil
	}
	if e.released.Load() {
		return ErrEventReleased
	}
	if !e.drv.SupportsEventCallbacks() {
		return ErrCallbacksUnsupported
	}
	return guarded("SetEventCallback", e.drv.SetEventCallback(e.handle, trigger, fn))
}

// SetCallbackRef is SetCallback for callbacks that keep a foreign,
// reference-counted object alive. A reference on token is taken before
// registration and released after fn runs, or immediately when
// registration fails, so the token is never stranded.
func (e *Event) SetCallbackRef(trigger hal.ExecStatus, token ExternalRef, fn func(hal.ExecStatus)) error {
	token.Ref()
	err := e.SetCallback(trigger, func(status hal.ExecStatus) {
		fn(status)
		token.Deref()
	})
	if err != nil {
		token.Deref()
	}
	return err
}

// Release drops the wrapper's reference on the native handle and hands
// any unfinished finalizer to a completion path (see releasePayload).
// Release never blocks and never fails: a failed native release is
// logged at Warn and swallowed, because there is no caller position in
// a cleanup path for an error to flow to.
//
// Release is idempotent and safe for concurrent use. The Event must not
// be used after Release; subsequent Wait and SetCallback calls fail
// with ErrEventReleased.
func (e *Event) Release() {
	if e.released.Swap(true) {
		return
	}
	runtime.SetFinalizer(e, nil)
	e.releasePayload()
	if st := e.drv.ReleaseEvent(e.handle); !st.Success() {
		Logger().Warn("fence: releasing native event failed",
			"event", uint64(e.handle), "status", st)
	}
}

// releasePayload transfers ownership of the payload to exactly one
// completion path:
//
//  1. Finalizer already ran: nothing left to do, drop the payload here.
//  2. Driver supports callbacks: register a completion callback that
//     runs the finalizer on the driver's goroutine. If registration
//     fails (a torn-down context is the usual cause) the failure is
//     logged and the finalizer is deliberately abandoned: running
//     arbitrary completion side effects on a goroutine with unknown
//     provenance is worse than the leak, and blocking here would break
//     the non-blocking release contract.
//  3. Otherwise: a detached monitor goroutine blocks on the native wait
//     and then runs the finalizer. It captures only the handle value
//     and the payload pointer, never the Event.
func (e *Event) releasePayload() {
	p := e.payload.Swap(nil)
	if p == nil || p.finished() {
		return
	}

	if e.drv.SupportsEventCallbacks() {
		st := e.drv.SetEventCallback(e.handle, hal.ExecComplete, func(hal.ExecStatus) {
			p.callFinish()
		})
		if !st.Success() {
			Logger().Warn("fence: cleanup callback registration failed (dead context?)",
				"event", uint64(e.handle), "status", st)
		}
		return
	}

	Logger().Debug("fence: spawning completion monitor", "event", uint64(e.handle))
	drv, h := e.drv, e.handle
	monitor.Go(func() {
		if st := drv.WaitForEvents([]hal.EventID{h}); !st.Success() {
			// Best-effort cleanup wait; the finalizer still runs so the
			// resources it guards are not held forever.
			Logger().Warn("fence: cleanup wait failed",
				"event", uint64(h), "status", st)
		}
		p.callFinish()
	})
}

// DrainMonitors blocks until every fallback completion monitor spawned
// so far has finished. Call it during process shutdown, or from tests
// that assert on finalize side effects, so no cleanup work is left
// dangling.
func DrainMonitors() {
	monitor.Wait()
}
