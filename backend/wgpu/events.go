package wgpu

import (
	"fmt"
	"time"

	wgpuhal "github.com/gogpu/wgpu/hal"

	"github.com/gogpu/fence"
	"github.com/gogpu/fence/hal"
)

// The driver exposes a single in-order submission queue and a single
// device context.
const (
	queueID   hal.QueueID   = 1
	contextID hal.ContextID = 1
)

// eventState tracks one issued event: the fence backing it, the signal
// value that marks completion, the driver-side reference count, and
// host-clock profiling timestamps. All fields are guarded by Driver.mu.
type eventState struct {
	fence wgpuhal.Fence
	value uint64

	cmdType hal.CommandType

	// refs is the driver reference count; the fence is destroyed when
	// it reaches zero and no waiter is blocked on it.
	refs    int
	waiters int

	// zombie marks a state whose refs hit zero before completion; the
	// last waiter to return destroys it.
	zombie bool

	done bool

	queuedAt uint64
	submitAt uint64
	startAt  uint64
	endAt    uint64
}

// ticks returns the host clock in nanoseconds, used as the device tick
// domain for profiling queries.
func ticks() uint64 {
	return uint64(time.Now().UnixNano())
}

// Submit submits command buffers to the driver's queue and returns an
// event tracking their completion. The event starts with one driver
// reference; release it through the fence package or ReleaseEvent.
func (d *Driver) Submit(cmds []wgpuhal.CommandBuffer, cmdType hal.CommandType) (hal.EventID, error) {
	queued := ticks()

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return 0, ErrClosed
	}
	device, queue := d.device, d.queue
	d.mu.Unlock()

	f, err := device.CreateFence()
	if err != nil {
		return 0, fmt.Errorf("wgpu: create fence: %w", err)
	}

	submit := ticks()
	if err := queue.Submit(cmds, f, 1); err != nil {
		device.DestroyFence(f)
		return 0, fmt.Errorf("wgpu: submit: %w", err)
	}

	return d.register(f, 1, cmdType, queued, submit), nil
}

// RegisterFence wraps work submitted outside the driver: f must signal
// value once the work completes. Ownership of the fence transfers to
// the driver; it is destroyed when the event's last reference drops.
func (d *Driver) RegisterFence(f wgpuhal.Fence, value uint64, cmdType hal.CommandType) hal.EventID {
	now := ticks()
	return d.register(f, value, cmdType, now, now)
}

func (d *Driver) register(f wgpuhal.Fence, value uint64, cmdType hal.CommandType, queued, submit uint64) hal.EventID {
	id := hal.EventID(d.nextID.Add(1))
	d.mu.Lock()
	d.events[id] = &eventState{
		fence:    f,
		value:    value,
		cmdType:  cmdType,
		refs:     1,
		queuedAt: queued,
		submitAt: submit,
		// The HAL gives no start-of-execution signal; submission is the
		// closest observable point.
		startAt: submit,
	}
	d.mu.Unlock()
	return id
}

// RetainEvent implements hal.Driver.
func (d *Driver) RetainEvent(ev hal.EventID) hal.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return hal.StatusInvalidContext
	}
	st, ok := d.events[ev]
	if !ok || st.zombie {
		return hal.StatusInvalidEvent
	}
	st.refs++
	return hal.StatusSuccess
}

// ReleaseEvent implements hal.Driver. When the last reference drops the
// fence is destroyed, unless a waiter is still blocked on it or the
// event has not completed; then the last waiter destroys it.
func (d *Driver) ReleaseEvent(ev hal.EventID) hal.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return hal.StatusInvalidContext
	}
	st, ok := d.events[ev]
	if !ok {
		return hal.StatusInvalidEvent
	}
	if st.refs > 0 {
		st.refs--
	}
	if st.refs == 0 {
		st.zombie = true
		d.reapLocked(ev, st)
	}
	return hal.StatusSuccess
}

// reapLocked destroys a zombie state once nothing can touch its fence:
// no references, no blocked waiters, and the work either completed or
// can never complete because the driver is closed.
func (d *Driver) reapLocked(ev hal.EventID, st *eventState) {
	if !st.zombie || st.waiters > 0 {
		return
	}
	if !st.done && !d.closed {
		return
	}
	d.device.DestroyFence(st.fence)
	delete(d.events, ev)
}

// WaitForEvents implements hal.Driver. It blocks until every listed
// event's fence reaches its signal value, re-arming the HAL wait each
// poll interval. There is no timeout; waits on events that never signal
// block forever, matching the native wait contract.
func (d *Driver) WaitForEvents(evs []hal.EventID) hal.Status {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return hal.StatusInvalidContext
	}
	states := make([]*eventState, len(evs))
	for i, ev := range evs {
		st, ok := d.events[ev]
		if !ok {
			d.mu.Unlock()
			return hal.StatusInvalidEvent
		}
		st.waiters++
		states[i] = st
	}
	d.blocked.Add(1)
	defer d.blocked.Done()
	device, poll := d.device, d.poll
	d.mu.Unlock()

	result := hal.StatusSuccess
	for i, st := range states {
		signaled := false
		for {
			ok, err := device.Wait(st.fence, st.value, poll)
			if err != nil {
				fence.Logger().Warn("wgpu: fence wait failed",
					"event", uint64(evs[i]), "error", err)
				result = hal.StatusOutOfResources
				break
			}
			if ok {
				signaled = true
				break
			}
			// Timed out this slice; a closed driver means the fence is
			// gone and the wait can never succeed.
			d.mu.Lock()
			closed := d.closed
			d.mu.Unlock()
			if closed {
				result = hal.StatusInvalidContext
				break
			}
		}

		d.mu.Lock()
		if signaled && !st.done {
			st.done = true
			st.endAt = ticks()
		}
		st.waiters--
		d.reapLocked(evs[i], st)
		d.mu.Unlock()
	}
	return result
}

// SupportsEventCallbacks implements hal.Driver. The wgpu HAL exposes no
// completion callback primitive, so the fence package uses its monitor
// goroutine fallback with this driver.
func (d *Driver) SupportsEventCallbacks() bool {
	return false
}

// SetEventCallback implements hal.Driver. Never valid for this driver.
func (d *Driver) SetEventCallback(hal.EventID, hal.ExecStatus, func(hal.ExecStatus)) hal.Status {
	return hal.StatusInvalidOperation
}

// EventInfoUint implements hal.Driver.
func (d *Driver) EventInfoUint(ev hal.EventID, param hal.EventInfo) (uint64, hal.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0, hal.StatusInvalidContext
	}
	st, ok := d.events[ev]
	if !ok {
		return 0, hal.StatusInvalidEvent
	}

	switch param {
	case hal.EventInfoCommandType:
		return uint64(st.cmdType), hal.StatusSuccess

	case hal.EventInfoReferenceCount:
		return uint64(uint32(st.refs)), hal.StatusSuccess

	case hal.EventInfoExecutionStatus:
		status := hal.ExecSubmitted
		if !st.done {
			// Non-blocking probe so a status query never stalls.
			if ok, err := d.device.Wait(st.fence, st.value, 0); err == nil && ok {
				st.done = true
				st.endAt = ticks()
			}
		}
		if st.done {
			status = hal.ExecComplete
		}
		return uint64(uint32(int32(status))), hal.StatusSuccess

	default:
		return 0, hal.StatusInvalidValue
	}
}

// EventInfoQueue implements hal.Driver.
func (d *Driver) EventInfoQueue(ev hal.EventID) (hal.QueueID, hal.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0, hal.StatusInvalidContext
	}
	if _, ok := d.events[ev]; !ok {
		return 0, hal.StatusInvalidEvent
	}
	return queueID, hal.StatusSuccess
}

// EventInfoContext implements hal.Driver.
func (d *Driver) EventInfoContext(ev hal.EventID) (hal.ContextID, hal.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0, hal.StatusInvalidContext
	}
	if _, ok := d.events[ev]; !ok {
		return 0, hal.StatusInvalidEvent
	}
	return contextID, hal.StatusSuccess
}

// EventProfilingInfo implements hal.Driver. Timestamps come from the
// host clock: the HAL has no device timestamp queries, so queue and
// submit are observed on the host and execution start is approximated
// by submission. End is only available once completion has been
// observed by a wait or a status query.
func (d *Driver) EventProfilingInfo(ev hal.EventID, param hal.ProfilingInfo) (uint64, hal.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0, hal.StatusInvalidContext
	}
	st, ok := d.events[ev]
	if !ok {
		return 0, hal.StatusInvalidEvent
	}

	switch param {
	case hal.ProfilingQueued:
		return st.queuedAt, hal.StatusSuccess
	case hal.ProfilingSubmit:
		return st.submitAt, hal.StatusSuccess
	case hal.ProfilingStart:
		return st.startAt, hal.StatusSuccess
	case hal.ProfilingEnd:
		if !st.done {
			return 0, hal.StatusProfilingUnavailable
		}
		return st.endAt, hal.StatusSuccess
	default:
		return 0, hal.StatusInvalidValue
	}
}

// EnqueueWaitForEvents implements hal.Driver. The driver's single queue
// executes submissions in order, so anything submitted after the listed
// events already waits for them on the device; the call validates its
// arguments and succeeds without further work.
func (d *Driver) EnqueueWaitForEvents(q hal.QueueID, evs []hal.EventID) hal.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return hal.StatusInvalidContext
	}
	if q != queueID {
		return hal.StatusInvalidQueue
	}
	for _, ev := range evs {
		if _, ok := d.events[ev]; !ok {
			return hal.StatusInvalidEvent
		}
	}
	return hal.StatusSuccess
}
