package hal

// EventID identifies one native event handle issued by the driver. An
// event represents a single asynchronous unit of queued work and is
// reference-counted by the driver. EventID is a plain value so it can be
// captured by completion monitors without referencing the wrapper that
// produced it. The zero value never names a valid event.
type EventID uint64

// QueueID identifies the command queue an event was enqueued on.
type QueueID uint64

// ContextID identifies the context owning an event.
type ContextID uint64

// Driver is the set of native operations the fence package consumes.
//
// All methods report a Status rather than an error; the fence package
// converts non-success statuses into *fence.NativeError. Implementations
// must be safe for concurrent use: events are retained, waited on, and
// released from independent goroutines, including detached completion
// monitors that outlive the wrappers that spawned them.
type Driver interface {
	// RetainEvent increments the driver's reference count on ev.
	RetainEvent(ev EventID) Status

	// ReleaseEvent decrements the driver's reference count on ev. The
	// driver frees the event when the count reaches zero.
	ReleaseEvent(ev EventID) Status

	// WaitForEvents blocks the calling goroutine until every event in
	// evs has reached the complete status. The slice is never empty.
	WaitForEvents(evs []EventID) Status

	// SupportsEventCallbacks reports whether SetEventCallback works on
	// this driver. When it returns false the fence package falls back
	// to monitor goroutines for deferred cleanup.
	SupportsEventCallbacks() bool

	// SetEventCallback registers fn to run once ev reaches the trigger
	// status. The driver invokes fn on a goroutine of its choosing,
	// passing the event's execution status at callback time. Only valid
	// when SupportsEventCallbacks returns true.
	SetEventCallback(ev EventID, trigger ExecStatus, fn func(ExecStatus)) Status

	// EventInfoUint queries an integer-valued info field. 32-bit fields
	// (reference count, command type) are zero-extended; the execution
	// status is returned as uint64(uint32(status)) so negative error
	// statuses round-trip.
	EventInfoUint(ev EventID, param EventInfo) (uint64, Status)

	// EventInfoQueue returns the queue ev was enqueued on.
	EventInfoQueue(ev EventID) (QueueID, Status)

	// EventInfoContext returns the context owning ev.
	EventInfoContext(ev EventID) (ContextID, Status)

	// EventProfilingInfo returns the requested timestamp in device clock
	// ticks. Meaningful only when the originating queue has profiling
	// enabled; otherwise the result is driver-defined.
	EventProfilingInfo(ev EventID, param ProfilingInfo) (uint64, Status)

	// EnqueueWaitForEvents makes queue q wait for evs on the device,
	// without blocking the host. The slice is never empty.
	EnqueueWaitForEvents(q QueueID, evs []EventID) Status
}
