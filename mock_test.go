package fence

import (
	"sync"
	"sync/atomic"

	"github.com/gogpu/fence/hal"
)

// mockDriver is a test double for hal.Driver. Events are signaled
// explicitly via Signal; WaitForEvents blocks until every requested
// event has been signaled, and registered callbacks fire on their own
// goroutines, imitating driver-owned callback threads.
type mockDriver struct {
	mu sync.Mutex

	supportsCB bool

	// Injected failures; StatusSuccess means the call works.
	retainStatus   hal.Status
	releaseStatus  hal.Status
	waitStatus     hal.Status
	callbackStatus hal.Status

	// Canned query results.
	queue     hal.QueueID
	context   hal.ContextID
	infoUint  map[hal.EventInfo]uint64
	profiling map[hal.ProfilingInfo]uint64

	// Call accounting.
	retains  atomic.Int32
	releases atomic.Int32
	waits    atomic.Int32

	signals   map[hal.EventID]chan struct{}
	callbacks map[hal.EventID][]func(hal.ExecStatus)

	enqueuedQueue  hal.QueueID
	enqueuedEvents []hal.EventID
}

func newMockDriver(supportsCB bool) *mockDriver {
	return &mockDriver{
		supportsCB: supportsCB,
		queue:      7,
		context:    3,
		infoUint: map[hal.EventInfo]uint64{
			hal.EventInfoCommandType:     uint64(hal.CommandCopyBuffer),
			hal.EventInfoReferenceCount:  2,
			hal.EventInfoExecutionStatus: uint64(uint32(int32(hal.ExecComplete))),
		},
		profiling: map[hal.ProfilingInfo]uint64{
			hal.ProfilingQueued: 100,
			hal.ProfilingSubmit: 200,
			hal.ProfilingStart:  300,
			hal.ProfilingEnd:    400,
		},
		signals:   make(map[hal.EventID]chan struct{}),
		callbacks: make(map[hal.EventID][]func(hal.ExecStatus)),
	}
}

// signalChan returns the channel closed when ev signals.
func (m *mockDriver) signalChan(ev hal.EventID) chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.signals[ev]
	if !ok {
		ch = make(chan struct{})
		m.signals[ev] = ch
	}
	return ch
}

// Signal marks ev complete, unblocking waiters and firing callbacks.
func (m *mockDriver) Signal(ev hal.EventID) {
	m.mu.Lock()
	ch, ok := m.signals[ev]
	if !ok {
		ch = make(chan struct{})
		m.signals[ev] = ch
	}
	cbs := m.callbacks[ev]
	m.callbacks[ev] = nil
	m.mu.Unlock()

	select {
	case <-ch:
	default:
		close(ch)
	}
	for _, cb := range cbs {
		go cb(hal.ExecComplete)
	}
}

func (m *mockDriver) RetainEvent(hal.EventID) hal.Status {
	m.retains.Add(1)
	return m.retainStatus
}

func (m *mockDriver) ReleaseEvent(hal.EventID) hal.Status {
	m.releases.Add(1)
	return m.releaseStatus
}

func (m *mockDriver) WaitForEvents(evs []hal.EventID) hal.Status {
	m.waits.Add(1)
	if !m.waitStatus.Success() {
		return m.waitStatus
	}
	for _, ev := range evs {
		<-m.signalChan(ev)
	}
	return hal.StatusSuccess
}

func (m *mockDriver) SupportsEventCallbacks() bool {
	return m.supportsCB
}

func (m *mockDriver) SetEventCallback(ev hal.EventID, _ hal.ExecStatus, fn func(hal.ExecStatus)) hal.Status {
	if !m.callbackStatus.Success() {
		return m.callbackStatus
	}
	m.mu.Lock()
	ch := m.signals[ev]
	var done bool
	if ch != nil {
		select {
		case <-ch:
			done = true
		default:
		}
	}
	if !done {
		m.callbacks[ev] = append(m.callbacks[ev], fn)
	}
	m.mu.Unlock()

	if done {
		go fn(hal.ExecComplete)
	}
	return hal.StatusSuccess
}

func (m *mockDriver) EventInfoUint(_ hal.EventID, param hal.EventInfo) (uint64, hal.Status) {
	v, ok := m.infoUint[param]
	if !ok {
		return 0, hal.StatusInvalidValue
	}
	return v, hal.StatusSuccess
}

func (m *mockDriver) EventInfoQueue(hal.EventID) (hal.QueueID, hal.Status) {
	return m.queue, hal.StatusSuccess
}

func (m *mockDriver) EventInfoContext(hal.EventID) (hal.ContextID, hal.Status) {
	return m.context, hal.StatusSuccess
}

func (m *mockDriver) EventProfilingInfo(_ hal.EventID, param hal.ProfilingInfo) (uint64, hal.Status) {
	v, ok := m.profiling[param]
	if !ok {
		return 0, hal.StatusProfilingUnavailable
	}
	return v, hal.StatusSuccess
}

func (m *mockDriver) EnqueueWaitForEvents(q hal.QueueID, evs []hal.EventID) hal.Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enqueuedQueue = q
	m.enqueuedEvents = append([]hal.EventID(nil), evs...)
	return hal.StatusSuccess
}

// Interface compliance check.
var _ hal.Driver = (*mockDriver)(nil)

// testFinalizer counts Finish and Discard invocations.
type testFinalizer struct {
	finished  atomic.Int32
	discarded atomic.Int32
}

func (f *testFinalizer) Finish()  { f.finished.Add(1) }
func (f *testFinalizer) Discard() { f.discarded.Add(1) }

// fakeRef is an ExternalRef with an observable reference count.
type fakeRef struct {
	count atomic.Int32
}

func newFakeRef() *fakeRef {
	r := &fakeRef{}
	r.count.Store(1)
	return r
}

func (r *fakeRef) Ref()   { r.count.Add(1) }
func (r *fakeRef) Deref() { r.count.Add(-1) }
