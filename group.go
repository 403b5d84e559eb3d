package fence

import (
	"fmt"

	"github.com/gogpu/fence/hal"
)

// WaitForEvents blocks until every event in evs has signaled completion.
// An empty or nil slice returns immediately without touching the driver,
// so callers can pass through a possibly-empty dependency list.
//
// Unlike Event.Wait, WaitForEvents does not run the events' finalizers;
// the asynchronous dispatch installed at release time remains
// responsible for them.
//
// A nil entry in evs fails with ErrNilEvent before the driver is called.
func WaitForEvents(d hal.Driver, evs []*Event) error {
	if len(evs) == 0 {
		return nil
	}
	if d == nil {
		return ErrNilDriver
	}
	ids, err := handles(evs)
	if err != nil {
		return err
	}
	return guarded("WaitForEvents", d.WaitForEvents(ids))
}

// EnqueueWaitForEvents asks the device to make queue q wait for every
// event in evs, without blocking the host. An empty or nil slice is an
// immediate success; a nil entry fails with ErrNilEvent.
func EnqueueWaitForEvents(d hal.Driver, q hal.QueueID, evs []*Event) error {
	if len(evs) == 0 {
		return nil
	}
	if d == nil {
		return ErrNilDriver
	}
	ids, err := handles(evs)
	if err != nil {
		return err
	}
	return guarded("EnqueueWaitForEvents", d.EnqueueWaitForEvents(q, ids))
}

// handles collects the native handle values of evs, rejecting nil
// entries.
func handles(evs []*Event) ([]hal.EventID, error) {
	ids := make([]hal.EventID, len(evs))
	for i, e := range evs {
		if e == nil {
			return nil, fmt.Errorf("%w: index %d", ErrNilEvent, i)
		}
		ids[i] = e.handle
	}
	return ids, nil
}
