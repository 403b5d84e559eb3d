package fence

import (
	"errors"
	"fmt"

	"github.com/gogpu/fence/hal"
)

// Event errors.
var (
	// ErrNative is the sentinel wrapped by every NativeError. Use
	// errors.Is(err, fence.ErrNative) to distinguish driver failures
	// from argument validation failures.
	ErrNative = errors.New("fence: native driver call failed")

	// ErrInvalidInfoField is returned by Info for an unrecognized field.
	ErrInvalidInfoField = errors.New("fence: unknown event info field")

	// ErrInvalidProfilingField is returned by ProfilingInfo for an
	// unrecognized field.
	ErrInvalidProfilingField = errors.New("fence: unknown profiling field")

	// ErrCallbacksUnsupported is returned by SetCallback when the driver
	// does not support native completion callbacks.
	ErrCallbacksUnsupported = errors.New("fence: driver does not support event callbacks")

	// ErrCallbackNil is returned by SetCallback when fn is nil.
	ErrCallbackNil = errors.New("fence: callback is nil")

	// ErrEventReleased is returned when operating on a released event.
	ErrEventReleased = errors.New("fence: event has been released")

	// ErrNilDriver is returned when creating an event without a driver.
	ErrNilDriver = errors.New("fence: driver is nil")

	// ErrNilEvent is returned by the group operations when the event
	// list contains a nil entry.
	ErrNilEvent = errors.New("fence: nil event in list")
)

// NativeError reports a driver call that returned a non-success status.
// It carries the name of the failing operation and the driver's status
// code. NativeError unwraps to ErrNative.
type NativeError struct {
	// Op is the driver operation that failed, e.g. "RetainEvent".
	Op string

	// Status is the status code the driver reported.
	Status hal.Status
}

// Error implements the error interface.
func (e *NativeError) Error() string {
	return fmt.Sprintf("fence: %s failed with code %d (%s)", e.Op, int32(e.Status), e.Status)
}

// Unwrap makes errors.Is(err, ErrNative) work.
func (e *NativeError) Unwrap() error { return ErrNative }

// guarded converts a driver status into an error, nil on success.
func guarded(op string, st hal.Status) error {
	if st.Success() {
		return nil
	}
	return &NativeError{Op: op, Status: st}
}
