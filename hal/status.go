package hal

import "fmt"

// Status is a driver status code. Zero means success; failures are
// negative, following the OpenCL numbering so codes coming out of a real
// driver can be passed through unchanged.
type Status int32

const (
	StatusSuccess              Status = 0
	StatusDeviceNotFound       Status = -1
	StatusOutOfResources       Status = -5
	StatusOutOfHostMemory      Status = -6
	StatusProfilingUnavailable Status = -7
	StatusInvalidValue         Status = -30
	StatusInvalidContext       Status = -34
	StatusInvalidQueue         Status = -36
	StatusInvalidEvent         Status = -58
	StatusInvalidOperation     Status = -59
)

// Success reports whether s is StatusSuccess.
func (s Status) Success() bool {
	return s == StatusSuccess
}

// String returns the string representation of Status.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "Success"
	case StatusDeviceNotFound:
		return "DeviceNotFound"
	case StatusOutOfResources:
		return "OutOfResources"
	case StatusOutOfHostMemory:
		return "OutOfHostMemory"
	case StatusProfilingUnavailable:
		return "ProfilingUnavailable"
	case StatusInvalidValue:
		return "InvalidValue"
	case StatusInvalidContext:
		return "InvalidContext"
	case StatusInvalidQueue:
		return "InvalidQueue"
	case StatusInvalidEvent:
		return "InvalidEvent"
	case StatusInvalidOperation:
		return "InvalidOperation"
	default:
		return fmt.Sprintf("Status(%d)", int32(s))
	}
}
