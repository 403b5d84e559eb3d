package hal

import "fmt"

// ExecStatus is the execution status of an event. Non-negative values
// are the normal progression states; a negative value is a driver error
// code indicating the associated work terminated abnormally.
type ExecStatus int32

const (
	// ExecComplete means the command has finished execution.
	ExecComplete ExecStatus = 0
	// ExecRunning means the device is currently executing the command.
	ExecRunning ExecStatus = 1
	// ExecSubmitted means the command has been submitted to the device.
	ExecSubmitted ExecStatus = 2
	// ExecQueued means the command is enqueued but not yet submitted.
	ExecQueued ExecStatus = 3
)

// String returns the string representation of ExecStatus.
func (s ExecStatus) String() string {
	switch s {
	case ExecComplete:
		return "Complete"
	case ExecRunning:
		return "Running"
	case ExecSubmitted:
		return "Submitted"
	case ExecQueued:
		return "Queued"
	default:
		if s < 0 {
			return fmt.Sprintf("Error(%d)", int32(s))
		}
		return fmt.Sprintf("ExecStatus(%d)", int32(s))
	}
}

// EventInfo selects an event info field for Event.Info queries.
type EventInfo uint32

const (
	// EventInfoCommandQueue selects the owning command queue handle.
	EventInfoCommandQueue EventInfo = 0x11D0
	// EventInfoCommandType selects the command type code.
	EventInfoCommandType EventInfo = 0x11D1
	// EventInfoReferenceCount selects the driver reference count.
	EventInfoReferenceCount EventInfo = 0x11D2
	// EventInfoExecutionStatus selects the execution status code.
	EventInfoExecutionStatus EventInfo = 0x11D3
	// EventInfoContext selects the owning context handle.
	EventInfoContext EventInfo = 0x11D4
)

// String returns the string representation of EventInfo.
func (i EventInfo) String() string {
	switch i {
	case EventInfoCommandQueue:
		return "CommandQueue"
	case EventInfoCommandType:
		return "CommandType"
	case EventInfoReferenceCount:
		return "ReferenceCount"
	case EventInfoExecutionStatus:
		return "ExecutionStatus"
	case EventInfoContext:
		return "Context"
	default:
		return fmt.Sprintf("EventInfo(0x%04X)", uint32(i))
	}
}

// ProfilingInfo selects a profiling timestamp for Event.ProfilingInfo
// queries. All timestamps are in device clock ticks.
type ProfilingInfo uint32

const (
	// ProfilingQueued is when the command was enqueued by the host.
	ProfilingQueued ProfilingInfo = 0x1280
	// ProfilingSubmit is when the command was submitted to the device.
	ProfilingSubmit ProfilingInfo = 0x1281
	// ProfilingStart is when the command started executing.
	ProfilingStart ProfilingInfo = 0x1282
	// ProfilingEnd is when the command finished executing.
	ProfilingEnd ProfilingInfo = 0x1283
)

// String returns the string representation of ProfilingInfo.
func (i ProfilingInfo) String() string {
	switch i {
	case ProfilingQueued:
		return "Queued"
	case ProfilingSubmit:
		return "Submit"
	case ProfilingStart:
		return "Start"
	case ProfilingEnd:
		return "End"
	default:
		return fmt.Sprintf("ProfilingInfo(0x%04X)", uint32(i))
	}
}

// CommandType identifies the kind of command an event tracks.
type CommandType uint32

const (
	CommandNDRangeKernel CommandType = 0x11F0
	CommandTask          CommandType = 0x11F1
	CommandNativeKernel  CommandType = 0x11F2
	CommandReadBuffer    CommandType = 0x11F3
	CommandWriteBuffer   CommandType = 0x11F4
	CommandCopyBuffer    CommandType = 0x11F5
	CommandMarker        CommandType = 0x11FE
	CommandUser          CommandType = 0x11FF
)

// String returns the string representation of CommandType.
func (c CommandType) String() string {
	switch c {
	case CommandNDRangeKernel:
		return "NDRangeKernel"
	case CommandTask:
		return "Task"
	case CommandNativeKernel:
		return "NativeKernel"
	case CommandReadBuffer:
		return "ReadBuffer"
	case CommandWriteBuffer:
		return "WriteBuffer"
	case CommandCopyBuffer:
		return "CopyBuffer"
	case CommandMarker:
		return "Marker"
	case CommandUser:
		return "User"
	default:
		return fmt.Sprintf("CommandType(0x%04X)", uint32(c))
	}
}
