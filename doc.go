// Package fence tracks completion of device-executed work items.
//
// # Overview
//
// GPU and accelerator drivers hand the host an event for every unit of
// queued work. The event completes asynchronously, possibly long after
// the host-side wrapper around it has been dropped, and host resources
// tied to the work (a staging buffer, a foreign object borrowed from a
// language binding) must stay alive until the device is done with them.
// fence wraps native event handles, guarantees that a deferred cleanup
// action runs exactly once no matter which of several racing paths
// triggers it, and keeps borrowed resources alive exactly as long as
// needed.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/fence"
//	    wgpudrv "github.com/gogpu/fence/backend/wgpu"
//	)
//
//	drv, _ := wgpudrv.New()
//	defer drv.Close()
//
//	// Wrap an event produced by enqueuing work.
//	evt, _ := fence.NewEvent(drv, id, false, nil)
//	defer evt.Release()
//	evt.Wait()
//
// # Events and finalizers
//
// An Event may carry a Finalizer, run exactly once on completion. The
// NannyEvent specialization attaches a finalizer that keeps a borrowed
// ExternalRef (the "ward") alive until the device signals.
//
// # Release semantics
//
// Releasing an event never blocks. An unfinished finalizer is handed to
// the driver's native callback machinery when available, or to a
// detached monitor goroutine otherwise. Call DrainMonitors at shutdown
// to join outstanding monitors.
//
// # Architecture
//
// The library is organized into:
//   - Public API: Event, NannyEvent, Finalizer, ExternalRef
//   - hal: the driver interface this package consumes
//   - backend/wgpu: a hal.Driver over the gogpu/wgpu stack
package fence

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
