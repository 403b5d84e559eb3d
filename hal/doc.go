// Package hal defines the driver-facing surface of the fence library.
//
// The fence package tracks completion of device-executed work items but
// never talks to a device directly. Everything it needs from a driver --
// retaining and releasing native event handles, blocking until events
// signal, registering completion callbacks, and querying event metadata --
// goes through the Driver interface defined here.
//
// backend/wgpu provides a Driver over the gogpu/wgpu stack. Tests and
// host applications with their own device runtime substitute their own
// implementation.
package hal
