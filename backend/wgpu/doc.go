// Package wgpu implements fence's driver interface over the gogpu/wgpu
// stack.
//
// The driver maps native event handles to wgpu HAL fences: submitting
// command buffers through Driver.Submit creates a fence, signals it at
// value 1, and hands back an event ID the fence package can wrap. The
// wgpu HAL has no completion callbacks, so SupportsEventCallbacks
// reports false and released events with pending cleanup fall back to
// the fence package's monitor goroutines.
//
// The driver either opens its own Vulkan device (New with no options)
// or shares one with a host application, following the gogpu convention
// that libraries receive devices rather than create them:
//
//	drv, err := wgpu.New(wgpu.WithDevice(device, queue))
//
// or, from a gpucontext host exposing HAL types:
//
//	drv, err := wgpu.New(wgpu.WithDeviceProvider(app))
package wgpu
