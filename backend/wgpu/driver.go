package wgpu

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	wgpuhal "github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"

	"github.com/gogpu/fence"
	"github.com/gogpu/fence/hal"
)

// Driver errors.
var (
	// ErrClosed is returned when using a closed driver.
	ErrClosed = errors.New("wgpu: driver is closed")

	// ErrNoAdapter is returned when no GPU adapter is available.
	ErrNoAdapter = errors.New("wgpu: no GPU adapters found")

	// ErrNoVulkan is returned when the Vulkan backend is not available.
	ErrNoVulkan = errors.New("wgpu: vulkan backend not available")

	// ErrProviderHAL is returned when a device provider does not expose
	// the underlying HAL device and queue.
	ErrProviderHAL = errors.New("wgpu: provider does not expose HAL types")
)

// DeviceProvider is the host-integration interface: an application that
// already owns a GPU device (a gogpu.App, for example) implements it and
// passes itself to WithDeviceProvider so the driver shares the device
// instead of opening its own.
//
// DeviceProvider is an alias for gpucontext.DeviceProvider, keeping the
// driver compatible with the gpucontext ecosystem. The provider must
// additionally expose HalDevice() any and HalQueue() any returning the
// wgpu HAL device and queue.
type DeviceProvider = gpucontext.DeviceProvider

// defaultPollInterval is how long each blocking fence wait slice lasts.
// Waits are uncancellable and unbounded overall; the driver re-arms the
// HAL wait until the fence signals.
const defaultPollInterval = 100 * time.Millisecond

// Option configures a Driver during creation.
type Option func(*driverOptions)

// driverOptions holds optional configuration for New.
type driverOptions struct {
	device   wgpuhal.Device
	queue    wgpuhal.Queue
	provider DeviceProvider
	poll     time.Duration
}

// WithDevice shares an existing HAL device and queue with the driver.
// The driver does not destroy shared resources on Close.
func WithDevice(device wgpuhal.Device, queue wgpuhal.Queue) Option {
	return func(o *driverOptions) {
		o.device = device
		o.queue = queue
	}
}

// WithDeviceProvider shares the device owned by a gpucontext host.
// The provider must expose the underlying HAL device and queue; New
// fails with ErrProviderHAL otherwise.
func WithDeviceProvider(p DeviceProvider) Option {
	return func(o *driverOptions) {
		o.provider = p
	}
}

// WithPollInterval sets the duration of each HAL wait slice used while
// blocking on a fence. Shorter intervals react faster to Close; longer
// intervals burn fewer wakeups.
func WithPollInterval(d time.Duration) Option {
	return func(o *driverOptions) {
		o.poll = d
	}
}

// Driver implements hal.Driver over wgpu HAL fences.
//
// Thread Safety: Driver is safe for concurrent use. The event registry
// is guarded by a mutex; blocking fence waits run outside it.
type Driver struct {
	mu sync.Mutex

	// GPU resources. instance is nil when the device is shared.
	instance wgpuhal.Instance
	device   wgpuhal.Device
	queue    wgpuhal.Queue

	// externalDevice is true when using a shared device (don't destroy
	// on Close).
	externalDevice bool

	closed bool

	// events maps issued event IDs to their fence state.
	events map[hal.EventID]*eventState

	// blocked counts WaitForEvents calls currently blocked on a fence.
	// Close drains it before destroying the device, so no waiter can
	// touch a destroyed device or fence. Entries are added under mu,
	// after the closed check, so the count can only shrink once closed
	// is set.
	blocked sync.WaitGroup

	// nextID generates event IDs. 0 is never issued.
	nextID atomic.Uint64

	poll time.Duration
}

// Interface compliance check.
var _ hal.Driver = (*Driver)(nil)

// New creates a Driver. With no options it opens a standalone Vulkan
// device; use WithDevice or WithDeviceProvider to share a device owned
// by the host application instead.
func New(opts ...Option) (*Driver, error) {
	o := driverOptions{poll: defaultPollInterval}
	for _, opt := range opts {
		opt(&o)
	}
	if o.poll <= 0 {
		o.poll = defaultPollInterval
	}

	d := &Driver{
		events: make(map[hal.EventID]*eventState),
		poll:   o.poll,
	}

	switch {
	case o.provider != nil:
		device, queue, err := halFromProvider(o.provider)
		if err != nil {
			return nil, err
		}
		d.device = device
		d.queue = queue
		d.externalDevice = true

	case o.device != nil:
		d.device = o.device
		d.queue = o.queue
		d.externalDevice = true

	default:
		if err := d.initGPU(); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// halFromProvider extracts the HAL device and queue from a gpucontext
// host. gpucontext.Device deliberately hides the HAL layer, so hosts
// that can share it expose HalDevice/HalQueue accessors.
func halFromProvider(p DeviceProvider) (wgpuhal.Device, wgpuhal.Queue, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := p.(halProvider)
	if !ok {
		return nil, nil, ErrProviderHAL
	}
	device, ok := hp.HalDevice().(wgpuhal.Device)
	if !ok || device == nil {
		return nil, nil, fmt.Errorf("%w: HalDevice is not a hal.Device", ErrProviderHAL)
	}
	queue, ok := hp.HalQueue().(wgpuhal.Queue)
	if !ok || queue == nil {
		return nil, nil, fmt.Errorf("%w: HalQueue is not a hal.Queue", ErrProviderHAL)
	}
	return device, queue, nil
}

// initGPU opens a standalone Vulkan device for the driver's own use.
// This is the fallback path when no shared device is provided.
func (d *Driver) initGPU() error {
	backend, ok := wgpuhal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return ErrNoVulkan
	}
	instance, err := backend.CreateInstance(&wgpuhal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("wgpu: create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return ErrNoAdapter
	}

	// Prefer a real GPU over software adapters.
	var selected *wgpuhal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return fmt.Errorf("wgpu: open device: %w", err)
	}

	d.instance = instance
	d.device = openDev.Device
	d.queue = openDev.Queue

	fence.Logger().Info("wgpu: driver initialized (standalone)",
		"adapter", selected.Info.Name)
	return nil
}

// Close destroys all outstanding fences and, when the driver owns its
// device, the device and instance. Events issued by the driver are
// invalid afterwards; driver calls on them report StatusInvalidContext.
//
// Close blocks until every wait currently inside WaitForEvents has
// returned, which takes at most one poll interval: blocked waiters wake,
// observe the closed driver, and fail with StatusInvalidContext. Their
// fences are destroyed as they leave, so Close never pulls a fence or
// the device out from under a live wait.
func (d *Driver) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for id, st := range d.events {
		st.refs = 0
		st.zombie = true
		// A fence with a blocked waiter is destroyed by that waiter
		// once it notices the driver is closed.
		if st.waiters == 0 {
			d.device.DestroyFence(st.fence)
			delete(d.events, id)
		}
	}
	d.mu.Unlock()

	d.blocked.Wait()

	if !d.externalDevice {
		if d.device != nil {
			d.device.Destroy()
		}
		if d.instance != nil {
			d.instance.Destroy()
		}
	}
}
