// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package halgpu

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/rsc/driver"
)

// NameNoop is the registry name of the driver backed by the HAL noop
// backend.
const NameNoop = "hal-noop"

// finishTimeout bounds how long Finish waits for the device.
const finishTimeout = 5 * time.Second

// DefaultMessageBuffer is the message channel capacity used when the
// config does not specify one.
const DefaultMessageBuffer = 64

// Errors returned by the halgpu driver.
var (
	// ErrNoDevice is returned when the driver has no HAL device.
	ErrNoDevice = errors.New("halgpu: no device")

	// ErrNotHALProvider is returned when a device provider does not expose
	// HAL types.
	ErrNotHALProvider = errors.New("halgpu: provider does not expose HAL types")
)

func init() {
	driver.Register(NameNoop, func() driver.Driver {
		return NewNoop()
	})
}

// RegisterDevice registers device and queue as the driver.NameHAL driver,
// making it the default selection. Drivers created from the registry
// share the device and never destroy it.
func RegisterDevice(device hal.Device, queue hal.Queue) {
	driver.Register(driver.NameHAL, func() driver.Driver {
		return New(device, queue)
	})
}

// opener acquires a device at Init. release is called at Close.
type opener func() (device hal.Device, queue hal.Queue, release func(), err error)

// Driver is an rsc driver backed by a HAL device.
//
// Driver is safe for concurrent use.
type Driver struct {
	mu          sync.RWMutex
	open        opener
	device      hal.Device
	queue       hal.Queue
	release     func()
	initialized bool
	closed      bool
	cfg         driver.Config
	objects     map[driver.Handle]any
	next        atomic.Uint64
	messages    chan driver.Message
	logger      atomic.Pointer[slog.Logger]
}

// New creates a driver on a caller-owned device. Close does not destroy
// the device.
func New(device hal.Device, queue hal.Queue) *Driver {
	return newDriver(func() (hal.Device, hal.Queue, func(), error) {
		if device == nil || queue == nil {
			return nil, nil, nil, ErrNoDevice
		}
		return device, queue, func() {}, nil
	})
}

// NewFromProvider creates a driver sharing the device of provider.
// The provider must implement HalDevice() any and HalQueue() any
// returning hal.Device and hal.Queue.
func NewFromProvider(provider gpucontext.DeviceProvider) (*Driver, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	if provider == nil {
		return nil, ErrNoDevice
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNotHALProvider
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNotHALProvider)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNotHALProvider)
	}
	return New(device, queue), nil
}

// NewNoop creates a driver that opens a private device on the HAL noop
// backend at Init and destroys it at Close.
func NewNoop() *Driver {
	return newDriver(openNoop)
}

func openNoop() (hal.Device, hal.Queue, func(), error) {
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("halgpu: create noop instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, nil, nil, fmt.Errorf("%w: noop backend has no adapters", driver.ErrNotAvailable)
	}
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, nil, nil, fmt.Errorf("halgpu: open noop adapter: %w", err)
	}
	release := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, release, nil
}

func newDriver(open opener) *Driver {
	return &Driver{
		open:    open,
		objects: make(map[driver.Handle]any),
	}
}

// Name returns the driver identifier.
func (d *Driver) Name() string {
	return driver.NameHAL
}

// SetLogger sets the logger used by the halgpu driver.
// A nil logger silences the driver.
func (d *Driver) SetLogger(l *slog.Logger) {
	d.logger.Store(l)
}

var discardLogger = slog.New(slog.DiscardHandler)

func (d *Driver) log() *slog.Logger {
	if l := d.logger.Load(); l != nil {
		return l
	}
	return discardLogger
}

// Device returns the HAL device, or nil before Init.
func (d *Driver) Device() hal.Device {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.device
}

// Init acquires the device.
func (d *Driver) Init(cfg driver.Config) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return driver.ErrClosed
	}
	if d.initialized {
		return nil
	}
	if cfg.ForceCPU {
		return fmt.Errorf("%w: CPU execution requested", driver.ErrNotAvailable)
	}
	device, queue, release, err := d.open()
	if err != nil {
		return err
	}
	if cfg.MessageBuffer <= 0 {
		cfg.MessageBuffer = DefaultMessageBuffer
	}
	d.device, d.queue, d.release = device, queue, release
	d.cfg = cfg
	d.messages = make(chan driver.Message, cfg.MessageBuffer)
	d.initialized = true
	d.log().Info("halgpu driver initialized", "targetAPI", cfg.TargetAPI)
	return nil
}

// Close destroys every HAL resource created by the driver and releases the
// device if the driver owns it.
func (d *Driver) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.closed = true
	for h := range d.objects {
		d.destroyLocked(h)
	}
	if d.release != nil {
		d.release()
		d.release = nil
	}
	d.device, d.queue = nil, nil
	if d.messages != nil {
		close(d.messages)
	}
}

// Finish waits for the device to go idle.
func (d *Driver) Finish() error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if err := d.usable(); err != nil {
		return err
	}
	fence, err := d.device.CreateFence()
	if err != nil {
		return fmt.Errorf("halgpu: create fence: %w", err)
	}
	defer d.device.DestroyFence(fence)

	if err := d.queue.Submit(nil, fence, 1); err != nil {
		return fmt.Errorf("halgpu: submit: %w", err)
	}
	ok, err := d.device.Wait(fence, 1, finishTimeout)
	if err != nil {
		return fmt.Errorf("halgpu: wait for device: %w", err)
	}
	if !ok {
		return fmt.Errorf("halgpu: device timeout after %v", finishTimeout)
	}
	return nil
}

// Messages returns the notification channel.
func (d *Driver) Messages() <-chan driver.Message {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.messages
}

// Destroy releases the object named by h.
func (d *Driver) Destroy(h driver.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroyLocked(h)
}

// destroyLocked releases h. Caller must hold d.mu for writing.
func (d *Driver) destroyLocked(h driver.Handle) {
	obj, ok := d.objects[h]
	if !ok {
		return
	}
	delete(d.objects, h)
	switch o := obj.(type) {
	case *allocation:
		o.store.unref(d.device)
	case *sampler:
		if d.device != nil {
			d.device.DestroySampler(o.raw)
		}
	case *script:
		if o.module != nil && d.device != nil {
			d.device.DestroyShaderModule(o.module)
		}
	}
}

// AssignName is accepted for debugging but HAL objects keep the label
// given at creation.
func (d *Driver) AssignName(h driver.Handle, name string) {
	d.log().Debug("halgpu: assign name", "handle", h, "name", name)
}

// LiveObjects returns the number of objects that have not been destroyed.
func (d *Driver) LiveObjects() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.objects)
}

// usable reports why the driver cannot accept calls, if it cannot.
// Caller must hold d.mu.
func (d *Driver) usable() error {
	if d.closed {
		return driver.ErrClosed
	}
	if !d.initialized {
		return driver.ErrNotInitialized
	}
	return nil
}

// insert stores obj under a fresh handle. Caller must hold d.mu for writing.
func (d *Driver) insert(obj any) driver.Handle {
	h := driver.Handle(d.next.Add(1))
	d.objects[h] = obj
	return h
}

// lookup returns the object named by h if it has type *T.
// Caller must hold d.mu.
func lookup[T any](d *Driver, h driver.Handle) (*T, error) {
	if err := d.usable(); err != nil {
		return nil, err
	}
	obj, ok := d.objects[h]
	if !ok {
		return nil, fmt.Errorf("%w: %d", driver.ErrInvalidHandle, h)
	}
	v, ok := obj.(*T)
	if !ok {
		var zero T
		return nil, fmt.Errorf("%w: %d is %T, want %T", driver.ErrInvalidHandle, h, obj, &zero)
	}
	return v, nil
}

// Compile-time check that Driver implements driver.Driver.
var _ driver.Driver = (*Driver)(nil)
