// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package driver

import "errors"

// Common driver errors.
var (
	// ErrNotAvailable is returned when a requested driver is not registered
	// or cannot reach its runtime.
	ErrNotAvailable = errors.New("driver: not available")

	// ErrNotInitialized is returned when operations are called before Init.
	ErrNotInitialized = errors.New("driver: not initialized")

	// ErrClosed is returned when operations are called after Close.
	ErrClosed = errors.New("driver: closed")

	// ErrInvalidHandle is returned when a handle does not name a live object
	// of the expected kind.
	ErrInvalidHandle = errors.New("driver: invalid handle")

	// ErrNotImplemented is returned for operations a driver cannot perform.
	ErrNotImplemented = errors.New("driver: operation not implemented")

	// ErrOutOfMemory is returned when the runtime cannot back an allocation.
	ErrOutOfMemory = errors.New("driver: out of memory")
)

// Driver is the contract between the client object model and a compute
// runtime.
//
// The client validates every argument before calling a Driver method, so
// implementations only need to guard against conditions the client cannot
// see (unknown handles, exhausted memory, missing features).
//
// Resource lifecycle:
//   - Objects are created via the *Create methods and named by a Handle
//   - Every handle is released exactly once via Destroy
//   - Failures inside the runtime that are not tied to a call are reported
//     on the Messages channel
//
// Implementations must be safe for concurrent use.
type Driver interface {
	// === Lifecycle ===

	// Name returns the driver identifier (e.g., "software", "hal").
	Name() string

	// Init prepares the driver for use. It must be called once, before any
	// other method except Name.
	Init(cfg Config) error

	// Close releases every resource of the driver and closes the Messages
	// channel. The driver must not be used after Close.
	Close()

	// Finish blocks until all previously issued work has completed.
	Finish() error

	// Messages returns the channel on which the runtime publishes
	// asynchronous notifications. The channel is closed by Close.
	Messages() <-chan Message

	// Destroy releases the object named by h.
	Destroy(h Handle)

	// AssignName attaches a debug name to the object named by h.
	AssignName(h Handle, name string)

	// === Elements and types ===

	// ElementCreate creates a primitive, vector or pixel element.
	ElementCreate(dt DataType, dk DataKind, normalized bool, vectorSize uint32) (Handle, error)

	// ElementCreateComplex creates a structured element from sub-elements.
	// The three slices have equal length.
	ElementCreateComplex(subs []Handle, names []string, arraySizes []uint32) (Handle, error)

	// TypeCreate binds an element to dimensions. Unused dimensions are 0.
	TypeCreate(element Handle, x, y, z uint32, mipmaps, faces bool) (Handle, error)

	// === Allocations ===

	// AllocationCreateTyped creates an allocation for the given type.
	// If backing is non-nil the runtime uses it as storage instead of
	// allocating its own; it is at least as large as the type.
	AllocationCreateTyped(typ Handle, mips MipmapControl, usage Usage, backing []byte) (Handle, error)

	// AllocationAdapterCreate creates a view sharing the storage of base.
	AllocationAdapterCreate(typ Handle, base Handle) (Handle, error)

	// AllocationAdapterOffset moves the origin of an adapter view.
	AllocationAdapterOffset(adapter Handle, x, y, z, lod uint32, face CubemapFace) error

	// Allocation1DData writes count elements starting at element off of
	// mip level lod.
	Allocation1DData(a Handle, off, lod, count uint32, data []byte) error

	// Allocation1DRead reads count elements starting at element off of
	// mip level lod.
	Allocation1DRead(a Handle, off, lod, count uint32, data []byte) error

	// Allocation2DData writes a w×h region. Rows in data are stride bytes
	// apart.
	Allocation2DData(a Handle, xoff, yoff, lod uint32, face CubemapFace, w, h uint32, data []byte, stride int) error

	// Allocation2DRead reads a w×h region. Rows in data are stride bytes
	// apart.
	Allocation2DRead(a Handle, xoff, yoff, lod uint32, face CubemapFace, w, h uint32, data []byte, stride int) error

	// AllocationCopy2DRange copies a w×h region between two allocations.
	AllocationCopy2DRange(dst Handle, dstX, dstY, dstLOD uint32, dstFace CubemapFace, w, h uint32,
		src Handle, srcX, srcY, srcLOD uint32, srcFace CubemapFace) error

	// AllocationResize changes the dimensions of an allocation to the
	// given type, preserving the overlapping contents.
	AllocationResize(a Handle, typ Handle) error

	// AllocationGenerateMipmaps fills levels 1..n from level 0.
	AllocationGenerateMipmaps(a Handle) error

	// AllocationSyncAll marks src as the authoritative copy of the data.
	AllocationSyncAll(a Handle, src Usage) error

	// AllocationIOSend hands the current buffer to the consumer.
	AllocationIOSend(a Handle) error

	// AllocationIOReceive acquires the next buffer from the producer.
	AllocationIOReceive(a Handle) error

	// === Samplers ===

	// SamplerCreate creates a sampler.
	SamplerCreate(desc SamplerDesc) (Handle, error)

	// === Scripts ===

	// ScriptCCreate creates a script from compiled code.
	ScriptCCreate(name, cacheDir string, code []byte) (Handle, error)

	// ScriptIntrinsicCreate creates a built-in kernel specialized for element.
	ScriptIntrinsicCreate(id IntrinsicID, element Handle) (Handle, error)

	// ScriptForEach launches the kernel in slot over in and/or out.
	ScriptForEach(s Handle, slot uint32, in, out Handle, params []byte) error

	// ScriptBindAllocation binds a to the pointer variable in slot.
	ScriptBindAllocation(s Handle, a Handle, slot uint32) error

	// ScriptSetVar sets the variable in slot to the raw bytes of data.
	ScriptSetVar(s Handle, slot uint32, data []byte) error

	// ScriptSetVarObj sets the object variable in slot.
	ScriptSetVarObj(s Handle, slot uint32, obj Handle) error

	// ScriptInvoke calls the invokable function in slot.
	ScriptInvoke(s Handle, slot uint32, params []byte) error
}
