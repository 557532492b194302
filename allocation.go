// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rsc

import (
	"fmt"

	"github.com/gogpu/rsc/driver"
	"github.com/gogpu/rsc/internal/layout"
)

// Allocation is a typed memory region shared with the runtime.
//
// Offsets and extents of every copy are validated against the current
// dimensions before the driver is called. For an adapter the current
// dimensions are those of the selected level, face and slice.
//
// An Allocation is not safe for concurrent use; its selection state has
// a single owner.
type Allocation struct {
	object

	typ      *Type
	usage    driver.Usage
	mips     driver.MipmapControl
	writable bool
	backing  []byte
	cur      layout.Dims

	// Adapter state. base is nil for allocations that own their storage.
	base  *Allocation
	span  [3]bool
	lod   uint32
	face  driver.CubemapFace
	y, z  uint32
	views int
}

// Capability interfaces implemented by *Allocation.
type (
	// Copyable2D is implemented by allocations addressable as rectangles.
	Copyable2D interface {
		Copy2DRangeFrom(x, y, w, h uint32, data []byte) error
		Copy2DRangeTo(x, y, w, h uint32, data []byte) error
		Copy2DStridedFrom(x, y, w, h uint32, data []byte, stride int) error
		Copy2DStridedTo(x, y, w, h uint32, data []byte, stride int) error
		Copy2DRangeFromAllocation(x, y, w, h uint32, src *Allocation, srcX, srcY uint32) error
	}

	// Resizable is implemented by allocations whose extent can change.
	Resizable interface {
		Resize(x uint32) error
		Resize2D(x, y uint32) error
	}

	// MipmapCapable is implemented by allocations with a mip chain.
	MipmapCapable interface {
		GenerateMipmaps() error
	}

	// IOCapable is implemented by allocations exchanged with a producer or
	// consumer.
	IOCapable interface {
		IOSendOutput() error
		IOGetInput() error
	}
)

var (
	_ Object        = (*Allocation)(nil)
	_ Copyable2D    = (*Allocation)(nil)
	_ Resizable     = (*Allocation)(nil)
	_ MipmapCapable = (*Allocation)(nil)
	_ IOCapable     = (*Allocation)(nil)
)

// NewTypedAllocation creates an allocation of type t.
//
// usage must only contain known bits, and UsageIOInput may only be
// combined with UsageGraphicsTexture and UsageScript. IOInput allocations
// are read-only from the client. A mipmap mode other than MipmapNone
// requires a type with mipmaps.
func NewTypedAllocation(ctx *Context, t *Type, mips MipmapControl, usage Usage) (*Allocation, error) {
	return newAllocation(ctx, t, mips, usage, nil)
}

// NewAllocationFromBacking creates an allocation whose storage is
// backing. usage must contain UsageShared and backing must hold every
// level and face of t. The runtime reads and writes backing directly.
func NewAllocationFromBacking(ctx *Context, t *Type, mips MipmapControl, usage Usage, backing []byte) (*Allocation, error) {
	if !usage.Contains(driver.UsageShared) {
		return nil, fmt.Errorf("%w: backing storage requires UsageShared", ErrInvalidUsage)
	}
	if backing == nil {
		return nil, fmt.Errorf("%w: nil backing", ErrInvalidArgument)
	}
	if t != nil && uint64(len(backing)) < uint64(t.StorageBytes()) {
		return nil, fmt.Errorf("%w: backing has %d bytes, type needs %d",
			ErrBufferTooSmall, len(backing), t.StorageBytes())
	}
	return newAllocation(ctx, t, mips, usage, backing)
}

// NewSizedAllocation creates a 1D allocation of count elements.
func NewSizedAllocation(ctx *Context, e *Element, count uint32, usage Usage) (*Allocation, error) {
	t, err := NewType(ctx, e, count, 0, 0)
	if err != nil {
		return nil, err
	}
	defer t.Destroy()
	return newAllocation(ctx, t, driver.MipmapNone, usage, nil)
}

// NewSized2DAllocation creates an x×y allocation.
func NewSized2DAllocation(ctx *Context, e *Element, x, y uint32, usage Usage) (*Allocation, error) {
	t, err := NewType(ctx, e, x, y, 0)
	if err != nil {
		return nil, err
	}
	defer t.Destroy()
	return newAllocation(ctx, t, driver.MipmapNone, usage, nil)
}

func newAllocation(ctx *Context, t *Type, mips driver.MipmapControl, usage driver.Usage, backing []byte) (*Allocation, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil type", ErrInvalidArgument)
	}
	if err := t.valid(); err != nil {
		return nil, err
	}
	if t.ctx != ctx {
		return nil, fmt.Errorf("%w: type belongs to another context", ErrInvalidArgument)
	}
	if err := validateUsage(usage); err != nil {
		return nil, err
	}
	if mips > driver.MipmapOnSyncToTexture {
		return nil, fmt.Errorf("%w: mipmap control %d", ErrInvalidArgument, mips)
	}
	if mips != driver.MipmapNone && !t.mipmaps {
		return nil, fmt.Errorf("%w: mipmap control %d needs a mipmapped type", ErrNoMipmaps, mips)
	}

	h, err := ctx.drv.AllocationCreateTyped(t.handle, mips, usage, backing)
	if err != nil {
		return nil, fmt.Errorf("rsc: create allocation: %w", err)
	}
	a := &Allocation{
		typ:      t,
		usage:    usage,
		mips:     mips,
		writable: !usage.Contains(driver.UsageIOInput),
		backing:  backing,
		cur:      t.dims,
	}
	t.Retain()
	a.onRelease = func() { a.typ.Destroy() }
	a.init(ctx, h, ObjectAllocation)
	return a, nil
}

// validateUsage checks a usage mask for unknown bits and invalid
// IOInput combinations.
func validateUsage(u driver.Usage) error {
	if rest := u &^ driver.UsageAll; rest != 0 {
		return fmt.Errorf("%w: unknown usage bits 0x%x", ErrInvalidUsage, uint32(rest))
	}
	ioInputPeers := driver.UsageIOInput | driver.UsageGraphicsTexture | driver.UsageScript
	if u.Contains(driver.UsageIOInput) && u&^ioInputPeers != 0 {
		return fmt.Errorf("%w: IOInput may only be combined with GraphicsTexture and Script, got %v",
			ErrInvalidUsage, u)
	}
	return nil
}

// Type returns the type of the allocation. For adapters this is the
// window type minted for the view.
func (a *Allocation) Type() *Type { return a.typ }

// Element returns the element of the allocation.
func (a *Allocation) Element() *Element { return a.typ.elem }

// Usage returns the usage flags fixed at creation.
func (a *Allocation) Usage() Usage { return a.usage }

// MipmapControl returns the mipmap mode fixed at creation.
func (a *Allocation) MipmapControl() MipmapControl { return a.mips }

// Backing returns the caller-provided storage, or nil.
func (a *Allocation) Backing() []byte { return a.backing }

// IsWritable reports whether the client may write to the allocation.
func (a *Allocation) IsWritable() bool { return a.writable }

// CurrentDims returns the dimensions addressed by copies. Unused axes
// are 0.
func (a *Allocation) CurrentDims() (x, y, z uint32) { return a.cur.X, a.cur.Y, a.cur.Z }

// CurrentCount returns the number of elements addressed by 1D copies.
func (a *Allocation) CurrentCount() uint32 { return a.cur.Count() }

// SizeBytes returns CurrentCount × element size.
func (a *Allocation) SizeBytes() uint32 { return a.cur.Count() * a.esize() }

func (a *Allocation) esize() uint32 { return a.typ.elem.size }

// validate1D checks a linear range of the current view.
func (a *Allocation) validate1D(off, count uint32) error {
	if count < 1 {
		return fmt.Errorf("%w: count must be >= 1", ErrOutOfRange)
	}
	if n := a.cur.Count(); uint64(off)+uint64(count) > uint64(n) {
		return fmt.Errorf("%w: range [%d, %d) exceeds %d elements", ErrOutOfRange, off, uint64(off)+uint64(count), n)
	}
	return nil
}

// validate2D checks a rectangle of the current view.
func (a *Allocation) validate2D(x, y, w, h uint32) error {
	if w < 1 || h < 1 {
		return fmt.Errorf("%w: extent %dx%d", ErrOutOfRange, w, h)
	}
	maxY := max(a.cur.Y, 1)
	if uint64(x)+uint64(w) > uint64(a.cur.X) || uint64(y)+uint64(h) > uint64(maxY) {
		return fmt.Errorf("%w: rectangle (%d,%d)+%dx%d exceeds %dx%d",
			ErrOutOfRange, x, y, w, h, a.cur.X, maxY)
	}
	return nil
}

// validateStride checks a caller buffer for a w×h rectangle whose rows
// are stride bytes apart.
func (a *Allocation) validateStride(w, h uint32, n int, stride int) error {
	row := uint64(w) * uint64(a.esize())
	if stride < 0 || uint64(stride) < row {
		return fmt.Errorf("%w: stride %d below row size %d", ErrInvalidArgument, stride, row)
	}
	need := uint64(stride)*uint64(h-1) + row
	if uint64(n) < need {
		return fmt.Errorf("%w: have %d bytes, need %d", ErrBufferTooSmall, n, need)
	}
	return nil
}

// validateLinear checks that a caller buffer holds count elements and
// returns the byte length.
func (a *Allocation) validateLinear(count uint32, n int) (int, error) {
	need := uint64(count) * uint64(a.esize())
	if uint64(n) < need {
		return 0, fmt.Errorf("%w: have %d bytes, need %d", ErrBufferTooSmall, n, need)
	}
	return int(need), nil
}

func (a *Allocation) checkWrite() error {
	if err := a.valid(); err != nil {
		return err
	}
	if !a.writable {
		return fmt.Errorf("%w: IOInput allocations are read-only", ErrInvalidUsage)
	}
	return nil
}

// checkSource validates src as the source of a copy into a.
func (a *Allocation) checkSource(src *Allocation) error {
	if src == nil {
		return fmt.Errorf("%w: nil source allocation", ErrInvalidArgument)
	}
	if err := src.valid(); err != nil {
		return err
	}
	if err := a.sameContext(src); err != nil {
		return err
	}
	if !a.typ.elem.IsCompatible(src.typ.elem) {
		return fmt.Errorf("%w: cannot copy %v into %v", ErrTypeMismatch, src.typ.elem, a.typ.elem)
	}
	return nil
}

// Copy1DRangeFrom writes count elements from data starting at element off.
func (a *Allocation) Copy1DRangeFrom(off, count uint32, data []byte) error {
	if err := a.checkWrite(); err != nil {
		return err
	}
	if err := a.validate1D(off, count); err != nil {
		return err
	}
	n, err := a.validateLinear(count, len(data))
	if err != nil {
		return err
	}
	return a.ctx.drv.Allocation1DData(a.handle, off, a.lod, count, data[:n])
}

// Copy1DRangeTo reads count elements starting at element off into data.
func (a *Allocation) Copy1DRangeTo(off, count uint32, data []byte) error {
	if err := a.valid(); err != nil {
		return err
	}
	if err := a.validate1D(off, count); err != nil {
		return err
	}
	n, err := a.validateLinear(count, len(data))
	if err != nil {
		return err
	}
	return a.ctx.drv.Allocation1DRead(a.handle, off, a.lod, count, data[:n])
}

// Copy1DFrom writes the whole current view from data.
func (a *Allocation) Copy1DFrom(data []byte) error {
	return a.Copy1DRangeFrom(0, a.CurrentCount(), data)
}

// Copy1DTo reads the whole current view into data.
func (a *Allocation) Copy1DTo(data []byte) error {
	return a.Copy1DRangeTo(0, a.CurrentCount(), data)
}

// Copy1DRangeFromAllocation copies count elements of src, starting at
// srcOff, to a starting at off. The elements must be compatible.
func (a *Allocation) Copy1DRangeFromAllocation(off, count uint32, src *Allocation, srcOff uint32) error {
	if err := a.checkWrite(); err != nil {
		return err
	}
	if err := a.checkSource(src); err != nil {
		return err
	}
	if err := a.validate1D(off, count); err != nil {
		return err
	}
	if err := src.validate1D(srcOff, count); err != nil {
		return err
	}

	// Ranges inside the first row go through the runtime copy; anything
	// spanning rows is staged on the host.
	if off+count <= a.cur.X && srcOff+count <= src.cur.X {
		return a.ctx.drv.AllocationCopy2DRange(a.handle, off, 0, a.lod, a.face, count, 1,
			src.handle, srcOff, 0, src.lod, src.face)
	}
	tmp := make([]byte, uint64(count)*uint64(a.esize()))
	if err := a.ctx.drv.Allocation1DRead(src.handle, srcOff, src.lod, count, tmp); err != nil {
		return err
	}
	return a.ctx.drv.Allocation1DData(a.handle, off, a.lod, count, tmp)
}

// Copy2DRangeFrom writes a tightly packed w×h rectangle at (x, y).
func (a *Allocation) Copy2DRangeFrom(x, y, w, h uint32, data []byte) error {
	return a.Copy2DStridedFrom(x, y, w, h, data, int(w*a.esize()))
}

// Copy2DRangeTo reads a w×h rectangle at (x, y) into tightly packed data.
func (a *Allocation) Copy2DRangeTo(x, y, w, h uint32, data []byte) error {
	return a.Copy2DStridedTo(x, y, w, h, data, int(w*a.esize()))
}

// Copy2DStridedFrom writes a w×h rectangle at (x, y) from rows stride
// bytes apart.
func (a *Allocation) Copy2DStridedFrom(x, y, w, h uint32, data []byte, stride int) error {
	if err := a.checkWrite(); err != nil {
		return err
	}
	if err := a.validate2D(x, y, w, h); err != nil {
		return err
	}
	if err := a.validateStride(w, h, len(data), stride); err != nil {
		return err
	}
	return a.ctx.drv.Allocation2DData(a.handle, x, y, a.lod, a.face, w, h, data, stride)
}

// Copy2DStridedTo reads a w×h rectangle at (x, y) into rows stride bytes
// apart.
func (a *Allocation) Copy2DStridedTo(x, y, w, h uint32, data []byte, stride int) error {
	if err := a.valid(); err != nil {
		return err
	}
	if err := a.validate2D(x, y, w, h); err != nil {
		return err
	}
	if err := a.validateStride(w, h, len(data), stride); err != nil {
		return err
	}
	return a.ctx.drv.Allocation2DRead(a.handle, x, y, a.lod, a.face, w, h, data, stride)
}

// Copy2DStridedFromAll writes the whole current view from rows stride
// bytes apart.
func (a *Allocation) Copy2DStridedFromAll(data []byte, stride int) error {
	return a.Copy2DStridedFrom(0, 0, a.cur.X, max(a.cur.Y, 1), data, stride)
}

// Copy2DStridedToAll reads the whole current view into rows stride bytes
// apart.
func (a *Allocation) Copy2DStridedToAll(data []byte, stride int) error {
	return a.Copy2DStridedTo(0, 0, a.cur.X, max(a.cur.Y, 1), data, stride)
}

// Copy2DRangeFromAllocation copies the w×h rectangle of src at
// (srcX, srcY) to (x, y). The elements must be compatible.
func (a *Allocation) Copy2DRangeFromAllocation(x, y, w, h uint32, src *Allocation, srcX, srcY uint32) error {
	if err := a.checkWrite(); err != nil {
		return err
	}
	if err := a.checkSource(src); err != nil {
		return err
	}
	if err := a.validate2D(x, y, w, h); err != nil {
		return err
	}
	if err := src.validate2D(srcX, srcY, w, h); err != nil {
		return err
	}
	return a.ctx.drv.AllocationCopy2DRange(a.handle, x, y, a.lod, a.face, w, h,
		src.handle, srcX, srcY, src.lod, src.face)
}

// Resize changes the X dimension of a 1D allocation, keeping the
// overlapping elements. A new Type is minted for the allocation.
//
// Adapters, allocations viewed by adapters, 2D/3D, mipmapped and cube map
// allocations, and allocations with IO or Shared usage fail with
// ErrNotResizable.
func (a *Allocation) Resize(x uint32) error {
	return a.resize(x, 0, false)
}

// Resize2D changes both dimensions of a 2D allocation, keeping the
// overlapping rectangle. The restrictions of Resize apply.
func (a *Allocation) Resize2D(x, y uint32) error {
	return a.resize(x, y, true)
}

func (a *Allocation) resize(x, y uint32, twoD bool) error {
	if err := a.valid(); err != nil {
		return err
	}
	t := a.typ
	switch {
	case a.base != nil:
		return fmt.Errorf("%w: adapters cannot be resized", ErrNotResizable)
	case a.views > 0:
		return fmt.Errorf("%w: %d adapters view the allocation", ErrNotResizable, a.views)
	case t.dims.Z > 0 || t.faces || t.mipmaps:
		return fmt.Errorf("%w: only plain 1D and 2D allocations resize", ErrNotResizable)
	case !twoD && t.dims.Y > 0:
		return fmt.Errorf("%w: 2D allocation, use Resize2D", ErrNotResizable)
	case twoD && t.dims.Y == 0:
		return fmt.Errorf("%w: 1D allocation, use Resize", ErrNotResizable)
	case a.usage&(driver.UsageIOInput|driver.UsageIOOutput|driver.UsageShared) != 0:
		return fmt.Errorf("%w: usage %v", ErrNotResizable, a.usage)
	case x < 1 || (twoD && y < 1):
		return fmt.Errorf("%w: resize to %dx%d", ErrInvalidDimensions, x, y)
	}

	nt, err := NewTypeBuilder(a.ctx, t.elem).SetX(x).SetY(y).Create()
	if err != nil {
		return err
	}
	if err := a.ctx.drv.AllocationResize(a.handle, nt.handle); err != nil {
		nt.Destroy()
		return err
	}
	a.typ = nt
	a.cur = nt.dims
	t.Destroy()
	return nil
}

// GenerateMipmaps fills levels 1..n from level 0.
func (a *Allocation) GenerateMipmaps() error {
	if err := a.checkWrite(); err != nil {
		return err
	}
	t := a.typ
	if a.base != nil {
		t = a.base.typ
	}
	if !t.mipmaps {
		return fmt.Errorf("%w: cannot generate mipmaps", ErrNoMipmaps)
	}
	return a.ctx.drv.AllocationGenerateMipmaps(a.handle)
}

// SyncAll propagates the copy held by src to every other usage domain.
// src must be exactly one of UsageScript, UsageGraphicsTexture,
// UsageGraphicsVertex or UsageGraphicsConstants and must be part of the
// allocation's usage.
func (a *Allocation) SyncAll(src Usage) error {
	if err := a.valid(); err != nil {
		return err
	}
	switch src {
	case driver.UsageScript, driver.UsageGraphicsTexture,
		driver.UsageGraphicsVertex, driver.UsageGraphicsConstants:
	default:
		return fmt.Errorf("%w: sync source must be exactly one of Script, GraphicsTexture, GraphicsVertex, GraphicsConstants, got %v",
			ErrInvalidUsage, src)
	}
	if !a.usage.Contains(src) {
		return fmt.Errorf("%w: sync source %v not in usage %v", ErrInvalidUsage, src, a.usage)
	}
	return a.ctx.drv.AllocationSyncAll(a.handle, src)
}

// IOSendOutput hands the current contents to the consumer.
// Requires UsageIOOutput.
func (a *Allocation) IOSendOutput() error {
	if err := a.valid(); err != nil {
		return err
	}
	if !a.usage.Contains(driver.UsageIOOutput) {
		return fmt.Errorf("%w: IOSendOutput requires IOOutput, have %v", ErrInvalidUsage, a.usage)
	}
	return a.ctx.drv.AllocationIOSend(a.handle)
}

// IOGetInput acquires the next buffer from the producer.
// Requires UsageIOInput.
func (a *Allocation) IOGetInput() error {
	if err := a.valid(); err != nil {
		return err
	}
	if !a.usage.Contains(driver.UsageIOInput) {
		return fmt.Errorf("%w: IOGetInput requires IOInput, have %v", ErrInvalidUsage, a.usage)
	}
	return a.ctx.drv.AllocationIOReceive(a.handle)
}
