// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rsc

import (
	"fmt"

	"github.com/gogpu/rsc/driver"
	"github.com/gogpu/rsc/internal/layout"
)

// NewAllocationAdapter creates a view of base spanning every axis of its
// type. The view shares base's storage and keeps base alive until the
// view is destroyed. Level, face and slice are selected with SetLOD,
// SetFace, SetY and SetZ.
func NewAllocationAdapter(base *Allocation) (*Allocation, error) {
	if base == nil {
		return nil, fmt.Errorf("%w: nil base allocation", ErrInvalidArgument)
	}
	d := base.typ.dims
	return newAdapter(base, [3]bool{true, d.Y > 0, d.Z > 0})
}

// NewAllocationAdapter1D creates a view of a single row of base.
// The row and slice are selected with SetY and SetZ.
func NewAllocationAdapter1D(base *Allocation) (*Allocation, error) {
	return newAdapter(base, [3]bool{true, false, false})
}

// NewAllocationAdapter2D creates a view of a single XY plane of base.
// base must have a Y dimension; the slice is selected with SetZ.
func NewAllocationAdapter2D(base *Allocation) (*Allocation, error) {
	return newAdapter(base, [3]bool{true, true, false})
}

func newAdapter(base *Allocation, span [3]bool) (*Allocation, error) {
	if base == nil {
		return nil, fmt.Errorf("%w: nil base allocation", ErrInvalidArgument)
	}
	if err := base.valid(); err != nil {
		return nil, err
	}
	if base.base != nil {
		return nil, fmt.Errorf("%w: base is itself an adapter", ErrInvalidArgument)
	}
	bt := base.typ
	if span[1] && bt.dims.Y == 0 {
		return nil, fmt.Errorf("%w: 2D adapter of a 1D allocation", ErrInvalidDimensions)
	}

	b := NewTypeBuilder(base.ctx, bt.elem).SetX(bt.dims.X)
	if span[1] {
		b.SetY(bt.dims.Y)
	}
	if span[2] {
		b.SetZ(bt.dims.Z)
	}
	wt, err := b.Create()
	if err != nil {
		return nil, err
	}
	h, err := base.ctx.drv.AllocationAdapterCreate(wt.handle, base.handle)
	if err != nil {
		wt.Destroy()
		return nil, fmt.Errorf("rsc: create adapter: %w", err)
	}

	a := &Allocation{
		typ:      wt,
		usage:    base.usage,
		mips:     base.mips,
		writable: base.writable,
		base:     base,
		span:     span,
	}
	a.cur = a.viewDims()
	base.Retain()
	base.views++
	a.onRelease = func() {
		a.typ.Destroy()
		base.views--
		base.Destroy()
	}
	a.init(base.ctx, h, ObjectAllocation)
	return a, nil
}

// IsAdapter reports whether a is a view of another allocation.
func (a *Allocation) IsAdapter() bool { return a.base != nil }

// Base returns the allocation viewed by an adapter, or nil.
func (a *Allocation) Base() *Allocation { return a.base }

// LOD returns the selected mip level.
func (a *Allocation) LOD() uint32 { return a.lod }

// Face returns the selected cube map face.
func (a *Allocation) Face() CubemapFace { return a.face }

// viewDims returns the extent of the selected level restricted to the
// spanned axes.
func (a *Allocation) viewDims() layout.Dims {
	ld := a.base.typ.dims.LOD(a.lod)
	d := layout.Dims{X: ld.X}
	if a.span[1] {
		d.Y = ld.Y
	}
	if a.span[2] {
		d.Z = ld.Z
	}
	return d
}

func (a *Allocation) checkAdapter() error {
	if a.base == nil {
		return ErrNotAdapter
	}
	return a.valid()
}

// SetLOD selects mip level lod. The base type must have mipmaps.
func (a *Allocation) SetLOD(lod uint32) error {
	if err := a.checkAdapter(); err != nil {
		return err
	}
	bt := a.base.typ
	if !bt.mipmaps {
		return fmt.Errorf("%w: cannot select lod %d", ErrNoMipmaps, lod)
	}
	if lod >= bt.shape.Levels {
		return fmt.Errorf("%w: lod %d of %d", ErrOutOfRange, lod, bt.shape.Levels)
	}
	ld := bt.dims.LOD(lod)
	if (!a.span[1] && a.y > 0 && a.y >= ld.Y) || (!a.span[2] && a.z > 0 && a.z >= ld.Z) {
		return fmt.Errorf("%w: selected slice (y=%d, z=%d) outside lod %d", ErrOutOfRange, a.y, a.z, lod)
	}
	prev := a.lod
	a.lod = lod
	if err := a.updateOffsets(); err != nil {
		a.lod = prev
		return err
	}
	return nil
}

// SetFace selects a cube map face. The base type must have faces.
func (a *Allocation) SetFace(face CubemapFace) error {
	if err := a.checkAdapter(); err != nil {
		return err
	}
	if !a.base.typ.faces {
		return fmt.Errorf("%w: type has no faces", ErrInvalidDimensions)
	}
	if face > driver.FaceNegativeZ {
		return fmt.Errorf("%w: face %d", ErrOutOfRange, face)
	}
	prev := a.face
	a.face = face
	if err := a.updateOffsets(); err != nil {
		a.face = prev
		return err
	}
	return nil
}

// SetY selects the row of an adapter that does not span Y.
func (a *Allocation) SetY(y uint32) error {
	if err := a.checkAdapter(); err != nil {
		return err
	}
	ld := a.base.typ.dims.LOD(a.lod)
	switch {
	case ld.Y == 0:
		return fmt.Errorf("%w: base has no Y dimension", ErrInvalidDimensions)
	case a.span[1]:
		return fmt.Errorf("%w: adapter spans Y", ErrInvalidArgument)
	case y >= ld.Y:
		return fmt.Errorf("%w: y %d of %d", ErrOutOfRange, y, ld.Y)
	}
	prev := a.y
	a.y = y
	if err := a.updateOffsets(); err != nil {
		a.y = prev
		return err
	}
	return nil
}

// SetZ selects the slice of an adapter that does not span Z.
func (a *Allocation) SetZ(z uint32) error {
	if err := a.checkAdapter(); err != nil {
		return err
	}
	ld := a.base.typ.dims.LOD(a.lod)
	switch {
	case ld.Z == 0:
		return fmt.Errorf("%w: base has no Z dimension", ErrInvalidDimensions)
	case a.span[2]:
		return fmt.Errorf("%w: adapter spans Z", ErrInvalidArgument)
	case z >= ld.Z:
		return fmt.Errorf("%w: z %d of %d", ErrOutOfRange, z, ld.Z)
	}
	prev := a.z
	a.z = z
	if err := a.updateOffsets(); err != nil {
		a.z = prev
		return err
	}
	return nil
}

// updateOffsets pushes the selection to the runtime and recomputes the
// current dimensions.
func (a *Allocation) updateOffsets() error {
	if err := a.ctx.drv.AllocationAdapterOffset(a.handle, 0, a.y, a.z, a.lod, a.face); err != nil {
		return err
	}
	a.cur = a.viewDims()
	return nil
}
