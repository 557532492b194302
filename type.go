// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rsc

import (
	"fmt"

	"github.com/gogpu/rsc/internal/layout"
)

// Type binds an Element to a 1-, 2- or 3-dimensional extent with optional
// mipmap chain and cube map faces.
//
// Types are immutable once created.
type Type struct {
	object

	elem    *Element
	dims    layout.Dims
	mipmaps bool
	faces   bool
	shape   layout.Shape
}

// TypeBuilder assembles a Type.
type TypeBuilder struct {
	ctx     *Context
	elem    *Element
	dims    layout.Dims
	mipmaps bool
	faces   bool
}

// NewTypeBuilder returns a builder for types of element e.
func NewTypeBuilder(ctx *Context, e *Element) *TypeBuilder {
	return &TypeBuilder{ctx: ctx, elem: e}
}

// SetX sets the X dimension. X is required.
func (b *TypeBuilder) SetX(x uint32) *TypeBuilder {
	b.dims.X = x
	return b
}

// SetY sets the Y dimension. 0 leaves Y unused.
func (b *TypeBuilder) SetY(y uint32) *TypeBuilder {
	b.dims.Y = y
	return b
}

// SetZ sets the Z dimension. 0 leaves Z unused.
func (b *TypeBuilder) SetZ(z uint32) *TypeBuilder {
	b.dims.Z = z
	return b
}

// SetMipmaps enables a full mip chain.
func (b *TypeBuilder) SetMipmaps(on bool) *TypeBuilder {
	b.mipmaps = on
	return b
}

// SetFaces makes the type a cube map.
func (b *TypeBuilder) SetFaces(on bool) *TypeBuilder {
	b.faces = on
	return b
}

// Create validates the dimensions and creates the type.
func (b *TypeBuilder) Create() (*Type, error) {
	if b.elem == nil {
		return nil, fmt.Errorf("%w: nil element", ErrInvalidArgument)
	}
	if err := b.elem.valid(); err != nil {
		return nil, err
	}
	if b.elem.ctx != b.ctx {
		return nil, fmt.Errorf("%w: element belongs to another context", ErrInvalidArgument)
	}
	d := b.dims
	switch {
	case d.X < 1:
		return nil, fmt.Errorf("%w: X dimension required", ErrInvalidDimensions)
	case d.Z > 0 && d.Y < 1:
		return nil, fmt.Errorf("%w: Y dimension required when Z is present", ErrInvalidDimensions)
	case b.faces && d.Y < 1:
		return nil, fmt.Errorf("%w: cube maps require 2D types", ErrInvalidDimensions)
	case b.faces && d.Z > 0:
		return nil, fmt.Errorf("%w: cube maps not supported with 3D types", ErrInvalidDimensions)
	}

	shape := layout.NewShape(d, b.mipmaps, b.faces)
	if err := checkTypeSize(shape, b.elem.size); err != nil {
		return nil, err
	}

	h, err := b.ctx.drv.TypeCreate(b.elem.handle, d.X, d.Y, d.Z, b.mipmaps, b.faces)
	if err != nil {
		return nil, fmt.Errorf("rsc: create type: %w", err)
	}
	t := &Type{
		elem:    b.elem,
		dims:    d,
		mipmaps: b.mipmaps,
		faces:   b.faces,
		shape:   shape,
	}
	b.elem.Retain()
	t.onRelease = b.elem.Destroy
	t.init(b.ctx, h, ObjectType)
	return t, nil
}

// checkTypeSize rejects shapes whose cell count, base size or storage
// size does not fit in 32 bits.
func checkTypeSize(s layout.Shape, elemSize uint32) error {
	count, ok := s.CheckedCount()
	if ok {
		_, ok = layout.Mul32(count, elemSize)
	}
	if ok {
		var total uint32
		total, ok = s.CheckedTotalCount()
		if ok {
			_, ok = layout.Mul32(total, elemSize)
		}
	}
	if !ok {
		return fmt.Errorf("%w: %dx%dx%d of %d-byte elements exceeds 4 GiB",
			ErrInvalidDimensions, s.X, s.Y, s.Z, elemSize)
	}
	return nil
}

// NewType creates a type without mipmaps or faces.
func NewType(ctx *Context, e *Element, x, y, z uint32) (*Type, error) {
	return NewTypeBuilder(ctx, e).SetX(x).SetY(y).SetZ(z).Create()
}

// Element returns the element of the type.
func (t *Type) Element() *Element { return t.elem }

// X returns the X dimension.
func (t *Type) X() uint32 { return t.dims.X }

// Y returns the Y dimension, 0 if unused.
func (t *Type) Y() uint32 { return t.dims.Y }

// Z returns the Z dimension, 0 if unused.
func (t *Type) Z() uint32 { return t.dims.Z }

// Dimensions returns X, Y and Z. Unused axes are 0.
func (t *Type) Dimensions() (x, y, z uint32) { return t.dims.X, t.dims.Y, t.dims.Z }

// HasMipmaps reports whether the type has a mip chain.
func (t *Type) HasMipmaps() bool { return t.mipmaps }

// HasFaces reports whether the type is a cube map.
func (t *Type) HasFaces() bool { return t.faces }

// Count returns X × max(Y,1) × max(Z,1), the cell count of the base level
// of one face.
func (t *Type) Count() uint32 { return t.dims.Count() }

// SizeBytes returns Count × element size.
func (t *Type) SizeBytes() uint32 { return t.Count() * t.elem.size }

// StorageBytes returns the size of every level of every face.
func (t *Type) StorageBytes() uint32 { return t.shape.TotalCount() * t.elem.size }

// MipLevels returns the number of levels, 1 without mipmaps.
func (t *Type) MipLevels() uint32 { return t.shape.Levels }

// FaceCount returns 6 for cube maps and 1 otherwise.
func (t *Type) FaceCount() uint32 { return t.shape.Faces }

// LODExtent returns the dimensions of level lod.
func (t *Type) LODExtent(lod uint32) (x, y, z uint32, err error) {
	if lod >= t.shape.Levels {
		return 0, 0, 0, fmt.Errorf("%w: lod %d of %d", ErrOutOfRange, lod, t.shape.Levels)
	}
	d := t.dims.LOD(lod)
	return d.X, d.Y, d.Z, nil
}
