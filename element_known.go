// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rsc

import (
	"fmt"

	"github.com/gogpu/rsc/driver"
)

// KnownElement names one of the well-known elements a Context caches.
type KnownElement int

// Well-known elements.
const (
	ElementU8 KnownElement = iota
	ElementI8
	ElementU16
	ElementI16
	ElementU32
	ElementI32
	ElementU64
	ElementI64
	ElementF16
	ElementF32
	ElementF64
	ElementBoolean

	ElementElement
	ElementType
	ElementAllocation
	ElementSampler
	ElementScript
	ElementMesh
	ElementProgramFragment
	ElementProgramVertex
	ElementProgramRaster
	ElementProgramStore
	ElementFont

	ElementA8
	ElementRGB565
	ElementRGB888
	ElementRGBA5551
	ElementRGBA4444
	ElementRGBA8888

	ElementF32x2
	ElementF32x3
	ElementF32x4
	ElementF64x2
	ElementF64x3
	ElementF64x4
	ElementU8x2
	ElementU8x3
	ElementU8x4
	ElementI8x2
	ElementI8x3
	ElementI8x4
	ElementU16x2
	ElementU16x3
	ElementU16x4
	ElementI16x2
	ElementI16x3
	ElementI16x4
	ElementU32x2
	ElementU32x3
	ElementU32x4
	ElementI32x2
	ElementI32x3
	ElementI32x4
	ElementU64x2
	ElementU64x3
	ElementU64x4
	ElementI64x2
	ElementI64x3
	ElementI64x4

	ElementMatrix4x4
	ElementMatrix3x3
	ElementMatrix2x2

	knownElementCount
)

// knownSpec is the recipe of a well-known element.
type knownSpec struct {
	name string
	dt   driver.DataType
	dk   driver.DataKind
	n    uint32
}

var knownElements = func() [knownElementCount]knownSpec {
	var t [knownElementCount]knownSpec
	scalar := func(k KnownElement, name string, dt driver.DataType) {
		t[k] = knownSpec{name: name, dt: dt, dk: driver.DataKindUser, n: 1}
	}
	pixel := func(k KnownElement, name string, dt driver.DataType, dk driver.DataKind) {
		t[k] = knownSpec{name: name, dt: dt, dk: dk}
	}
	vectors := func(k KnownElement, name string, dt driver.DataType) {
		for n := uint32(2); n <= 4; n++ {
			t[k+KnownElement(n-2)] = knownSpec{name: fmt.Sprintf("%s_%d", name, n), dt: dt, dk: driver.DataKindUser, n: n}
		}
	}

	scalar(ElementU8, "U8", driver.DataTypeUint8)
	scalar(ElementI8, "I8", driver.DataTypeInt8)
	scalar(ElementU16, "U16", driver.DataTypeUint16)
	scalar(ElementI16, "I16", driver.DataTypeInt16)
	scalar(ElementU32, "U32", driver.DataTypeUint32)
	scalar(ElementI32, "I32", driver.DataTypeInt32)
	scalar(ElementU64, "U64", driver.DataTypeUint64)
	scalar(ElementI64, "I64", driver.DataTypeInt64)
	scalar(ElementF16, "F16", driver.DataTypeFloat16)
	scalar(ElementF32, "F32", driver.DataTypeFloat32)
	scalar(ElementF64, "F64", driver.DataTypeFloat64)
	scalar(ElementBoolean, "BOOLEAN", driver.DataTypeBoolean)

	scalar(ElementElement, "ELEMENT", driver.DataTypeElement)
	scalar(ElementType, "TYPE", driver.DataTypeType)
	scalar(ElementAllocation, "ALLOCATION", driver.DataTypeAllocation)
	scalar(ElementSampler, "SAMPLER", driver.DataTypeSampler)
	scalar(ElementScript, "SCRIPT", driver.DataTypeScript)
	scalar(ElementMesh, "MESH", driver.DataTypeMesh)
	scalar(ElementProgramFragment, "PROGRAM_FRAGMENT", driver.DataTypeProgramFragment)
	scalar(ElementProgramVertex, "PROGRAM_VERTEX", driver.DataTypeProgramVertex)
	scalar(ElementProgramRaster, "PROGRAM_RASTER", driver.DataTypeProgramRaster)
	scalar(ElementProgramStore, "PROGRAM_STORE", driver.DataTypeProgramStore)
	scalar(ElementFont, "FONT", driver.DataTypeFont)

	pixel(ElementA8, "A_8", driver.DataTypeUint8, driver.DataKindPixelA)
	pixel(ElementRGB565, "RGB_565", driver.DataTypeUint565, driver.DataKindPixelRGB)
	pixel(ElementRGB888, "RGB_888", driver.DataTypeUint8, driver.DataKindPixelRGB)
	pixel(ElementRGBA5551, "RGBA_5551", driver.DataTypeUint5551, driver.DataKindPixelRGBA)
	pixel(ElementRGBA4444, "RGBA_4444", driver.DataTypeUint4444, driver.DataKindPixelRGBA)
	pixel(ElementRGBA8888, "RGBA_8888", driver.DataTypeUint8, driver.DataKindPixelRGBA)

	vectors(ElementF32x2, "F32", driver.DataTypeFloat32)
	vectors(ElementF64x2, "F64", driver.DataTypeFloat64)
	vectors(ElementU8x2, "U8", driver.DataTypeUint8)
	vectors(ElementI8x2, "I8", driver.DataTypeInt8)
	vectors(ElementU16x2, "U16", driver.DataTypeUint16)
	vectors(ElementI16x2, "I16", driver.DataTypeInt16)
	vectors(ElementU32x2, "U32", driver.DataTypeUint32)
	vectors(ElementI32x2, "I32", driver.DataTypeInt32)
	vectors(ElementU64x2, "U64", driver.DataTypeUint64)
	vectors(ElementI64x2, "I64", driver.DataTypeInt64)

	scalar(ElementMatrix4x4, "MATRIX_4X4", driver.DataTypeMatrix4x4)
	scalar(ElementMatrix3x3, "MATRIX_3X3", driver.DataTypeMatrix3x3)
	scalar(ElementMatrix2x2, "MATRIX_2X2", driver.DataTypeMatrix2x2)
	return t
}()

// KnownElements returns every well-known element in declaration order.
func KnownElements() []KnownElement {
	ks := make([]KnownElement, knownElementCount)
	for i := range ks {
		ks[i] = KnownElement(i)
	}
	return ks
}

// String returns the conventional name, e.g. "U8_4" or "RGBA_8888".
func (k KnownElement) String() string {
	if k < 0 || k >= knownElementCount {
		return fmt.Sprintf("KnownElement(%d)", int(k))
	}
	return knownElements[k].name
}

// create mints a fresh element for k.
func (k KnownElement) create(ctx *Context) (*Element, error) {
	if k < 0 || k >= knownElementCount {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, k)
	}
	s := knownElements[k]
	switch {
	case s.dk.IsPixel():
		return NewPixelElement(ctx, s.dt, s.dk)
	case s.n > 1:
		return NewVectorElement(ctx, s.dt, s.n)
	default:
		return NewUserElement(ctx, s.dt)
	}
}

// Element returns the well-known element k. Repeated calls return the
// same *Element. The element is owned by the context: Destroy on it is
// ignored and Close releases it.
func (c *Context) Element(k KnownElement) (*Element, error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	return c.elements.GetOrCreate(k, func() (*Element, error) {
		e, err := k.create(c)
		if err != nil {
			return nil, err
		}
		e.pinned = true
		return e, nil
	})
}

// knownElement is Element with the element name in the error.
func (c *Context) knownElement(k KnownElement) (*Element, error) {
	e, err := c.Element(k)
	if err != nil {
		return nil, fmt.Errorf("rsc: element %v: %w", k, err)
	}
	return e, nil
}
