// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package layout computes the memory layout of elements and types.
//
// The client and every driver share these rules so that offsets computed
// on one side address the same bytes on the other.
package layout

import (
	"errors"
	"math"
	"math/bits"

	"golang.org/x/exp/constraints"

	"github.com/gogpu/rsc/driver"
)

// MaxAlignment is the largest alignment any field is given.
const MaxAlignment = 16

// ErrOverflow is returned when a size does not fit in 32 bits.
var ErrOverflow = errors.New("layout: size overflows uint32")

// Mul32 returns a*b and reports whether the product fits in 32 bits.
func Mul32(a, b uint32) (uint32, bool) {
	p := uint64(a) * uint64(b)
	return uint32(p), p <= math.MaxUint32
}

// ObjectSize is the size of an object handle stored inside an element.
const ObjectSize = 4

// ComponentSize returns the size in bytes of a single component of dt.
// Packed pixel types report the size of the packed value.
// Returns 0 for DataTypeNone and unknown types.
func ComponentSize(dt driver.DataType) uint32 {
	switch dt {
	case driver.DataTypeInt8, driver.DataTypeUint8, driver.DataTypeBoolean:
		return 1
	case driver.DataTypeFloat16, driver.DataTypeInt16, driver.DataTypeUint16,
		driver.DataTypeUint565, driver.DataTypeUint5551, driver.DataTypeUint4444:
		return 2
	case driver.DataTypeFloat32, driver.DataTypeInt32, driver.DataTypeUint32:
		return 4
	case driver.DataTypeFloat64, driver.DataTypeInt64, driver.DataTypeUint64:
		return 8
	case driver.DataTypeMatrix4x4:
		return 16 * 4
	case driver.DataTypeMatrix3x3:
		return 9 * 4
	case driver.DataTypeMatrix2x2:
		return 4 * 4
	}
	if dt.IsObject() {
		return ObjectSize
	}
	return 0
}

// StoredComponents returns the number of component slots a vector of
// width n occupies. Three-wide vectors are padded to four.
func StoredComponents(n uint32) uint32 {
	if n == 3 {
		return 4
	}
	return n
}

// VectorSize returns the size in bytes of a vector of n components of dt.
func VectorSize(dt driver.DataType, n uint32) uint32 {
	return ComponentSize(dt) * StoredComponents(n)
}

// PixelChannels returns the number of channels of a pixel kind.
// Returns 0 for non-pixel kinds.
func PixelChannels(dk driver.DataKind) uint32 {
	switch dk {
	case driver.DataKindPixelL, driver.DataKindPixelA,
		driver.DataKindPixelDepth, driver.DataKindPixelYUV:
		return 1
	case driver.DataKindPixelLA:
		return 2
	case driver.DataKindPixelRGB:
		return 3
	case driver.DataKindPixelRGBA:
		return 4
	}
	return 0
}

// PixelSize returns the size in bytes of a pixel of type dt and kind dk.
// Packed types store every channel in one value; other types store one
// component per channel without padding.
func PixelSize(dt driver.DataType, dk driver.DataKind) uint32 {
	if dt.IsPacked() {
		return ComponentSize(dt)
	}
	return ComponentSize(dt) * PixelChannels(dk)
}

// NextPow2 returns the smallest power of two >= x. NextPow2(0) is 1.
func NextPow2[T constraints.Unsigned](x T) T {
	if x <= 1 {
		return 1
	}
	return T(1) << bits.Len64(uint64(x-1))
}

// AlignUp rounds x up to the next multiple of align.
// align must be non-zero.
func AlignUp[T constraints.Integer](x, align T) T {
	r := x % align
	if r == 0 {
		return x
	}
	return x + align - r
}

// IsPow2 reports whether x is a power of two.
func IsPow2[T constraints.Integer](x T) bool {
	return x > 0 && x&(x-1) == 0
}

// Alignment returns the natural alignment of a primitive or vector
// field of the given size.
func Alignment(size uint32) uint32 {
	return min(NextPow2(size), MaxAlignment)
}

// Field is one member of a structured element.
type Field struct {
	// Size is the size of a single array item in bytes.
	Size uint32
	// Align is the required alignment of the field.
	Align uint32
	// ArraySize is the number of items. Values below 1 are treated as 1.
	ArraySize uint32
}

// Struct is the computed layout of a structured element.
type Struct struct {
	// Offsets holds the byte offset of every field, in field order.
	Offsets []uint32
	// Size is the total size including tail padding.
	Size uint32
	// Align is the alignment of the whole struct.
	Align uint32
}

// Pack lays out fields in order. Each field starts at the next multiple
// of its alignment and the total size is padded to the largest alignment.
// Pack fails with ErrOverflow if the padded size exceeds 32 bits.
func Pack(fields []Field) (Struct, error) {
	s := Struct{
		Offsets: make([]uint32, len(fields)),
		Align:   1,
	}
	var cursor uint64
	for i, f := range fields {
		align := max(f.Align, 1)
		cursor = AlignUp(cursor, uint64(align))
		if cursor > math.MaxUint32 {
			return Struct{}, ErrOverflow
		}
		s.Offsets[i] = uint32(cursor)
		cursor += uint64(f.Size) * uint64(max(f.ArraySize, 1))
		s.Align = max(s.Align, align)
	}
	cursor = AlignUp(cursor, uint64(s.Align))
	if cursor > math.MaxUint32 {
		return Struct{}, ErrOverflow
	}
	s.Size = uint32(cursor)
	return s, nil
}

// ElementAlign returns the alignment of a non-structured element of the
// given size. Pixels align to their component, everything else to
// Alignment(size).
func ElementAlign(dt driver.DataType, dk driver.DataKind, size uint32) uint32 {
	if dk.IsPixel() {
		return max(ComponentSize(dt), 1)
	}
	return Alignment(size)
}

// ElementSize returns the size in bytes of a non-structured element.
func ElementSize(dt driver.DataType, dk driver.DataKind, vectorSize uint32) uint32 {
	if dk.IsPixel() {
		return PixelSize(dt, dk)
	}
	return VectorSize(dt, max(vectorSize, 1))
}
