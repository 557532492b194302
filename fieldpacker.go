// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rsc

import (
	"fmt"

	"honnef.co/go/safeish"

	"github.com/gogpu/rsc/internal/layout"
)

// FieldPacker writes values into a fixed-size byte buffer using the
// runtime's natural alignment: every value is aligned to its own size.
//
// Operations that would leave the buffer (Add past the end, Reset or
// Skip out of range, Align with a non-power of two) are dropped without
// changing the packer. A dropped Add does not apply its alignment either,
// so NewFieldPacker(6) followed by AddU8 and AddU32 leaves Pos at 1, not
// at the aligned offset 4, and the tail stays writable by smaller values.
// A strict packer additionally remembers the first dropped operation in
// Err.
//
// Values are stored in host byte order.
type FieldPacker struct {
	data   []byte
	pos    int
	strict bool
	err    error
}

// NewFieldPacker returns a packer over n zero bytes.
func NewFieldPacker(n int) *FieldPacker {
	return &FieldPacker{data: make([]byte, max(n, 0))}
}

// NewStrictFieldPacker returns a packer that records dropped operations.
func NewStrictFieldPacker(n int) *FieldPacker {
	p := NewFieldPacker(n)
	p.strict = true
	return p
}

// Data returns the whole buffer.
func (p *FieldPacker) Data() []byte { return p.data }

// Len returns the capacity of the buffer.
func (p *FieldPacker) Len() int { return len(p.data) }

// Pos returns the write position.
func (p *FieldPacker) Pos() int { return p.pos }

// Strict reports whether dropped operations are recorded.
func (p *FieldPacker) Strict() bool { return p.strict }

// Err returns the first dropped operation of a strict packer.
// Non-strict packers always return nil.
func (p *FieldPacker) Err() error { return p.err }

func (p *FieldPacker) drop(format string, args ...any) {
	if p.strict && p.err == nil {
		p.err = fmt.Errorf("%w: field packer: "+format, append([]any{ErrOutOfRange}, args...)...)
	}
}

// Align zero-fills up to the next multiple of v. v must be a power of two.
func (p *FieldPacker) Align(v int) {
	if !layout.IsPow2(v) {
		p.drop("align %d is not a power of two", v)
		return
	}
	next := layout.AlignUp(p.pos, v)
	if next > len(p.data) {
		p.drop("align %d at %d passes end %d", v, p.pos, len(p.data))
		return
	}
	clear(p.data[p.pos:next])
	p.pos = next
}

// Reset moves the write position to the start.
func (p *FieldPacker) Reset() { p.pos = 0 }

// ResetTo moves the write position to i, which must be inside the buffer.
func (p *FieldPacker) ResetTo(i int) {
	if i < 0 || i >= len(p.data) {
		p.drop("reset to %d outside [0, %d)", i, len(p.data))
		return
	}
	p.pos = i
}

// Skip advances the write position by i bytes without writing.
func (p *FieldPacker) Skip(i int) {
	res := p.pos + i
	if res < 0 || res > len(p.data) {
		p.drop("skip %d from %d outside [0, %d]", i, p.pos, len(p.data))
		return
	}
	p.pos = res
}

// put aligns to len(b) and writes b if it fits.
func (p *FieldPacker) put(b []byte) {
	n := len(b)
	start := layout.AlignUp(p.pos, n)
	if start+n > len(p.data) {
		p.drop("%d-byte value at %d passes end %d", n, p.pos, len(p.data))
		return
	}
	clear(p.data[p.pos:start])
	copy(p.data[start:], b)
	p.pos = start + n
}

// addValue writes v aligned to its size.
func addValue[T number](p *FieldPacker, v T) {
	p.put(safeish.AsBytes(&v))
}

// AddI8 writes an int8.
func (p *FieldPacker) AddI8(v int8) { addValue(p, v) }

// AddU8 writes a uint8.
func (p *FieldPacker) AddU8(v uint8) { addValue(p, v) }

// AddI16 writes an int16.
func (p *FieldPacker) AddI16(v int16) { addValue(p, v) }

// AddU16 writes a uint16.
func (p *FieldPacker) AddU16(v uint16) { addValue(p, v) }

// AddI32 writes an int32.
func (p *FieldPacker) AddI32(v int32) { addValue(p, v) }

// AddU32 writes a uint32.
func (p *FieldPacker) AddU32(v uint32) { addValue(p, v) }

// AddI64 writes an int64.
func (p *FieldPacker) AddI64(v int64) { addValue(p, v) }

// AddU64 writes a uint64.
func (p *FieldPacker) AddU64(v uint64) { addValue(p, v) }

// AddF32 writes a float32.
func (p *FieldPacker) AddF32(v float32) { addValue(p, v) }

// AddF64 writes a float64.
func (p *FieldPacker) AddF64(v float64) { addValue(p, v) }

// AddBool writes a bool as one byte, 1 for true.
func (p *FieldPacker) AddBool(v bool) {
	var b uint8
	if v {
		b = 1
	}
	addValue(p, b)
}

// AddObject writes the 4-byte handle of obj, 0 for nil.
func (p *FieldPacker) AddObject(obj Object) {
	addValue(p, uint32(handleOf(obj)))
}

// AddFloat32s writes each value of vs in order.
func (p *FieldPacker) AddFloat32s(vs ...float32) {
	for _, v := range vs {
		p.AddF32(v)
	}
}

// AddMatrix4x4 writes a 4×4 float matrix.
func (p *FieldPacker) AddMatrix4x4(m *[16]float32) { p.AddFloat32s(m[:]...) }

// AddMatrix3x3 writes a 3×3 float matrix.
func (p *FieldPacker) AddMatrix3x3(m *[9]float32) { p.AddFloat32s(m[:]...) }

// AddMatrix2x2 writes a 2×2 float matrix.
func (p *FieldPacker) AddMatrix2x2(m *[4]float32) { p.AddFloat32s(m[:]...) }
