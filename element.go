// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rsc

import (
	"fmt"
	"strings"

	"github.com/gogpu/rsc/driver"
	"github.com/gogpu/rsc/internal/layout"
)

// hiddenPrefix marks sub-elements that occupy bytes but are not listed.
const hiddenPrefix = "#"

// paddingPrefix names explicit padding entries.
const paddingPrefix = "#padding_"

// Element describes the layout of one cell of an Allocation: a scalar,
// a vector, a pixel or a structure of named sub-elements.
//
// Elements are immutable once created.
type Element struct {
	object

	dt         driver.DataType
	dk         driver.DataKind
	normalized bool
	vectorSize uint32
	size       uint32
	align      uint32

	subs    []subElement
	visible []int
}

// subElement is one member of a structured element.
type subElement struct {
	elem      *Element
	name      string
	arraySize uint32
	offset    uint32
}

// NewUserElement creates a scalar element of data type dt.
// Matrix and object types are accepted; packed pixel types are not.
func NewUserElement(ctx *Context, dt DataType) (*Element, error) {
	if dt == driver.DataTypeNone || dt.IsPacked() || layout.ComponentSize(dt) == 0 {
		return nil, fmt.Errorf("%w: %v is not a user data type", ErrInvalidArgument, dt)
	}
	return newElement(ctx, dt, driver.DataKindUser, false, 1)
}

// NewVectorElement creates a vector of n ∈ {2, 3, 4} components of dt.
// dt must be a numeric or boolean scalar type.
func NewVectorElement(ctx *Context, dt DataType, n uint32) (*Element, error) {
	if n < 2 || n > 4 {
		return nil, fmt.Errorf("%w: vector size %d not in [2, 4]", ErrInvalidArgument, n)
	}
	if dt < driver.DataTypeFloat16 || dt > driver.DataTypeBoolean {
		return nil, fmt.Errorf("%w: %v cannot form a vector", ErrInvalidArgument, dt)
	}
	return newElement(ctx, dt, driver.DataKindUser, false, n)
}

// NewPixelElement creates a normalized pixel element.
//
// Valid combinations: dt ∈ {Uint8, Uint16, Uint565, Uint5551, Uint4444}
// and dk ∈ {L, A, LA, RGB, RGBA, Depth, YUV}, where Uint565 requires RGB,
// Uint5551 and Uint4444 require RGBA and Uint16 requires Depth.
func NewPixelElement(ctx *Context, dt DataType, dk DataKind) (*Element, error) {
	if !dk.IsPixel() {
		return nil, fmt.Errorf("%w: %v is not a pixel kind", ErrInvalidArgument, dk)
	}
	var want driver.DataKind
	switch dt {
	case driver.DataTypeUint8:
	case driver.DataTypeUint16:
		want = driver.DataKindPixelDepth
	case driver.DataTypeUint565:
		want = driver.DataKindPixelRGB
	case driver.DataTypeUint5551, driver.DataTypeUint4444:
		want = driver.DataKindPixelRGBA
	default:
		return nil, fmt.Errorf("%w: %v is not a pixel data type", ErrInvalidArgument, dt)
	}
	if want != driver.DataKindUser && dk != want {
		return nil, fmt.Errorf("%w: %v pixels require kind %v, got %v", ErrInvalidArgument, dt, want, dk)
	}
	return newElement(ctx, dt, dk, true, layout.PixelChannels(dk))
}

func newElement(ctx *Context, dt driver.DataType, dk driver.DataKind, normalized bool, vectorSize uint32) (*Element, error) {
	if err := ctx.check(); err != nil {
		return nil, err
	}
	size := layout.ElementSize(dt, dk, vectorSize)
	h, err := ctx.drv.ElementCreate(dt, dk, normalized, vectorSize)
	if err != nil {
		return nil, fmt.Errorf("rsc: create element: %w", err)
	}
	e := &Element{
		dt:         dt,
		dk:         dk,
		normalized: normalized,
		vectorSize: vectorSize,
		size:       size,
		align:      layout.ElementAlign(dt, dk, size),
	}
	e.init(ctx, h, ObjectElement)
	return e, nil
}

// DataType returns the data type. Structured elements report DataTypeNone.
func (e *Element) DataType() DataType { return e.dt }

// DataKind returns the data kind.
func (e *Element) DataKind() DataKind { return e.dk }

// IsNormalized reports whether integer components map to [0, 1].
func (e *Element) IsNormalized() bool { return e.normalized }

// VectorSize returns the number of components.
func (e *Element) VectorSize() uint32 { return e.vectorSize }

// SizeBytes returns the size of one element including padding.
func (e *Element) SizeBytes() uint32 { return e.size }

// Alignment returns the alignment the element requires inside a structure.
func (e *Element) Alignment() uint32 { return e.align }

// IsComplex reports whether the element is a structure.
func (e *Element) IsComplex() bool { return len(e.subs) > 0 }

// SubElementCount returns the number of visible sub-elements.
func (e *Element) SubElementCount() int { return len(e.visible) }

func (e *Element) visibleSub(i int) (*subElement, error) {
	if i < 0 || i >= len(e.visible) {
		return nil, fmt.Errorf("%w: sub-element %d of %d", ErrIndexOutOfRange, i, len(e.visible))
	}
	return &e.subs[e.visible[i]], nil
}

// SubElement returns the i-th visible sub-element.
func (e *Element) SubElement(i int) (*Element, error) {
	s, err := e.visibleSub(i)
	if err != nil {
		return nil, err
	}
	return s.elem, nil
}

// SubElementName returns the name of the i-th visible sub-element.
func (e *Element) SubElementName(i int) (string, error) {
	s, err := e.visibleSub(i)
	if err != nil {
		return "", err
	}
	return s.name, nil
}

// SubElementArraySize returns the array size of the i-th visible
// sub-element.
func (e *Element) SubElementArraySize(i int) (uint32, error) {
	s, err := e.visibleSub(i)
	if err != nil {
		return 0, err
	}
	return s.arraySize, nil
}

// SubElementOffsetBytes returns the byte offset of the i-th visible
// sub-element.
func (e *Element) SubElementOffsetBytes(i int) (uint32, error) {
	s, err := e.visibleSub(i)
	if err != nil {
		return 0, err
	}
	return s.offset, nil
}

// IsCompatible reports whether data laid out for other can be copied
// into e: same data type, kind, normalization, vector size and size.
// Structures are compared member by member.
func (e *Element) IsCompatible(other *Element) bool {
	if other == nil {
		return false
	}
	if e == other {
		return true
	}
	if e.dt != other.dt || e.dk != other.dk || e.normalized != other.normalized ||
		e.vectorSize != other.vectorSize || e.size != other.size ||
		len(e.subs) != len(other.subs) {
		return false
	}
	for i := range e.subs {
		a, b := &e.subs[i], &other.subs[i]
		if a.name != b.name || a.arraySize != b.arraySize || a.offset != b.offset ||
			!a.elem.IsCompatible(b.elem) {
			return false
		}
	}
	return true
}

// String returns a short description such as "Uint8_4" or "struct{a,b}".
func (e *Element) String() string {
	if e.IsComplex() {
		names := make([]string, 0, len(e.visible))
		for _, i := range e.visible {
			names = append(names, e.subs[i].name)
		}
		return "struct{" + strings.Join(names, ",") + "}"
	}
	s := e.dt.String()
	if e.dk.IsPixel() {
		s += "_" + strings.TrimPrefix(e.dk.String(), "Pixel")
	} else if e.vectorSize > 1 {
		s += fmt.Sprintf("_%d", e.vectorSize)
	}
	return s
}

// isType reports whether e is a non-structured element of one of dts.
func (e *Element) isType(dts ...driver.DataType) bool {
	if e.IsComplex() {
		return false
	}
	for _, dt := range dts {
		if e.dt == dt {
			return true
		}
	}
	return false
}

// ElementBuilder assembles a structured Element.
//
// The first error encountered by Add is kept and returned by Create.
type ElementBuilder struct {
	ctx     *Context
	entries []subElement
	names   map[string]bool
	err     error
}

// NewElementBuilder returns an empty builder.
func NewElementBuilder(ctx *Context) *ElementBuilder {
	return &ElementBuilder{ctx: ctx, names: make(map[string]bool)}
}

// Add appends a member. arraySize must be at least 1 and names must be
// unique. Names beginning with "#" are hidden from the sub-element
// accessors. A "#padding_" member directly after a 3-component vector is
// dropped because the vector already carries that padding.
func (b *ElementBuilder) Add(e *Element, name string, arraySize uint32) *ElementBuilder {
	if b.err != nil {
		return b
	}
	switch {
	case e == nil:
		b.err = fmt.Errorf("%w: nil element for %q", ErrInvalidArgument, name)
	case name == "":
		b.err = fmt.Errorf("%w: empty member name", ErrInvalidArgument)
	case arraySize < 1:
		b.err = fmt.Errorf("%w: array size of %q must be >= 1", ErrInvalidArgument, name)
	case b.names[name]:
		b.err = fmt.Errorf("%w: duplicate member %q", ErrInvalidArgument, name)
	case e.ctx != b.ctx:
		b.err = fmt.Errorf("%w: element of %q belongs to another context", ErrInvalidArgument, name)
	}
	if b.err != nil {
		return b
	}

	if strings.HasPrefix(name, paddingPrefix) && len(b.entries) > 0 {
		prev := b.entries[len(b.entries)-1].elem
		if !prev.IsComplex() && prev.vectorSize == 3 {
			return b
		}
	}
	b.names[name] = true
	b.entries = append(b.entries, subElement{elem: e, name: name, arraySize: arraySize})
	return b
}

// Create finalizes the structure. The builder may not be reused.
func (b *ElementBuilder) Create() (*Element, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.entries) == 0 {
		return nil, fmt.Errorf("%w: structure without members", ErrInvalidArgument)
	}
	if err := b.ctx.check(); err != nil {
		return nil, err
	}

	fields := make([]layout.Field, len(b.entries))
	handles := make([]driver.Handle, len(b.entries))
	names := make([]string, len(b.entries))
	arrays := make([]uint32, len(b.entries))
	for i, s := range b.entries {
		if err := s.elem.valid(); err != nil {
			return nil, err
		}
		fields[i] = layout.Field{Size: s.elem.size, Align: s.elem.align, ArraySize: s.arraySize}
		handles[i] = s.elem.handle
		names[i] = s.name
		arrays[i] = s.arraySize
	}
	st, err := layout.Pack(fields)
	if err != nil {
		return nil, fmt.Errorf("%w: structure size exceeds 4 GiB", ErrInvalidDimensions)
	}

	h, err := b.ctx.drv.ElementCreateComplex(handles, names, arrays)
	if err != nil {
		return nil, fmt.Errorf("rsc: create structure: %w", err)
	}

	e := &Element{
		dt:         driver.DataTypeNone,
		dk:         driver.DataKindUser,
		vectorSize: 1,
		size:       st.Size,
		align:      st.Align,
		subs:       make([]subElement, len(b.entries)),
	}
	for i, s := range b.entries {
		s.offset = st.Offsets[i]
		e.subs[i] = s
		if !strings.HasPrefix(s.name, hiddenPrefix) {
			e.visible = append(e.visible, i)
		}
		s.elem.Retain()
	}
	e.onRelease = func() {
		for _, s := range e.subs {
			s.elem.Destroy()
		}
	}
	e.init(b.ctx, h, ObjectElement)
	return e, nil
}
