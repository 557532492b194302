// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package software

import (
	"fmt"

	"github.com/gogpu/rsc/driver"
	"github.com/gogpu/rsc/internal/layout"
)

// element is the runtime record of an element.
type element struct {
	dt         driver.DataType
	dk         driver.DataKind
	normalized bool
	vectorSize uint32
	size       uint32
	align      uint32
	complex    bool
}

// typ is the runtime record of a type.
type typ struct {
	elem    *element
	dims    layout.Dims
	mipmaps bool
	faces   bool
}

func (t *typ) shape() layout.Shape {
	return layout.NewShape(t.dims, t.mipmaps, t.faces)
}

// ElementCreate creates a primitive, vector or pixel element.
func (d *Driver) ElementCreate(dt driver.DataType, dk driver.DataKind, normalized bool, vectorSize uint32) (driver.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.usable(); err != nil {
		return driver.InvalidHandle, err
	}
	size := layout.ElementSize(dt, dk, vectorSize)
	if size == 0 {
		return driver.InvalidHandle, fmt.Errorf("software: element of data type %v has no size", dt)
	}
	e := &element{
		dt:         dt,
		dk:         dk,
		normalized: normalized,
		vectorSize: vectorSize,
		size:       size,
		align:      layout.ElementAlign(dt, dk, size),
	}
	return d.insert(e), nil
}

// ElementCreateComplex creates a structured element.
func (d *Driver) ElementCreateComplex(subs []driver.Handle, names []string, arraySizes []uint32) (driver.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(subs) != len(names) || len(subs) != len(arraySizes) {
		return driver.InvalidHandle, fmt.Errorf("software: complex element with %d subs, %d names, %d array sizes",
			len(subs), len(names), len(arraySizes))
	}
	fields := make([]layout.Field, len(subs))
	for i, h := range subs {
		sub, err := lookup[element](d, h)
		if err != nil {
			return driver.InvalidHandle, err
		}
		fields[i] = layout.Field{Size: sub.size, Align: sub.align, ArraySize: arraySizes[i]}
	}
	s, err := layout.Pack(fields)
	if err != nil {
		return driver.InvalidHandle, fmt.Errorf("software: complex element: %w", err)
	}
	e := &element{
		dt:         driver.DataTypeNone,
		dk:         driver.DataKindUser,
		vectorSize: 1,
		size:       s.Size,
		align:      s.Align,
		complex:    true,
	}
	return d.insert(e), nil
}

// TypeCreate binds an element to dimensions.
func (d *Driver) TypeCreate(elem driver.Handle, x, y, z uint32, mipmaps, faces bool) (driver.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, err := lookup[element](d, elem)
	if err != nil {
		return driver.InvalidHandle, err
	}
	if x == 0 {
		return driver.InvalidHandle, fmt.Errorf("software: type with zero X dimension")
	}
	t := &typ{
		elem:    e,
		dims:    layout.Dims{X: x, Y: y, Z: z},
		mipmaps: mipmaps,
		faces:   faces,
	}
	return d.insert(t), nil
}
