// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package halgpu

import (
	"fmt"

	"github.com/gogpu/rsc/driver"
	"github.com/gogpu/rsc/internal/layout"
)

// ElementCreate records a primitive, vector or pixel element.
func (d *Driver) ElementCreate(dt driver.DataType, dk driver.DataKind, normalized bool, vectorSize uint32) (driver.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.usable(); err != nil {
		return driver.InvalidHandle, err
	}
	size := layout.ElementSize(dt, dk, vectorSize)
	if size == 0 {
		return driver.InvalidHandle, fmt.Errorf("halgpu: element of data type %v has no size", dt)
	}
	return d.insert(&element{
		dt:    dt,
		dk:    dk,
		size:  size,
		align: layout.ElementAlign(dt, dk, size),
	}), nil
}

// ElementCreateComplex records a structured element.
func (d *Driver) ElementCreateComplex(subs []driver.Handle, names []string, arraySizes []uint32) (driver.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(subs) != len(names) || len(subs) != len(arraySizes) {
		return driver.InvalidHandle, fmt.Errorf("halgpu: complex element with %d subs, %d names, %d array sizes",
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
		return driver.InvalidHandle, fmt.Errorf("halgpu: complex element: %w", err)
	}
	return d.insert(&element{size: s.Size, align: s.Align, complex: true}), nil
}

// TypeCreate records a type.
func (d *Driver) TypeCreate(elem driver.Handle, x, y, z uint32, mipmaps, faces bool) (driver.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, err := lookup[element](d, elem)
	if err != nil {
		return driver.InvalidHandle, err
	}
	if x == 0 {
		return driver.InvalidHandle, fmt.Errorf("halgpu: type with zero X dimension")
	}
	return d.insert(&typ{
		elem:    e,
		dims:    layout.Dims{X: x, Y: y, Z: z},
		mipmaps: mipmaps,
		faces:   faces,
	}), nil
}
