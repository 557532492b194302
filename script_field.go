// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rsc

import (
	"fmt"

	"github.com/gogpu/rsc/driver"
)

// ScriptField is an array of structured items shared with scripts: a
// structure element and a 1D allocation of it with Script usage.
//
// Items are written with a FieldPacker sized by NewItemPacker.
type ScriptField struct {
	elem  *Element
	alloc *Allocation
}

// NewScriptField allocates count items of e. UsageScript is always added
// to usage.
func NewScriptField(ctx *Context, e *Element, count uint32, usage Usage) (*ScriptField, error) {
	a, err := NewSizedAllocation(ctx, e, count, usage|driver.UsageScript)
	if err != nil {
		return nil, err
	}
	return &ScriptField{elem: e, alloc: a}, nil
}

// Element returns the item element.
func (f *ScriptField) Element() *Element { return f.elem }

// Type returns the type of the backing allocation.
func (f *ScriptField) Type() *Type { return f.alloc.Type() }

// Allocation returns the backing allocation.
func (f *ScriptField) Allocation() *Allocation { return f.alloc }

// Count returns the number of items.
func (f *ScriptField) Count() uint32 { return f.alloc.CurrentCount() }

// NewItemPacker returns a packer sized for one item.
func (f *ScriptField) NewItemPacker() *FieldPacker {
	return NewFieldPacker(int(f.elem.SizeBytes()))
}

// Set writes item i from the buffer of p.
func (f *ScriptField) Set(i uint32, p *FieldPacker) error {
	if p == nil {
		return fmt.Errorf("%w: nil field packer", ErrInvalidArgument)
	}
	return f.alloc.Copy1DRangeFrom(i, 1, p.Data())
}

// Get reads item i into dst, which must hold one item.
func (f *ScriptField) Get(i uint32, dst []byte) error {
	return f.alloc.Copy1DRangeTo(i, 1, dst)
}

// Bind binds the items to the pointer variable in slot of s.
func (f *ScriptField) Bind(s *Script, slot uint32) error {
	if s == nil {
		return fmt.Errorf("%w: nil script", ErrInvalidArgument)
	}
	return s.BindAllocation(f.alloc, slot)
}

// Destroy releases the backing allocation.
func (f *ScriptField) Destroy() {
	f.alloc.Destroy()
}
