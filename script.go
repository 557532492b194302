// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rsc

import (
	"fmt"

	"honnef.co/go/safeish"
)

// Script is a program of the runtime. Kernels are launched over
// allocations with ForEach, invokable functions are called with Invoke
// and global variables are addressed by slot.
type Script struct {
	object
}

// ForEach launches the kernel in slot over in and/or out. At least one
// of them must be non-nil. params may be nil.
func (s *Script) ForEach(slot uint32, in, out *Allocation, params *FieldPacker) error {
	if err := s.valid(); err != nil {
		return err
	}
	if in == nil && out == nil {
		return fmt.Errorf("%w: ForEach needs an input or output allocation", ErrInvalidArgument)
	}
	for _, a := range [...]*Allocation{in, out} {
		if a == nil {
			continue
		}
		if err := a.valid(); err != nil {
			return err
		}
		if err := s.sameContext(a); err != nil {
			return err
		}
	}
	return s.ctx.drv.ScriptForEach(s.handle, slot, handleOf(in), handleOf(out), packed(params))
}

// Invoke calls the invokable function in slot with params, which may be
// nil.
func (s *Script) Invoke(slot uint32, params *FieldPacker) error {
	if err := s.valid(); err != nil {
		return err
	}
	return s.ctx.drv.ScriptInvoke(s.handle, slot, packed(params))
}

// BindAllocation binds a to the pointer variable in slot. A nil a
// unbinds it.
func (s *Script) BindAllocation(a *Allocation, slot uint32) error {
	if err := s.valid(); err != nil {
		return err
	}
	if a != nil {
		if err := a.valid(); err != nil {
			return err
		}
		if err := s.sameContext(a); err != nil {
			return err
		}
	}
	return s.ctx.drv.ScriptBindAllocation(s.handle, handleOf(a), slot)
}

// SetVarBytes sets the variable in slot to the raw bytes of data.
func (s *Script) SetVarBytes(slot uint32, data []byte) error {
	if err := s.valid(); err != nil {
		return err
	}
	return s.ctx.drv.ScriptSetVar(s.handle, slot, data)
}

func setVar[T number](s *Script, slot uint32, v T) error {
	return s.SetVarBytes(slot, safeish.AsBytes(&v))
}

// SetVarInt32 sets an int variable.
func (s *Script) SetVarInt32(slot uint32, v int32) error { return setVar(s, slot, v) }

// SetVarInt64 sets a long variable.
func (s *Script) SetVarInt64(slot uint32, v int64) error { return setVar(s, slot, v) }

// SetVarUint32 sets a uint variable.
func (s *Script) SetVarUint32(slot uint32, v uint32) error { return setVar(s, slot, v) }

// SetVarFloat32 sets a float variable.
func (s *Script) SetVarFloat32(slot uint32, v float32) error { return setVar(s, slot, v) }

// SetVarFloat64 sets a double variable.
func (s *Script) SetVarFloat64(slot uint32, v float64) error { return setVar(s, slot, v) }

// SetVarBool sets a bool variable, stored as a 32-bit 0 or 1.
func (s *Script) SetVarBool(slot uint32, v bool) error {
	var i int32
	if v {
		i = 1
	}
	return setVar(s, slot, i)
}

// SetVarObject sets an object variable. A nil obj clears it.
func (s *Script) SetVarObject(slot uint32, obj Object) error {
	if err := s.valid(); err != nil {
		return err
	}
	if err := s.sameContext(obj); err != nil {
		return err
	}
	return s.ctx.drv.ScriptSetVarObj(s.handle, slot, handleOf(obj))
}

// SetVarPacked sets a structured variable from the buffer of p.
func (s *Script) SetVarPacked(slot uint32, p *FieldPacker) error {
	if p == nil {
		return fmt.Errorf("%w: nil field packer", ErrInvalidArgument)
	}
	return s.SetVarBytes(slot, p.Data())
}

// packed returns the buffer of p, or nil.
func packed(p *FieldPacker) []byte {
	if p == nil {
		return nil
	}
	return p.Data()
}
