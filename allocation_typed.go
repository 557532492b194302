// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rsc

import (
	"fmt"

	"golang.org/x/exp/constraints"
	"honnef.co/go/safeish"

	"github.com/gogpu/rsc/driver"
)

// number is the set of Go types with a matching element data type.
type number interface {
	constraints.Integer | constraints.Float
}

func (a *Allocation) validateIs(what string, dts ...driver.DataType) error {
	if !a.typ.elem.isType(dts...) {
		return fmt.Errorf("%w: %v elements cannot be accessed as %s", ErrTypeMismatch, a.typ.elem, what)
	}
	return nil
}

func (a *Allocation) validateIsInt8() error {
	return a.validateIs("int8", driver.DataTypeInt8, driver.DataTypeUint8)
}

func (a *Allocation) validateIsInt16() error {
	return a.validateIs("int16", driver.DataTypeInt16, driver.DataTypeUint16)
}

func (a *Allocation) validateIsInt32() error {
	return a.validateIs("int32", driver.DataTypeInt32, driver.DataTypeUint32)
}

func (a *Allocation) validateIsFloat32() error {
	return a.validateIs("float32", driver.DataTypeFloat32)
}

func (a *Allocation) validateIsObject() error {
	e := a.typ.elem
	if e.IsComplex() || !e.dt.IsObject() {
		return fmt.Errorf("%w: %v elements cannot hold objects", ErrTypeMismatch, e)
	}
	return nil
}

// copyRangeFrom writes vals as the raw bytes of count elements at off.
func copyRangeFrom[T number](a *Allocation, validate func() error, off, count uint32, vals []T) error {
	if err := validate(); err != nil {
		return err
	}
	return a.Copy1DRangeFrom(off, count, safeish.SliceCast[[]byte](vals))
}

// copyRangeTo reads count elements at off into the memory of vals.
func copyRangeTo[T number](a *Allocation, validate func() error, off, count uint32, vals []T) error {
	if err := validate(); err != nil {
		return err
	}
	return a.Copy1DRangeTo(off, count, safeish.SliceCast[[]byte](vals))
}

// Copy1DFromInt8s writes the whole current view from vals.
// The element must be Int8 or Uint8 based.
func (a *Allocation) Copy1DFromInt8s(vals []int8) error {
	return copyRangeFrom(a, a.validateIsInt8, 0, a.CurrentCount(), vals)
}

// Copy1DFromInt16s writes the whole current view from vals.
// The element must be Int16 or Uint16 based.
func (a *Allocation) Copy1DFromInt16s(vals []int16) error {
	return copyRangeFrom(a, a.validateIsInt16, 0, a.CurrentCount(), vals)
}

// Copy1DFromInt32s writes the whole current view from vals.
// The element must be Int32 or Uint32 based.
func (a *Allocation) Copy1DFromInt32s(vals []int32) error {
	return copyRangeFrom(a, a.validateIsInt32, 0, a.CurrentCount(), vals)
}

// Copy1DFromFloat32s writes the whole current view from vals.
// The element must be Float32 based.
func (a *Allocation) Copy1DFromFloat32s(vals []float32) error {
	return copyRangeFrom(a, a.validateIsFloat32, 0, a.CurrentCount(), vals)
}

// Copy1DRangeFromInt32s writes count elements at off from vals.
func (a *Allocation) Copy1DRangeFromInt32s(off, count uint32, vals []int32) error {
	return copyRangeFrom(a, a.validateIsInt32, off, count, vals)
}

// Copy1DRangeFromFloat32s writes count elements at off from vals.
func (a *Allocation) Copy1DRangeFromFloat32s(off, count uint32, vals []float32) error {
	return copyRangeFrom(a, a.validateIsFloat32, off, count, vals)
}

// Copy1DToInt8s reads the whole current view into vals.
func (a *Allocation) Copy1DToInt8s(vals []int8) error {
	return copyRangeTo(a, a.validateIsInt8, 0, a.CurrentCount(), vals)
}

// Copy1DToInt16s reads the whole current view into vals.
func (a *Allocation) Copy1DToInt16s(vals []int16) error {
	return copyRangeTo(a, a.validateIsInt16, 0, a.CurrentCount(), vals)
}

// Copy1DToInt32s reads the whole current view into vals.
func (a *Allocation) Copy1DToInt32s(vals []int32) error {
	return copyRangeTo(a, a.validateIsInt32, 0, a.CurrentCount(), vals)
}

// Copy1DToFloat32s reads the whole current view into vals.
func (a *Allocation) Copy1DToFloat32s(vals []float32) error {
	return copyRangeTo(a, a.validateIsFloat32, 0, a.CurrentCount(), vals)
}

// Copy1DFromObjects stores the handles of objs in an allocation of an
// object element. nil entries store the null handle.
func (a *Allocation) Copy1DFromObjects(objs []Object) error {
	if err := a.validateIsObject(); err != nil {
		return err
	}
	handles := make([]uint32, len(objs))
	for i, o := range objs {
		if err := a.sameContext(o); err != nil {
			return err
		}
		handles[i] = uint32(handleOf(o))
	}
	return a.Copy1DFrom(safeish.SliceCast[[]byte](handles))
}
