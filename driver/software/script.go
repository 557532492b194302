// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package software

import (
	"fmt"
	"maps"
	"slices"

	"github.com/gogpu/rsc/driver"
)

// sampler is the runtime record of a sampler.
type sampler struct {
	desc driver.SamplerDesc
}

// Launch records one kernel launch.
type Launch struct {
	Slot   uint32
	In     driver.Handle
	Out    driver.Handle
	Params []byte
}

// Invocation records one call of an invokable function.
type Invocation struct {
	Slot   uint32
	Params []byte
}

// script is the runtime record of a script or intrinsic.
type script struct {
	name      string
	code      []byte
	intrinsic driver.IntrinsicID
	element   driver.Handle
	vars      map[uint32][]byte
	objects   map[uint32]driver.Handle
	bound     map[uint32]driver.Handle
	launches  []Launch
	invokes   []Invocation
}

func newScript() *script {
	return &script{
		vars:    make(map[uint32][]byte),
		objects: make(map[uint32]driver.Handle),
		bound:   make(map[uint32]driver.Handle),
	}
}

// SamplerCreate creates a sampler.
func (d *Driver) SamplerCreate(desc driver.SamplerDesc) (driver.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.usable(); err != nil {
		return driver.InvalidHandle, err
	}
	return d.insert(&sampler{desc: desc}), nil
}

// SamplerDesc returns the configuration of the sampler named by h.
func (d *Driver) SamplerDesc(h driver.Handle) (driver.SamplerDesc, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	s, err := lookup[sampler](d, h)
	if err != nil {
		return driver.SamplerDesc{}, false
	}
	return s.desc, true
}

// ScriptCCreate creates a script from compiled code. The code is kept but
// never executed.
func (d *Driver) ScriptCCreate(name, cacheDir string, code []byte) (driver.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.usable(); err != nil {
		return driver.InvalidHandle, err
	}
	if len(code) == 0 {
		return driver.InvalidHandle, fmt.Errorf("software: script %q has no code", name)
	}
	s := newScript()
	s.name = name
	s.code = slices.Clone(code)
	d.log().Debug("software script created", "name", name, "codeBytes", len(code), "cacheDir", cacheDir)
	return d.insert(s), nil
}

// ScriptIntrinsicCreate creates a built-in kernel.
func (d *Driver) ScriptIntrinsicCreate(id driver.IntrinsicID, elem driver.Handle) (driver.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := lookup[element](d, elem); err != nil {
		return driver.InvalidHandle, err
	}
	s := newScript()
	s.name = id.String()
	s.intrinsic = id
	s.element = elem
	return d.insert(s), nil
}

// ScriptForEach records a kernel launch. At least one of in and out must
// name an allocation.
func (d *Driver) ScriptForEach(h driver.Handle, slot uint32, in, out driver.Handle, params []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, err := lookup[script](d, h)
	if err != nil {
		return err
	}
	if !in.IsValid() && !out.IsValid() {
		return fmt.Errorf("software: forEach on slot %d without allocations", slot)
	}
	for _, a := range []driver.Handle{in, out} {
		if !a.IsValid() {
			continue
		}
		if _, err := lookup[allocation](d, a); err != nil {
			return err
		}
	}
	s.launches = append(s.launches, Launch{Slot: slot, In: in, Out: out, Params: slices.Clone(params)})
	return nil
}

// ScriptBindAllocation binds an allocation to a pointer slot. An invalid
// handle unbinds the slot.
func (d *Driver) ScriptBindAllocation(h driver.Handle, a driver.Handle, slot uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, err := lookup[script](d, h)
	if err != nil {
		return err
	}
	if !a.IsValid() {
		delete(s.bound, slot)
		return nil
	}
	if _, err := lookup[allocation](d, a); err != nil {
		return err
	}
	s.bound[slot] = a
	return nil
}

// ScriptSetVar stores the raw bytes of a variable.
func (d *Driver) ScriptSetVar(h driver.Handle, slot uint32, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, err := lookup[script](d, h)
	if err != nil {
		return err
	}
	s.vars[slot] = slices.Clone(data)
	return nil
}

// ScriptSetVarObj stores an object variable. An invalid handle clears it.
func (d *Driver) ScriptSetVarObj(h driver.Handle, slot uint32, obj driver.Handle) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, err := lookup[script](d, h)
	if err != nil {
		return err
	}
	if !obj.IsValid() {
		delete(s.objects, slot)
		return nil
	}
	if _, ok := d.objects[obj]; !ok {
		return fmt.Errorf("%w: %d", driver.ErrInvalidHandle, obj)
	}
	s.objects[slot] = obj
	return nil
}

// ScriptInvoke records a call of an invokable function.
func (d *Driver) ScriptInvoke(h driver.Handle, slot uint32, params []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, err := lookup[script](d, h)
	if err != nil {
		return err
	}
	if s.intrinsic != 0 {
		return fmt.Errorf("%w: invoke on intrinsic %v", driver.ErrNotImplemented, s.intrinsic)
	}
	s.invokes = append(s.invokes, Invocation{Slot: slot, Params: slices.Clone(params)})
	return nil
}

// ScriptState is a snapshot of everything recorded for a script.
type ScriptState struct {
	Name        string
	Code        []byte
	Intrinsic   driver.IntrinsicID
	Element     driver.Handle
	Vars        map[uint32][]byte
	Objects     map[uint32]driver.Handle
	Bound       map[uint32]driver.Handle
	Launches    []Launch
	Invocations []Invocation
}

// ScriptState returns a snapshot of the script named by h.
func (d *Driver) ScriptState(h driver.Handle) (ScriptState, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	s, err := lookup[script](d, h)
	if err != nil {
		return ScriptState{}, false
	}
	vars := make(map[uint32][]byte, len(s.vars))
	for k, v := range s.vars {
		vars[k] = slices.Clone(v)
	}
	return ScriptState{
		Name:        s.name,
		Code:        slices.Clone(s.code),
		Intrinsic:   s.intrinsic,
		Element:     s.element,
		Vars:        vars,
		Objects:     maps.Clone(s.objects),
		Bound:       maps.Clone(s.bound),
		Launches:    slices.Clone(s.launches),
		Invocations: slices.Clone(s.invokes),
	}, true
}
