// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package halgpu

import (
	"encoding/binary"
	"fmt"
	"slices"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rsc/driver"
)

// SamplerCreate creates a HAL sampler. The R wrap mode maps to the W
// address mode.
func (d *Driver) SamplerCreate(desc driver.SamplerDesc) (driver.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.usable(); err != nil {
		return driver.InvalidHandle, err
	}
	minF, magF, mipF, err := filterModes(desc.Min, desc.Mag)
	if err != nil {
		return driver.InvalidHandle, err
	}
	var modes [3]gputypes.AddressMode
	for i, v := range []driver.SamplerValue{desc.WrapS, desc.WrapT, desc.WrapR} {
		if modes[i], err = addressMode(v); err != nil {
			return driver.InvalidHandle, err
		}
	}
	raw, err := d.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        fmt.Sprintf("rsc_sampler_%d", d.next.Load()+1),
		AddressModeU: modes[0],
		AddressModeV: modes[1],
		AddressModeW: modes[2],
		MagFilter:    magF,
		MinFilter:    minF,
		MipmapFilter: mipF,
	})
	if err != nil {
		return driver.InvalidHandle, fmt.Errorf("halgpu: create sampler: %w", err)
	}
	return d.insert(&sampler{raw: raw, desc: desc}), nil
}

// Sampler returns the HAL sampler named by h.
func (d *Driver) Sampler(h driver.Handle) (hal.Sampler, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	s, err := lookup[sampler](d, h)
	if err != nil {
		return nil, false
	}
	return s.raw, true
}

// SPIRVWords converts little-endian SPIR-V bytes to 32-bit words.
func SPIRVWords(code []byte) ([]uint32, error) {
	if len(code) == 0 || len(code)%4 != 0 {
		return nil, fmt.Errorf("halgpu: SPIR-V length %d is not a positive multiple of 4", len(code))
	}
	words := make([]uint32, len(code)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(code[i*4:])
	}
	return words, nil
}

// ScriptCCreate loads SPIR-V code as a HAL shader module.
func (d *Driver) ScriptCCreate(name, cacheDir string, code []byte) (driver.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.usable(); err != nil {
		return driver.InvalidHandle, err
	}
	words, err := SPIRVWords(code)
	if err != nil {
		return driver.InvalidHandle, err
	}
	module, err := d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label: name,
		Source: hal.ShaderSource{
			SPIRV: words,
		},
	})
	if err != nil {
		return driver.InvalidHandle, fmt.Errorf("halgpu: create shader module %q: %w", name, err)
	}
	d.log().Debug("halgpu shader module created", "name", name, "words", len(words), "cacheDir", cacheDir)
	return d.insert(newScript(name, module, 0)), nil
}

// ScriptIntrinsicCreate records an intrinsic. HAL has no built-in kernels,
// so intrinsics accept variables and bindings but cannot be launched.
func (d *Driver) ScriptIntrinsicCreate(id driver.IntrinsicID, elem driver.Handle) (driver.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := lookup[element](d, elem); err != nil {
		return driver.InvalidHandle, err
	}
	return d.insert(newScript(id.String(), nil, id)), nil
}

func newScript(name string, module hal.ShaderModule, id driver.IntrinsicID) *script {
	return &script{
		name:      name,
		module:    module,
		intrinsic: id,
		vars:      make(map[uint32][]byte),
		objects:   make(map[uint32]driver.Handle),
		bound:     make(map[uint32]driver.Handle),
	}
}

// ScriptForEach is not available until compute pipelines are wired.
func (d *Driver) ScriptForEach(h driver.Handle, slot uint32, in, out driver.Handle, params []byte) error {
	return fmt.Errorf("%w: forEach", driver.ErrNotImplemented)
}

// ScriptInvoke is not available until compute pipelines are wired.
func (d *Driver) ScriptInvoke(h driver.Handle, slot uint32, params []byte) error {
	return fmt.Errorf("%w: invoke", driver.ErrNotImplemented)
}

// ScriptBindAllocation records a pointer binding.
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

// ScriptSetVar records a variable value.
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

// ScriptSetVarObj records an object variable.
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
	s.objects[slot] = obj
	return nil
}
