// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rsc

import (
	"fmt"

	"github.com/gogpu/naga"
)

// ScriptC is a user script compiled from WGSL.
type ScriptC struct {
	Script

	source string
	code   []byte
}

// NewScriptC compiles wgsl to SPIR-V and loads it into the runtime under
// name. Compiled code may be cached in the context's cache directory.
func NewScriptC(ctx *Context, name, wgsl string) (*ScriptC, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty script name", ErrInvalidArgument)
	}
	if err := ctx.check(); err != nil {
		return nil, err
	}
	code, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("rsc: compile script %q: %w", name, err)
	}
	s, err := newScriptC(ctx, name, code)
	if err != nil {
		return nil, err
	}
	s.source = wgsl
	return s, nil
}

// NewScriptCFromSPIRV loads precompiled SPIR-V under name.
func NewScriptCFromSPIRV(ctx *Context, name string, code []byte) (*ScriptC, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty script name", ErrInvalidArgument)
	}
	if len(code) == 0 || len(code)%4 != 0 {
		return nil, fmt.Errorf("%w: SPIR-V length %d is not a positive multiple of 4", ErrInvalidArgument, len(code))
	}
	if err := ctx.check(); err != nil {
		return nil, err
	}
	return newScriptC(ctx, name, code)
}

func newScriptC(ctx *Context, name string, code []byte) (*ScriptC, error) {
	h, err := ctx.drv.ScriptCCreate(name, ctx.CacheDir(), code)
	if err != nil {
		return nil, fmt.Errorf("rsc: create script %q: %w", name, err)
	}
	s := &ScriptC{code: code}
	s.name = name
	s.init(ctx, h, ObjectScript)
	ctx.drv.AssignName(h, name)
	return s, nil
}

// Source returns the WGSL source, or "" for scripts loaded from SPIR-V.
func (s *ScriptC) Source() string { return s.source }

// Code returns the SPIR-V code.
func (s *ScriptC) Code() []byte { return s.code }
