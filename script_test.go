// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rsc

import (
	"bytes"
	"testing"

	"github.com/gogpu/rsc/driver"
	"github.com/gogpu/rsc/driver/software"
)

var spirvStub = []byte{0x03, 0x02, 0x23, 0x07}

func newTestScript(t *testing.T, ctx *Context) *ScriptC {
	t.Helper()
	s, err := NewScriptCFromSPIRV(ctx, "mono", spirvStub)
	if err != nil {
		t.Fatalf("NewScriptCFromSPIRV() error = %v", err)
	}
	t.Cleanup(s.Destroy)
	return s
}

func scriptState(t *testing.T, md *mockDriver, s Object) software.ScriptState {
	t.Helper()
	st, ok := md.ScriptState(s.Handle())
	if !ok {
		t.Fatalf("script %d unknown to the driver", s.Handle())
	}
	return st
}

func TestScriptCFromSPIRV(t *testing.T) {
	ctx, md := newTestContext(t)
	s := newTestScript(t, ctx)

	if s.Name() != "mono" || s.Source() != "" || !bytes.Equal(s.Code(), spirvStub) {
		t.Errorf("Name=%q Source=%q Code=%v", s.Name(), s.Source(), s.Code())
	}
	st := scriptState(t, md, s)
	if st.Name != "mono" || !bytes.Equal(st.Code, spirvStub) {
		t.Errorf("driver state = %q %v", st.Name, st.Code)
	}
	if got := md.ObjectName(s.Handle()); got != "mono" {
		t.Errorf("driver ObjectName() = %q, want %q", got, "mono")
	}
}

func TestScriptIntrinsicDebugName(t *testing.T) {
	ctx, md := newTestContext(t)
	blur := newIntrinsic(t, ctx, IntrinsicBlur, ElementU8x4)
	if blur.Name() != "Blur" {
		t.Errorf("Name() = %q, want %q", blur.Name(), "Blur")
	}
	if got := md.ObjectName(blur.Handle()); got != "Blur" {
		t.Errorf("driver ObjectName() = %q, want %q", got, "Blur")
	}
}

func TestScriptCErrors(t *testing.T) {
	ctx, _ := newTestContext(t)
	tests := []struct {
		name   string
		script string
		code   []byte
	}{
		{"empty name", "", spirvStub},
		{"no code", "x", nil},
		{"partial word", "x", []byte{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewScriptCFromSPIRV(ctx, tt.script, tt.code)
			wantErr(t, "NewScriptCFromSPIRV()", err, ErrInvalidArgument)
		})
	}

	_, err := NewScriptC(ctx, "", "")
	wantErr(t, "NewScriptC(empty name)", err, ErrInvalidArgument)
}

func TestNewScriptCFromWGSL(t *testing.T) {
	ctx, md := newTestContext(t)
	const src = `
@group(0) @binding(0) var<storage, read_write> data: array<u32, 64>;

@compute @workgroup_size(64)
fn main(@builtin(global_invocation_id) id: vec3<u32>) {
    data[id.x] = data[id.x] * 2u;
}
`
	s, err := NewScriptC(ctx, "double", src)
	if err != nil {
		t.Skipf("Skipping: naga cannot compile the kernel: %v", err)
	}
	defer s.Destroy()

	if s.Source() != src || len(s.Code())%4 != 0 || len(s.Code()) == 0 {
		t.Errorf("Source mismatch or bad code length %d", len(s.Code()))
	}
	if st := scriptState(t, md, s); !bytes.Equal(st.Code, s.Code()) {
		t.Error("driver holds different code")
	}
}

func TestScriptVariables(t *testing.T) {
	ctx, md := newTestContext(t)
	s := newTestScript(t, ctx)
	a := mustSized(t, ctx, ElementU8, 4)

	steps := []struct {
		name string
		err  error
	}{
		{"SetVarInt32", s.SetVarInt32(0, 7)},
		{"SetVarBool", s.SetVarBool(1, true)},
		{"SetVarFloat32", s.SetVarFloat32(2, 1)},
		{"SetVarInt64", s.SetVarInt64(3, -2)},
		{"SetVarObject", s.SetVarObject(4, a)},
		{"SetVarObject(nil)", s.SetVarObject(5, nil)},
	}
	for _, st := range steps {
		if st.err != nil {
			t.Fatalf("%s() error = %v", st.name, st.err)
		}
	}

	st := scriptState(t, md, s)
	wantVars := map[uint32][]byte{
		0: {7, 0, 0, 0},
		1: {1, 0, 0, 0},
		2: {0, 0, 0x80, 0x3f},
		3: {0xfe, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
	}
	for slot, want := range wantVars {
		if !bytes.Equal(st.Vars[slot], want) {
			t.Errorf("var %d = %v, want %v", slot, st.Vars[slot], want)
		}
	}
	if st.Objects[4] != a.Handle() {
		t.Errorf("object 4 = %d, want %d", st.Objects[4], a.Handle())
	}
	if _, ok := st.Objects[5]; ok {
		t.Error("nil object stored in slot 5")
	}

	p := NewFieldPacker(8)
	p.AddI32(3)
	p.AddF32(2)
	if err := s.SetVarPacked(6, p); err != nil {
		t.Fatalf("SetVarPacked() error = %v", err)
	}
	if got := scriptState(t, md, s).Vars[6]; !bytes.Equal(got, p.Data()) {
		t.Errorf("packed var = %v, want %v", got, p.Data())
	}
	wantErr(t, "SetVarPacked(nil)", s.SetVarPacked(6, nil), ErrInvalidArgument)
}

func TestScriptBindAndLaunch(t *testing.T) {
	ctx, md := newTestContext(t)
	s := newTestScript(t, ctx)
	in := mustSized(t, ctx, ElementU8, 4)
	out := mustSized(t, ctx, ElementU8, 4)

	if err := s.BindAllocation(in, 2); err != nil {
		t.Fatalf("BindAllocation() error = %v", err)
	}
	if got := scriptState(t, md, s).Bound[2]; got != in.Handle() {
		t.Errorf("bound slot 2 = %d, want %d", got, in.Handle())
	}
	if err := s.BindAllocation(nil, 2); err != nil {
		t.Fatalf("BindAllocation(nil) error = %v", err)
	}
	if _, ok := scriptState(t, md, s).Bound[2]; ok {
		t.Error("slot 2 still bound after unbinding")
	}

	params := NewFieldPacker(4)
	params.AddU32(9)
	if err := s.ForEach(1, in, out, params); err != nil {
		t.Fatalf("ForEach() error = %v", err)
	}
	if err := s.ForEach(0, nil, out, nil); err != nil {
		t.Fatalf("ForEach(out only) error = %v", err)
	}
	if err := s.Invoke(3, params); err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}

	st := scriptState(t, md, s)
	if len(st.Launches) != 2 {
		t.Fatalf("len(Launches) = %d, want 2", len(st.Launches))
	}
	l := st.Launches[0]
	if l.Slot != 1 || l.In != in.Handle() || l.Out != out.Handle() || !bytes.Equal(l.Params, params.Data()) {
		t.Errorf("launch = %+v", l)
	}
	if st.Launches[1].In != driver.InvalidHandle || st.Launches[1].Params != nil {
		t.Errorf("out-only launch = %+v", st.Launches[1])
	}
	if len(st.Invocations) != 1 || st.Invocations[0].Slot != 3 {
		t.Errorf("Invocations = %+v", st.Invocations)
	}
}

func TestScriptLaunchErrors(t *testing.T) {
	ctx, _ := newTestContext(t)
	other, _ := newTestContext(t)
	s := newTestScript(t, ctx)
	foreign := mustSized(t, other, ElementU8, 4)

	wantErr(t, "ForEach(nil, nil)", s.ForEach(0, nil, nil, nil), ErrInvalidArgument)
	wantErr(t, "ForEach(foreign)", s.ForEach(0, foreign, nil, nil), ErrInvalidArgument)
	wantErr(t, "BindAllocation(foreign)", s.BindAllocation(foreign, 0), ErrInvalidArgument)
	wantErr(t, "SetVarObject(foreign)", s.SetVarObject(0, foreign), ErrInvalidArgument)

	dead := mustSized(t, ctx, ElementU8, 4)
	dead.Destroy()
	wantErr(t, "ForEach(destroyed)", s.ForEach(0, nil, dead, nil), ErrDestroyed)

	s.Destroy()
	wantErr(t, "Invoke after Destroy", s.Invoke(0, nil), ErrDestroyed)
}

func TestScriptField(t *testing.T) {
	ctx, md := newTestContext(t)
	b := NewElementBuilder(ctx)
	b.Add(mustKnown(t, ctx, ElementF32), "weight", 1)
	b.Add(mustKnown(t, ctx, ElementI32), "index", 1)
	item, err := b.Create()
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	defer item.Destroy()

	f, err := NewScriptField(ctx, item, 3, 0)
	if err != nil {
		t.Fatalf("NewScriptField() error = %v", err)
	}
	defer f.Destroy()
	if f.Count() != 3 || f.Element() != item || f.Type().Element() != item {
		t.Fatalf("Count=%d", f.Count())
	}
	if f.Allocation().Usage()&UsageScript == 0 {
		t.Error("script usage not added")
	}

	p := f.NewItemPacker()
	p.AddF32(0.5)
	p.AddI32(2)
	if err := f.Set(1, p); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got := make([]byte, 8)
	if err := f.Get(1, got); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !bytes.Equal(got, p.Data()) {
		t.Errorf("Get(1) = %v, want %v", got, p.Data())
	}
	wantErr(t, "Set(3)", f.Set(3, p), ErrOutOfRange)
	wantErr(t, "Set(nil)", f.Set(0, nil), ErrInvalidArgument)

	s := newTestScript(t, ctx)
	if err := f.Bind(&s.Script, 0); err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	if scriptState(t, md, s).Bound[0] != f.Allocation().Handle() {
		t.Error("field not bound")
	}
	wantErr(t, "Bind(nil)", f.Bind(nil, 0), ErrInvalidArgument)
}
