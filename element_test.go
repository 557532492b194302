// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rsc

import (
	"errors"
	"testing"
)

func TestKnownElementSizes(t *testing.T) {
	tests := []struct {
		k     KnownElement
		size  uint32
		align uint32
		vec   uint32
		str   string
	}{
		{ElementU8, 1, 1, 1, "Uint8"},
		{ElementBoolean, 1, 1, 1, "Boolean"},
		{ElementF32, 4, 4, 1, "Float32"},
		{ElementF64, 8, 8, 1, "Float64"},
		{ElementU8x3, 4, 4, 3, "Uint8_3"},
		{ElementF32x3, 16, 16, 3, "Float32_3"},
		{ElementF64x3, 32, 16, 3, "Float64_3"},
		{ElementI16x2, 4, 4, 2, "Int16_2"},
		{ElementAllocation, 4, 4, 1, "Allocation"},
		{ElementMatrix4x4, 64, 16, 1, "Matrix4x4"},
		{ElementMatrix3x3, 36, 16, 1, "Matrix3x3"},
		{ElementMatrix2x2, 16, 16, 1, "Matrix2x2"},
		{ElementA8, 1, 1, 1, "Uint8_A"},
		{ElementRGB888, 3, 1, 3, "Uint8_RGB"},
		{ElementRGBA8888, 4, 1, 4, "Uint8_RGBA"},
		{ElementRGB565, 2, 2, 3, "Uint565_RGB"},
		{ElementRGBA4444, 2, 2, 4, "Uint4444_RGBA"},
	}
	ctx, _ := newTestContext(t)
	for _, tt := range tests {
		t.Run(tt.k.String(), func(t *testing.T) {
			e := mustKnown(t, ctx, tt.k)
			if e.SizeBytes() != tt.size {
				t.Errorf("SizeBytes() = %d, want %d", e.SizeBytes(), tt.size)
			}
			if e.Alignment() != tt.align {
				t.Errorf("Alignment() = %d, want %d", e.Alignment(), tt.align)
			}
			if e.VectorSize() != tt.vec {
				t.Errorf("VectorSize() = %d, want %d", e.VectorSize(), tt.vec)
			}
			if e.String() != tt.str {
				t.Errorf("String() = %q, want %q", e.String(), tt.str)
			}
		})
	}
}

func TestKnownElementCached(t *testing.T) {
	ctx, _ := newTestContext(t)
	for _, k := range KnownElements() {
		a := mustKnown(t, ctx, k)
		b := mustKnown(t, ctx, k)
		if a != b {
			t.Errorf("Element(%v) returned different objects", k)
		}
	}
	if _, err := ctx.Element(KnownElement(-1)); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Element(-1) error = %v, want ErrInvalidArgument", err)
	}
}

func TestKnownElementNames(t *testing.T) {
	tests := map[KnownElement]string{
		ElementU8:        "U8",
		ElementU8x4:      "U8_4",
		ElementF32x2:     "F32_2",
		ElementRGBA8888:  "RGBA_8888",
		ElementMatrix3x3: "MATRIX_3X3",
		ElementFont:      "FONT",
	}
	for k, want := range tests {
		if got := k.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(k), got, want)
		}
	}
}

func TestNewPixelElement(t *testing.T) {
	tests := []struct {
		dt   DataType
		dk   DataKind
		ok   bool
		size uint32
	}{
		{Uint8, KindPixelL, true, 1},
		{Uint8, KindPixelLA, true, 2},
		{Uint8, KindPixelYUV, true, 1},
		{Uint16, KindPixelDepth, true, 2},
		{Uint16, KindPixelRGB, false, 0},
		{Uint565, KindPixelRGB, true, 2},
		{Uint565, KindPixelRGBA, false, 0},
		{Uint5551, KindPixelRGBA, true, 2},
		{Uint4444, KindPixelA, false, 0},
		{Float32, KindPixelRGBA, false, 0},
		{Uint8, KindUser, false, 0},
	}
	ctx, _ := newTestContext(t)
	for _, tt := range tests {
		e, err := NewPixelElement(ctx, tt.dt, tt.dk)
		if !tt.ok {
			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("NewPixelElement(%v, %v) error = %v, want ErrInvalidArgument", tt.dt, tt.dk, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("NewPixelElement(%v, %v) error = %v", tt.dt, tt.dk, err)
			continue
		}
		if !e.IsNormalized() || e.SizeBytes() != tt.size {
			t.Errorf("NewPixelElement(%v, %v) normalized=%v size=%d, want true, %d",
				tt.dt, tt.dk, e.IsNormalized(), e.SizeBytes(), tt.size)
		}
		e.Destroy()
	}
}

func TestNewVectorAndUserElementErrors(t *testing.T) {
	ctx, _ := newTestContext(t)
	for _, n := range []uint32{0, 1, 5} {
		_, err := NewVectorElement(ctx, Float32, n)
		wantErr(t, "NewVectorElement(Float32, n)", err, ErrInvalidArgument)
	}
	_, err := NewVectorElement(ctx, Matrix4x4, 2)
	wantErr(t, "NewVectorElement(Matrix4x4)", err, ErrInvalidArgument)
	_, err = NewUserElement(ctx, Uint565)
	wantErr(t, "NewUserElement(Uint565)", err, ErrInvalidArgument)
}

func TestElementBuilderLayout(t *testing.T) {
	ctx, _ := newTestContext(t)
	e, err := NewElementBuilder(ctx).
		Add(mustKnown(t, ctx, ElementU8), "a", 1).
		Add(mustKnown(t, ctx, ElementF32), "b", 1).
		Add(mustKnown(t, ctx, ElementF32x3), "c", 1).
		Add(mustKnown(t, ctx, ElementI16), "d", 3).
		Create()
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	defer e.Destroy()

	if !e.IsComplex() || e.SubElementCount() != 4 {
		t.Fatalf("IsComplex=%v SubElementCount=%d", e.IsComplex(), e.SubElementCount())
	}
	wantOffsets := []uint32{0, 4, 16, 32}
	for i, want := range wantOffsets {
		got, err := e.SubElementOffsetBytes(i)
		if err != nil || got != want {
			t.Errorf("SubElementOffsetBytes(%d) = %d, %v, want %d", i, got, err, want)
		}
	}
	if n, _ := e.SubElementArraySize(3); n != 3 {
		t.Errorf("SubElementArraySize(3) = %d, want 3", n)
	}
	if e.SizeBytes() != 48 || e.Alignment() != 16 {
		t.Errorf("size=%d align=%d, want 48, 16", e.SizeBytes(), e.Alignment())
	}
	if got := e.String(); got != "struct{a,b,c,d}" {
		t.Errorf("String() = %q", got)
	}
}

func TestElementBuilderHiddenAndPadding(t *testing.T) {
	ctx, _ := newTestContext(t)
	u8 := mustKnown(t, ctx, ElementU8)

	e, err := NewElementBuilder(ctx).
		Add(u8, "x", 1).
		Add(u8, "#hidden", 1).
		Add(mustKnown(t, ctx, ElementU16), "y", 1).
		Create()
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	defer e.Destroy()
	if e.SubElementCount() != 2 {
		t.Fatalf("SubElementCount() = %d, want 2", e.SubElementCount())
	}
	if name, _ := e.SubElementName(1); name != "y" {
		t.Errorf("SubElementName(1) = %q, want y", name)
	}
	if off, _ := e.SubElementOffsetBytes(1); off != 2 {
		t.Errorf("SubElementOffsetBytes(1) = %d, want 2", off)
	}
	if _, err := e.SubElement(2); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("SubElement(2) error = %v, want ErrIndexOutOfRange", err)
	}

	v, err := NewElementBuilder(ctx).
		Add(mustKnown(t, ctx, ElementF32x3), "v", 1).
		Add(mustKnown(t, ctx, ElementF32), "#padding_0", 1).
		Create()
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	defer v.Destroy()
	if v.SizeBytes() != 16 {
		t.Errorf("vec3 with padding SizeBytes() = %d, want 16", v.SizeBytes())
	}
}

func TestElementBuilderErrors(t *testing.T) {
	ctx, _ := newTestContext(t)
	other, _ := newTestContext(t)
	u8 := mustKnown(t, ctx, ElementU8)

	tests := []struct {
		name string
		b    *ElementBuilder
	}{
		{"empty", NewElementBuilder(ctx)},
		{"nil element", NewElementBuilder(ctx).Add(nil, "a", 1)},
		{"empty name", NewElementBuilder(ctx).Add(u8, "", 1)},
		{"zero array", NewElementBuilder(ctx).Add(u8, "a", 0)},
		{"duplicate", NewElementBuilder(ctx).Add(u8, "a", 1).Add(u8, "a", 1)},
		{"foreign context", NewElementBuilder(other).Add(u8, "a", 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.b.Create()
			wantErr(t, "Create()", err, ErrInvalidArgument)
		})
	}
}

func TestElementBuilderSizeOverflow(t *testing.T) {
	ctx, _ := newTestContext(t)
	f32 := mustKnown(t, ctx, ElementF32)
	f32x4 := mustKnown(t, ctx, ElementF32x4)

	tests := []struct {
		name    string
		b       *ElementBuilder
		wantErr error
	}{
		{"array wraps", NewElementBuilder(ctx).Add(f32, "a", 1<<30), ErrInvalidDimensions},
		{"members sum past 4 GiB", NewElementBuilder(ctx).Add(f32x4, "a", 1<<28-1).Add(f32x4, "b", 1), ErrInvalidDimensions},
		{"large fits", NewElementBuilder(ctx).Add(f32, "a", 1<<20), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := tt.b.Create()
			if tt.wantErr != nil {
				wantErr(t, "Create()", err, tt.wantErr)
				return
			}
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			defer e.Destroy()
			if e.SizeBytes() != 4<<20 {
				t.Errorf("SizeBytes() = %d, want %d", e.SizeBytes(), 4<<20)
			}
		})
	}
}

func TestElementBuilderRetainsMembers(t *testing.T) {
	ctx, md := newTestContext(t)
	f, err := NewUserElement(ctx, Float32)
	if err != nil {
		t.Fatalf("NewUserElement() error = %v", err)
	}
	s, err := NewElementBuilder(ctx).Add(f, "f", 1).Create()
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	f.Destroy()
	if f.IsDestroyed() || md.destroyCount(f.Handle()) != 0 {
		t.Fatal("member released while its structure is alive")
	}
	s.Destroy()
	if !f.IsDestroyed() || md.destroyCount(f.Handle()) != 1 {
		t.Errorf("member not released with its structure")
	}
}

func TestElementIsCompatible(t *testing.T) {
	ctx, _ := newTestContext(t)
	f32 := mustKnown(t, ctx, ElementF32)
	own, err := NewUserElement(ctx, Float32)
	if err != nil {
		t.Fatalf("NewUserElement() error = %v", err)
	}
	defer own.Destroy()

	if !f32.IsCompatible(own) {
		t.Error("two Float32 elements are not compatible")
	}
	if f32.IsCompatible(mustKnown(t, ctx, ElementI32)) {
		t.Error("Float32 compatible with Int32")
	}
	if mustKnown(t, ctx, ElementU8x4).IsCompatible(mustKnown(t, ctx, ElementRGBA8888)) {
		t.Error("U8_4 compatible with RGBA_8888")
	}

	build := func(name string) *Element {
		e, err := NewElementBuilder(ctx).Add(f32, name, 2).Create()
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		t.Cleanup(e.Destroy)
		return e
	}
	if !build("p").IsCompatible(build("p")) {
		t.Error("identical structures are not compatible")
	}
	if build("p").IsCompatible(build("q")) {
		t.Error("structures with different member names are compatible")
	}
}

func TestObjectNaming(t *testing.T) {
	ctx, md := newTestContext(t)
	e, err := NewUserElement(ctx, Int32)
	if err != nil {
		t.Fatalf("NewUserElement() error = %v", err)
	}
	defer e.Destroy()

	if err := e.SetName(""); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("SetName(\"\") error = %v, want ErrInvalidArgument", err)
	}
	if err := e.SetName("counter"); err != nil {
		t.Fatalf("SetName() error = %v", err)
	}
	if e.Name() != "counter" || md.ObjectName(e.Handle()) != "counter" {
		t.Errorf("Name() = %q, driver name = %q", e.Name(), md.ObjectName(e.Handle()))
	}
	if e.Kind() != ObjectElement || e.Context() != ctx || !e.Equal(e) {
		t.Error("object accessors disagree")
	}
}

func TestObjectRetainDestroy(t *testing.T) {
	ctx, md := newTestContext(t)
	e, err := NewUserElement(ctx, Int32)
	if err != nil {
		t.Fatalf("NewUserElement() error = %v", err)
	}
	e.Retain()
	e.Destroy()
	if e.IsDestroyed() {
		t.Fatal("released with a reference left")
	}
	e.Destroy()
	e.Destroy()
	if n := md.destroyCount(e.Handle()); n != 1 {
		t.Errorf("handle destroyed %d times, want 1", n)
	}
	if err := e.SetName("late"); !errors.Is(err, ErrDestroyed) {
		t.Errorf("SetName() after Destroy error = %v, want ErrDestroyed", err)
	}
}
