// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rsc

import (
	"bytes"
	"slices"
	"testing"

	"honnef.co/go/safeish"

	"github.com/gogpu/rsc/driver"
)

func TestAllocation1DRoundTrip(t *testing.T) {
	ctx, _ := newTestContext(t)
	a := mustSized(t, ctx, ElementU16, 6)

	if a.SizeBytes() != 12 || a.CurrentCount() != 6 {
		t.Fatalf("SizeBytes=%d CurrentCount=%d", a.SizeBytes(), a.CurrentCount())
	}
	if err := a.Copy1DRangeFrom(2, 3, seq(6)); err != nil {
		t.Fatalf("Copy1DRangeFrom() error = %v", err)
	}
	got := make([]byte, 12)
	if err := a.Copy1DTo(got); err != nil {
		t.Fatalf("Copy1DTo() error = %v", err)
	}
	want := []byte{0, 0, 0, 0, 1, 2, 3, 4, 5, 6, 0, 0}
	if !bytes.Equal(got, want) {
		t.Errorf("contents = %v, want %v", got, want)
	}
}

func TestAllocation1DValidation(t *testing.T) {
	ctx, md := newTestContext(t)
	a := mustSized(t, ctx, ElementF32, 4)
	before := md.uploadCount()

	tests := []struct {
		name    string
		off     uint32
		count   uint32
		data    []byte
		wantErr error
	}{
		{"zero count", 0, 0, make([]byte, 16), ErrOutOfRange},
		{"past end", 2, 3, make([]byte, 16), ErrOutOfRange},
		{"offset at end", 4, 1, make([]byte, 16), ErrOutOfRange},
		{"short buffer", 0, 4, make([]byte, 15), ErrBufferTooSmall},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wantErr(t, "Copy1DRangeFrom()", a.Copy1DRangeFrom(tt.off, tt.count, tt.data), tt.wantErr)
			wantErr(t, "Copy1DRangeTo()", a.Copy1DRangeTo(tt.off, tt.count, tt.data), tt.wantErr)
		})
	}
	if md.uploadCount() != before {
		t.Error("invalid copies reached the driver")
	}
}

func TestAllocation2DRect(t *testing.T) {
	ctx, _ := newTestContext(t)
	a := mustSized2D(t, ctx, ElementU8, 4, 3)

	if err := a.Copy2DRangeFrom(1, 1, 2, 2, []byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("Copy2DRangeFrom() error = %v", err)
	}
	got := make([]byte, 12)
	if err := a.Copy1DTo(got); err != nil {
		t.Fatalf("Copy1DTo() error = %v", err)
	}
	want := []byte{
		0, 0, 0, 0,
		0, 1, 2, 0,
		0, 3, 4, 0,
	}
	if !bytes.Equal(got, want) {
		t.Errorf("contents = %v, want %v", got, want)
	}

	rect := make([]byte, 4)
	if err := a.Copy2DRangeTo(1, 1, 2, 2, rect); err != nil {
		t.Fatalf("Copy2DRangeTo() error = %v", err)
	}
	if !bytes.Equal(rect, []byte{1, 2, 3, 4}) {
		t.Errorf("Copy2DRangeTo() = %v", rect)
	}
}

func TestAllocation2DStrided(t *testing.T) {
	ctx, _ := newTestContext(t)
	a := mustSized2D(t, ctx, ElementU8x2, 2, 2)

	// Rows of 4 bytes padded to a stride of 6.
	src := []byte{1, 2, 3, 4, 99, 99, 5, 6, 7, 8}
	if err := a.Copy2DStridedFromAll(src, 6); err != nil {
		t.Fatalf("Copy2DStridedFromAll() error = %v", err)
	}
	dst := make([]byte, 10)
	if err := a.Copy2DStridedToAll(dst, 6); err != nil {
		t.Fatalf("Copy2DStridedToAll() error = %v", err)
	}
	if !bytes.Equal(dst, []byte{1, 2, 3, 4, 0, 0, 5, 6, 7, 8}) {
		t.Errorf("strided read = %v", dst)
	}

	wantErr(t, "stride below row", a.Copy2DStridedFrom(0, 0, 2, 2, src, 3), ErrInvalidArgument)
	wantErr(t, "short strided buffer", a.Copy2DStridedFrom(0, 0, 2, 2, src[:9], 6), ErrBufferTooSmall)
	wantErr(t, "rect past edge", a.Copy2DRangeFrom(1, 0, 2, 1, src), ErrOutOfRange)
	wantErr(t, "empty rect", a.Copy2DRangeFrom(0, 0, 0, 1, src), ErrOutOfRange)
}

func TestAllocation2DStridedEightByteElement(t *testing.T) {
	ctx, _ := newTestContext(t)
	a := mustSized2D(t, ctx, ElementF32x2, 4, 2)
	if got := a.Type().SizeBytes(); got != 64 {
		t.Fatalf("SizeBytes() = %d, want 64", got)
	}

	data := make([]byte, 40+32)
	if err := a.Copy2DStridedFromAll(data, 40); err != nil {
		t.Errorf("stride 40 error = %v", err)
	}
	wantErr(t, "stride 16", a.Copy2DStridedFromAll(data, 16), ErrInvalidArgument)
}

func TestAllocation2DOn1D(t *testing.T) {
	ctx, _ := newTestContext(t)
	a := mustSized(t, ctx, ElementU8, 4)

	if err := a.Copy2DRangeFrom(1, 0, 2, 1, []byte{7, 8}); err != nil {
		t.Fatalf("Copy2DRangeFrom() on 1D error = %v", err)
	}
	wantErr(t, "row 1 of 1D", a.Copy2DRangeFrom(0, 1, 1, 1, []byte{1}), ErrOutOfRange)
}

func TestAllocationCopyFromAllocation(t *testing.T) {
	ctx, _ := newTestContext(t)
	src := mustSized2D(t, ctx, ElementU8, 3, 2)
	dst := mustSized(t, ctx, ElementU8, 6)
	if err := src.Copy1DFrom([]byte{1, 2, 3, 4, 5, 6}); err != nil {
		t.Fatalf("Copy1DFrom() error = %v", err)
	}

	// Within the first row of both.
	if err := dst.Copy1DRangeFromAllocation(0, 2, src, 1); err != nil {
		t.Fatalf("Copy1DRangeFromAllocation() error = %v", err)
	}
	// Spanning the rows of src.
	if err := dst.Copy1DRangeFromAllocation(2, 4, src, 2); err != nil {
		t.Fatalf("Copy1DRangeFromAllocation() spanning rows error = %v", err)
	}
	got := make([]byte, 6)
	if err := dst.Copy1DTo(got); err != nil {
		t.Fatalf("Copy1DTo() error = %v", err)
	}
	if !bytes.Equal(got, []byte{2, 3, 3, 4, 5, 6}) {
		t.Errorf("contents = %v", got)
	}

	sq := mustSized2D(t, ctx, ElementU8, 3, 3)
	if err := sq.Copy2DRangeFromAllocation(1, 1, 2, 2, src, 1, 0); err != nil {
		t.Fatalf("Copy2DRangeFromAllocation() error = %v", err)
	}
	rect := make([]byte, 4)
	if err := sq.Copy2DRangeTo(1, 1, 2, 2, rect); err != nil {
		t.Fatalf("Copy2DRangeTo() error = %v", err)
	}
	if !bytes.Equal(rect, []byte{2, 3, 5, 6}) {
		t.Errorf("copied rect = %v", rect)
	}

	f32 := mustSized(t, ctx, ElementF32, 6)
	i32 := mustSized(t, ctx, ElementI32, 6)
	wantErr(t, "Float32 into Int32", i32.Copy1DRangeFromAllocation(0, 1, f32, 0), ErrTypeMismatch)
	wantErr(t, "nil source", i32.Copy1DRangeFromAllocation(0, 1, nil, 0), ErrInvalidArgument)
	wantErr(t, "source range", dst.Copy1DRangeFromAllocation(0, 6, src, 1), ErrOutOfRange)
}

func TestAllocationUsageValidation(t *testing.T) {
	ctx, _ := newTestContext(t)
	u8 := mustKnown(t, ctx, ElementU8)

	tests := []struct {
		name    string
		usage   Usage
		wantErr error
	}{
		{"script", UsageScript, nil},
		{"texture and target", UsageGraphicsTexture | UsageGraphicsRenderTarget, nil},
		{"io input with script", UsageIOInput | UsageScript | UsageGraphicsTexture, nil},
		{"io input with vertex", UsageIOInput | UsageGraphicsVertex, ErrInvalidUsage},
		{"unknown bit", UsageScript | 1<<12, ErrInvalidUsage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewSizedAllocation(ctx, u8, 4, tt.usage)
			if tt.wantErr != nil {
				wantErr(t, "NewSizedAllocation()", err, tt.wantErr)
				return
			}
			if err != nil {
				t.Fatalf("NewSizedAllocation() error = %v", err)
			}
			a.Destroy()
		})
	}
}

func TestAllocationMipmapControl(t *testing.T) {
	ctx, _ := newTestContext(t)
	u8 := mustKnown(t, ctx, ElementU8)
	flat, err := NewType(ctx, u8, 4, 4, 0)
	if err != nil {
		t.Fatalf("NewType() error = %v", err)
	}
	defer flat.Destroy()

	_, err = NewTypedAllocation(ctx, flat, MipmapFull, UsageScript)
	wantErr(t, "MipmapFull on flat type", err, ErrNoMipmaps)
	_, err = NewTypedAllocation(ctx, flat, MipmapControl(7), UsageScript)
	wantErr(t, "unknown mipmap control", err, ErrInvalidArgument)

	a := mustSized(t, ctx, ElementU8, 4)
	wantErr(t, "GenerateMipmaps()", a.GenerateMipmaps(), ErrNoMipmaps)
}

func TestAllocationGenerateMipmaps(t *testing.T) {
	ctx, md := newTestContext(t)
	mt, err := NewTypeBuilder(ctx, mustKnown(t, ctx, ElementU8)).SetX(2).SetY(2).SetMipmaps(true).Create()
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	defer mt.Destroy()
	a, err := NewTypedAllocation(ctx, mt, MipmapFull, UsageScript|UsageGraphicsTexture)
	if err != nil {
		t.Fatalf("NewTypedAllocation() error = %v", err)
	}
	defer a.Destroy()

	if err := a.Copy1DFrom([]byte{10, 20, 30, 40}); err != nil {
		t.Fatalf("Copy1DFrom() error = %v", err)
	}
	if err := a.GenerateMipmaps(); err != nil {
		t.Fatalf("GenerateMipmaps() error = %v", err)
	}
	st, _ := md.AllocationState(a.Handle())
	if st.MipmapGenerations != 1 || len(st.Bytes) != 5 || st.Bytes[4] != 25 {
		t.Errorf("state after GenerateMipmaps = %+v", st)
	}
}

func TestAllocationIOInputReadOnly(t *testing.T) {
	ctx, md := newTestContext(t)
	a, err := NewSizedAllocation(ctx, mustKnown(t, ctx, ElementU8), 4, UsageIOInput|UsageScript)
	if err != nil {
		t.Fatalf("NewSizedAllocation() error = %v", err)
	}
	defer a.Destroy()

	if a.IsWritable() {
		t.Error("IOInput allocation reports writable")
	}
	buf := make([]byte, 4)
	wantErr(t, "Copy1DFrom()", a.Copy1DFrom(buf), ErrInvalidUsage)
	wantErr(t, "Copy2DRangeFrom()", a.Copy2DRangeFrom(0, 0, 1, 1, buf), ErrInvalidUsage)
	if err := a.Copy1DTo(buf); err != nil {
		t.Errorf("Copy1DTo() error = %v", err)
	}
	wantErr(t, "IOSendOutput()", a.IOSendOutput(), ErrInvalidUsage)
	if err := a.IOGetInput(); err != nil {
		t.Fatalf("IOGetInput() error = %v", err)
	}
	if st, _ := md.AllocationState(a.Handle()); st.IOReceived != 1 {
		t.Errorf("IOReceived = %d, want 1", st.IOReceived)
	}
}

func TestAllocationIOOutput(t *testing.T) {
	ctx, md := newTestContext(t)
	a, err := NewSizedAllocation(ctx, mustKnown(t, ctx, ElementU8), 4, UsageIOOutput|UsageScript)
	if err != nil {
		t.Fatalf("NewSizedAllocation() error = %v", err)
	}
	defer a.Destroy()

	wantErr(t, "IOGetInput()", a.IOGetInput(), ErrInvalidUsage)
	for range 2 {
		if err := a.IOSendOutput(); err != nil {
			t.Fatalf("IOSendOutput() error = %v", err)
		}
	}
	if st, _ := md.AllocationState(a.Handle()); st.IOSent != 2 {
		t.Errorf("IOSent = %d, want 2", st.IOSent)
	}
}

func TestAllocationSyncAll(t *testing.T) {
	ctx, md := newTestContext(t)
	a, err := NewSizedAllocation(ctx, mustKnown(t, ctx, ElementU8), 4, UsageScript|UsageGraphicsTexture)
	if err != nil {
		t.Fatalf("NewSizedAllocation() error = %v", err)
	}
	defer a.Destroy()

	tests := []struct {
		src     Usage
		wantErr error
	}{
		{UsageScript, nil},
		{UsageGraphicsTexture, nil},
		{UsageGraphicsVertex, ErrInvalidUsage},
		{UsageScript | UsageGraphicsTexture, ErrInvalidUsage},
		{UsageIOInput, ErrInvalidUsage},
		{0, ErrInvalidUsage},
	}
	for _, tt := range tests {
		err := a.SyncAll(tt.src)
		if tt.wantErr == nil && err != nil {
			t.Errorf("SyncAll(%v) error = %v", tt.src, err)
		}
		if tt.wantErr != nil {
			wantErr(t, "SyncAll("+tt.src.String()+")", err, tt.wantErr)
		}
	}
	st, _ := md.AllocationState(a.Handle())
	if st.Syncs[driver.UsageScript] != 1 || st.Syncs[driver.UsageGraphicsTexture] != 1 {
		t.Errorf("Syncs = %v", st.Syncs)
	}
}

func TestAllocationResize(t *testing.T) {
	ctx, md := newTestContext(t)
	a := mustSized(t, ctx, ElementU8, 4)
	if err := a.Copy1DFrom([]byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("Copy1DFrom() error = %v", err)
	}
	old := a.Type()

	if err := a.Resize(6); err != nil {
		t.Fatalf("Resize() error = %v", err)
	}
	if a.Type() == old || a.Type().X() != 6 || a.CurrentCount() != 6 {
		t.Errorf("after Resize(6): X=%d count=%d", a.Type().X(), a.CurrentCount())
	}
	if md.destroyCount(old.Handle()) != 1 {
		t.Error("old type not released by Resize")
	}
	got := make([]byte, 6)
	if err := a.Copy1DTo(got); err != nil {
		t.Fatalf("Copy1DTo() error = %v", err)
	}
	if !bytes.Equal(got, []byte{1, 2, 3, 4, 0, 0}) {
		t.Errorf("contents after grow = %v", got)
	}

	if err := a.Resize(2); err != nil {
		t.Fatalf("Resize(2) error = %v", err)
	}
	got = got[:2]
	if err := a.Copy1DTo(got); err != nil || !bytes.Equal(got, []byte{1, 2}) {
		t.Errorf("contents after shrink = %v, %v", got, err)
	}
	wantErr(t, "Resize(0)", a.Resize(0), ErrInvalidDimensions)
	wantErr(t, "Resize2D on 1D", a.Resize2D(2, 2), ErrNotResizable)
}

func TestAllocationResize2D(t *testing.T) {
	ctx, _ := newTestContext(t)
	a := mustSized2D(t, ctx, ElementU8, 2, 2)
	if err := a.Copy1DFrom([]byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("Copy1DFrom() error = %v", err)
	}
	if err := a.Resize2D(3, 3); err != nil {
		t.Fatalf("Resize2D() error = %v", err)
	}
	got := make([]byte, 9)
	if err := a.Copy1DTo(got); err != nil {
		t.Fatalf("Copy1DTo() error = %v", err)
	}
	if !bytes.Equal(got, []byte{1, 2, 0, 3, 4, 0, 0, 0, 0}) {
		t.Errorf("contents after Resize2D = %v", got)
	}
	wantErr(t, "Resize on 2D", a.Resize(4), ErrNotResizable)
}

func TestAllocationResizeRejected(t *testing.T) {
	ctx, _ := newTestContext(t)
	u8 := mustKnown(t, ctx, ElementU8)

	shared, err := NewAllocationFromBacking(ctx, mustType(t, ctx, u8, 4, 0), MipmapNone, UsageShared|UsageScript, make([]byte, 4))
	if err != nil {
		t.Fatalf("NewAllocationFromBacking() error = %v", err)
	}
	defer shared.Destroy()
	wantErr(t, "Resize(shared)", shared.Resize(8), ErrNotResizable)

	vol, err := NewTypedAllocation(ctx, mustType(t, ctx, u8, 2, 2, 2), MipmapNone, UsageScript)
	if err != nil {
		t.Fatalf("NewTypedAllocation() error = %v", err)
	}
	defer vol.Destroy()
	wantErr(t, "Resize2D(3D)", vol.Resize2D(4, 4), ErrNotResizable)

	base := mustSized2D(t, ctx, ElementU8, 4, 4)
	view, err := NewAllocationAdapter1D(base)
	if err != nil {
		t.Fatalf("NewAllocationAdapter1D() error = %v", err)
	}
	wantErr(t, "Resize(adapter)", view.Resize(2), ErrNotResizable)
	wantErr(t, "Resize2D(viewed base)", base.Resize2D(8, 8), ErrNotResizable)
	view.Destroy()
	if err := base.Resize2D(8, 8); err != nil {
		t.Errorf("Resize2D() after adapter destroyed error = %v", err)
	}
}

func TestAllocationFromBacking(t *testing.T) {
	ctx, _ := newTestContext(t)
	i32 := mustKnown(t, ctx, ElementI32)
	typ := mustType(t, ctx, i32, 4, 0)

	_, err := NewAllocationFromBacking(ctx, typ, MipmapNone, UsageScript, make([]byte, 16))
	wantErr(t, "without UsageShared", err, ErrInvalidUsage)
	_, err = NewAllocationFromBacking(ctx, typ, MipmapNone, UsageShared, make([]byte, 15))
	wantErr(t, "short backing", err, ErrBufferTooSmall)
	_, err = NewAllocationFromBacking(ctx, typ, MipmapNone, UsageShared, nil)
	wantErr(t, "nil backing", err, ErrInvalidArgument)

	backing := make([]byte, 16)
	a, err := NewAllocationFromBacking(ctx, typ, MipmapNone, UsageShared|UsageScript, backing)
	if err != nil {
		t.Fatalf("NewAllocationFromBacking() error = %v", err)
	}
	defer a.Destroy()
	if err := a.Copy1DFromInt32s([]int32{1, 0, 0, 0x01020304}); err != nil {
		t.Fatalf("Copy1DFromInt32s() error = %v", err)
	}
	if got := safeish.SliceCast[[]int32](backing); got[0] != 1 || got[3] != 0x01020304 {
		t.Errorf("backing not shared: %v", got)
	}
}

func TestAllocationTypedCopies(t *testing.T) {
	ctx, _ := newTestContext(t)

	f := mustSized(t, ctx, ElementF32x2, 2)
	if err := f.Copy1DFromFloat32s([]float32{1, 2, 3, 4}); err != nil {
		t.Fatalf("Copy1DFromFloat32s() error = %v", err)
	}
	if err := f.Copy1DRangeFromFloat32s(1, 1, []float32{-1, -2}); err != nil {
		t.Fatalf("Copy1DRangeFromFloat32s() error = %v", err)
	}
	fs := make([]float32, 4)
	if err := f.Copy1DToFloat32s(fs); err != nil {
		t.Fatalf("Copy1DToFloat32s() error = %v", err)
	}
	if !slices.Equal(fs, []float32{1, 2, -1, -2}) {
		t.Errorf("float32 contents = %v", fs)
	}
	wantErr(t, "Copy1DFromInt32s on F32_2", f.Copy1DFromInt32s(make([]int32, 4)), ErrTypeMismatch)
	wantErr(t, "short float32 slice", f.Copy1DFromFloat32s(make([]float32, 3)), ErrBufferTooSmall)

	i8 := mustSized(t, ctx, ElementU8, 3)
	if err := i8.Copy1DFromInt8s([]int8{-1, 0, 1}); err != nil {
		t.Fatalf("Copy1DFromInt8s() error = %v", err)
	}
	bs := make([]int8, 3)
	if err := i8.Copy1DToInt8s(bs); err != nil || !slices.Equal(bs, []int8{-1, 0, 1}) {
		t.Errorf("Copy1DToInt8s() = %v, %v", bs, err)
	}

	i16 := mustSized(t, ctx, ElementI16, 2)
	if err := i16.Copy1DFromInt16s([]int16{-300, 300}); err != nil {
		t.Fatalf("Copy1DFromInt16s() error = %v", err)
	}
	ss := make([]int16, 2)
	if err := i16.Copy1DToInt16s(ss); err != nil || !slices.Equal(ss, []int16{-300, 300}) {
		t.Errorf("Copy1DToInt16s() = %v, %v", ss, err)
	}

	u32 := mustSized(t, ctx, ElementU32, 3)
	if err := u32.Copy1DRangeFromInt32s(1, 2, []int32{7, 8}); err != nil {
		t.Fatalf("Copy1DRangeFromInt32s() error = %v", err)
	}
	is := make([]int32, 3)
	if err := u32.Copy1DToInt32s(is); err != nil || !slices.Equal(is, []int32{0, 7, 8}) {
		t.Errorf("Copy1DToInt32s() = %v, %v", is, err)
	}
}

func TestAllocationCopyObjects(t *testing.T) {
	ctx, _ := newTestContext(t)
	objs := mustSized(t, ctx, ElementAllocation, 3)
	a := mustSized(t, ctx, ElementU8, 1)
	b := mustSized(t, ctx, ElementU8, 1)

	if err := objs.Copy1DFromObjects([]Object{a, nil, b}); err != nil {
		t.Fatalf("Copy1DFromObjects() error = %v", err)
	}
	got := make([]int32, 3)
	if err := objs.Copy1DRangeTo(0, 3, safeish.SliceCast[[]byte](got)); err != nil {
		t.Fatalf("Copy1DRangeTo() error = %v", err)
	}
	if got[0] != int32(a.Handle()) || got[1] != 0 || got[2] != int32(b.Handle()) {
		t.Errorf("stored handles = %v", got)
	}

	wantErr(t, "objects into U8", a.Copy1DFromObjects([]Object{b}), ErrTypeMismatch)
}

func TestAllocationDestroyReleasesType(t *testing.T) {
	ctx, md := newTestContext(t)
	a, err := NewSizedAllocation(ctx, mustKnown(t, ctx, ElementU8), 4, UsageScript)
	if err != nil {
		t.Fatalf("NewSizedAllocation() error = %v", err)
	}
	typ := a.Type()
	if typ.IsDestroyed() {
		t.Fatal("type released while its allocation is alive")
	}
	a.Destroy()
	if !typ.IsDestroyed() || md.destroyCount(a.Handle()) != 1 {
		t.Error("Destroy() did not release the allocation and its type")
	}
	wantErr(t, "Copy1DFrom() after Destroy", a.Copy1DFrom(make([]byte, 4)), ErrDestroyed)
	if err := a.Copy1DTo(make([]byte, 4)); err == nil {
		t.Error("Copy1DTo() after Destroy succeeded")
	}
}

func mustType(t *testing.T, ctx *Context, e *Element, dims ...uint32) *Type {
	t.Helper()
	var x, y, z uint32
	for i, d := range dims {
		switch i {
		case 0:
			x = d
		case 1:
			y = d
		case 2:
			z = d
		}
	}
	typ, err := NewType(ctx, e, x, y, z)
	if err != nil {
		t.Fatalf("NewType(%d, %d, %d) error = %v", x, y, z, err)
	}
	t.Cleanup(typ.Destroy)
	return typ
}
