// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package layout

import (
	"errors"
	"testing"

	"github.com/gogpu/rsc/driver"
)

func TestComponentSize(t *testing.T) {
	tests := []struct {
		dt   driver.DataType
		want uint32
	}{
		{driver.DataTypeNone, 0},
		{driver.DataTypeUint8, 1},
		{driver.DataTypeBoolean, 1},
		{driver.DataTypeFloat16, 2},
		{driver.DataTypeUint565, 2},
		{driver.DataTypeInt32, 4},
		{driver.DataTypeFloat64, 8},
		{driver.DataTypeMatrix4x4, 64},
		{driver.DataTypeMatrix3x3, 36},
		{driver.DataTypeMatrix2x2, 16},
		{driver.DataTypeAllocation, 4},
		{driver.DataTypeSampler, 4},
	}
	for _, tt := range tests {
		if got := ComponentSize(tt.dt); got != tt.want {
			t.Errorf("ComponentSize(%v) = %d, want %d", tt.dt, got, tt.want)
		}
	}
}

func TestVectorSize(t *testing.T) {
	tests := []struct {
		dt   driver.DataType
		n    uint32
		want uint32
	}{
		{driver.DataTypeFloat32, 1, 4},
		{driver.DataTypeFloat32, 2, 8},
		{driver.DataTypeFloat32, 3, 16},
		{driver.DataTypeFloat32, 4, 16},
		{driver.DataTypeUint8, 3, 4},
		{driver.DataTypeFloat64, 3, 32},
	}
	for _, tt := range tests {
		if got := VectorSize(tt.dt, tt.n); got != tt.want {
			t.Errorf("VectorSize(%v, %d) = %d, want %d", tt.dt, tt.n, got, tt.want)
		}
	}
}

func TestPixelSize(t *testing.T) {
	tests := []struct {
		name string
		dt   driver.DataType
		dk   driver.DataKind
		want uint32
	}{
		{"A_8", driver.DataTypeUint8, driver.DataKindPixelA, 1},
		{"L_8", driver.DataTypeUint8, driver.DataKindPixelL, 1},
		{"LA_88", driver.DataTypeUint8, driver.DataKindPixelLA, 2},
		{"RGB_888", driver.DataTypeUint8, driver.DataKindPixelRGB, 3},
		{"RGBA_8888", driver.DataTypeUint8, driver.DataKindPixelRGBA, 4},
		{"RGB_565", driver.DataTypeUint565, driver.DataKindPixelRGB, 2},
		{"RGBA_5551", driver.DataTypeUint5551, driver.DataKindPixelRGBA, 2},
		{"RGBA_4444", driver.DataTypeUint4444, driver.DataKindPixelRGBA, 2},
		{"DEPTH_16", driver.DataTypeUint16, driver.DataKindPixelDepth, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PixelSize(tt.dt, tt.dk); got != tt.want {
				t.Errorf("PixelSize() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNextPow2(t *testing.T) {
	tests := []struct{ in, want uint32 }{
		{0, 1}, {1, 1}, {2, 2}, {3, 4}, {5, 8}, {16, 16}, {17, 32}, {64, 64},
	}
	for _, tt := range tests {
		if got := NextPow2(tt.in); got != tt.want {
			t.Errorf("NextPow2(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestAlignment(t *testing.T) {
	tests := []struct{ size, want uint32 }{
		{1, 1}, {2, 2}, {3, 4}, {4, 4}, {8, 8}, {12, 16}, {16, 16}, {36, 16}, {64, 16},
	}
	for _, tt := range tests {
		if got := Alignment(tt.size); got != tt.want {
			t.Errorf("Alignment(%d) = %d, want %d", tt.size, got, tt.want)
		}
	}
}

func TestAlignUp(t *testing.T) {
	if got := AlignUp(5, 4); got != 8 {
		t.Errorf("AlignUp(5, 4) = %d, want 8", got)
	}
	if got := AlignUp(8, 4); got != 8 {
		t.Errorf("AlignUp(8, 4) = %d, want 8", got)
	}
	if got := AlignUp(0, 16); got != 0 {
		t.Errorf("AlignUp(0, 16) = %d, want 0", got)
	}
}

func TestPack(t *testing.T) {
	tests := []struct {
		name        string
		fields      []Field
		wantOffsets []uint32
		wantSize    uint32
		wantAlign   uint32
	}{
		{
			name:        "empty",
			wantOffsets: []uint32{},
			wantSize:    0,
			wantAlign:   1,
		},
		{
			name: "u8 then f32",
			fields: []Field{
				{Size: 1, Align: 1, ArraySize: 1},
				{Size: 4, Align: 4, ArraySize: 1},
			},
			wantOffsets: []uint32{0, 4},
			wantSize:    8,
			wantAlign:   4,
		},
		{
			name: "tail padding",
			fields: []Field{
				{Size: 4, Align: 4, ArraySize: 1},
				{Size: 1, Align: 1, ArraySize: 1},
			},
			wantOffsets: []uint32{0, 4},
			wantSize:    8,
			wantAlign:   4,
		},
		{
			name: "array then vec4",
			fields: []Field{
				{Size: 2, Align: 2, ArraySize: 3},
				{Size: 16, Align: 16, ArraySize: 1},
			},
			wantOffsets: []uint32{0, 16},
			wantSize:    32,
			wantAlign:   16,
		},
		{
			name: "zero array size counts once",
			fields: []Field{
				{Size: 4, Align: 4, ArraySize: 0},
				{Size: 4, Align: 4, ArraySize: 1},
			},
			wantOffsets: []uint32{0, 4},
			wantSize:    8,
			wantAlign:   4,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Pack(tt.fields)
			if err != nil {
				t.Fatalf("Pack() error = %v", err)
			}
			if len(s.Offsets) != len(tt.wantOffsets) {
				t.Fatalf("len(Offsets) = %d, want %d", len(s.Offsets), len(tt.wantOffsets))
			}
			for i := range s.Offsets {
				if s.Offsets[i] != tt.wantOffsets[i] {
					t.Errorf("Offsets[%d] = %d, want %d", i, s.Offsets[i], tt.wantOffsets[i])
				}
			}
			if s.Size != tt.wantSize {
				t.Errorf("Size = %d, want %d", s.Size, tt.wantSize)
			}
			if s.Align != tt.wantAlign {
				t.Errorf("Align = %d, want %d", s.Align, tt.wantAlign)
			}
		})
	}
}

func TestPackOverflow(t *testing.T) {
	tests := []struct {
		name   string
		fields []Field
	}{
		{"array wraps to zero", []Field{{Size: 4, Align: 4, ArraySize: 1 << 30}}},
		{"offset past 4 GiB", []Field{
			{Size: 1 << 16, Align: 16, ArraySize: 1 << 16},
			{Size: 4, Align: 4, ArraySize: 1},
		}},
		{"tail padding past 4 GiB", []Field{
			{Size: 16, Align: 16, ArraySize: 1},
			{Size: 1, Align: 1, ArraySize: 1<<32 - 17},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Pack(tt.fields); !errors.Is(err, ErrOverflow) {
				t.Errorf("Pack() error = %v, want ErrOverflow", err)
			}
		})
	}

	s, err := Pack([]Field{{Size: 1, Align: 1, ArraySize: 1<<32 - 1}})
	if err != nil || s.Size != 1<<32-1 {
		t.Errorf("Pack(max) = %d, %v, want %d, nil", s.Size, err, uint32(1<<32-1))
	}
}

func TestMul32(t *testing.T) {
	tests := []struct {
		a, b   uint32
		want   uint32
		wantOK bool
	}{
		{3, 5, 15, true},
		{1 << 16, 1<<16 - 1, 1<<32 - 1<<16, true},
		{1 << 16, 1 << 16, 0, false},
		{0, 1<<32 - 1, 0, true},
	}
	for _, tt := range tests {
		got, ok := Mul32(tt.a, tt.b)
		if ok != tt.wantOK || (ok && got != tt.want) {
			t.Errorf("Mul32(%d, %d) = %d, %v, want %d, %v", tt.a, tt.b, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestElementSizeAndAlign(t *testing.T) {
	tests := []struct {
		name      string
		dt        driver.DataType
		dk        driver.DataKind
		vec       uint32
		wantSize  uint32
		wantAlign uint32
	}{
		{"f32", driver.DataTypeFloat32, driver.DataKindUser, 1, 4, 4},
		{"f32_3", driver.DataTypeFloat32, driver.DataKindUser, 3, 16, 16},
		{"u8_3", driver.DataTypeUint8, driver.DataKindUser, 3, 4, 4},
		{"rgb_888", driver.DataTypeUint8, driver.DataKindPixelRGB, 3, 3, 1},
		{"rgb_565", driver.DataTypeUint565, driver.DataKindPixelRGB, 3, 2, 2},
		{"mat4", driver.DataTypeMatrix4x4, driver.DataKindUser, 1, 64, 16},
		{"zero vec", driver.DataTypeInt16, driver.DataKindUser, 0, 2, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			size := ElementSize(tt.dt, tt.dk, tt.vec)
			if size != tt.wantSize {
				t.Errorf("ElementSize() = %d, want %d", size, tt.wantSize)
			}
			if got := ElementAlign(tt.dt, tt.dk, size); got != tt.wantAlign {
				t.Errorf("ElementAlign() = %d, want %d", got, tt.wantAlign)
			}
		})
	}
}
