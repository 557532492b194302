// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package layout

import (
	"math"
	"math/bits"
)

// CubeFaces is the number of faces of a cube map.
const CubeFaces = 6

// Dims are the dimensions of a type. Unused axes are 0.
type Dims struct {
	X, Y, Z uint32
}

// Count returns the number of cells of one level and face:
// X × max(Y,1) × max(Z,1).
func (d Dims) Count() uint32 {
	return d.X * max(d.Y, 1) * max(d.Z, 1)
}

// CheckedCount returns Count and reports whether it fits in 32 bits.
func (d Dims) CheckedCount() (uint32, bool) {
	n, ok := Mul32(d.X, max(d.Y, 1))
	if !ok {
		return 0, false
	}
	return Mul32(n, max(d.Z, 1))
}

// MipLevels returns the length of the full mip chain for d:
// 1 + floor(log2(max(X, Y, Z))).
func (d Dims) MipLevels() uint32 {
	m := max(d.X, d.Y, d.Z)
	if m == 0 {
		return 1
	}
	return uint32(bits.Len32(m))
}

// LOD returns the dimensions of mip level lod. Each used axis is halved
// per level and never drops below 1; unused axes stay 0.
func (d Dims) LOD(lod uint32) Dims {
	return Dims{
		X: lodExtent(d.X, lod),
		Y: lodExtent(d.Y, lod),
		Z: lodExtent(d.Z, lod),
	}
}

func lodExtent(v, lod uint32) uint32 {
	if v == 0 {
		return 0
	}
	if lod >= 32 {
		return 1
	}
	return max(v>>lod, 1)
}

// Shape describes the full storage of an allocation: every mip level of
// every face.
type Shape struct {
	Dims
	Levels uint32
	Faces  uint32
}

// NewShape returns the storage shape for a type.
func NewShape(d Dims, mipmaps, faces bool) Shape {
	s := Shape{Dims: d, Levels: 1, Faces: 1}
	if mipmaps {
		s.Levels = d.MipLevels()
	}
	if faces {
		s.Faces = CubeFaces
	}
	return s
}

// LevelCount returns the number of cells of one face at level lod.
func (s Shape) LevelCount(lod uint32) uint32 {
	return s.LOD(lod).Count()
}

// LevelOffset returns the cell index at which level lod begins.
// Levels are stored in order, each containing all faces.
func (s Shape) LevelOffset(lod uint32) uint32 {
	var off uint32
	for l := uint32(0); l < lod && l < s.Levels; l++ {
		off += s.LevelCount(l) * s.Faces
	}
	return off
}

// CellIndex returns the linear cell index of (x, y, z) on face at lod.
func (s Shape) CellIndex(x, y, z, lod, face uint32) uint32 {
	ld := s.LOD(lod)
	w := max(ld.X, 1)
	h := max(ld.Y, 1)
	return s.LevelOffset(lod) + face*ld.Count() + (z*h+y)*w + x
}

// CheckedTotalCount returns TotalCount and reports whether it, and every
// level count it sums, fits in 32 bits.
func (s Shape) CheckedTotalCount() (uint32, bool) {
	var total uint64
	for lod := range s.Levels {
		n, ok := s.LOD(lod).CheckedCount()
		if !ok {
			return 0, false
		}
		total += uint64(n) * uint64(s.Faces)
		if total > math.MaxUint32 {
			return 0, false
		}
	}
	return uint32(total), true
}

// TotalCount returns the number of cells across all levels and faces.
func (s Shape) TotalCount() uint32 {
	return s.LevelOffset(s.Levels)
}
