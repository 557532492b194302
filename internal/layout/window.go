// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package layout

// Window is a box of cells inside one level and face of a Shape.
//
// Plain allocations address a whole level. Adapters address a box whose
// origin is their selection and whose extent spans only the axes they
// were created with.
type Window struct {
	Shape      Shape
	LOD, Face  uint32
	OX, OY, OZ uint32
	W, H, D    uint32
}

// Level returns the window covering the whole of level lod on face.
func (s Shape) Level(lod, face uint32) Window {
	ld := s.LOD(lod)
	return Window{
		Shape: s,
		LOD:   lod,
		Face:  face,
		W:     max(ld.X, 1),
		H:     max(ld.Y, 1),
		D:     max(ld.Z, 1),
	}
}

// Sub returns the window at origin (x, y, z) of w. Axes not listed in
// span collapse to a single cell.
func (w Window) Sub(x, y, z uint32, span [3]bool) Window {
	w.OX, w.OY, w.OZ = x, y, z
	if !span[0] {
		w.W = 1
	}
	if !span[1] {
		w.H = 1
	}
	if !span[2] {
		w.D = 1
	}
	return w
}

// Count returns the number of cells in the window.
func (w Window) Count() uint32 {
	return w.W * w.H * w.D
}

// Cell returns the storage index of (x, y, z) relative to the window.
// ok is false when the coordinate lies outside the window or the shape.
func (w Window) Cell(x, y, z uint32) (idx uint32, ok bool) {
	if x >= w.W || y >= w.H || z >= w.D {
		return 0, false
	}
	ax, ay, az := w.OX+x, w.OY+y, w.OZ+z
	ld := w.Shape.LOD(w.LOD)
	if ax >= max(ld.X, 1) || ay >= max(ld.Y, 1) || az >= max(ld.Z, 1) {
		return 0, false
	}
	return w.Shape.CellIndex(ax, ay, az, w.LOD, w.Face), true
}

// Linear returns the storage index of the i-th cell of the window in
// row-major order.
func (w Window) Linear(i uint32) (uint32, bool) {
	return w.Cell(i%w.W, (i/w.W)%w.H, i/(w.W*w.H))
}
