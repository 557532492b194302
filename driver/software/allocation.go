// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package software

import (
	"errors"
	"fmt"
	"maps"

	"github.com/gogpu/rsc/driver"
	"github.com/gogpu/rsc/internal/layout"
)

// errOutOfBounds is returned when a copy would address memory outside an
// allocation. The client validates ranges first, so this indicates a
// client/driver disagreement about layout.
var errOutOfBounds = errors.New("software: access out of bounds")

// storage is the memory shared by an allocation and its adapters.
type storage struct {
	data []byte
}

// origin is the selection of an adapter view.
type origin struct {
	x, y, z uint32
	lod     uint32
	face    driver.CubemapFace
}

// allocation is the runtime record of an allocation or adapter.
type allocation struct {
	typ   *typ
	shape layout.Shape
	esize uint32
	usage driver.Usage
	mips  driver.MipmapControl
	store *storage

	// Adapter state. free marks the axes spanned by the adapter window.
	adapter bool
	free    [3]bool
	at      origin

	syncs      map[driver.Usage]int
	ioSent     int
	ioReceived int
	mipGens    int
}

// view resolves the window addressed by a call. Adapters use their own
// selection instead of lod and face.
func (a *allocation) view(lod uint32, face driver.CubemapFace) layout.Window {
	if a.adapter {
		return a.shape.Level(a.at.lod, uint32(a.at.face)).Sub(a.at.x, a.at.y, a.at.z, a.free)
	}
	return a.shape.Level(lod, uint32(face))
}

// bytesAt returns the bytes of storage cell idx.
func (a *allocation) bytesAt(idx uint32) ([]byte, error) {
	start := uint64(idx) * uint64(a.esize)
	end := start + uint64(a.esize)
	if end > uint64(len(a.store.data)) {
		return nil, fmt.Errorf("%w: cell %d", errOutOfBounds, idx)
	}
	return a.store.data[start:end], nil
}

// cell returns the bytes of (x, y, z) in window w.
func (a *allocation) cell(w layout.Window, x, y, z uint32) ([]byte, error) {
	idx, ok := w.Cell(x, y, z)
	if !ok {
		return nil, fmt.Errorf("%w: (%d,%d,%d) outside %dx%dx%d", errOutOfBounds, x, y, z, w.W, w.H, w.D)
	}
	return a.bytesAt(idx)
}

// linear returns the bytes of the i-th cell of window w.
func (a *allocation) linear(w layout.Window, i uint32) ([]byte, error) {
	idx, ok := w.Linear(i)
	if !ok {
		return nil, fmt.Errorf("%w: cell %d outside %dx%dx%d", errOutOfBounds, i, w.W, w.H, w.D)
	}
	return a.bytesAt(idx)
}

// AllocationCreateTyped creates an allocation for typ.
func (d *Driver) AllocationCreateTyped(th driver.Handle, mips driver.MipmapControl, usage driver.Usage, backing []byte) (driver.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	t, err := lookup[typ](d, th)
	if err != nil {
		return driver.InvalidHandle, err
	}
	shape := t.shape()
	size := int(shape.TotalCount()) * int(t.elem.size)

	var data []byte
	if backing != nil {
		if len(backing) < size {
			return driver.InvalidHandle, fmt.Errorf("%w: backing has %d bytes, need %d", driver.ErrOutOfMemory, len(backing), size)
		}
		data = backing[:size]
	} else {
		data = make([]byte, size)
	}

	a := &allocation{
		typ:   t,
		shape: shape,
		esize: t.elem.size,
		usage: usage,
		mips:  mips,
		store: &storage{data: data},
		syncs: make(map[driver.Usage]int),
	}
	h := d.insert(a)
	d.log().Debug("software allocation created", "handle", h, "bytes", size, "usage", usage)
	return h, nil
}

// AllocationAdapterCreate creates a view over base. The axes spanned by
// the view are the axes present in typ.
func (d *Driver) AllocationAdapterCreate(th driver.Handle, bh driver.Handle) (driver.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	t, err := lookup[typ](d, th)
	if err != nil {
		return driver.InvalidHandle, err
	}
	base, err := lookup[allocation](d, bh)
	if err != nil {
		return driver.InvalidHandle, err
	}
	a := &allocation{
		typ:     t,
		shape:   base.shape,
		esize:   base.esize,
		usage:   base.usage,
		mips:    base.mips,
		store:   base.store,
		adapter: true,
		free:    [3]bool{t.dims.X > 0, t.dims.Y > 0, t.dims.Z > 0},
		syncs:   make(map[driver.Usage]int),
	}
	return d.insert(a), nil
}

// AllocationAdapterOffset moves the origin of an adapter.
func (d *Driver) AllocationAdapterOffset(h driver.Handle, x, y, z, lod uint32, face driver.CubemapFace) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	a, err := lookup[allocation](d, h)
	if err != nil {
		return err
	}
	if !a.adapter {
		return fmt.Errorf("software: allocation %d is not an adapter", h)
	}
	if lod >= a.shape.Levels || uint32(face) >= a.shape.Faces {
		return fmt.Errorf("%w: lod %d face %d", errOutOfBounds, lod, face)
	}
	a.at = origin{x: x, y: y, z: z, lod: lod, face: face}
	return nil
}

// Allocation1DData writes count cells starting at cell off.
func (d *Driver) Allocation1DData(h driver.Handle, off, lod, count uint32, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	a, err := lookup[allocation](d, h)
	if err != nil {
		return err
	}
	es := int(a.esize)
	if len(data) < int(count)*es {
		return fmt.Errorf("%w: %d bytes for %d cells", errOutOfBounds, len(data), count)
	}
	v := a.view(lod, driver.FacePositiveX)
	for i := uint32(0); i < count; i++ {
		dst, err := a.linear(v, off+i)
		if err != nil {
			return err
		}
		copy(dst, data[int(i)*es:])
	}
	return nil
}

// Allocation1DRead reads count cells starting at cell off.
func (d *Driver) Allocation1DRead(h driver.Handle, off, lod, count uint32, data []byte) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	a, err := lookup[allocation](d, h)
	if err != nil {
		return err
	}
	es := int(a.esize)
	if len(data) < int(count)*es {
		return fmt.Errorf("%w: %d bytes for %d cells", errOutOfBounds, len(data), count)
	}
	v := a.view(lod, driver.FacePositiveX)
	for i := uint32(0); i < count; i++ {
		src, err := a.linear(v, off+i)
		if err != nil {
			return err
		}
		copy(data[int(i)*es:], src)
	}
	return nil
}

// Allocation2DData writes a w×h region whose rows are stride bytes apart.
func (d *Driver) Allocation2DData(h driver.Handle, xoff, yoff, lod uint32, face driver.CubemapFace, w, hgt uint32, data []byte, stride int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	a, err := lookup[allocation](d, h)
	if err != nil {
		return err
	}
	return a.rect(a.view(lod, face), xoff, yoff, w, hgt, data, stride, true)
}

// Allocation2DRead reads a w×h region into rows stride bytes apart.
func (d *Driver) Allocation2DRead(h driver.Handle, xoff, yoff, lod uint32, face driver.CubemapFace, w, hgt uint32, data []byte, stride int) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	a, err := lookup[allocation](d, h)
	if err != nil {
		return err
	}
	return a.rect(a.view(lod, face), xoff, yoff, w, hgt, data, stride, false)
}

// rect moves a rectangle between data and the view. write selects the
// direction.
func (a *allocation) rect(v layout.Window, xoff, yoff, w, h uint32, data []byte, stride int, write bool) error {
	es := int(a.esize)
	if h > 0 && len(data) < stride*int(h-1)+int(w)*es {
		return fmt.Errorf("%w: %d bytes for %dx%d rows of stride %d", errOutOfBounds, len(data), w, h, stride)
	}
	for r := uint32(0); r < h; r++ {
		row := data[int(r)*stride:]
		for c := uint32(0); c < w; c++ {
			cell, err := a.cell(v, xoff+c, yoff+r, 0)
			if err != nil {
				return err
			}
			if write {
				copy(cell, row[int(c)*es:])
			} else {
				copy(row[int(c)*es:], cell)
			}
		}
	}
	return nil
}

// AllocationCopy2DRange copies a region between allocations. Overlapping
// regions of the same storage are handled.
func (d *Driver) AllocationCopy2DRange(dh driver.Handle, dstX, dstY, dstLOD uint32, dstFace driver.CubemapFace, w, h uint32,
	sh driver.Handle, srcX, srcY, srcLOD uint32, srcFace driver.CubemapFace) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	dst, err := lookup[allocation](d, dh)
	if err != nil {
		return err
	}
	src, err := lookup[allocation](d, sh)
	if err != nil {
		return err
	}
	if dst.esize != src.esize {
		return fmt.Errorf("software: copy between cells of %d and %d bytes", dst.esize, src.esize)
	}
	stride := int(w * src.esize)
	tmp := make([]byte, stride*int(h))
	if err := src.rect(src.view(srcLOD, srcFace), srcX, srcY, w, h, tmp, stride, false); err != nil {
		return err
	}
	return dst.rect(dst.view(dstLOD, dstFace), dstX, dstY, w, h, tmp, stride, true)
}

// AllocationResize reshapes an allocation to typ. Cells inside both the
// old and the new extent keep their value; new cells are zero.
func (d *Driver) AllocationResize(h driver.Handle, th driver.Handle) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	a, err := lookup[allocation](d, h)
	if err != nil {
		return err
	}
	t, err := lookup[typ](d, th)
	if err != nil {
		return err
	}
	if a.adapter {
		return fmt.Errorf("software: cannot resize adapter %d", h)
	}
	if t.elem.size != a.esize {
		return fmt.Errorf("software: resize changes cell size from %d to %d", a.esize, t.elem.size)
	}
	shape := t.shape()
	data := make([]byte, int(shape.TotalCount())*int(a.esize))

	es := int(a.esize)
	rows := min(max(a.shape.Y, 1), max(shape.Y, 1))
	cols := min(a.shape.X, shape.X)
	for y := uint32(0); y < rows; y++ {
		from := int(y*a.shape.X) * es
		to := int(y*shape.X) * es
		copy(data[to:to+int(cols)*es], a.store.data[from:])
	}

	a.typ = t
	a.shape = shape
	a.store.data = data
	return nil
}

// AllocationGenerateMipmaps fills every level above 0 from the level
// below it. Uint8 elements are box filtered per byte; other elements take
// the first child cell.
func (d *Driver) AllocationGenerateMipmaps(h driver.Handle) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	a, err := lookup[allocation](d, h)
	if err != nil {
		return err
	}
	return a.generateMipmaps()
}

func (a *allocation) generateMipmaps() error {
	if a.shape.Levels < 2 {
		return fmt.Errorf("software: allocation has no mipmaps")
	}
	box := a.typ.elem.dt == driver.DataTypeUint8 && !a.typ.elem.complex
	sum := make([]uint32, a.esize)

	for lod := uint32(1); lod < a.shape.Levels; lod++ {
		parent := a.shape.LOD(lod - 1)
		ld := a.shape.LOD(lod)
		pw, ph, pd := max(parent.X, 1), max(parent.Y, 1), max(parent.Z, 1)
		for face := uint32(0); face < a.shape.Faces; face++ {
			for z := uint32(0); z < max(ld.Z, 1); z++ {
				for y := uint32(0); y < max(ld.Y, 1); y++ {
					for x := uint32(0); x < ld.X; x++ {
						dst := a.cellAt(x, y, z, lod, face)
						if !box {
							copy(dst, a.cellAt(min(2*x, pw-1), min(2*y, ph-1), min(2*z, pd-1), lod-1, face))
							continue
						}
						clear(sum)
						var n uint32
						for dz := uint32(0); dz < 2; dz++ {
							for dy := uint32(0); dy < 2; dy++ {
								for dx := uint32(0); dx < 2; dx++ {
									sx, sy, sz := 2*x+dx, 2*y+dy, 2*z+dz
									if sx >= pw || sy >= ph || sz >= pd {
										continue
									}
									for i, b := range a.cellAt(sx, sy, sz, lod-1, face) {
										sum[i] += uint32(b)
									}
									n++
								}
							}
						}
						for i := range dst {
							dst[i] = byte((sum[i] + n/2) / n)
						}
					}
				}
			}
		}
	}
	a.mipGens++
	return nil
}

// cellAt returns the bytes of a cell in absolute coordinates.
func (a *allocation) cellAt(x, y, z, lod, face uint32) []byte {
	idx := int(a.shape.CellIndex(x, y, z, lod, face)) * int(a.esize)
	return a.store.data[idx : idx+int(a.esize)]
}

// AllocationSyncAll records a synchronization from src. Allocations
// created with MipmapOnSyncToTexture regenerate their mipmaps when script
// memory is synchronized.
func (d *Driver) AllocationSyncAll(h driver.Handle, src driver.Usage) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	a, err := lookup[allocation](d, h)
	if err != nil {
		return err
	}
	a.syncs[src]++
	if src == driver.UsageScript && a.mips == driver.MipmapOnSyncToTexture && a.shape.Levels > 1 {
		return a.generateMipmaps()
	}
	return nil
}

// AllocationIOSend hands the current buffer to the consumer.
func (d *Driver) AllocationIOSend(h driver.Handle) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	a, err := lookup[allocation](d, h)
	if err != nil {
		return err
	}
	if !a.usage.Contains(driver.UsageIOOutput) {
		return fmt.Errorf("software: allocation %d is not an IO output", h)
	}
	a.ioSent++
	return nil
}

// AllocationIOReceive acquires the next buffer from the producer.
func (d *Driver) AllocationIOReceive(h driver.Handle) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	a, err := lookup[allocation](d, h)
	if err != nil {
		return err
	}
	if !a.usage.Contains(driver.UsageIOInput) {
		return fmt.Errorf("software: allocation %d is not an IO input", h)
	}
	a.ioReceived++
	return nil
}

// AllocationState is a snapshot of an allocation's runtime state.
type AllocationState struct {
	Usage   driver.Usage
	Mipmaps driver.MipmapControl
	Adapter bool

	// Bytes is a copy of the whole backing store, all levels and faces.
	Bytes []byte

	Syncs             map[driver.Usage]int
	IOSent            int
	IOReceived        int
	MipmapGenerations int
}

// AllocationState returns a snapshot of the allocation named by h.
func (d *Driver) AllocationState(h driver.Handle) (AllocationState, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	a, err := lookup[allocation](d, h)
	if err != nil {
		return AllocationState{}, false
	}
	return AllocationState{
		Usage:             a.usage,
		Mipmaps:           a.mips,
		Adapter:           a.adapter,
		Bytes:             append([]byte(nil), a.store.data...),
		Syncs:             maps.Clone(a.syncs),
		IOSent:            a.ioSent,
		IOReceived:        a.ioReceived,
		MipmapGenerations: a.mipGens,
	}, true
}
