// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package halgpu

import (
	"fmt"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rsc/driver"
	"github.com/gogpu/rsc/internal/layout"
)

// createStorage allocates a HAL buffer of at least size bytes.
// Caller must hold d.mu.
func (d *Driver) createStorage(label string, size int, usage driver.Usage) (*storage, error) {
	padded := max(layout.AlignUp(size, copyAlignment), copyAlignment)
	buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(padded),
		Usage: bufferUsage(usage),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create buffer of %d bytes: %v", driver.ErrOutOfMemory, padded, err)
	}
	return &storage{buf: buf, shadow: make([]byte, padded), refs: 1}, nil
}

// AllocationCreateTyped creates a HAL buffer for typ. A backing slice
// seeds the buffer contents; the buffer does not alias it.
func (d *Driver) AllocationCreateTyped(th driver.Handle, mips driver.MipmapControl, usage driver.Usage, backing []byte) (driver.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	t, err := lookup[typ](d, th)
	if err != nil {
		return driver.InvalidHandle, err
	}
	shape := layout.NewShape(t.dims, t.mipmaps, t.faces)
	size := int(shape.TotalCount()) * int(t.elem.size)

	st, err := d.createStorage(fmt.Sprintf("rsc_allocation_%d", d.next.Load()+1), size, usage)
	if err != nil {
		return driver.InvalidHandle, err
	}
	if backing != nil {
		copy(st.shadow, backing[:min(len(backing), size)])
		st.flush(d.queue, 0, size)
	}
	h := d.insert(&allocation{
		typ:   t,
		shape: shape,
		esize: t.elem.size,
		usage: usage,
		store: st,
	})
	d.log().Debug("halgpu allocation created", "handle", h, "bytes", size, "mips", mips)
	return h, nil
}

// AllocationAdapterCreate creates a view sharing the buffer of base.
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
	base.store.refs++
	return d.insert(&allocation{
		typ:     t,
		shape:   base.shape,
		esize:   base.esize,
		usage:   base.usage,
		store:   base.store,
		adapter: true,
		span:    [3]bool{t.dims.X > 0, t.dims.Y > 0, t.dims.Z > 0},
	}), nil
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
		return fmt.Errorf("halgpu: allocation %d is not an adapter", h)
	}
	if lod >= a.shape.Levels || uint32(face) >= a.shape.Faces {
		return fmt.Errorf("halgpu: lod %d face %d outside allocation", lod, face)
	}
	a.at.x, a.at.y, a.at.z, a.at.lod, a.at.face = x, y, z, lod, face
	return nil
}

// window resolves the cells addressed by a call.
func (a *allocation) window(lod uint32, face driver.CubemapFace) layout.Window {
	if a.adapter {
		return a.shape.Level(a.at.lod, uint32(a.at.face)).Sub(a.at.x, a.at.y, a.at.z, a.span)
	}
	return a.shape.Level(lod, uint32(face))
}

// span tracks the byte range touched by a write.
type span struct{ lo, hi int }

func (s *span) add(off, n int) {
	if s.hi == 0 || off < s.lo {
		s.lo = off
	}
	s.hi = max(s.hi, off+n)
}

// cellBytes returns the shadow bytes of storage cell idx.
func (a *allocation) cellBytes(idx uint32, ok bool) ([]byte, int, error) {
	if !ok {
		return nil, 0, fmt.Errorf("halgpu: cell outside allocation")
	}
	off := int(idx) * int(a.esize)
	if off+int(a.esize) > len(a.store.shadow) {
		return nil, 0, fmt.Errorf("halgpu: cell %d outside buffer", idx)
	}
	return a.store.shadow[off : off+int(a.esize)], off, nil
}

// Allocation1DData writes count cells and uploads the touched range.
func (d *Driver) Allocation1DData(h driver.Handle, off, lod, count uint32, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	a, err := lookup[allocation](d, h)
	if err != nil {
		return err
	}
	es := int(a.esize)
	if len(data) < int(count)*es {
		return fmt.Errorf("halgpu: %d bytes for %d cells", len(data), count)
	}
	w := a.window(lod, driver.FacePositiveX)
	var dirty span
	for i := uint32(0); i < count; i++ {
		cell, at, err := a.cellBytes(w.Linear(off + i))
		if err != nil {
			return err
		}
		copy(cell, data[int(i)*es:])
		dirty.add(at, es)
	}
	a.store.flush(d.queue, dirty.lo, dirty.hi)
	return nil
}

// Allocation1DRead reads count cells from the shadow.
func (d *Driver) Allocation1DRead(h driver.Handle, off, lod, count uint32, data []byte) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	a, err := lookup[allocation](d, h)
	if err != nil {
		return err
	}
	es := int(a.esize)
	if len(data) < int(count)*es {
		return fmt.Errorf("halgpu: %d bytes for %d cells", len(data), count)
	}
	w := a.window(lod, driver.FacePositiveX)
	for i := uint32(0); i < count; i++ {
		cell, _, err := a.cellBytes(w.Linear(off + i))
		if err != nil {
			return err
		}
		copy(data[int(i)*es:], cell)
	}
	return nil
}

// rect moves a rectangle between data and window w. write selects the
// direction; the touched byte range is returned.
func (a *allocation) rect(w layout.Window, xoff, yoff, cols, rows uint32, data []byte, stride int, write bool) (span, error) {
	var dirty span
	es := int(a.esize)
	if rows > 0 && len(data) < stride*int(rows-1)+int(cols)*es {
		return dirty, fmt.Errorf("halgpu: %d bytes for %dx%d rows of stride %d", len(data), cols, rows, stride)
	}
	for r := uint32(0); r < rows; r++ {
		row := data[int(r)*stride:]
		for c := uint32(0); c < cols; c++ {
			cell, at, err := a.cellBytes(w.Cell(xoff+c, yoff+r, 0))
			if err != nil {
				return dirty, err
			}
			if write {
				copy(cell, row[int(c)*es:])
				dirty.add(at, es)
			} else {
				copy(row[int(c)*es:], cell)
			}
		}
	}
	return dirty, nil
}

// Allocation2DData writes a rectangle and uploads the touched range.
func (d *Driver) Allocation2DData(h driver.Handle, xoff, yoff, lod uint32, face driver.CubemapFace, w, hgt uint32, data []byte, stride int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	a, err := lookup[allocation](d, h)
	if err != nil {
		return err
	}
	dirty, err := a.rect(a.window(lod, face), xoff, yoff, w, hgt, data, stride, true)
	if err != nil {
		return err
	}
	a.store.flush(d.queue, dirty.lo, dirty.hi)
	return nil
}

// Allocation2DRead reads a rectangle from the shadow.
func (d *Driver) Allocation2DRead(h driver.Handle, xoff, yoff, lod uint32, face driver.CubemapFace, w, hgt uint32, data []byte, stride int) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	a, err := lookup[allocation](d, h)
	if err != nil {
		return err
	}
	_, err = a.rect(a.window(lod, face), xoff, yoff, w, hgt, data, stride, false)
	return err
}

// AllocationCopy2DRange copies between shadows and uploads the
// destination range.
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
		return fmt.Errorf("halgpu: copy between cells of %d and %d bytes", dst.esize, src.esize)
	}
	stride := int(w * src.esize)
	tmp := make([]byte, stride*int(h))
	if _, err := src.rect(src.window(srcLOD, srcFace), srcX, srcY, w, h, tmp, stride, false); err != nil {
		return err
	}
	dirty, err := dst.rect(dst.window(dstLOD, dstFace), dstX, dstY, w, h, tmp, stride, true)
	if err != nil {
		return err
	}
	dst.store.flush(d.queue, dirty.lo, dirty.hi)
	return nil
}

// AllocationResize replaces the buffer with one sized for typ, keeping
// the overlapping rows.
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
	if a.adapter || a.store.refs > 1 {
		return fmt.Errorf("halgpu: allocation %d is shared and cannot be resized", h)
	}
	shape := layout.NewShape(t.dims, t.mipmaps, t.faces)
	size := int(shape.TotalCount()) * int(a.esize)
	st, err := d.createStorage(fmt.Sprintf("rsc_allocation_%d", h), size, a.usage)
	if err != nil {
		return err
	}

	es := int(a.esize)
	rows := min(max(a.shape.Y, 1), max(shape.Y, 1))
	cols := int(min(a.shape.X, shape.X)) * es
	for y := uint32(0); y < rows; y++ {
		from := int(y*a.shape.X) * es
		to := int(y*shape.X) * es
		copy(st.shadow[to:to+cols], a.store.shadow[from:])
	}
	st.flush(d.queue, 0, size)

	a.store.unref(d.device)
	a.store = st
	a.typ = t
	a.shape = shape
	return nil
}

// AllocationGenerateMipmaps is not available on HAL buffers.
func (d *Driver) AllocationGenerateMipmaps(h driver.Handle) error {
	return fmt.Errorf("%w: mipmap generation", driver.ErrNotImplemented)
}

// AllocationSyncAll uploads the whole shadow when script memory becomes
// authoritative. Other sources already live in the buffer.
func (d *Driver) AllocationSyncAll(h driver.Handle, src driver.Usage) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	a, err := lookup[allocation](d, h)
	if err != nil {
		return err
	}
	if src == driver.UsageScript {
		a.store.flush(d.queue, 0, len(a.store.shadow))
	}
	return nil
}

// AllocationIOSend is not available on HAL buffers.
func (d *Driver) AllocationIOSend(h driver.Handle) error {
	return fmt.Errorf("%w: IO send", driver.ErrNotImplemented)
}

// AllocationIOReceive is not available on HAL buffers.
func (d *Driver) AllocationIOReceive(h driver.Handle) error {
	return fmt.Errorf("%w: IO receive", driver.ErrNotImplemented)
}

// Buffer returns the HAL buffer backing the allocation named by h.
func (d *Driver) Buffer(h driver.Handle) (hal.Buffer, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	a, err := lookup[allocation](d, h)
	if err != nil {
		return nil, false
	}
	return a.store.buf, true
}
