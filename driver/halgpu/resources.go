// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package halgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rsc/driver"
	"github.com/gogpu/rsc/internal/layout"
)

// copyAlignment is the alignment HAL requires for buffer write offsets
// and sizes.
const copyAlignment = 4

// element is the bookkeeping record of an element. Elements have no HAL
// counterpart.
type element struct {
	dt      driver.DataType
	dk      driver.DataKind
	size    uint32
	align   uint32
	complex bool
}

// typ is the bookkeeping record of a type.
type typ struct {
	elem    *element
	dims    layout.Dims
	mipmaps bool
	faces   bool
}

// storage is a HAL buffer with its host shadow, shared by an allocation
// and its adapters.
type storage struct {
	buf    hal.Buffer
	shadow []byte
	refs   int
}

// unref drops a reference and destroys the buffer with the last one.
func (s *storage) unref(device hal.Device) {
	s.refs--
	if s.refs > 0 || s.buf == nil {
		return
	}
	if device != nil {
		device.DestroyBuffer(s.buf)
	}
	s.buf = nil
}

// flush uploads shadow bytes [lo, hi) widened to the copy alignment.
func (s *storage) flush(queue hal.Queue, lo, hi int) {
	if hi <= lo || s.buf == nil {
		return
	}
	lo -= lo % copyAlignment
	hi = min(layout.AlignUp(hi, copyAlignment), len(s.shadow))
	queue.WriteBuffer(s.buf, uint64(lo), s.shadow[lo:hi])
}

// allocation is the record of an allocation or adapter.
type allocation struct {
	typ     *typ
	shape   layout.Shape
	esize   uint32
	usage   driver.Usage
	store   *storage
	adapter bool
	span    [3]bool
	at      struct {
		x, y, z, lod uint32
		face         driver.CubemapFace
	}
}

// sampler wraps a HAL sampler.
type sampler struct {
	raw  hal.Sampler
	desc driver.SamplerDesc
}

// script is the record of a script or intrinsic. Variables are kept on
// the host until a launch path exists.
type script struct {
	name      string
	module    hal.ShaderModule
	intrinsic driver.IntrinsicID
	vars      map[uint32][]byte
	objects   map[uint32]driver.Handle
	bound     map[uint32]driver.Handle
}

// bufferUsage maps allocation usage to HAL buffer usage. Every buffer can
// be written from and read back to the host.
func bufferUsage(u driver.Usage) gputypes.BufferUsage {
	usage := gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst | gputypes.BufferUsageCopySrc
	if u.Contains(driver.UsageGraphicsVertex) {
		usage |= gputypes.BufferUsageVertex
	}
	if u.Contains(driver.UsageGraphicsConstants) {
		usage |= gputypes.BufferUsageUniform
	}
	return usage
}

// TextureFormat returns the texture format matching a pixel element, or
// gputypes.TextureFormatUndefined when HAL has no direct equivalent.
func TextureFormat(dt driver.DataType, dk driver.DataKind) gputypes.TextureFormat {
	if dt != driver.DataTypeUint8 {
		return gputypes.TextureFormatUndefined
	}
	switch dk {
	case driver.DataKindPixelA, driver.DataKindPixelL:
		return gputypes.TextureFormatR8Unorm
	case driver.DataKindPixelRGBA:
		return gputypes.TextureFormatRGBA8Unorm
	default:
		return gputypes.TextureFormatUndefined
	}
}

// addressMode maps a wrap value to a HAL address mode.
func addressMode(v driver.SamplerValue) (gputypes.AddressMode, error) {
	switch v {
	case driver.SamplerWrap:
		return gputypes.AddressModeRepeat, nil
	case driver.SamplerClamp:
		return gputypes.AddressModeClampToEdge, nil
	case driver.SamplerMirroredRepeat:
		return gputypes.AddressModeMirrorRepeat, nil
	default:
		return 0, fmt.Errorf("halgpu: %v is not a wrap mode", v)
	}
}

// filterModes maps minification and magnification values to HAL min, mag
// and mipmap filters.
func filterModes(minV, magV driver.SamplerValue) (minF, magF, mipF gputypes.FilterMode, err error) {
	switch magV {
	case driver.SamplerNearest:
		magF = gputypes.FilterModeNearest
	case driver.SamplerLinear:
		magF = gputypes.FilterModeLinear
	default:
		return 0, 0, 0, fmt.Errorf("halgpu: %v is not a magnification filter", magV)
	}
	switch minV {
	case driver.SamplerNearest:
		minF, mipF = gputypes.FilterModeNearest, gputypes.FilterModeNearest
	case driver.SamplerLinear, driver.SamplerLinearMipNearest:
		minF, mipF = gputypes.FilterModeLinear, gputypes.FilterModeNearest
	case driver.SamplerLinearMipLinear:
		minF, mipF = gputypes.FilterModeLinear, gputypes.FilterModeLinear
	default:
		return 0, 0, 0, fmt.Errorf("halgpu: %v is not a minification filter", minV)
	}
	return minF, magF, mipF, nil
}
