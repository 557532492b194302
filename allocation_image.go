// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rsc

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/gogpu/rsc/driver"
)

// isRGBA8888 reports whether the allocation stores 8-bit RGBA pixels.
func (a *Allocation) isRGBA8888() bool {
	e := a.typ.elem
	return !e.IsComplex() && e.dt == driver.DataTypeUint8 && e.vectorSize == 4 &&
		(e.dk == driver.DataKindPixelRGBA || e.dk == driver.DataKindUser)
}

// checkImage validates that a can exchange pixels with an image.
func (a *Allocation) checkImage() error {
	if !a.isRGBA8888() {
		return fmt.Errorf("%w: images need an RGBA_8888 or U8_4 element, have %v", ErrTypeMismatch, a.typ.elem)
	}
	if a.cur.Y == 0 || a.cur.Z > 0 {
		return fmt.Errorf("%w: images need a 2D allocation", ErrInvalidDimensions)
	}
	return nil
}

// CopyFromImage writes img to the current view. The allocation must be
// 2D with an RGBA_8888 (or U8_4) element and the same size as img.
// Pixels are converted to non-premultiplied RGBA.
func (a *Allocation) CopyFromImage(img image.Image) error {
	if err := a.checkImage(); err != nil {
		return err
	}
	b := img.Bounds()
	if uint32(b.Dx()) != a.cur.X || uint32(b.Dy()) != a.cur.Y {
		return fmt.Errorf("%w: image %dx%d, allocation %dx%d",
			ErrInvalidDimensions, b.Dx(), b.Dy(), a.cur.X, a.cur.Y)
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return a.Copy2DStridedFromAll(dst.Pix, dst.Stride)
}

// CopyFromImageScaled writes img to the current view, resampling it to
// the allocation size with s. A nil s uses draw.ApproxBiLinear.
func (a *Allocation) CopyFromImageScaled(img image.Image, s draw.Scaler) error {
	if err := a.checkImage(); err != nil {
		return err
	}
	if s == nil {
		s = draw.ApproxBiLinear
	}
	dst := image.NewNRGBA(image.Rect(0, 0, int(a.cur.X), int(a.cur.Y)))
	s.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return a.Copy2DStridedFromAll(dst.Pix, dst.Stride)
}

// CopyToImage reads the current view into a new image.
func (a *Allocation) CopyToImage() (*image.NRGBA, error) {
	if err := a.checkImage(); err != nil {
		return nil, err
	}
	img := image.NewNRGBA(image.Rect(0, 0, int(a.cur.X), int(a.cur.Y)))
	if err := a.Copy2DStridedToAll(img.Pix, img.Stride); err != nil {
		return nil, err
	}
	return img, nil
}

// NewAllocationFromImage creates a 2D RGBA_8888 allocation holding img.
func NewAllocationFromImage(ctx *Context, img image.Image, mips MipmapControl, usage Usage) (*Allocation, error) {
	e, err := ctx.knownElement(ElementRGBA8888)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidDimensions)
	}
	t, err := NewTypeBuilder(ctx, e).
		SetX(uint32(b.Dx())).
		SetY(uint32(b.Dy())).
		SetMipmaps(mips != driver.MipmapNone).
		Create()
	if err != nil {
		return nil, err
	}
	defer t.Destroy()

	a, err := newAllocation(ctx, t, mips, usage, nil)
	if err != nil {
		return nil, err
	}
	if err := a.CopyFromImage(img); err != nil {
		a.Destroy()
		return nil, err
	}
	if mips == driver.MipmapFull {
		if err := a.GenerateMipmaps(); err != nil {
			a.Destroy()
			return nil, err
		}
	}
	return a, nil
}
