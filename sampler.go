// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rsc

import (
	"fmt"
	"math"

	"github.com/gogpu/rsc/driver"
)

// Sampler describes how kernels filter and wrap texture reads.
//
// Samplers are immutable once created.
type Sampler struct {
	object
	desc driver.SamplerDesc
}

// NewSampler creates a sampler. The R wrap mode is Wrap.
// Every call mints a new runtime object; use [Context.Sampler] for the
// cached presets.
func NewSampler(ctx *Context, minFilter, magFilter, wrapS, wrapT SamplerValue, anisotropy float32) (*Sampler, error) {
	return NewSamplerBuilder(ctx).
		SetMinification(minFilter).
		SetMagnification(magFilter).
		SetWrapS(wrapS).
		SetWrapT(wrapT).
		SetAnisotropy(anisotropy).
		Create()
}

// SamplerBuilder assembles a Sampler.
type SamplerBuilder struct {
	ctx  *Context
	desc driver.SamplerDesc
}

// NewSamplerBuilder returns a builder preset to nearest filtering,
// wrapping on every axis and anisotropy 1.
func NewSamplerBuilder(ctx *Context) *SamplerBuilder {
	return &SamplerBuilder{
		ctx: ctx,
		desc: driver.SamplerDesc{
			Min:        driver.SamplerNearest,
			Mag:        driver.SamplerNearest,
			WrapS:      driver.SamplerWrap,
			WrapT:      driver.SamplerWrap,
			WrapR:      driver.SamplerWrap,
			Anisotropy: 1,
		},
	}
}

// SetMinification sets the minification filter.
func (b *SamplerBuilder) SetMinification(v SamplerValue) *SamplerBuilder {
	b.desc.Min = v
	return b
}

// SetMagnification sets the magnification filter.
func (b *SamplerBuilder) SetMagnification(v SamplerValue) *SamplerBuilder {
	b.desc.Mag = v
	return b
}

// SetWrapS sets the wrap mode of the S axis.
func (b *SamplerBuilder) SetWrapS(v SamplerValue) *SamplerBuilder {
	b.desc.WrapS = v
	return b
}

// SetWrapT sets the wrap mode of the T axis.
func (b *SamplerBuilder) SetWrapT(v SamplerValue) *SamplerBuilder {
	b.desc.WrapT = v
	return b
}

// SetWrapR sets the wrap mode of the R axis.
func (b *SamplerBuilder) SetWrapR(v SamplerValue) *SamplerBuilder {
	b.desc.WrapR = v
	return b
}

// SetAnisotropy sets the anisotropy level.
func (b *SamplerBuilder) SetAnisotropy(v float32) *SamplerBuilder {
	b.desc.Anisotropy = v
	return b
}

// Create validates the configuration and creates the sampler.
func (b *SamplerBuilder) Create() (*Sampler, error) {
	if err := validateSampler(b.desc); err != nil {
		return nil, err
	}
	if err := b.ctx.check(); err != nil {
		return nil, err
	}
	h, err := b.ctx.drv.SamplerCreate(b.desc)
	if err != nil {
		return nil, fmt.Errorf("rsc: create sampler: %w", err)
	}
	s := &Sampler{desc: b.desc}
	s.init(b.ctx, h, ObjectSampler)
	return s, nil
}

func validateSampler(d driver.SamplerDesc) error {
	switch d.Min {
	case driver.SamplerNearest, driver.SamplerLinear,
		driver.SamplerLinearMipNearest, driver.SamplerLinearMipLinear:
	default:
		return fmt.Errorf("%w: minification filter %v", ErrInvalidArgument, d.Min)
	}
	switch d.Mag {
	case driver.SamplerNearest, driver.SamplerLinear:
	default:
		return fmt.Errorf("%w: magnification filter %v", ErrInvalidArgument, d.Mag)
	}
	for _, w := range [...]driver.SamplerValue{d.WrapS, d.WrapT, d.WrapR} {
		switch w {
		case driver.SamplerWrap, driver.SamplerClamp, driver.SamplerMirroredRepeat:
		default:
			return fmt.Errorf("%w: wrap mode %v", ErrInvalidArgument, w)
		}
	}
	if d.Anisotropy < 0 || math.IsNaN(float64(d.Anisotropy)) {
		return fmt.Errorf("%w: anisotropy %v", ErrInvalidArgument, d.Anisotropy)
	}
	return nil
}

// Minification returns the minification filter.
func (s *Sampler) Minification() SamplerValue { return s.desc.Min }

// Magnification returns the magnification filter.
func (s *Sampler) Magnification() SamplerValue { return s.desc.Mag }

// WrapS returns the wrap mode of the S axis.
func (s *Sampler) WrapS() SamplerValue { return s.desc.WrapS }

// WrapT returns the wrap mode of the T axis.
func (s *Sampler) WrapT() SamplerValue { return s.desc.WrapT }

// WrapR returns the wrap mode of the R axis.
func (s *Sampler) WrapR() SamplerValue { return s.desc.WrapR }

// Anisotropy returns the anisotropy level.
func (s *Sampler) Anisotropy() float32 { return s.desc.Anisotropy }

// SamplerPreset names one of the samplers a Context caches.
type SamplerPreset int

// Sampler presets. The LinearMipLinear presets use linear magnification.
const (
	SamplerClampNearest SamplerPreset = iota
	SamplerClampLinear
	SamplerClampLinearMipLinear
	SamplerWrapNearest
	SamplerWrapLinear
	SamplerWrapLinearMipLinear
	SamplerMirroredRepeatNearest
	SamplerMirroredRepeatLinear
	SamplerMirroredRepeatLinearMipLinear

	samplerPresetCount
)

var samplerPresetNames = [samplerPresetCount]string{
	"CLAMP_NEAREST", "CLAMP_LINEAR", "CLAMP_LINEAR_MIP_LINEAR",
	"WRAP_NEAREST", "WRAP_LINEAR", "WRAP_LINEAR_MIP_LINEAR",
	"MIRRORED_REPEAT_NEAREST", "MIRRORED_REPEAT_LINEAR", "MIRRORED_REPEAT_LINEAR_MIP_LINEAR",
}

// SamplerPresets returns every preset in declaration order.
func SamplerPresets() []SamplerPreset {
	ps := make([]SamplerPreset, samplerPresetCount)
	for i := range ps {
		ps[i] = SamplerPreset(i)
	}
	return ps
}

// String returns the conventional preset name.
func (p SamplerPreset) String() string {
	if p < 0 || p >= samplerPresetCount {
		return fmt.Sprintf("SamplerPreset(%d)", int(p))
	}
	return samplerPresetNames[p]
}

// Desc returns the sampler configuration of the preset.
func (p SamplerPreset) Desc() driver.SamplerDesc {
	wraps := [...]driver.SamplerValue{driver.SamplerClamp, driver.SamplerWrap, driver.SamplerMirroredRepeat}
	wrap := wraps[int(p)/3%3]
	d := driver.SamplerDesc{WrapS: wrap, WrapT: wrap, WrapR: driver.SamplerWrap, Anisotropy: 1}
	switch p % 3 {
	case 0:
		d.Min, d.Mag = driver.SamplerNearest, driver.SamplerNearest
	case 1:
		d.Min, d.Mag = driver.SamplerLinear, driver.SamplerLinear
	case 2:
		d.Min, d.Mag = driver.SamplerLinearMipLinear, driver.SamplerLinear
	}
	return d
}

// Sampler returns the preset p. Repeated calls return the same *Sampler.
// The sampler is owned by the context: Destroy on it is ignored and Close
// releases it.
func (c *Context) Sampler(p SamplerPreset) (*Sampler, error) {
	if p < 0 || p >= samplerPresetCount {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, p)
	}
	if err := c.check(); err != nil {
		return nil, err
	}
	return c.samplers.GetOrCreate(p, func() (*Sampler, error) {
		d := p.Desc()
		s, err := NewSampler(c, d.Min, d.Mag, d.WrapS, d.WrapT, d.Anisotropy)
		if err != nil {
			return nil, err
		}
		s.pinned = true
		return s, nil
	})
}
