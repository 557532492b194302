// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rsc

import (
	"fmt"
	"slices"

	"honnef.co/go/safeish"

	"github.com/gogpu/rsc/driver"
)

// Intrinsic limits.
const (
	// MaxBlurRadius is the largest radius accepted by SetRadius.
	MaxBlurRadius = 25

	// DefaultBlurRadius is the radius of a new Blur intrinsic.
	DefaultBlurRadius = 5

	// HistogramBins is the required X dimension of a histogram output.
	HistogramBins = 256

	// LUTSize is the size of the four concatenated channel tables.
	LUTSize = 4 * 256
)

// Variable slots shared by several intrinsics.
const (
	slotParam0 = 0
	slotParam1 = 1
)

// BlendOp is a Porter-Duff or arithmetic blend operation. The value is the
// kernel slot of the operation.
type BlendOp uint32

// Blend operations.
const (
	BlendClear    BlendOp = 0
	BlendSrc      BlendOp = 1
	BlendDst      BlendOp = 2
	BlendSrcOver  BlendOp = 3
	BlendDstOver  BlendOp = 4
	BlendSrcIn    BlendOp = 5
	BlendDstIn    BlendOp = 6
	BlendSrcOut   BlendOp = 7
	BlendDstOut   BlendOp = 8
	BlendSrcAtop  BlendOp = 9
	BlendDstAtop  BlendOp = 10
	BlendXor      BlendOp = 11
	BlendMultiply BlendOp = 14
	BlendAdd      BlendOp = 34
	BlendSubtract BlendOp = 35
)

var blendOpNames = map[BlendOp]string{
	BlendClear: "Clear", BlendSrc: "Src", BlendDst: "Dst",
	BlendSrcOver: "SrcOver", BlendDstOver: "DstOver",
	BlendSrcIn: "SrcIn", BlendDstIn: "DstIn",
	BlendSrcOut: "SrcOut", BlendDstOut: "DstOut",
	BlendSrcAtop: "SrcAtop", BlendDstAtop: "DstAtop", BlendXor: "Xor",
	BlendMultiply: "Multiply", BlendAdd: "Add", BlendSubtract: "Subtract",
}

// String returns the name of the operation.
func (op BlendOp) String() string {
	if s, ok := blendOpNames[op]; ok {
		return s
	}
	return fmt.Sprintf("BlendOp(%d)", uint32(op))
}

// LUT channel offsets inside the 1024-byte table.
const (
	ChannelRed   = 0
	ChannelGreen = 256
	ChannelBlue  = 512
	ChannelAlpha = 768
)

// Color matrix presets, indexed [i*3+j] like SetColorMatrix3.
var (
	greyscaleMatrix = [9]float32{
		0.299, 0.299, 0.299,
		0.587, 0.587, 0.587,
		0.114, 0.114, 0.114,
	}
	yuvToRGBMatrix = [9]float32{
		1, 1, 1,
		0, -0.39465, 2.03211,
		1.13983, -0.5806, 0,
	}
	rgbToYUVMatrix = [9]float32{
		0.299, -0.14713, 0.615,
		0.587, -0.28886, -0.51499,
		0.114, 0.436, -0.10001,
	}
	identityMatrix = [16]float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
	defaultDot = [4]float32{0.299, 0.587, 0.114, 0}
)

// ScriptIntrinsic is a built-in kernel of the runtime specialized for an
// element. The operations available depend on Intrinsic(); calling an
// operation of another kind fails with ErrInvalidArgument.
//
// | Kind        | Parameters                          | Launch          |
// |-------------|-------------------------------------|-----------------|
// | Blur        | SetRadius, SetInput                 | Run             |
// | Convolve*   | SetCoefficients, SetInput           | Run             |
// | YuvToRGB    | SetInput                            | Run             |
// | ColorMatrix | SetColorMatrix3/4, presets          | Apply           |
// | LUT         | SetRed/Green/Blue/Alpha             | Apply           |
// | 3DLUT       | SetLUT                              | Apply           |
// | Blend       |                                     | Blend           |
// | Histogram   | SetOutput, SetDotCoefficients       | Histogram(Dot)  |
type ScriptIntrinsic struct {
	Script

	kind IntrinsicKind
	elem *Element

	radius float32
	coeffs []float32
	matrix [16]float32

	lut      [LUTSize]byte
	lutDirty bool
	lutAlloc *Allocation

	dot    [4]float32
	output *Allocation
}

// NewScriptIntrinsic creates intrinsic kind for element e.
//
// Accepted elements:
//   - Blur: U8 or U8_4
//   - ColorMatrix, Convolve3x3, Convolve5x5: U8 or F32 with 1 to 4 components
//   - Histogram: U8 with 1 to 4 components (the input element)
//   - LUT, YuvToRGB, Blend, 3DLUT: U8_4
func NewScriptIntrinsic(ctx *Context, kind IntrinsicKind, e *Element) (*ScriptIntrinsic, error) {
	if e == nil {
		return nil, fmt.Errorf("%w: nil element", ErrInvalidArgument)
	}
	if err := e.valid(); err != nil {
		return nil, err
	}
	if e.ctx != ctx {
		return nil, fmt.Errorf("%w: element belongs to another context", ErrInvalidArgument)
	}
	if err := checkIntrinsicElement(kind, e); err != nil {
		return nil, err
	}

	h, err := ctx.drv.ScriptIntrinsicCreate(kind, e.handle)
	if err != nil {
		return nil, fmt.Errorf("rsc: create intrinsic %v: %w", kind, err)
	}
	s := &ScriptIntrinsic{kind: kind, elem: e, matrix: identityMatrix, dot: defaultDot}
	s.name = kind.String()
	e.Retain()
	s.onRelease = func() {
		if s.lutAlloc != nil {
			s.lutAlloc.Destroy()
		}
		if s.output != nil {
			s.output.Destroy()
		}
		e.Destroy()
	}
	s.init(ctx, h, ObjectScript)
	ctx.drv.AssignName(h, s.name)

	if err := s.setDefaults(); err != nil {
		s.Destroy()
		return nil, err
	}
	return s, nil
}

func checkIntrinsicElement(kind IntrinsicKind, e *Element) error {
	u8 := e.isType(driver.DataTypeUint8)
	f32 := e.isType(driver.DataTypeFloat32)
	n := e.vectorSize
	var ok bool
	switch kind {
	case driver.IntrinsicBlur:
		ok = u8 && (n == 1 || n == 4)
	case driver.IntrinsicColorMatrix, driver.IntrinsicConvolve3x3, driver.IntrinsicConvolve5x5:
		ok = (u8 || f32) && n >= 1 && n <= 4
	case driver.IntrinsicHistogram:
		ok = u8 && n >= 1 && n <= 4
	case driver.IntrinsicLUT, driver.IntrinsicYuvToRGB, driver.IntrinsicBlend, driver.Intrinsic3DLUT:
		ok = u8 && n == 4
	default:
		return fmt.Errorf("%w: unknown intrinsic %v", ErrInvalidArgument, kind)
	}
	if !ok {
		return fmt.Errorf("%w: %v does not accept %v", ErrUnsupportedElement, kind, e)
	}
	return nil
}

// setDefaults uploads the initial parameters of the kernel.
func (s *ScriptIntrinsic) setDefaults() error {
	switch s.kind {
	case driver.IntrinsicBlur:
		return s.SetRadius(DefaultBlurRadius)
	case driver.IntrinsicConvolve3x3:
		return s.SetCoefficients([]float32{0, 0, 0, 0, 1, 0, 0, 0, 0})
	case driver.IntrinsicLUT:
		for i := range 256 {
			for _, ch := range [...]int{ChannelRed, ChannelGreen, ChannelBlue, ChannelAlpha} {
				s.lut[ch+i] = byte(i)
			}
		}
		u8, err := s.ctx.knownElement(ElementU8)
		if err != nil {
			return err
		}
		s.lutAlloc, err = NewSizedAllocation(s.ctx, u8, LUTSize, driver.UsageScript)
		if err != nil {
			return err
		}
		s.lutDirty = true
		return s.SetVarObject(slotParam0, s.lutAlloc)
	}
	return nil
}

// Intrinsic returns the kernel kind.
func (s *ScriptIntrinsic) Intrinsic() IntrinsicKind { return s.kind }

// Element returns the element the kernel was created for.
func (s *ScriptIntrinsic) Element() *Element { return s.elem }

func (s *ScriptIntrinsic) expect(op string, kinds ...IntrinsicKind) error {
	if !slices.Contains(kinds, s.kind) {
		return fmt.Errorf("%w: %v intrinsic has no %s", ErrInvalidArgument, s.kind, op)
	}
	return s.valid()
}

// checkIntrinsicAlloc fails with ErrTypeMismatch unless the element of a
// is compatible with want. Elements of the same primitive type and vector
// size match regardless of kind, so RGBA_8888 data feeds a U8_4 kernel.
func checkIntrinsicAlloc(role string, a *Allocation, want *Element) error {
	if err := a.valid(); err != nil {
		return err
	}
	got := a.typ.elem
	if got.IsCompatible(want) {
		return nil
	}
	if !got.IsComplex() && !want.IsComplex() && got.dt == want.dt && got.vectorSize == want.vectorSize {
		return nil
	}
	return fmt.Errorf("%w: %s element %v, want %v", ErrTypeMismatch, role, got, want)
}

func (s *ScriptIntrinsic) checkInOut(in, out *Allocation) error {
	if err := checkIntrinsicAlloc("input", in, s.elem); err != nil {
		return err
	}
	return checkIntrinsicAlloc("output", out, s.elem)
}

// SetInput sets the input allocation of Blur, Convolve3x3, Convolve5x5
// and YuvToRGB. The input element must match Element(), except for
// YuvToRGB which reads U8 planes.
func (s *ScriptIntrinsic) SetInput(in *Allocation) error {
	if err := s.expect("SetInput", driver.IntrinsicBlur, driver.IntrinsicConvolve3x3,
		driver.IntrinsicConvolve5x5, driver.IntrinsicYuvToRGB); err != nil {
		return err
	}
	if in == nil {
		return fmt.Errorf("%w: nil input", ErrInvalidArgument)
	}
	slot := uint32(slotParam1)
	want := s.elem
	if s.kind == driver.IntrinsicYuvToRGB {
		slot = slotParam0
		u8, err := s.ctx.knownElement(ElementU8)
		if err != nil {
			return err
		}
		want = u8
	}
	if err := checkIntrinsicAlloc("input", in, want); err != nil {
		return err
	}
	return s.SetVarObject(slot, in)
}

// Run launches Blur, Convolve3x3, Convolve5x5 or YuvToRGB into out, whose
// element must match Element().
func (s *ScriptIntrinsic) Run(out *Allocation) error {
	if err := s.expect("Run", driver.IntrinsicBlur, driver.IntrinsicConvolve3x3,
		driver.IntrinsicConvolve5x5, driver.IntrinsicYuvToRGB); err != nil {
		return err
	}
	if out == nil {
		return fmt.Errorf("%w: nil output", ErrInvalidArgument)
	}
	if err := checkIntrinsicAlloc("output", out, s.elem); err != nil {
		return err
	}
	return s.ForEach(0, nil, out, nil)
}

// Apply launches ColorMatrix, LUT or 3DLUT from in to out. Both elements
// must match Element().
func (s *ScriptIntrinsic) Apply(in, out *Allocation) error {
	if err := s.expect("Apply", driver.IntrinsicColorMatrix, driver.IntrinsicLUT,
		driver.Intrinsic3DLUT); err != nil {
		return err
	}
	if in == nil || out == nil {
		return fmt.Errorf("%w: Apply needs input and output", ErrInvalidArgument)
	}
	if err := s.checkInOut(in, out); err != nil {
		return err
	}
	if s.kind == driver.IntrinsicLUT && s.lutDirty {
		if err := s.lutAlloc.Copy1DFrom(s.lut[:]); err != nil {
			return err
		}
		s.lutDirty = false
	}
	return s.ForEach(0, in, out, nil)
}

// SetRadius sets the Blur radius, in (0, 25].
func (s *ScriptIntrinsic) SetRadius(r float32) error {
	if err := s.expect("SetRadius", driver.IntrinsicBlur); err != nil {
		return err
	}
	if !(r > 0 && r <= MaxBlurRadius) {
		return fmt.Errorf("%w: blur radius %v not in (0, %d]", ErrInvalidArgument, r, MaxBlurRadius)
	}
	if err := s.SetVarFloat32(slotParam0, r); err != nil {
		return err
	}
	s.radius = r
	return nil
}

// Radius returns the Blur radius.
func (s *ScriptIntrinsic) Radius() float32 { return s.radius }

// SetCoefficients sets the 9 (Convolve3x3) or 25 (Convolve5x5) weights,
// row by row.
func (s *ScriptIntrinsic) SetCoefficients(v []float32) error {
	if err := s.expect("SetCoefficients", driver.IntrinsicConvolve3x3, driver.IntrinsicConvolve5x5); err != nil {
		return err
	}
	want := 9
	if s.kind == driver.IntrinsicConvolve5x5 {
		want = 25
	}
	if len(v) != want {
		return fmt.Errorf("%w: %v needs %d coefficients, got %d", ErrInvalidArgument, s.kind, want, len(v))
	}
	c := slices.Clone(v)
	if err := s.SetVarBytes(slotParam0, safeish.SliceCast[[]byte](c)); err != nil {
		return err
	}
	s.coeffs = c
	return nil
}

// Coefficients returns a copy of the convolution weights.
func (s *ScriptIntrinsic) Coefficients() []float32 { return slices.Clone(s.coeffs) }

// SetColorMatrix4 sets the ColorMatrix from m, where m[i*4+j] is the
// weight of input channel i in output channel j.
func (s *ScriptIntrinsic) SetColorMatrix4(m [16]float32) error {
	if err := s.expect("SetColorMatrix4", driver.IntrinsicColorMatrix); err != nil {
		return err
	}
	return s.uploadMatrix(m)
}

// SetColorMatrix3 sets the RGB part of the ColorMatrix from m, where
// m[i*3+j] is the weight of input channel i in output channel j. Alpha
// passes through.
func (s *ScriptIntrinsic) SetColorMatrix3(m [9]float32) error {
	if err := s.expect("SetColorMatrix3", driver.IntrinsicColorMatrix); err != nil {
		return err
	}
	return s.uploadMatrix(expandMatrix3(m))
}

// SetGreyscale sets the ColorMatrix to luminance conversion.
func (s *ScriptIntrinsic) SetGreyscale() error { return s.SetColorMatrix3(greyscaleMatrix) }

// SetYUVtoRGB sets the ColorMatrix to YUV to RGB conversion.
func (s *ScriptIntrinsic) SetYUVtoRGB() error { return s.SetColorMatrix3(yuvToRGBMatrix) }

// SetRGBtoYUV sets the ColorMatrix to RGB to YUV conversion.
func (s *ScriptIntrinsic) SetRGBtoYUV() error { return s.SetColorMatrix3(rgbToYUVMatrix) }

// ColorMatrix returns the current 4×4 color matrix.
func (s *ScriptIntrinsic) ColorMatrix() [16]float32 { return s.matrix }

func expandMatrix3(m [9]float32) [16]float32 {
	out := identityMatrix
	for i := range 3 {
		for j := range 3 {
			out[i*4+j] = m[i*3+j]
		}
	}
	return out
}

func (s *ScriptIntrinsic) uploadMatrix(m [16]float32) error {
	if err := s.SetVarBytes(slotParam0, safeish.SliceCast[[]byte](m[:])); err != nil {
		return err
	}
	s.matrix = m
	return nil
}

// SetRed replaces entries base..base+len(values) of the red table.
func (s *ScriptIntrinsic) SetRed(base int, values []byte) error {
	return s.setTable(ChannelRed, base, values)
}

// SetGreen replaces entries of the green table.
func (s *ScriptIntrinsic) SetGreen(base int, values []byte) error {
	return s.setTable(ChannelGreen, base, values)
}

// SetBlue replaces entries of the blue table.
func (s *ScriptIntrinsic) SetBlue(base int, values []byte) error {
	return s.setTable(ChannelBlue, base, values)
}

// SetAlpha replaces entries of the alpha table.
func (s *ScriptIntrinsic) SetAlpha(base int, values []byte) error {
	return s.setTable(ChannelAlpha, base, values)
}

// setTable updates the host copy of a channel table. The copy is
// uploaded by the next Apply.
func (s *ScriptIntrinsic) setTable(channel, base int, values []byte) error {
	if err := s.expect("lookup tables", driver.IntrinsicLUT); err != nil {
		return err
	}
	if len(values) == 0 || base < 0 || base+len(values) > 256 {
		return fmt.Errorf("%w: table range [%d, %d) outside [0, 256)", ErrOutOfRange, base, base+len(values))
	}
	copy(s.lut[channel+base:], values)
	s.lutDirty = true
	return nil
}

// LUT returns the host copy of the four channel tables.
func (s *ScriptIntrinsic) LUT() [LUTSize]byte { return s.lut }

// SetLUT sets the 3D lookup table of a 3DLUT intrinsic. lut must be a
// 3D allocation of U8_4.
func (s *ScriptIntrinsic) SetLUT(lut *Allocation) error {
	if err := s.expect("SetLUT", driver.Intrinsic3DLUT); err != nil {
		return err
	}
	if lut == nil {
		return fmt.Errorf("%w: nil lookup table", ErrInvalidArgument)
	}
	if err := lut.valid(); err != nil {
		return err
	}
	t := lut.typ
	if t.dims.Z == 0 {
		return fmt.Errorf("%w: lookup table must be 3D", ErrInvalidDimensions)
	}
	if !t.elem.isType(driver.DataTypeUint8) || t.elem.vectorSize != 4 {
		return fmt.Errorf("%w: lookup table element %v, want U8_4", ErrUnsupportedElement, t.elem)
	}
	return s.SetVarObject(slotParam0, lut)
}

// Blend launches operation op from in to out. Both elements must match
// Element().
func (s *ScriptIntrinsic) Blend(op BlendOp, in, out *Allocation) error {
	if err := s.expect("Blend", driver.IntrinsicBlend); err != nil {
		return err
	}
	if _, ok := blendOpNames[op]; !ok {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, op)
	}
	if in == nil || out == nil {
		return fmt.Errorf("%w: Blend needs input and output", ErrInvalidArgument)
	}
	if err := s.checkInOut(in, out); err != nil {
		return err
	}
	return s.ForEach(uint32(op), in, out, nil)
}

// SetOutput sets the histogram output: a 1D allocation of 256 U32 or I32
// elements with 1 to 4 components. The intrinsic holds a reference to the
// output until it is replaced or the intrinsic is destroyed.
func (s *ScriptIntrinsic) SetOutput(out *Allocation) error {
	if err := s.expect("SetOutput", driver.IntrinsicHistogram); err != nil {
		return err
	}
	if out == nil {
		return fmt.Errorf("%w: nil output", ErrInvalidArgument)
	}
	if err := out.valid(); err != nil {
		return err
	}
	t := out.typ
	if !t.elem.isType(driver.DataTypeUint32, driver.DataTypeInt32) || t.elem.vectorSize > 4 {
		return fmt.Errorf("%w: histogram output %v, want U32 or I32", ErrUnsupportedElement, t.elem)
	}
	if t.dims.X != HistogramBins || t.dims.Y != 0 || t.mipmaps {
		return fmt.Errorf("%w: histogram output must be 1D with %d elements", ErrInvalidDimensions, HistogramBins)
	}
	if err := s.SetVarObject(slotParam1, out); err != nil {
		return err
	}
	out.Retain()
	if s.output != nil {
		s.output.Destroy()
	}
	s.output = out
	return nil
}

// SetDotCoefficients sets the channel weights of HistogramDot. Every
// weight must be >= 0 and their sum <= 1.
func (s *ScriptIntrinsic) SetDotCoefficients(r, g, b, a float32) error {
	if err := s.expect("SetDotCoefficients", driver.IntrinsicHistogram); err != nil {
		return err
	}
	if r < 0 || g < 0 || b < 0 || a < 0 {
		return fmt.Errorf("%w: negative dot coefficient", ErrInvalidArgument)
	}
	if r+g+b+a > 1 {
		return fmt.Errorf("%w: dot coefficients sum to %v", ErrInvalidArgument, r+g+b+a)
	}
	dot := [4]float32{r, g, b, a}
	if err := s.SetVarBytes(slotParam0, safeish.SliceCast[[]byte](dot[:])); err != nil {
		return err
	}
	s.dot = dot
	return nil
}

// DotCoefficients returns the HistogramDot weights.
func (s *ScriptIntrinsic) DotCoefficients() [4]float32 { return s.dot }

// Histogram counts the values of every channel of in. The input vector
// size must be at least the output vector size.
func (s *ScriptIntrinsic) Histogram(in *Allocation) error {
	if err := s.checkHistogram("Histogram", in); err != nil {
		return err
	}
	if in.typ.elem.vectorSize < s.output.typ.elem.vectorSize {
		return fmt.Errorf("%w: input vector size %d below output vector size %d",
			ErrTypeMismatch, in.typ.elem.vectorSize, s.output.typ.elem.vectorSize)
	}
	return s.ForEach(0, in, nil, nil)
}

// HistogramDot counts the dot product of every pixel of in with the dot
// coefficients. The output must have one component.
func (s *ScriptIntrinsic) HistogramDot(in *Allocation) error {
	if err := s.checkHistogram("HistogramDot", in); err != nil {
		return err
	}
	if n := s.output.typ.elem.vectorSize; n != 1 {
		return fmt.Errorf("%w: output vector size %d, want 1", ErrTypeMismatch, n)
	}
	return s.ForEach(1, in, nil, nil)
}

func (s *ScriptIntrinsic) checkHistogram(op string, in *Allocation) error {
	if err := s.expect(op, driver.IntrinsicHistogram); err != nil {
		return err
	}
	if s.output == nil {
		return fmt.Errorf("%w: histogram output not set", ErrInvalidArgument)
	}
	if in == nil {
		return fmt.Errorf("%w: nil input", ErrInvalidArgument)
	}
	if !in.typ.elem.isType(driver.DataTypeUint8) || in.typ.elem.vectorSize > 4 {
		return fmt.Errorf("%w: histogram input %v, want U8", ErrUnsupportedElement, in.typ.elem)
	}
	return nil
}
