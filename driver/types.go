// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package driver

import "fmt"

// Handle is an opaque reference to a runtime object.
//
// Each driver maintains a mapping between handles and its own resources.
// Handles are never reused while the driver is open.
type Handle uint64

// InvalidHandle is the zero value, representing a null object reference.
const InvalidHandle Handle = 0

// IsValid reports whether h refers to an object.
func (h Handle) IsValid() bool { return h != InvalidHandle }

// DataType identifies the scalar type of an element.
//
// The numeric values match the runtime's native enumeration so that
// handles and reflection data stay interchangeable between drivers.
type DataType uint32

// Data types.
const (
	DataTypeNone    DataType = 0
	DataTypeFloat16 DataType = 1
	DataTypeFloat32 DataType = 2
	DataTypeFloat64 DataType = 3
	DataTypeInt8    DataType = 4
	DataTypeInt16   DataType = 5
	DataTypeInt32   DataType = 6
	DataTypeInt64   DataType = 7
	DataTypeUint8   DataType = 8
	DataTypeUint16  DataType = 9
	DataTypeUint32  DataType = 10
	DataTypeUint64  DataType = 11
	DataTypeBoolean DataType = 12

	// Packed pixel types.
	DataTypeUint565  DataType = 13
	DataTypeUint5551 DataType = 14
	DataTypeUint4444 DataType = 15

	// Matrix types (float components).
	DataTypeMatrix4x4 DataType = 16
	DataTypeMatrix3x3 DataType = 17
	DataTypeMatrix2x2 DataType = 18

	// Object handle types.
	DataTypeElement         DataType = 1000
	DataTypeType            DataType = 1001
	DataTypeAllocation      DataType = 1002
	DataTypeSampler         DataType = 1003
	DataTypeScript          DataType = 1004
	DataTypeMesh            DataType = 1005
	DataTypeProgramFragment DataType = 1006
	DataTypeProgramVertex   DataType = 1007
	DataTypeProgramRaster   DataType = 1008
	DataTypeProgramStore    DataType = 1009
	DataTypeFont            DataType = 1010
)

var dataTypeNames = map[DataType]string{
	DataTypeNone:            "None",
	DataTypeFloat16:         "Float16",
	DataTypeFloat32:         "Float32",
	DataTypeFloat64:         "Float64",
	DataTypeInt8:            "Int8",
	DataTypeInt16:           "Int16",
	DataTypeInt32:           "Int32",
	DataTypeInt64:           "Int64",
	DataTypeUint8:           "Uint8",
	DataTypeUint16:          "Uint16",
	DataTypeUint32:          "Uint32",
	DataTypeUint64:          "Uint64",
	DataTypeBoolean:         "Boolean",
	DataTypeUint565:         "Uint565",
	DataTypeUint5551:        "Uint5551",
	DataTypeUint4444:        "Uint4444",
	DataTypeMatrix4x4:       "Matrix4x4",
	DataTypeMatrix3x3:       "Matrix3x3",
	DataTypeMatrix2x2:       "Matrix2x2",
	DataTypeElement:         "Element",
	DataTypeType:            "Type",
	DataTypeAllocation:      "Allocation",
	DataTypeSampler:         "Sampler",
	DataTypeScript:          "Script",
	DataTypeMesh:            "Mesh",
	DataTypeProgramFragment: "ProgramFragment",
	DataTypeProgramVertex:   "ProgramVertex",
	DataTypeProgramRaster:   "ProgramRaster",
	DataTypeProgramStore:    "ProgramStore",
	DataTypeFont:            "Font",
}

// String returns the name of the data type.
func (t DataType) String() string {
	if s, ok := dataTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("DataType(%d)", uint32(t))
}

// IsObject reports whether the type is an object handle.
func (t DataType) IsObject() bool {
	return t >= DataTypeElement && t <= DataTypeFont
}

// IsPacked reports whether the type packs several pixel channels into
// a single 16-bit value.
func (t DataType) IsPacked() bool {
	return t == DataTypeUint565 || t == DataTypeUint5551 || t == DataTypeUint4444
}

// IsMatrix reports whether the type is one of the float matrix types.
func (t DataType) IsMatrix() bool {
	return t >= DataTypeMatrix4x4 && t <= DataTypeMatrix2x2
}

// DataKind describes how the components of an element are interpreted.
type DataKind uint32

// Data kinds.
const (
	DataKindUser       DataKind = 0
	DataKindPixelL     DataKind = 7
	DataKindPixelA     DataKind = 8
	DataKindPixelLA    DataKind = 9
	DataKindPixelRGB   DataKind = 10
	DataKindPixelRGBA  DataKind = 11
	DataKindPixelDepth DataKind = 12
	DataKindPixelYUV   DataKind = 13
)

// String returns the name of the data kind.
func (k DataKind) String() string {
	switch k {
	case DataKindUser:
		return "User"
	case DataKindPixelL:
		return "PixelL"
	case DataKindPixelA:
		return "PixelA"
	case DataKindPixelLA:
		return "PixelLA"
	case DataKindPixelRGB:
		return "PixelRGB"
	case DataKindPixelRGBA:
		return "PixelRGBA"
	case DataKindPixelDepth:
		return "PixelDepth"
	case DataKindPixelYUV:
		return "PixelYUV"
	default:
		return fmt.Sprintf("DataKind(%d)", uint32(k))
	}
}

// IsPixel reports whether the kind carries pixel-channel semantics.
func (k DataKind) IsPixel() bool {
	return k >= DataKindPixelL && k <= DataKindPixelYUV
}

// Usage is a bitmask describing the memory domains an allocation lives in.
type Usage uint32

// Allocation usage flags.
const (
	UsageScript               Usage = 1 << 0
	UsageGraphicsTexture      Usage = 1 << 1
	UsageGraphicsVertex       Usage = 1 << 2
	UsageGraphicsConstants    Usage = 1 << 3
	UsageGraphicsRenderTarget Usage = 1 << 4
	UsageIOInput              Usage = 1 << 5
	UsageIOOutput             Usage = 1 << 6
	UsageShared               Usage = 1 << 7

	// UsageAll is the union of every known usage bit.
	UsageAll = UsageScript | UsageGraphicsTexture | UsageGraphicsVertex |
		UsageGraphicsConstants | UsageGraphicsRenderTarget |
		UsageIOInput | UsageIOOutput | UsageShared
)

// Contains reports whether all bits of other are set in u.
func (u Usage) Contains(other Usage) bool {
	return u&other == other
}

// String returns a "|"-separated list of the set usage bits.
func (u Usage) String() string {
	if u == 0 {
		return "None"
	}
	names := [...]string{
		"Script", "GraphicsTexture", "GraphicsVertex", "GraphicsConstants",
		"GraphicsRenderTarget", "IOInput", "IOOutput", "Shared",
	}
	s := ""
	for i, n := range names {
		if u&(1<<i) == 0 {
			continue
		}
		if s != "" {
			s += "|"
		}
		s += n
	}
	if rest := u &^ UsageAll; rest != 0 {
		if s != "" {
			s += "|"
		}
		s += fmt.Sprintf("0x%x", uint32(rest))
	}
	return s
}

// MipmapControl selects how mipmap levels of an allocation are managed.
type MipmapControl uint32

// Mipmap control modes.
const (
	MipmapNone            MipmapControl = 0
	MipmapFull            MipmapControl = 1
	MipmapOnSyncToTexture MipmapControl = 2
)

// CubemapFace identifies one face of a cube map.
type CubemapFace uint32

// Cube map faces.
const (
	FacePositiveX CubemapFace = 0
	FaceNegativeX CubemapFace = 1
	FacePositiveY CubemapFace = 2
	FaceNegativeY CubemapFace = 3
	FacePositiveZ CubemapFace = 4
	FaceNegativeZ CubemapFace = 5
)

// SamplerValue is a filtering or wrapping mode of a sampler.
type SamplerValue uint32

// Sampler values.
const (
	SamplerNearest          SamplerValue = 0
	SamplerLinear           SamplerValue = 1
	SamplerLinearMipLinear  SamplerValue = 2
	SamplerWrap             SamplerValue = 3
	SamplerClamp            SamplerValue = 4
	SamplerLinearMipNearest SamplerValue = 5
	SamplerMirroredRepeat   SamplerValue = 6
)

// String returns the name of the sampler value.
func (v SamplerValue) String() string {
	switch v {
	case SamplerNearest:
		return "Nearest"
	case SamplerLinear:
		return "Linear"
	case SamplerLinearMipLinear:
		return "LinearMipLinear"
	case SamplerWrap:
		return "Wrap"
	case SamplerClamp:
		return "Clamp"
	case SamplerLinearMipNearest:
		return "LinearMipNearest"
	case SamplerMirroredRepeat:
		return "MirroredRepeat"
	default:
		return fmt.Sprintf("SamplerValue(%d)", uint32(v))
	}
}

// SamplerDesc is the full configuration of a sampler.
type SamplerDesc struct {
	Min        SamplerValue
	Mag        SamplerValue
	WrapS      SamplerValue
	WrapT      SamplerValue
	WrapR      SamplerValue
	Anisotropy float32
}

// IntrinsicID names a built-in kernel of the runtime.
type IntrinsicID uint32

// Intrinsic kernels.
const (
	IntrinsicConvolve3x3 IntrinsicID = 1
	IntrinsicColorMatrix IntrinsicID = 2
	IntrinsicLUT         IntrinsicID = 3
	IntrinsicConvolve5x5 IntrinsicID = 4
	IntrinsicBlur        IntrinsicID = 5
	IntrinsicYuvToRGB    IntrinsicID = 6
	IntrinsicBlend       IntrinsicID = 7
	Intrinsic3DLUT       IntrinsicID = 8
	IntrinsicHistogram   IntrinsicID = 9
)

// String returns the name of the intrinsic.
func (id IntrinsicID) String() string {
	switch id {
	case IntrinsicConvolve3x3:
		return "Convolve3x3"
	case IntrinsicColorMatrix:
		return "ColorMatrix"
	case IntrinsicLUT:
		return "LUT"
	case IntrinsicConvolve5x5:
		return "Convolve5x5"
	case IntrinsicBlur:
		return "Blur"
	case IntrinsicYuvToRGB:
		return "YuvToRGB"
	case IntrinsicBlend:
		return "Blend"
	case Intrinsic3DLUT:
		return "3DLUT"
	case IntrinsicHistogram:
		return "Histogram"
	default:
		return fmt.Sprintf("IntrinsicID(%d)", uint32(id))
	}
}

// MessageKind classifies a notification from the runtime.
type MessageKind int

// Message kinds.
const (
	// MessageUser is a message sent by a kernel to the client.
	MessageUser MessageKind = iota
	// MessageError reports a failure inside the runtime.
	MessageError
	// MessageInfo is a diagnostic notice.
	MessageInfo
)

// String returns the name of the message kind.
func (k MessageKind) String() string {
	switch k {
	case MessageUser:
		return "User"
	case MessageError:
		return "Error"
	case MessageInfo:
		return "Info"
	default:
		return fmt.Sprintf("MessageKind(%d)", int(k))
	}
}

// Message is an asynchronous notification from the runtime.
//
// Messages are not tied to the call that triggered them.
type Message struct {
	Kind MessageKind
	Code uint32
	Text string
	Data []byte
}

// Config holds the parameters passed to Driver.Init.
type Config struct {
	// TargetAPI is the API level requested by the client.
	TargetAPI int

	// ForceCPU asks the driver to avoid hardware acceleration.
	ForceCPU bool

	// Synchronous asks the driver to complete every operation before
	// returning to the caller.
	Synchronous bool

	// CacheDir is where compiled scripts may be cached.
	CacheDir string

	// MessageBuffer is the capacity of the message channel.
	MessageBuffer int
}
