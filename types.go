// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rsc

import "github.com/gogpu/rsc/driver"

// Aliases of the driver vocabulary, so that client code only needs to
// import rsc.
type (
	DataType      = driver.DataType
	DataKind      = driver.DataKind
	Usage         = driver.Usage
	MipmapControl = driver.MipmapControl
	CubemapFace   = driver.CubemapFace
	SamplerValue  = driver.SamplerValue
	IntrinsicKind = driver.IntrinsicID
	Handle        = driver.Handle
)

// Data types.
const (
	Float16 = driver.DataTypeFloat16
	Float32 = driver.DataTypeFloat32
	Float64 = driver.DataTypeFloat64
	Int8    = driver.DataTypeInt8
	Int16   = driver.DataTypeInt16
	Int32   = driver.DataTypeInt32
	Int64   = driver.DataTypeInt64
	Uint8   = driver.DataTypeUint8
	Uint16  = driver.DataTypeUint16
	Uint32  = driver.DataTypeUint32
	Uint64  = driver.DataTypeUint64
	Boolean = driver.DataTypeBoolean

	Uint565  = driver.DataTypeUint565
	Uint5551 = driver.DataTypeUint5551
	Uint4444 = driver.DataTypeUint4444

	Matrix4x4 = driver.DataTypeMatrix4x4
	Matrix3x3 = driver.DataTypeMatrix3x3
	Matrix2x2 = driver.DataTypeMatrix2x2
)

// Data kinds.
const (
	KindUser       = driver.DataKindUser
	KindPixelL     = driver.DataKindPixelL
	KindPixelA     = driver.DataKindPixelA
	KindPixelLA    = driver.DataKindPixelLA
	KindPixelRGB   = driver.DataKindPixelRGB
	KindPixelRGBA  = driver.DataKindPixelRGBA
	KindPixelDepth = driver.DataKindPixelDepth
	KindPixelYUV   = driver.DataKindPixelYUV
)

// Allocation usage flags.
const (
	UsageScript               = driver.UsageScript
	UsageGraphicsTexture      = driver.UsageGraphicsTexture
	UsageGraphicsVertex       = driver.UsageGraphicsVertex
	UsageGraphicsConstants    = driver.UsageGraphicsConstants
	UsageGraphicsRenderTarget = driver.UsageGraphicsRenderTarget
	UsageIOInput              = driver.UsageIOInput
	UsageIOOutput             = driver.UsageIOOutput
	UsageShared               = driver.UsageShared
)

// Mipmap control modes.
const (
	MipmapNone            = driver.MipmapNone
	MipmapFull            = driver.MipmapFull
	MipmapOnSyncToTexture = driver.MipmapOnSyncToTexture
)

// Cube map faces.
const (
	FacePositiveX = driver.FacePositiveX
	FaceNegativeX = driver.FaceNegativeX
	FacePositiveY = driver.FacePositiveY
	FaceNegativeY = driver.FaceNegativeY
	FacePositiveZ = driver.FacePositiveZ
	FaceNegativeZ = driver.FaceNegativeZ
)

// Sampler values.
const (
	Nearest          = driver.SamplerNearest
	Linear           = driver.SamplerLinear
	LinearMipLinear  = driver.SamplerLinearMipLinear
	LinearMipNearest = driver.SamplerLinearMipNearest
	Wrap             = driver.SamplerWrap
	Clamp            = driver.SamplerClamp
	MirroredRepeat   = driver.SamplerMirroredRepeat
)

// Intrinsic kernels.
const (
	IntrinsicConvolve3x3 = driver.IntrinsicConvolve3x3
	IntrinsicColorMatrix = driver.IntrinsicColorMatrix
	IntrinsicLUT         = driver.IntrinsicLUT
	IntrinsicConvolve5x5 = driver.IntrinsicConvolve5x5
	IntrinsicBlur        = driver.IntrinsicBlur
	IntrinsicYuvToRGB    = driver.IntrinsicYuvToRGB
	IntrinsicBlend       = driver.IntrinsicBlend
	Intrinsic3DLUT       = driver.Intrinsic3DLUT
	IntrinsicHistogram   = driver.IntrinsicHistogram
)
