// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package rsc is a client object model for typed compute buffers.
//
// # Overview
//
// rsc describes, allocates and moves structured memory consumed by a
// parallel compute runtime. The runtime is reached through the
// [driver.Driver] interface; rsc owns layout, validation and object
// lifetime, the driver owns storage and kernels.
//
// # Quick Start
//
//	import "github.com/gogpu/rsc"
//
//	ctx, err := rsc.NewContext()
//	if err != nil {
//	    return err
//	}
//	defer ctx.Close()
//
//	f32, _ := ctx.Element(rsc.ElementF32)
//	a, _ := rsc.NewSizedAllocation(ctx, f32, 1024, rsc.UsageScript)
//	defer a.Destroy()
//
//	_ = a.Copy1DFromFloat32s(make([]float32, 1024))
//
// # Objects
//
//   - [Element]: layout of one cell (scalar, vector, pixel or structure)
//   - [Type]: an Element with X/Y/Z extent, mipmaps and cube faces
//   - [Allocation]: memory of a Type, with adapters viewing a level,
//     face or slice of another allocation
//   - [Sampler]: filtering and wrapping of texture reads
//   - [Script], [ScriptC], [ScriptIntrinsic]: kernels bound to allocations
//   - [FieldPacker]: aligned writer for structured script arguments
//
// Every object holds a runtime handle and a reference to its [Context].
// Destroy drops a reference; the handle is released with the last one.
// Well-known Elements and Sampler presets are cached per Context and
// released by [Context.Close].
//
// # Errors
//
// Contract violations are returned synchronously, wrapping one of the
// sentinel errors ([ErrOutOfRange], [ErrInvalidUsage], ...). Failures
// inside the runtime arrive asynchronously on the handler installed with
// [Context.SetErrorHandler].
//
// # Drivers
//
// The software driver is always linked in. Other drivers register on
// import:
//
//	import _ "github.com/gogpu/rsc/driver/halgpu"
package rsc

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
