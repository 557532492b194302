// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package software provides an in-process reference runtime for rsc.
//
// Every allocation is backed by a Go byte slice laid out level by level,
// face by face, in row-major order. All copy, resize, mipmap and I/O
// operations of [driver.Driver] are implemented exactly; kernels are not
// executed but every launch, variable and binding is recorded and can be
// inspected with [Driver.ScriptState].
//
// The driver registers itself under [driver.NameSoftware] on import:
//
//	import _ "github.com/gogpu/rsc/driver/software"
package software
