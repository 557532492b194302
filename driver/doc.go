// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package driver defines the contract between the rsc object model and the
// compute runtimes that back it.
//
// # Architecture
//
// The client (package rsc) owns layout, validation and bookkeeping. A
// [Driver] only mints opaque [Handle]s, moves bytes and launches kernels:
//
//	        +------------------+
//	        |       rsc        |
//	        | (Element, Type,  |
//	        |  Allocation ...) |
//	        +--------+---------+
//	                 |
//	        +--------v---------+
//	        |  driver.Driver   |
//	        +--------+---------+
//	                 |
//	      +----------+-----------+
//	      |                      |
//	+-----v------+       +-------v------+
//	|  software  |       |    halgpu    |
//	| (pure Go)  |       | (gogpu/wgpu) |
//	+------------+       +--------------+
//
// # Registration
//
// Driver packages register a [Factory] from their init function:
//
//	import _ "github.com/gogpu/rsc/driver/software"
//
// [Default] picks the first registered driver in priority order.
package driver
