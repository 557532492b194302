// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package halgpu implements an rsc driver on top of gogpu/wgpu HAL devices.
//
// Allocations are HAL storage buffers mirrored by a host shadow copy.
// Client writes land in the shadow and the touched byte range is uploaded
// with Queue.WriteBuffer; reads are served from the shadow. Samplers are
// HAL samplers and ScriptC code is loaded as a SPIR-V shader module.
//
// Kernel launches, invokables, mipmap generation and I/O queues are not
// available on this driver and return [driver.ErrNotImplemented].
//
// # Device sources
//
//	d := halgpu.New(device, queue)              // caller-owned device
//	d, err := halgpu.NewFromProvider(provider)  // gpucontext.DeviceProvider
//	d := halgpu.NewNoop()                       // private noop device
//
// Importing the package registers [NameNoop]. Applications that own a
// device call [RegisterDevice] to make it the default rsc driver.
package halgpu
