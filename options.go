// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rsc

import "github.com/gogpu/rsc/driver"

// DefaultTargetAPI is the API level requested when none is configured.
const DefaultTargetAPI = 23

// ErrorHandler receives runtime errors reported asynchronously by the
// driver. It runs on the message pump goroutine.
type ErrorHandler func(code uint32, text string)

// MessageHandler receives user messages sent by kernels. It runs on the
// message pump goroutine and must not retain data after returning.
type MessageHandler func(code uint32, data []byte)

// Option configures a Context during creation.
// Use functional options to customize Context behavior.
//
// Example:
//
//	// Default driver selection
//	ctx, err := rsc.NewContext()
//
//	// Pure Go runtime, every call synchronous
//	ctx, err := rsc.NewContext(rsc.WithForceCPU(), rsc.WithSynchronous())
type Option func(*options)

// options holds optional configuration for Context creation.
type options struct {
	driver         driver.Driver
	driverName     string
	forceCPU       bool
	synchronous    bool
	cacheDir       string
	errorHandler   ErrorHandler
	messageHandler MessageHandler
	messageBuffer  int
	targetAPI      int
}

// defaultOptions returns the default context options.
func defaultOptions() options {
	return options{
		targetAPI: DefaultTargetAPI,
	}
}

// config returns the driver configuration for o.
func (o *options) config() driver.Config {
	return driver.Config{
		TargetAPI:     o.targetAPI,
		ForceCPU:      o.forceCPU,
		Synchronous:   o.synchronous,
		CacheDir:      o.cacheDir,
		MessageBuffer: o.messageBuffer,
	}
}

// WithDriver uses d instead of a registered driver.
// Use this for dependency injection of custom or test runtimes.
//
// The Context takes ownership of d and closes it on Close.
func WithDriver(d driver.Driver) Option {
	return func(o *options) {
		o.driver = d
	}
}

// WithDriverName selects a registered driver by name.
//
// Example:
//
//	import _ "github.com/gogpu/rsc/driver/halgpu"
//
//	ctx, err := rsc.NewContext(rsc.WithDriverName("hal-noop"))
func WithDriverName(name string) Option {
	return func(o *options) {
		o.driverName = name
	}
}

// WithForceCPU selects the software driver and asks the driver to avoid
// hardware acceleration.
func WithForceCPU() Option {
	return func(o *options) {
		o.forceCPU = true
	}
}

// WithSynchronous asks the driver to complete every operation before
// returning.
func WithSynchronous() Option {
	return func(o *options) {
		o.synchronous = true
	}
}

// WithCacheDir sets the directory where compiled scripts may be cached.
func WithCacheDir(dir string) Option {
	return func(o *options) {
		o.cacheDir = dir
	}
}

// WithErrorHandler installs the initial error handler.
// See [Context.SetErrorHandler].
func WithErrorHandler(h ErrorHandler) Option {
	return func(o *options) {
		o.errorHandler = h
	}
}

// WithMessageHandler installs the initial message handler.
// See [Context.SetMessageHandler].
func WithMessageHandler(h MessageHandler) Option {
	return func(o *options) {
		o.messageHandler = h
	}
}

// WithMessageBuffer sets the capacity of the driver message channel.
// Values <= 0 keep the driver default.
func WithMessageBuffer(n int) Option {
	return func(o *options) {
		o.messageBuffer = n
	}
}

// WithTargetAPI sets the API level passed to the driver.
func WithTargetAPI(level int) Option {
	return func(o *options) {
		o.targetAPI = level
	}
}
