// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rsc

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/rsc/driver"
	_ "github.com/gogpu/rsc/driver/software" // always-available fallback runtime
	"github.com/gogpu/rsc/internal/cache"
)

// Context is the connection to a compute runtime.
//
// A Context owns its driver, the per-context caches of well-known
// Elements and Samplers, the error and message handler slots and the
// goroutine that pumps runtime notifications to those handlers.
// Every object created through a Context keeps a reference to it; the
// Context must be closed after all work is done.
//
// Context methods are safe for concurrent use.
type Context struct {
	drv  driver.Driver
	opts options

	closed    atomic.Bool
	closeOnce sync.Once

	errorHandler   atomic.Pointer[ErrorHandler]
	messageHandler atomic.Pointer[MessageHandler]

	elements *cache.Cache[KnownElement, *Element]
	samplers *cache.Cache[SamplerPreset, *Sampler]

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewContext creates a Context and starts its message pump.
//
// The driver is chosen in this order: [WithDriver], [WithDriverName],
// the software driver when [WithForceCPU] is set, then [driver.Default].
// When the default driver fails to initialize, the software driver is
// used instead.
//
// Example:
//
//	ctx, err := rsc.NewContext(rsc.WithErrorHandler(func(code uint32, text string) {
//	    log.Printf("runtime error %d: %s", code, text)
//	}))
//	if err != nil {
//	    return err
//	}
//	defer ctx.Close()
func NewContext(opts ...Option) (*Context, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	d, err := openDriver(&o)
	if err != nil {
		return nil, err
	}

	c := &Context{
		drv:      d,
		opts:     o,
		elements: cache.New[KnownElement, *Element](),
		samplers: cache.New[SamplerPreset, *Sampler](),
	}
	c.SetErrorHandler(o.errorHandler)
	c.SetMessageHandler(o.messageHandler)
	trackDriver(d)

	pumpCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.wg.Add(1)
	go c.pump(pumpCtx, d.Messages())

	Logger().Info("rsc: context created",
		"driver", d.Name(), "targetAPI", o.targetAPI, "synchronous", o.synchronous)
	return c, nil
}

// openDriver selects and initializes the driver described by o.
func openDriver(o *options) (driver.Driver, error) {
	switch {
	case o.driver != nil:
		return o.driver, initDriver(o.driver, o)
	case o.driverName != "":
		d := driver.Get(o.driverName)
		if d == nil {
			return nil, fmt.Errorf("%w: %q is not registered", ErrDriverUnavailable, o.driverName)
		}
		return d, initDriver(d, o)
	case o.forceCPU:
		d := driver.Get(driver.NameSoftware)
		if d == nil {
			return nil, fmt.Errorf("%w: software driver is not registered", ErrDriverUnavailable)
		}
		return d, initDriver(d, o)
	}

	d := driver.Default()
	if d == nil {
		return nil, fmt.Errorf("%w: no driver registered", ErrDriverUnavailable)
	}
	err := initDriver(d, o)
	if err == nil || d.Name() == driver.NameSoftware {
		return d, err
	}

	fallback := driver.Get(driver.NameSoftware)
	if fallback == nil {
		return nil, err
	}
	Logger().Warn("rsc: driver unavailable, falling back to software",
		"driver", d.Name(), "err", err)
	return fallback, initDriver(fallback, o)
}

// initDriver initializes d, closing it on failure.
func initDriver(d driver.Driver, o *options) error {
	if err := d.Init(o.config()); err != nil {
		d.Close()
		return fmt.Errorf("%w: %s: %w", ErrDriverUnavailable, d.Name(), err)
	}
	return nil
}

// pump dispatches runtime notifications until ctx is canceled or the
// driver closes its channel.
func (c *Context) pump(ctx context.Context, msgs <-chan driver.Message) {
	defer c.wg.Done()
	if msgs == nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-msgs:
			if !ok {
				return
			}
			c.dispatch(m)
		}
	}
}

// dispatch delivers m to the handler registered at delivery time.
func (c *Context) dispatch(m driver.Message) {
	switch m.Kind {
	case driver.MessageError:
		if h := c.errorHandler.Load(); h != nil {
			(*h)(m.Code, m.Text)
			return
		}
		Logger().Warn("rsc: unhandled runtime error", "code", m.Code, "text", m.Text)
	case driver.MessageUser:
		if h := c.messageHandler.Load(); h != nil {
			(*h)(m.Code, m.Data)
			return
		}
		Logger().Debug("rsc: unhandled user message", "code", m.Code, "bytes", len(m.Data))
	default:
		Logger().Info("rsc: runtime notice", "code", m.Code, "text", m.Text)
	}
}

// SetErrorHandler replaces the error handler. Pass nil to remove it;
// unhandled runtime errors are logged at Warn level.
//
// SetErrorHandler is safe to call while the pump is delivering messages.
func (c *Context) SetErrorHandler(h ErrorHandler) {
	if h == nil {
		c.errorHandler.Store(nil)
		return
	}
	c.errorHandler.Store(&h)
}

// ErrorHandler returns the current error handler, or nil.
func (c *Context) ErrorHandler() ErrorHandler {
	if h := c.errorHandler.Load(); h != nil {
		return *h
	}
	return nil
}

// SetMessageHandler replaces the message handler. Pass nil to remove it.
//
// SetMessageHandler is safe to call while the pump is delivering messages.
func (c *Context) SetMessageHandler(h MessageHandler) {
	if h == nil {
		c.messageHandler.Store(nil)
		return
	}
	c.messageHandler.Store(&h)
}

// MessageHandler returns the current message handler, or nil.
func (c *Context) MessageHandler() MessageHandler {
	if h := c.messageHandler.Load(); h != nil {
		return *h
	}
	return nil
}

// Driver returns the driver of the context.
func (c *Context) Driver() driver.Driver {
	return c.drv
}

// CacheDir returns the script cache directory, or "".
func (c *Context) CacheDir() string {
	return c.opts.cacheDir
}

// TargetAPI returns the API level requested from the driver.
func (c *Context) TargetAPI() int {
	return c.opts.targetAPI
}

// Finish blocks until all work issued through the context has completed.
func (c *Context) Finish() error {
	if err := c.check(); err != nil {
		return err
	}
	return c.drv.Finish()
}

// Close destroys the cached Elements and Samplers, stops the message pump
// and closes the driver. Objects still alive afterwards fail with
// [ErrContextClosed]. Close is idempotent.
func (c *Context) Close() {
	c.closeOnce.Do(func() {
		samplers := c.samplers.Drain()
		for _, s := range samplers {
			s.free()
		}
		elements := c.elements.Drain()
		for _, e := range elements {
			e.free()
		}
		c.closed.Store(true)

		c.cancel()
		c.wg.Wait()

		untrackDriver(c.drv)
		c.drv.Close()
		Logger().Info("rsc: context closed", "driver", c.drv.Name(),
			"elements", len(elements), "samplers", len(samplers))
	})
}

// check returns ErrContextClosed once Close has started.
func (c *Context) check() error {
	if c.closed.Load() {
		return ErrContextClosed
	}
	return nil
}
