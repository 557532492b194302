// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package software

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gogpu/rsc/driver"
)

// DefaultMessageBuffer is the message channel capacity used when the
// config does not specify one.
const DefaultMessageBuffer = 64

// init registers the software driver on package import.
func init() {
	driver.Register(driver.NameSoftware, func() driver.Driver {
		return New()
	})
}

// Driver is the pure-Go reference runtime.
//
// Driver is safe for concurrent use.
type Driver struct {
	mu          sync.RWMutex
	initialized bool
	closed      bool
	cfg         driver.Config
	objects     map[driver.Handle]any
	names       map[driver.Handle]string
	next        atomic.Uint64
	messages    chan driver.Message
	logger      atomic.Pointer[slog.Logger]
	dropped     atomic.Uint64
}

// New creates an uninitialized software driver.
func New() *Driver {
	return &Driver{
		objects: make(map[driver.Handle]any),
		names:   make(map[driver.Handle]string),
	}
}

// Name returns the driver identifier.
func (d *Driver) Name() string {
	return driver.NameSoftware
}

// SetLogger sets the logger used by the software driver.
// A nil logger silences the driver.
func (d *Driver) SetLogger(l *slog.Logger) {
	d.logger.Store(l)
}

var discardLogger = slog.New(slog.DiscardHandler)

func (d *Driver) log() *slog.Logger {
	if l := d.logger.Load(); l != nil {
		return l
	}
	return discardLogger
}

// Init initializes the driver.
func (d *Driver) Init(cfg driver.Config) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return driver.ErrClosed
	}
	if d.initialized {
		return nil
	}
	if cfg.MessageBuffer <= 0 {
		cfg.MessageBuffer = DefaultMessageBuffer
	}
	d.cfg = cfg
	d.messages = make(chan driver.Message, cfg.MessageBuffer)
	d.initialized = true
	d.log().Debug("software driver initialized",
		"targetAPI", cfg.TargetAPI, "synchronous", cfg.Synchronous)
	return nil
}

// Config returns the configuration passed to Init.
func (d *Driver) Config() driver.Config {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cfg
}

// Close releases every object and closes the message channel.
func (d *Driver) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.closed = true
	if n := len(d.objects); n > 0 {
		d.log().Debug("software driver closing with live objects", "count", n)
	}
	d.objects = make(map[driver.Handle]any)
	d.names = make(map[driver.Handle]string)
	if d.messages != nil {
		close(d.messages)
	}
}

// Finish returns once all issued work is complete. The software driver
// executes synchronously, so there is never pending work.
func (d *Driver) Finish() error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.usable()
}

// Messages returns the notification channel.
func (d *Driver) Messages() <-chan driver.Message {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.messages
}

// Emit publishes m on the message channel as if the runtime had raised it.
// Messages are dropped when the channel is full or the driver is closed.
// Returns false if m was dropped.
func (d *Driver) Emit(m driver.Message) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed || d.messages == nil {
		return false
	}
	select {
	case d.messages <- m:
		return true
	default:
		d.dropped.Add(1)
		d.log().Warn("software driver message dropped",
			"kind", m.Kind, "code", m.Code)
		return false
	}
}

// Dropped returns the number of messages discarded because the channel
// was full.
func (d *Driver) Dropped() uint64 {
	return d.dropped.Load()
}

// Destroy releases the object named by h. Unknown handles are ignored.
func (d *Driver) Destroy(h driver.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.objects[h]; !ok {
		d.log().Debug("software driver: destroy of unknown handle", "handle", h)
		return
	}
	delete(d.objects, h)
	delete(d.names, h)
}

// AssignName attaches a debug name to h.
func (d *Driver) AssignName(h driver.Handle, name string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.objects[h]; ok {
		d.names[h] = name
	}
}

// ObjectName returns the debug name of h.
func (d *Driver) ObjectName(h driver.Handle) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.names[h]
}

// LiveObjects returns the number of objects that have not been destroyed.
func (d *Driver) LiveObjects() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.objects)
}

// usable reports why the driver cannot accept calls, if it cannot.
// Caller must hold d.mu.
func (d *Driver) usable() error {
	if d.closed {
		return driver.ErrClosed
	}
	if !d.initialized {
		return driver.ErrNotInitialized
	}
	return nil
}

// insert stores obj under a fresh handle. Caller must hold d.mu for writing.
func (d *Driver) insert(obj any) driver.Handle {
	h := driver.Handle(d.next.Add(1))
	d.objects[h] = obj
	return h
}

// lookup returns the object named by h if it has type *T.
// Caller must hold d.mu.
func lookup[T any](d *Driver, h driver.Handle) (*T, error) {
	if err := d.usable(); err != nil {
		return nil, err
	}
	obj, ok := d.objects[h]
	if !ok {
		return nil, fmt.Errorf("%w: %d", driver.ErrInvalidHandle, h)
	}
	v, ok := obj.(*T)
	if !ok {
		var zero T
		return nil, fmt.Errorf("%w: %d is %T, want %T", driver.ErrInvalidHandle, h, obj, &zero)
	}
	return v, nil
}

// Compile-time check that Driver implements driver.Driver.
var _ driver.Driver = (*Driver)(nil)
