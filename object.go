// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rsc

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/gogpu/rsc/driver"
)

// ObjectKind is the closed set of runtime-backed object kinds.
type ObjectKind int

// Object kinds.
const (
	ObjectElement ObjectKind = iota
	ObjectType
	ObjectAllocation
	ObjectSampler
	ObjectScript
)

// String returns the name of the kind.
func (k ObjectKind) String() string {
	switch k {
	case ObjectElement:
		return "Element"
	case ObjectType:
		return "Type"
	case ObjectAllocation:
		return "Allocation"
	case ObjectSampler:
		return "Sampler"
	case ObjectScript:
		return "Script"
	default:
		return fmt.Sprintf("ObjectKind(%d)", int(k))
	}
}

// Object is implemented by every runtime-backed object.
type Object interface {
	// Handle returns the runtime handle of the object.
	Handle() Handle

	// Kind returns the variant of the object.
	Kind() ObjectKind

	// Name returns the debug name, or "".
	Name() string

	// Context returns the owning context.
	Context() *Context

	// Destroy drops one reference. The handle is released when the last
	// reference is dropped.
	Destroy()
}

// object is the descriptor shared by every Object: handle, owning context,
// debug name and reference count.
type object struct {
	ctx    *Context
	handle driver.Handle
	kind   ObjectKind

	mu   sync.Mutex
	name string

	refs atomic.Int32
	dead atomic.Bool
	once sync.Once

	// pinned objects belong to a context cache and are freed by
	// Context.Close only.
	pinned bool

	// onRelease drops the references this object holds on others.
	onRelease func()
}

// init takes ownership of h with a single reference.
func (o *object) init(ctx *Context, h driver.Handle, kind ObjectKind) {
	o.ctx = ctx
	o.handle = h
	o.kind = kind
	o.refs.Store(1)
	Logger().Debug("rsc: object created", "kind", kind, "handle", h)
}

// Handle returns the runtime handle.
func (o *object) Handle() Handle { return o.handle }

// Kind returns the object kind.
func (o *object) Kind() ObjectKind { return o.kind }

// Context returns the owning context.
func (o *object) Context() *Context { return o.ctx }

// Name returns the debug name set with SetName.
func (o *object) Name() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.name
}

// SetName attaches a debug name to the object and forwards it to the
// runtime.
func (o *object) SetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidArgument)
	}
	if err := o.valid(); err != nil {
		return err
	}
	o.mu.Lock()
	o.name = name
	o.mu.Unlock()
	o.ctx.drv.AssignName(o.handle, name)
	return nil
}

// Equal reports whether other names the same runtime object.
func (o *object) Equal(other Object) bool {
	if isNil(other) {
		return false
	}
	return o.ctx == other.Context() && o.handle == other.Handle()
}

// Retain adds a reference. Each Retain must be matched by a Destroy.
// Retain on a released object has no effect.
func (o *object) Retain() {
	for {
		r := o.refs.Load()
		if r <= 0 {
			return
		}
		if o.refs.CompareAndSwap(r, r+1) {
			return
		}
	}
}

// Destroy drops one reference and releases the handle with the last one.
// Calls past the last reference are no-ops. Objects owned by a context
// cache ignore Destroy and are released by Context.Close.
func (o *object) Destroy() {
	if o.pinned {
		Logger().Debug("rsc: destroy of context-owned object ignored",
			"kind", o.kind, "handle", o.handle)
		return
	}
	for {
		r := o.refs.Load()
		if r <= 0 {
			return
		}
		if o.refs.CompareAndSwap(r, r-1) {
			if r == 1 {
				o.free()
			}
			return
		}
	}
}

// free releases the handle exactly once.
func (o *object) free() {
	o.once.Do(func() {
		o.refs.Store(0)
		o.dead.Store(true)
		if o.ctx.check() == nil {
			o.ctx.drv.Destroy(o.handle)
		}
		Logger().Debug("rsc: object released", "kind", o.kind, "handle", o.handle)
		if o.onRelease != nil {
			o.onRelease()
		}
	})
}

// IsDestroyed reports whether the handle has been released.
func (o *object) IsDestroyed() bool {
	return o.dead.Load()
}

// valid returns an error if the object or its context can no longer be
// used.
func (o *object) valid() error {
	if o.dead.Load() {
		return fmt.Errorf("%w: %v %d", ErrDestroyed, o.kind, o.handle)
	}
	return o.ctx.check()
}

// isNil reports whether obj is nil or a typed nil pointer.
func isNil(obj Object) bool {
	if obj == nil {
		return true
	}
	v := reflect.ValueOf(obj)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// handleOf returns the handle of obj, or InvalidHandle for nil.
func handleOf(obj Object) driver.Handle {
	if isNil(obj) {
		return driver.InvalidHandle
	}
	return obj.Handle()
}

// sameContext returns an error if obj belongs to a different context.
func (o *object) sameContext(obj Object) error {
	if isNil(obj) || obj.Context() == o.ctx {
		return nil
	}
	return fmt.Errorf("%w: %v %d belongs to another context", ErrInvalidArgument, obj.Kind(), obj.Handle())
}
