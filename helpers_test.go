// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rsc

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gogpu/rsc/driver"
	"github.com/gogpu/rsc/driver/software"
)

// mockDriver wraps the software driver and counts the calls tests care
// about.
type mockDriver struct {
	*software.Driver

	logger  atomic.Pointer[slog.Logger]
	initErr error

	mu        sync.Mutex
	destroyed map[driver.Handle]int
	uploads   int
}

func newMockDriver() *mockDriver {
	return &mockDriver{
		Driver:    software.New(),
		destroyed: make(map[driver.Handle]int),
	}
}

func (m *mockDriver) SetLogger(l *slog.Logger) {
	m.logger.Store(l)
}

func (m *mockDriver) Init(cfg driver.Config) error {
	if m.initErr != nil {
		return m.initErr
	}
	return m.Driver.Init(cfg)
}

func (m *mockDriver) Destroy(h driver.Handle) {
	m.mu.Lock()
	m.destroyed[h]++
	m.mu.Unlock()
	m.Driver.Destroy(h)
}

func (m *mockDriver) Allocation1DData(h driver.Handle, off, lod, count uint32, data []byte) error {
	m.mu.Lock()
	m.uploads++
	m.mu.Unlock()
	return m.Driver.Allocation1DData(h, off, lod, count, data)
}

// destroyCount returns how many times h was destroyed.
func (m *mockDriver) destroyCount(h driver.Handle) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.destroyed[h]
}

// uploadCount returns the number of 1D writes issued.
func (m *mockDriver) uploadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.uploads
}

// newTestContext returns a context over a fresh mock driver that is
// closed when the test ends.
func newTestContext(t *testing.T, opts ...Option) (*Context, *mockDriver) {
	t.Helper()
	md := newMockDriver()
	ctx, err := NewContext(append([]Option{WithDriver(md)}, opts...)...)
	if err != nil {
		t.Fatalf("NewContext() error = %v", err)
	}
	t.Cleanup(ctx.Close)
	return ctx, md
}

func mustKnown(t *testing.T, ctx *Context, k KnownElement) *Element {
	t.Helper()
	e, err := ctx.Element(k)
	if err != nil {
		t.Fatalf("Element(%v) error = %v", k, err)
	}
	return e
}

func mustSized(t *testing.T, ctx *Context, k KnownElement, n uint32) *Allocation {
	t.Helper()
	a, err := NewSizedAllocation(ctx, mustKnown(t, ctx, k), n, UsageScript)
	if err != nil {
		t.Fatalf("NewSizedAllocation(%v, %d) error = %v", k, n, err)
	}
	t.Cleanup(a.Destroy)
	return a
}

func mustSized2D(t *testing.T, ctx *Context, k KnownElement, x, y uint32) *Allocation {
	t.Helper()
	a, err := NewSized2DAllocation(ctx, mustKnown(t, ctx, k), x, y, UsageScript)
	if err != nil {
		t.Fatalf("NewSized2DAllocation(%v, %dx%d) error = %v", k, x, y, err)
	}
	t.Cleanup(a.Destroy)
	return a
}

// seq returns n bytes counting up from 1.
func seq(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i + 1)
	}
	return b
}

// wantErr fails the test unless err wraps target.
func wantErr(t *testing.T, op string, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Errorf("%s error = %v, want %v", op, err, target)
	}
}

// waitFor polls cond until it holds or a second passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}
