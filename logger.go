// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rsc

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gogpu/rsc/driver"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely, making disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

// liveDrivers holds the drivers of open contexts so SetLogger can reach
// them.
var (
	liveMu      sync.Mutex
	liveDrivers = make(map[driver.Driver]struct{})
)

func init() {
	l := newNopLogger()
	loggerPtr.Store(l)
}

// SetLogger configures the logger for rsc and its drivers.
// By default, rsc produces no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by rsc:
//   - [slog.LevelDebug]: object lifecycle (handle creation and release)
//   - [slog.LevelInfo]: context creation and shutdown
//   - [slog.LevelWarn]: runtime errors nobody handled, dropped messages
//
// Example:
//
//	rsc.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)

	liveMu.Lock()
	defer liveMu.Unlock()
	for d := range liveDrivers {
		propagateLogger(d, l)
	}
}

// Logger returns the current logger used by rsc.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// loggerSetter is implemented by drivers that accept a logger.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

// propagateLogger passes the logger to a driver if it implements
// the loggerSetter interface.
func propagateLogger(d driver.Driver, l *slog.Logger) {
	if ls, ok := d.(loggerSetter); ok {
		ls.SetLogger(l)
	}
}

// trackDriver registers d to receive logger updates and hands it the
// current logger.
func trackDriver(d driver.Driver) {
	liveMu.Lock()
	defer liveMu.Unlock()
	liveDrivers[d] = struct{}{}
	propagateLogger(d, Logger())
}

// untrackDriver stops logger updates for d.
func untrackDriver(d driver.Driver) {
	liveMu.Lock()
	defer liveMu.Unlock()
	delete(liveDrivers, d)
}
