// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package driver

import (
	"sort"
	"sync"
)

// Well-known driver names.
const (
	// NameHAL is the driver backed by gogpu/wgpu HAL devices.
	NameHAL = "hal"

	// NameSoftware is the in-process reference driver.
	NameSoftware = "software"
)

// Factory creates a new, uninitialized driver instance.
type Factory func() Driver

// registry holds registered drivers.
var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)
	// Priority order for driver selection (first available wins).
	priority = []string{NameHAL, NameSoftware}
)

// Register registers a driver factory with the given name.
// This is typically called from init() functions in driver packages.
// If a driver with the same name is already registered, it is replaced.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	factories[name] = factory
}

// Unregister removes a driver from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(factories, name)
}

// Available returns the sorted names of registered drivers.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a driver with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := factories[name]
	return ok
}

// Get returns a new driver instance by name.
// Returns nil if the driver is not registered.
func Get(name string) Driver {
	registryMu.RLock()
	factory, ok := factories[name]
	registryMu.RUnlock()

	if !ok {
		return nil
	}
	return factory()
}

// Default returns a new instance of the best available driver.
// Priority order: hal > software, then any other registered driver.
// Returns nil if no drivers are registered.
func Default() Driver {
	registryMu.RLock()
	defer registryMu.RUnlock()

	for _, name := range priority {
		if factory, ok := factories[name]; ok {
			if d := factory(); d != nil {
				return d
			}
		}
	}

	// Fallback: first remaining driver in name order.
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if d := factories[name](); d != nil {
			return d
		}
	}

	return nil
}
