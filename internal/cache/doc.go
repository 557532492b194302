// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package cache provides a generic identity cache for lazily created,
// long-lived objects.
//
// Values are never evicted: a cached object keeps its identity for as long
// as its owner lives, and the owner releases everything with Drain.
//
//	c := cache.New[Preset, *Sampler]()
//	s, err := c.GetOrCreate(PresetClampLinear, func() (*Sampler, error) {
//		return newSampler(...)
//	})
//
// # Thread Safety
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
