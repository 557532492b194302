// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cache

import "sync"

// Cache is a thread-safe, non-evicting map from keys to lazily created
// values. Once a key is populated every lookup returns the same value
// until Delete or Drain removes it.
//
// Cache must not be copied after creation (has mutex).
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]V
	order   []K // insertion order, for deterministic Drain
	hits    uint64
	misses  uint64
}

// New creates an empty cache.
func New[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{
		entries: make(map[K]V),
	}
}

// Get retrieves a value from the cache.
// Returns (value, true) if found, (zero, false) otherwise.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.entries[key]
	return v, ok
}

// GetOrCreate returns the cached value for key or creates it.
// create is called under lock, so concurrent callers for the same key
// observe exactly one creation. If create fails nothing is stored and the
// error is returned.
func (c *Cache[K, V]) GetOrCreate(key K, create func() (V, error)) (V, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.entries[key]; ok {
		c.hits++
		return v, nil
	}
	c.misses++

	v, err := create()
	if err != nil {
		var zero V
		return zero, err
	}
	c.entries[key] = v
	c.order = append(c.order, key)
	return v, nil
}

// Delete removes an entry from the cache.
// Returns true if the entry was found and removed.
func (c *Cache[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok {
		return false
	}
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

// Drain removes every entry and returns the values in insertion order.
func (c *Cache[K, V]) Drain() []V {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]V, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, c.entries[k])
	}
	c.entries = make(map[K]V)
	c.order = nil
	return out
}

// Len returns the number of entries in the cache.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Stats returns cache statistics.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Len:    len(c.entries),
		Hits:   c.hits,
		Misses: c.misses,
	}
}

// Stats contains cache statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Hits is the number of GetOrCreate calls served from the cache.
	Hits uint64
	// Misses is the number of GetOrCreate calls that ran create.
	Misses uint64
}
