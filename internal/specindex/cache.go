// Copyright 2026 The APISnoop Authors
// SPDX-License-Identifier: Apache-2.0

package specindex

import "sync"

// routeKey identifies a concrete request path and canonical method.
type routeKey struct {
	path   string
	method string
}

// hitCache memoizes successful resolutions. It has no eviction: it lives as
// long as the Index that owns it. Failures are never stored.
type hitCache struct {
	mu      sync.RWMutex
	entries map[routeKey]string
}

func newHitCache() *hitCache {
	return &hitCache{entries: make(map[routeKey]string)}
}

func (c *hitCache) get(key routeKey) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	opID, ok := c.entries[key]
	return opID, ok
}

// put stores an operation identifier. Concurrent puts for the same key carry
// the same value, so the last write wins.
func (c *hitCache) put(key routeKey, opID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = opID
}

func (c *hitCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
