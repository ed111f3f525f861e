// pkg/aviation/cache.go
// Copyright(c) 2026 tracon-sim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import lru "github.com/hashicorp/golang-lru/v2"

// lookupCache is a small bounded memoization cache for pure,
// position/type-keyed lookups that are recomputed every tick for every
// aircraft: performance-table lookups and MVA-floor queries.
type lookupCache struct {
	c *lru.Cache[string, any]
}

func newLookupCache(size int) *lookupCache {
	c, _ := lru.New[string, any](size)
	return &lookupCache{c: c}
}

func (l *lookupCache) get(key string) (any, bool) {
	if l == nil || l.c == nil {
		return nil, false
	}
	return l.c.Get(key)
}

func (l *lookupCache) put(key string, v any) {
	if l == nil || l.c == nil {
		return
	}
	l.c.Add(key, v)
}

// LookupCache is the exported form of the same bounded memoization cache,
// for callers outside this package that need to memoize their own
// position/key-derived lookups (e.g. the conflict detector's MVA-floor
// query, which is a pure function of a quantized position recomputed every
// tick for every aircraft).
type LookupCache struct{ inner *lookupCache }

func NewLookupCache(size int) *LookupCache {
	return &LookupCache{inner: newLookupCache(size)}
}

func (l *LookupCache) Get(key string) (any, bool) { return l.inner.get(key) }
func (l *LookupCache) Put(key string, v any)       { l.inner.put(key, v) }
