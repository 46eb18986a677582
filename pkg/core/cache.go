package core

import (
	"sync"
	"sync/atomic"
)

// CacheEntry mirrors today's Aggregate and the day it was resolved for.
type CacheEntry struct {
	Text string
	Day  Day
}

// Cache is the process-lifetime holder of the current CacheEntry.
// It starts empty. Snapshot is lock-free; writers must hold the lock
// obtained with Lock, which is the same lock that serializes backend mutations.
type Cache struct {
	mu    sync.Mutex
	entry atomic.Pointer[CacheEntry]
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// Snapshot returns the current entry. ok is false while the cache is empty.
func (c *Cache) Snapshot() (e CacheEntry, ok bool) {
	p := c.entry.Load()
	if p == nil {
		return CacheEntry{}, false
	}
	return *p, true
}

// ValidFor reports the cached text when it is authoritative for day.
func (c *Cache) ValidFor(day Day) (string, bool) {
	e, ok := c.Snapshot()
	if !ok || e.Day != day || e.Text == "" {
		return "", false
	}
	return e.Text, true
}

// Lock acquires the mutation lock.
func (c *Cache) Lock() { c.mu.Lock() }

// Unlock releases the mutation lock.
func (c *Cache) Unlock() { c.mu.Unlock() }

// set replaces the entry. Callers hold the mutation lock.
func (c *Cache) set(e CacheEntry) {
	c.entry.Store(&e)
}
