package fs

import (
	"sync"
	"time"

	"github.com/aretw0/dailynotes/pkg/core"
)

// indexEntry holds the parsed entries of one day file.
type indexEntry struct {
	Entries      []core.NoteEntry
	LastModified time.Time
	Size         int64
}

// dayIndex caches parsed day files for range scans, keyed by file name.
// An entry is only served while the file's mtime and size still match.
type dayIndex struct {
	mu      sync.RWMutex
	entries map[string]*indexEntry
}

func newDayIndex() *dayIndex {
	return &dayIndex{entries: make(map[string]*indexEntry)}
}

// Get returns the entry for name if it is fresh.
func (c *dayIndex) Get(name string, mtime time.Time, size int64) (*indexEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[name]
	if !ok || !entry.LastModified.Equal(mtime) || entry.Size != size {
		return nil, false
	}
	return entry, true
}

// Set stores the parsed entries for name.
func (c *dayIndex) Set(name string, entry *indexEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[name] = entry
}

// Delete drops name from the index.
func (c *dayIndex) Delete(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, name)
}

// Len returns the number of indexed day files.
func (c *dayIndex) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
