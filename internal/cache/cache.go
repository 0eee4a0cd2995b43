// Package cache holds rendered page output for one template, keyed by
// concrete path. It backs static serving, revalidation eligibility and
// incremental render-and-cache in the request handler.
package cache

import (
	"sync"
	"time"
)

// Entry is one cached render. Props carries the encoded state the page was
// rendered with, so a rebuild can compare against fresh state.
type Entry struct {
	HTML       string
	Props      []byte
	RenderedAt time.Time
}

// Cache is safe for concurrent use. There is no global TTL; revalidation
// intervals are per template and applied by the caller against RenderedAt.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func New() *Cache {
	return &Cache{
		entries: make(map[string]Entry),
	}
}

func (c *Cache) Get(path string) (Entry, bool) {
	c.mu.RLock()
	entry, ok := c.entries[path]
	c.mu.RUnlock()
	return entry, ok
}

func (c *Cache) Set(path string, entry Entry) {
	c.mu.Lock()
	c.entries[path] = entry
	c.mu.Unlock()
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]Entry)
	c.mu.Unlock()
}
