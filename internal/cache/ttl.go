package cache

import (
	"sync"
	"time"
)

// Stats reports cache performance counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Entries   int
}

// TTLCache is an in-memory cache with per-entry expiration and LRU eviction.
// It backs forecast lookups when no Redis instance is configured.
type TTLCache struct {
	mu         sync.RWMutex
	entries    map[string]*cacheEntry
	maxEntries int
	hits       int64
	misses     int64
	evictions  int64

	stopCh   chan struct{}
	stopOnce sync.Once
}

type cacheEntry struct {
	value    []byte
	expires  time.Time
	accessed time.Time
}

// NewTTLCache creates a cache bounded to maxEntries live entries. A cleanup
// goroutine removes expired entries until Close is called.
func NewTTLCache(maxEntries int) *TTLCache {
	c := &TTLCache{
		entries:    make(map[string]*cacheEntry),
		maxEntries: maxEntries,
		stopCh:     make(chan struct{}),
	}
	go c.cleanup()
	return c
}

// Get returns the cached bytes for key if present and not expired.
func (c *TTLCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok || time.Now().After(entry.expires) {
		c.misses++
		return nil, false
	}

	entry.accessed = time.Now()
	c.hits++
	return entry.value, true
}

// Set stores value under key for ttl. A non-positive ttl is treated as one
// that expires immediately.
func (c *TTLCache) Set(key string, value []byte, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictOldest()
	}

	c.entries[key] = &cacheEntry{
		value:    append([]byte(nil), value...),
		expires:  time.Now().Add(ttl),
		accessed: time.Now(),
	}
}

// Delete removes key if present.
func (c *TTLCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Stats returns a snapshot of the cache counters.
func (c *TTLCache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Entries:   len(c.entries),
	}
}

// Close stops the cleanup goroutine.
func (c *TTLCache) Close() {
	c.stopOnce.Do(func() { close(c.stopCh) })
}

// evictOldest drops the least recently accessed entry. Caller holds the lock.
func (c *TTLCache) evictOldest() {
	var oldestKey string
	var oldest time.Time
	for key, entry := range c.entries {
		if oldestKey == "" || entry.accessed.Before(oldest) {
			oldestKey = key
			oldest = entry.accessed
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
		c.evictions++
	}
}

func (c *TTLCache) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			for key, entry := range c.entries {
				if now.After(entry.expires) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		}
	}
}
