package cache

import (
	"context"
	"sync"
	"time"
)

// entry represents a stored payload with expiration
type entry struct {
	payload   []byte
	expiresAt time.Time
}

// InMemoryStatsCache implements report.StatsCache using an in-memory map.
// This is suitable for single-instance deployments and testing.
type InMemoryStatsCache struct {
	mu        sync.RWMutex
	entries   map[string]entry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryStatsCache creates a new in-memory cache. It starts a background
// goroutine to clean up expired entries.
func NewInMemoryStatsCache() *InMemoryStatsCache {
	cache := &InMemoryStatsCache{
		entries:  make(map[string]entry),
		stopChan: make(chan struct{}),
	}

	cache.wg.Add(1)
	go cache.cleanupLoop()

	return cache
}

// Get returns the cached payload for the key. Expired entries are a miss.
func (c *InMemoryStatsCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, exists := c.entries[key]
	if !exists {
		return nil, false, nil
	}
	if time.Now().After(e.expiresAt) {
		return nil, false, nil
	}
	return e.payload, true, nil
}

// Set stores the payload under the key with the given TTL
func (c *InMemoryStatsCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{
		payload:   value,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Close stops the cleanup goroutine and releases resources.
// Safe to call multiple times.
func (c *InMemoryStatsCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

// cleanupLoop periodically removes expired entries
func (c *InMemoryStatsCache) cleanupLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *InMemoryStatsCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}
