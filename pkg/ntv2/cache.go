package ntv2

import (
	"container/list"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// GridCache keeps loaded grids in memory with LRU eviction.
//
// Grid files range from a few kilobytes to hundreds of megabytes once
// expanded, so the cache is bounded by estimated memory rather than entry
// count. Concurrent Get calls for the same missing name share one load.
//
// Example:
//
//	cache := ntv2.NewGridCache(256 * 1024 * 1024) // 256MB
//
//	grid, err := cache.Get("BETA2007", func() (*ntv2.GridFile, error) {
//	    return ntv2.Open("/data/grids/BETA2007.gsb", ntv2.DefaultParseOptions())
//	})
type GridCache struct {
	maxMemory  int64 // Maximum memory in bytes, 0 for unlimited
	usedMemory int64
	grids      map[string]*cacheEntry
	lru        *list.List // most recent at front
	loads      singleflight.Group
	mu         sync.RWMutex

	hits, misses int
}

type cacheEntry struct {
	name         string
	grid         *GridFile
	memorySize   int64
	element      *list.Element
	lastAccessed time.Time
	accessCount  int
}

// NewGridCache creates a cache limited to roughly maxMemoryBytes.
// Set to 0 for no limit.
func NewGridCache(maxMemoryBytes int64) *GridCache {
	return &GridCache{
		maxMemory: maxMemoryBytes,
		grids:     make(map[string]*cacheEntry),
		lru:       list.New(),
	}
}

// Get returns the cached grid for name, calling loader on a miss.
//
// A grid too large for the cache is still returned, just not kept.
func (c *GridCache) Get(name string, loader func() (*GridFile, error)) (*GridFile, error) {
	c.mu.Lock()
	if entry, ok := c.grids[name]; ok {
		entry.lastAccessed = time.Now()
		entry.accessCount++
		c.hits++
		c.lru.MoveToFront(entry.element)
		c.mu.Unlock()
		return entry.grid, nil
	}
	c.misses++
	c.mu.Unlock()

	v, err, _ := c.loads.Do(name, func() (interface{}, error) {
		grid, err := loader()
		if err != nil {
			return nil, err
		}
		// Ignore the error: an oversized grid is served uncached.
		_ = c.Add(name, grid)
		return grid, nil
	})
	if err != nil {
		return nil, fmt.Errorf("load grid %s: %w", name, err)
	}
	return v.(*GridFile), nil
}

// Peek returns a cached grid without loading or touching LRU order.
func (c *GridCache) Peek(name string) (*GridFile, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if entry, ok := c.grids[name]; ok {
		return entry.grid, true
	}
	return nil, false
}

// Add stores a grid, evicting least-recently-used grids to make room.
func (c *GridCache) Add(name string, grid *GridFile) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	memSize := estimateGridMemory(grid)

	if entry, ok := c.grids[name]; ok {
		c.usedMemory += memSize - entry.memorySize
		entry.grid = grid
		entry.memorySize = memSize
		entry.lastAccessed = time.Now()
		entry.accessCount++
		c.lru.MoveToFront(entry.element)
		return nil
	}

	if c.maxMemory > 0 && memSize > c.maxMemory {
		return fmt.Errorf("grid too large for cache (%d bytes > %d bytes max)",
			memSize, c.maxMemory)
	}

	if c.maxMemory > 0 {
		for c.usedMemory+memSize > c.maxMemory && c.lru.Len() > 0 {
			c.evictLRU()
		}
	}

	entry := &cacheEntry{
		name:         name,
		grid:         grid,
		memorySize:   memSize,
		lastAccessed: time.Now(),
		accessCount:  1,
	}
	entry.element = c.lru.PushFront(entry)
	c.grids[name] = entry
	c.usedMemory += memSize

	return nil
}

// evictLRU removes the least recently used grid.
// Must be called with c.mu locked.
func (c *GridCache) evictLRU() {
	elem := c.lru.Back()
	if elem == nil {
		return
	}

	entry := elem.Value.(*cacheEntry)
	c.lru.Remove(elem)
	delete(c.grids, entry.name)
	c.usedMemory -= entry.memorySize
}

// Remove drops a grid from the cache.
func (c *GridCache) Remove(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.grids[name]; ok {
		c.lru.Remove(entry.element)
		delete(c.grids, name)
		c.usedMemory -= entry.memorySize
	}
}

// Clear empties the cache.
func (c *GridCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.grids = make(map[string]*cacheEntry)
	c.lru.Init()
	c.usedMemory = 0
}

// Stats returns cache statistics.
func (c *GridCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	totalAccess := 0
	for _, entry := range c.grids {
		totalAccess += entry.accessCount
	}

	return CacheStats{
		GridCount:   len(c.grids),
		UsedMemory:  c.usedMemory,
		MaxMemory:   c.maxMemory,
		TotalAccess: totalAccess,
		Hits:        c.hits,
		Misses:      c.misses,
	}
}

// CacheStats holds cache performance metrics.
type CacheStats struct {
	GridCount   int   // Number of grids currently cached
	UsedMemory  int64 // Estimated memory usage in bytes
	MaxMemory   int64 // Maximum memory limit in bytes
	TotalAccess int   // Accesses across all cached grids
	Hits        int
	Misses      int
}

// HitRate returns hits / (hits + misses), or 0 before any lookup.
func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// estimateGridMemory approximates the in-memory size of a grid:
// 1KB of fixed overhead, 256 bytes per subgrid and 32 bytes per node.
func estimateGridMemory(grid *GridFile) int64 {
	if grid == nil {
		return 0
	}
	return 1024 + int64(len(grid.grids))*256 + int64(grid.NodeCount())*32
}
