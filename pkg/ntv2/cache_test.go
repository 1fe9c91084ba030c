package ntv2

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeGrid builds a grid whose memory estimate is 1024 + 256 + 32*nodes.
func fakeGrid(name string, nodes int) *GridFile {
	return &GridFile{
		name:  name,
		grids: []*SubGrid{{nodes: make([]Shift, nodes)}},
	}
}

func TestCacheBasic(t *testing.T) {
	cache := NewGridCache(1024 * 1024) // 1MB

	stats := cache.Stats()
	if stats.GridCount != 0 {
		t.Errorf("Expected empty cache, got %d grids", stats.GridCount)
	}

	loadCount := 0
	grid, err := cache.Get("test", func() (*GridFile, error) {
		loadCount++
		return fakeGrid("test", 10), nil
	})
	if err != nil {
		t.Fatalf("Failed to load grid: %v", err)
	}
	if grid.Name() != "test" {
		t.Errorf("Expected grid name 'test', got '%s'", grid.Name())
	}
	if loadCount != 1 {
		t.Errorf("Expected loader called once, got %d times", loadCount)
	}

	grid2, err := cache.Get("test", func() (*GridFile, error) {
		loadCount++
		return fakeGrid("test2", 10), nil
	})
	if err != nil {
		t.Fatalf("Failed to get cached grid: %v", err)
	}
	if grid2.Name() != "test" {
		t.Errorf("Expected cached grid name 'test', got '%s'", grid2.Name())
	}
	if loadCount != 1 {
		t.Errorf("Expected loader not called for cache hit, called %d times", loadCount)
	}

	stats = cache.Stats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("Expected 1 hit and 1 miss, got %d and %d", stats.Hits, stats.Misses)
	}
	if stats.HitRate() != 0.5 {
		t.Errorf("Expected hit rate 0.5, got %v", stats.HitRate())
	}
	if want := int64(1024 + 256 + 32*10); stats.UsedMemory != want {
		t.Errorf("Expected %d bytes used, got %d", want, stats.UsedMemory)
	}
}

func TestCacheLoaderError(t *testing.T) {
	cache := NewGridCache(0)
	boom := errors.New("boom")

	_, err := cache.Get("bad", func() (*GridFile, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected wrapped loader error, got %v", err)
	}
	if _, ok := cache.Peek("bad"); ok {
		t.Error("Failed load should not be cached")
	}
}

func TestCacheEviction(t *testing.T) {
	// Each grid is 2880 bytes, so three fit.
	cache := NewGridCache(10 * 1024)

	for i := 0; i < 10; i++ {
		name := string(rune('A' + i))
		_, err := cache.Get(name, func() (*GridFile, error) {
			return fakeGrid(name, 50), nil
		})
		if err != nil {
			t.Fatalf("Failed to add grid %s: %v", name, err)
		}
	}

	stats := cache.Stats()
	if stats.GridCount != 3 {
		t.Errorf("Expected 3 grids after eviction, cache has %d", stats.GridCount)
	}
	if stats.UsedMemory > cache.maxMemory {
		t.Errorf("Cache exceeded max memory: %d > %d", stats.UsedMemory, cache.maxMemory)
	}
	for _, name := range []string{"H", "I", "J"} {
		if _, ok := cache.Peek(name); !ok {
			t.Errorf("Expected most recent grid %s to be cached", name)
		}
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	cache := NewGridCache(3 * 2880)

	for _, name := range []string{"A", "B", "C"} {
		if err := cache.Add(name, fakeGrid(name, 50)); err != nil {
			t.Fatalf("Add %s: %v", name, err)
		}
	}

	// Touch A so B becomes the oldest.
	if _, err := cache.Get("A", nil); err != nil {
		t.Fatalf("Get A: %v", err)
	}
	if err := cache.Add("D", fakeGrid("D", 50)); err != nil {
		t.Fatalf("Add D: %v", err)
	}

	if _, ok := cache.Peek("B"); ok {
		t.Error("Expected B to be evicted")
	}
	if _, ok := cache.Peek("A"); !ok {
		t.Error("Expected A to survive eviction")
	}
}

func TestCacheTooLarge(t *testing.T) {
	cache := NewGridCache(2048)

	if err := cache.Add("big", fakeGrid("big", 1000)); err == nil {
		t.Error("Expected error adding oversized grid")
	}

	// Get still hands the grid back.
	grid, err := cache.Get("big", func() (*GridFile, error) {
		return fakeGrid("big", 1000), nil
	})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if grid == nil {
		t.Fatal("Expected grid from loader")
	}
	if cache.Stats().GridCount != 0 {
		t.Errorf("Expected oversized grid to stay uncached")
	}
}

func TestCacheReAddUpdatesMemory(t *testing.T) {
	cache := NewGridCache(0)

	if err := cache.Add("g", fakeGrid("g", 10)); err != nil {
		t.Fatal(err)
	}
	if err := cache.Add("g", fakeGrid("g", 20)); err != nil {
		t.Fatal(err)
	}

	stats := cache.Stats()
	if stats.GridCount != 1 {
		t.Errorf("Expected 1 grid, got %d", stats.GridCount)
	}
	if want := int64(1024 + 256 + 32*20); stats.UsedMemory != want {
		t.Errorf("Expected %d bytes used, got %d", want, stats.UsedMemory)
	}
}

func TestCacheClear(t *testing.T) {
	cache := NewGridCache(1024 * 1024)

	for i := 0; i < 5; i++ {
		name := string(rune('A' + i))
		_, err := cache.Get(name, func() (*GridFile, error) {
			return fakeGrid(name, 10), nil
		})
		if err != nil {
			t.Fatalf("Failed to add grid: %v", err)
		}
	}

	if cache.Stats().GridCount != 5 {
		t.Errorf("Expected 5 grids, got %d", cache.Stats().GridCount)
	}

	cache.Clear()

	if cache.Stats().GridCount != 0 {
		t.Errorf("Expected empty cache after clear, got %d grids", cache.Stats().GridCount)
	}
	if cache.Stats().UsedMemory != 0 {
		t.Errorf("Expected zero memory after clear, got %d bytes", cache.Stats().UsedMemory)
	}
}

func TestCacheRemove(t *testing.T) {
	cache := NewGridCache(1024 * 1024)

	_, err := cache.Get("test", func() (*GridFile, error) {
		return fakeGrid("test", 10), nil
	})
	if err != nil {
		t.Fatalf("Failed to add grid: %v", err)
	}

	cache.Remove("test")

	if cache.Stats().GridCount != 0 {
		t.Errorf("Expected 0 grids after remove, got %d", cache.Stats().GridCount)
	}

	// Removed grids are loaded again.
	loadCount := 0
	_, err = cache.Get("test", func() (*GridFile, error) {
		loadCount++
		return fakeGrid("test", 10), nil
	})
	if err != nil {
		t.Fatalf("Failed to reload grid: %v", err)
	}
	if loadCount != 1 {
		t.Errorf("Expected loader called after remove, called %d times", loadCount)
	}
}

func TestCacheConcurrentLoadsShared(t *testing.T) {
	cache := NewGridCache(0)

	var loads int32
	release := make(chan struct{})
	loader := func() (*GridFile, error) {
		atomic.AddInt32(&loads, 1)
		<-release
		return fakeGrid("shared", 10), nil
	}

	const callers = 8
	var wg sync.WaitGroup
	results := make([]*GridFile, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			grid, err := cache.Get("shared", loader)
			if err != nil {
				t.Errorf("Get: %v", err)
				return
			}
			results[i] = grid
		}(i)
	}

	// Give every caller time to join the in-flight load.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := atomic.LoadInt32(&loads); n != 1 {
		t.Errorf("Expected one load, got %d", n)
	}
	for i, grid := range results {
		if grid != results[0] {
			t.Errorf("Caller %d got a different grid", i)
		}
	}
}
