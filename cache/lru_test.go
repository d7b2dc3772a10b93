package cache

import (
	"fmt"
	"sync"
	"testing"
)

func TestLRU_GetPut(t *testing.T) {
	c := NewLRU(4)

	// Get on empty cache
	if _, ok := c.Get("missing"); ok {
		t.Error("Get on empty cache should return ok=false")
	}

	entry := Entry{Response: "hello there", Feedback: "good job"}
	c.Put("k1", entry)

	got, ok := c.Get("k1")
	if !ok {
		t.Fatal("Get after Put should return ok=true")
	}
	if got != entry {
		t.Errorf("Get returned %+v, want %+v", got, entry)
	}

	// Update replaces the value under the same key without growing
	updated := Entry{Response: "hello again", Feedback: "better"}
	c.Put("k1", updated)
	if got, _ := c.Get("k1"); got != updated {
		t.Errorf("Get after update returned %+v, want %+v", got, updated)
	}
	if c.Len() != 1 {
		t.Errorf("Len after update = %d, want 1", c.Len())
	}
}

func TestLRU_RejectsInvalidKeys(t *testing.T) {
	c := NewLRU(4)
	entry := Entry{Response: "hello there", Feedback: "good job"}

	for _, key := range []string{"", "   ", "line\nbreak", longKey(MaxKeyLength + 1)} {
		c.Put(key, entry)
		if _, ok := c.Get(key); ok {
			t.Errorf("Get(%q) after Put should return ok=false", key)
		}
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0 after invalid puts", c.Len())
	}
}

func longKey(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = 'k'
	}
	return string(b)
}

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU(2)

	c.Put("a", Entry{Response: "A"})
	c.Put("b", Entry{Response: "B"})

	// Touch a so b becomes the eviction candidate
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a should be present")
	}

	c.Put("c", Entry{Response: "C"})

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a should have survived eviction")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("c should be present")
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
}

func TestLRU_GetRefreshesRecency(t *testing.T) {
	c := NewLRU(3)

	c.Put("a", Entry{Response: "A"})
	c.Put("b", Entry{Response: "B"})
	c.Put("c", Entry{Response: "C"})

	// Without the Get, a would be evicted next. The Get makes b oldest.
	c.Get("a")
	c.Put("d", Entry{Response: "D"})

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted after a was refreshed")
	}
	for _, key := range []string{"a", "c", "d"} {
		if _, ok := c.Get(key); !ok {
			t.Errorf("%s should be present", key)
		}
	}
}

func TestLRU_CapacityNeverExceeded(t *testing.T) {
	const capacity = 8
	c := NewLRU(capacity)

	for i := 0; i < capacity*3; i++ {
		c.Put(fmt.Sprintf("key-%d", i), Entry{Response: fmt.Sprintf("r%d", i)})
		if c.Len() > capacity {
			t.Fatalf("Len = %d exceeds capacity %d", c.Len(), capacity)
		}
	}
	if c.Len() != capacity {
		t.Errorf("Len = %d, want %d", c.Len(), capacity)
	}
}

func TestLRU_DefaultCapacity(t *testing.T) {
	c := NewLRU(0)
	if c.Capacity() != DefaultCapacity {
		t.Errorf("Capacity = %d, want %d", c.Capacity(), DefaultCapacity)
	}
}

func TestLRU_Stats(t *testing.T) {
	c := NewLRU(2)
	c.Put("a", Entry{Response: "A"})

	c.Get("a")       // hit
	c.Get("missing") // miss
	c.Get("a")       // hit

	stats := c.Stats()
	if stats.Hits != 2 {
		t.Errorf("Hits = %d, want 2", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("Misses = %d, want 1", stats.Misses)
	}
	if stats.Entries != 1 {
		t.Errorf("Entries = %d, want 1", stats.Entries)
	}
}

func TestLRU_ConcurrentAccess(t *testing.T) {
	c := NewLRU(16)

	const numGoroutines = 50
	const opsPerGoroutine = 500

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < opsPerGoroutine; j++ {
				key := fmt.Sprintf("key-%d", j%32)
				switch j % 3 {
				case 0:
					c.Put(key, Entry{Response: "value"})
				case 1:
					c.Get(key)
				case 2:
					c.Len()
				}
			}
		}(i)
	}
	wg.Wait()

	if c.Len() > 16 {
		t.Errorf("Len = %d exceeds capacity after concurrent use", c.Len())
	}
}

func BenchmarkLRU_Get(b *testing.B) {
	c := NewLRU(1024)
	for i := 0; i < 1024; i++ {
		c.Put(fmt.Sprintf("key-%d", i), Entry{Response: "value"})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get(fmt.Sprintf("key-%d", i%1024))
	}
}

func BenchmarkLRU_Put(b *testing.B) {
	c := NewLRU(1024)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Put(fmt.Sprintf("key-%d", i%4096), Entry{Response: "value"})
	}
}
