package sharegate

import (
	"testing"
	"time"
)

func TestAPICacheEvictsOldestInserted(t *testing.T) {
	cache := NewAPICache(2, time.Minute, nil)

	cache.Set("a", 1)
	cache.Set("b", 2)
	cache.Set("c", 3)

	if got := cache.Get("a"); got != nil {
		t.Errorf("Get(a) = %v, want nil after eviction", got)
	}
	if got := cache.Get("b"); got != 2 {
		t.Errorf("Get(b) = %v, want 2", got)
	}
	if got := cache.Get("c"); got != 3 {
		t.Errorf("Get(c) = %v, want 3", got)
	}
}

func TestAPICacheLazyExpiry(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	cache := NewAPICache(10, time.Minute, clock)

	cache.Set("key", "value")
	if got := cache.Get("key"); got != "value" {
		t.Fatalf("Get = %v, want value before expiry", got)
	}

	now = now.Add(time.Minute + time.Millisecond)
	if got := cache.Get("key"); got != nil {
		t.Errorf("Get = %v, want nil after ttl", got)
	}
	if n := cache.Len(); n != 0 {
		t.Errorf("Len = %d, want 0 after expired read", n)
	}
}

func TestAPICacheOverwriteKeepsCapacity(t *testing.T) {
	cache := NewAPICache(2, time.Minute, nil)

	cache.Set("a", 1)
	cache.Set("b", 2)
	cache.Set("a", 10) // refresh moves a to the back of the order
	cache.Set("c", 3)  // evicts b, the oldest remaining insert

	if got := cache.Get("b"); got != nil {
		t.Errorf("Get(b) = %v, want nil", got)
	}
	if got := cache.Get("a"); got != 10 {
		t.Errorf("Get(a) = %v, want 10", got)
	}
	if got := cache.Get("c"); got != 3 {
		t.Errorf("Get(c) = %v, want 3", got)
	}
}

func TestAPICacheKeyIsStable(t *testing.T) {
	cache := NewAPICache(2, time.Minute, nil)
	p := ListParams{Page: 2, Limit: 20, Category: "world"}
	if cache.Key("posts", p) != cache.Key("posts", p) {
		t.Error("identical params should produce identical keys")
	}
	if cache.Key("posts", p) == cache.Key("posts", ListParams{Page: 3, Limit: 20, Category: "world"}) {
		t.Error("different params should produce different keys")
	}
}

func TestAPICacheInvalidate(t *testing.T) {
	cache := NewAPICache(5, time.Minute, nil)
	cache.Set("a", 1)
	cache.Invalidate()
	if got := cache.Get("a"); got != nil {
		t.Errorf("Get(a) = %v, want nil after invalidate", got)
	}
}
