package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestFIFOGetSet(t *testing.T) {
	c := NewFIFO[string](4, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Fatal("expected miss on empty cache")
	}

	c.Set("a", "one")
	v, ok := c.Get("a")
	if !ok || v != "one" {
		t.Fatalf("expected hit with %q, got %q (ok=%v)", "one", v, ok)
	}
}

func TestFIFOEvictsEarliestInsertion(t *testing.T) {
	c := NewFIFO[int](3, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	// Reading "a" must NOT protect it: eviction is insertion-ordered,
	// not recency-of-access.
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected a present before overflow")
	}

	c.Set("d", 4)

	if _, ok := c.Get("a"); ok {
		t.Fatal("expected earliest-inserted entry a to be evicted")
	}
	for _, k := range []string{"b", "c", "d"} {
		if _, ok := c.Get(k); !ok {
			t.Fatalf("expected %s to survive eviction", k)
		}
	}
	if c.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", c.Len())
	}
}

func TestFIFOOverwriteCountsAsNewInsertion(t *testing.T) {
	c := NewFIFO[int](2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("a", 10) // re-inserted, now newest
	c.Set("c", 3)  // overflow evicts b, the oldest insertion

	if _, ok := c.Get("b"); ok {
		t.Fatal("expected b evicted after a was re-inserted")
	}
	if v, ok := c.Get("a"); !ok || v != 10 {
		t.Fatalf("expected overwritten a to survive, got %d (ok=%v)", v, ok)
	}
}

func TestFIFOTTLExpiry(t *testing.T) {
	c := NewFIFO[int](10, time.Minute)

	now := time.Now()
	c.now = func() time.Time { return now }

	c.Set("a", 1)

	now = now.Add(59 * time.Second)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("entry must be live inside the TTL")
	}

	now = now.Add(2 * time.Second)
	if _, ok := c.Get("a"); ok {
		t.Fatal("expired entry must read as absent")
	}
	if c.Len() != 0 {
		t.Fatal("expired entry must be removed on read")
	}
}

func TestFIFOClear(t *testing.T) {
	c := NewFIFO[int](10, time.Minute)
	for i := 0; i < 5; i++ {
		c.Set(fmt.Sprintf("k%d", i), i)
	}

	c.Clear()

	if c.Len() != 0 {
		t.Fatalf("expected empty cache after Clear, got %d entries", c.Len())
	}
	if _, ok := c.Get("k0"); ok {
		t.Fatal("expected miss after Clear")
	}
}

func TestFIFOUnboundedCapacity(t *testing.T) {
	c := NewFIFO[int](0, time.Minute)
	for i := 0; i < 100; i++ {
		c.Set(fmt.Sprintf("k%d", i), i)
	}
	if c.Len() != 100 {
		t.Fatalf("capacity 0 must disable the size bound, got %d", c.Len())
	}
}
