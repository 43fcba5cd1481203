package cache

import (
	"fmt"
	"testing"
	"time"
)

// Builds a cache with the monitor loop disabled and a stubbed heap
// reading, then drives classification and response by hand.
func newPressureCache(t *testing.T, heapLimit uint64) *cache[int] {
	t.Helper()
	c := New[int](Options[int]{
		Capacity:         100,
		CleanupInterval:  -1,
		HeapLimit:        heapLimit,
		PressureInterval: time.Hour, // the loop never fires during the test
	}).(*cache[int])
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestPressure_Classification(t *testing.T) {
	t.Parallel()

	c := newPressureCache(t, 1000)

	cases := []struct {
		heap uint64
		want pressureLevel
	}{
		{0, pressureNormal},
		{649, pressureNormal},
		{650, pressureModerate},
		{799, pressureModerate},
		{800, pressureHigh},
		{899, pressureHigh},
		{900, pressureCritical},
		{2000, pressureCritical},
	}
	for _, tc := range cases {
		c.heapUsed = func() uint64 { return tc.heap }
		if got := c.classifyPressure(); got != tc.want {
			t.Fatalf("heap=%d: got %v, want %v", tc.heap, got, tc.want)
		}
	}
}

// High pressure shrinks the resident set to 70%, critical to 50%.
// Shrinking goes through the policy, so the LRU end is evicted first.
func TestPressure_Response(t *testing.T) {
	t.Parallel()

	c := newPressureCache(t, 1000)
	for i := 0; i < 100; i++ {
		_ = c.Set(fmt.Sprintf("k%d", i), i)
	}

	c.respondToPressure(pressureModerate)
	if n := c.Len(); n != 100 {
		t.Fatalf("moderate must only sweep, Len()=%d", n)
	}

	c.respondToPressure(pressureHigh)
	if n := c.Len(); n != 70 {
		t.Fatalf("high must shrink to 70%%, Len()=%d", n)
	}
	// The 30 least recently used entries (earliest inserts) are gone.
	if c.Has("k0") || c.Has("k29") {
		t.Fatal("LRU end must be evicted first")
	}
	if !c.Has("k99") {
		t.Fatal("MRU end must survive")
	}

	c.respondToPressure(pressureCritical)
	if n := c.Len(); n != 35 {
		t.Fatalf("critical must halve the resident set, Len()=%d", n)
	}

	st := c.Stats()
	if st.Evictions != 65 {
		t.Fatalf("want 65 pressure evictions, got %d", st.Evictions)
	}
}

// Pressure evictions are surfaced to the eviction callback with their
// own reason.
func TestPressure_ShrinkReason(t *testing.T) {
	t.Parallel()

	var reasons []Reason
	c := New[int](Options[int]{
		Capacity:        10,
		CleanupInterval: -1,
		OnEvict:         func(_ string, _ int, r Reason) { reasons = append(reasons, r) },
	}).(*cache[int])
	t.Cleanup(func() { _ = c.Close() })

	for i := 0; i < 10; i++ {
		_ = c.Set(fmt.Sprintf("k%d", i), i)
	}
	c.shrink(0.50)

	if len(reasons) != 5 {
		t.Fatalf("want 5 evictions, got %d", len(reasons))
	}
	for _, r := range reasons {
		if r != ReasonPressure {
			t.Fatalf("want ReasonPressure, got %v", r)
		}
	}
}
