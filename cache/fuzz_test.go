package cache

import (
	"strings"
	"testing"
)

// Fuzz basic Set/Get/Delete semantics under arbitrary string inputs.
// Guards against panics and ensures core invariants hold.
// NOTE: We cap key/value lengths to avoid pathological memory usage
// during fuzzing (this does not weaken the invariants we check).
func FuzzCache_SetGetDelete(f *testing.F) {
	// Seed corpus: empty, blank, ASCII, Unicode, long strings.
	f.Add("", "")
	f.Add(" ", "blank")
	f.Add("a", "1")
	f.Add("b", "2")
	f.Add("αβγ", "δ")
	f.Add("emoji🙂", "🙂🙂")
	f.Add("long", strings.Repeat("x", 1024))

	f.Fuzz(func(t *testing.T, k, v string) {
		// Cap lengths to keep memory bounded during fuzzing.
		const limit = 1 << 12 // 4096
		if len(k) > limit {
			k = k[:limit]
		}
		if len(v) > limit {
			v = v[:limit]
		}

		c := New[string](Options[string]{Capacity: 16, CleanupInterval: -1})
		t.Cleanup(func() { _ = c.Close() })

		// Blank keys are rejected everywhere, consistently.
		if strings.TrimSpace(k) == "" {
			if err := c.Set(k, v); err == nil {
				t.Fatalf("Set(%q) must reject a blank key", k)
			}
			if c.Add(k, v) {
				t.Fatalf("Add(%q) must reject a blank key", k)
			}
			if _, ok := c.Get(k); ok {
				t.Fatalf("Get(%q) must miss", k)
			}
			return
		}

		// Set -> Get must return the same value.
		if err := c.Set(k, v); err != nil {
			t.Fatalf("Set(%q): %v", k, err)
		}
		got, ok := c.Get(k)
		if !ok || got != v {
			t.Fatalf("after Set/Get: want %q, got %q ok=%v", v, got, ok)
		}

		// Add duplicate must not overwrite and must return false.
		if ok := c.Add(k, "other"); ok {
			t.Fatalf("Add duplicate returned true")
		}
		// Value must remain the same after failed Add.
		if got2, ok := c.Get(k); !ok || got2 != v {
			t.Fatalf("after duplicate Add: want %q, got %q ok=%v", v, got2, ok)
		}

		// Delete must remove and return true once.
		if !c.Delete(k) {
			t.Fatalf("Delete must return true")
		}
		if _, ok := c.Get(k); ok {
			t.Fatalf("key must be absent after Delete")
		}

		// After removal, Add should succeed again.
		if ok := c.Add(k, v); !ok {
			t.Fatalf("Add after Delete must return true")
		}
	})
}
