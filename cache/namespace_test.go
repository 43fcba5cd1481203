package cache

import (
	"fmt"
	"sort"
	"testing"
)

func TestNamespace_Isolation(t *testing.T) {
	t.Parallel()

	c := newTestCache(t, Options[string]{Capacity: 64})
	users := c.Namespace("users")
	posts := c.Namespace("posts")

	_ = users.Set("1", "alice")
	_ = posts.Set("1", "hello world")
	_ = c.Set("1", "root")

	if v, _ := users.Get("1"); v != "alice" {
		t.Fatalf("users:1 = %q", v)
	}
	if v, _ := posts.Get("1"); v != "hello world" {
		t.Fatalf("posts:1 = %q", v)
	}
	if v, _ := c.Get("1"); v != "root" {
		t.Fatalf("bare 1 = %q", v)
	}

	if !users.Delete("1") {
		t.Fatal("users delete must succeed")
	}
	if posts.Has("1") != true || c.Has("1") != true {
		t.Fatal("deleting users:1 must not touch other namespaces")
	}
}

func TestNamespace_ClearScoped(t *testing.T) {
	t.Parallel()

	c := newTestCache(t, Options[int]{Capacity: 500})
	sessions := c.Namespace("sessions")
	other := c.Namespace("session") // prefix of the other name, must stay disjoint

	for i := 0; i < 50; i++ {
		_ = sessions.Set(fmt.Sprintf("s%d", i), i)
		_ = other.Set(fmt.Sprintf("s%d", i), i)
		_ = c.Set(fmt.Sprintf("bare%d", i), i)
	}

	sessions.Clear()

	if n := sessions.Len(); n != 0 {
		t.Fatalf("sessions.Len()=%d after Clear", n)
	}
	if n := other.Len(); n != 50 {
		t.Fatalf("sibling namespace lost entries: %d", n)
	}
	if c.Len() != 100 {
		t.Fatalf("want 100 survivors, got %d", c.Len())
	}
}

func TestNamespace_Keys(t *testing.T) {
	t.Parallel()

	c := newTestCache(t, Options[int]{Capacity: 500})
	ns := c.Namespace("ns")

	want := []string{"a", "b", "c"}
	for i, k := range want {
		_ = ns.Set(k, i)
	}
	_ = c.Set("outside", 99)

	got := ns.Keys()
	sort.Strings(got)
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("Keys() = %v, want %v", got, want)
	}
	if ns.Len() != 3 {
		t.Fatalf("Len()=%d, want 3", ns.Len())
	}
}
