package lfu

import (
	"fmt"
	"testing"

	"github.com/dkrylovsk/tiercache/policy"
)

// --- test doubles ---

type testNode[V any] struct {
	k       string
	v       V
	access  uint64
	created int64
}

func (n *testNode[V]) Key() string         { return n.k }
func (n *testNode[V]) Value() *V           { return &n.v }
func (n *testNode[V]) AccessCount() uint64 { return n.access }
func (n *testNode[V]) CreatedAt() int64    { return n.created }
func (n *testNode[V]) ExpiresAt() int64    { return 0 }

type mockHooks[V any] struct {
	pushFrontCnt int
	backVal      policy.Node[V]
}

func (h *mockHooks[V]) MoveToFront(policy.Node[V]) {}
func (h *mockHooks[V]) PushFront(policy.Node[V])   { h.pushFrontCnt++ }
func (h *mockHooks[V]) Back() policy.Node[V]       { return h.backVal }
func (h *mockHooks[V]) Len() int                   { return 0 }

// --- tests ---

// Victim selects the entry with the lowest access count.
func TestLFU_Victim_LowestFrequency(t *testing.T) {
	t.Parallel()

	h := &mockHooks[int]{}
	p := New[int]().New(h)

	hot := &testNode[int]{k: "hot", access: 100}
	warm := &testNode[int]{k: "warm", access: 10}
	cold := &testNode[int]{k: "cold", access: 1}
	for _, n := range []*testNode[int]{hot, warm, cold} {
		p.OnAdd(n)
	}

	if got := p.Victim(); got != policy.Node[int](cold) {
		t.Fatalf("Victim must be the coldest entry, got %q", got.Key())
	}
	if h.pushFrontCnt != 3 {
		t.Fatalf("OnAdd must place every entry in the list, got %d", h.pushFrontCnt)
	}
}

// Frequency ties are broken by earliest creation time.
func TestLFU_Victim_TieBreakByAge(t *testing.T) {
	t.Parallel()

	p := New[int]().New(&mockHooks[int]{})

	older := &testNode[int]{k: "older", access: 5, created: 100}
	newer := &testNode[int]{k: "newer", access: 5, created: 200}
	p.OnAdd(newer)
	p.OnAdd(older)

	if got := p.Victim(); got != policy.Node[int](older) {
		t.Fatalf("tie must go to the older entry, got %q", got.Key())
	}
}

// Removed entries must never come back as victims.
func TestLFU_OnRemove_ForgetsNode(t *testing.T) {
	t.Parallel()

	p := New[int]().New(&mockHooks[int]{})

	a := &testNode[int]{k: "a", access: 1}
	b := &testNode[int]{k: "b", access: 2}
	p.OnAdd(a)
	p.OnAdd(b)

	p.OnRemove(a)
	if got := p.Victim(); got != policy.Node[int](b) {
		t.Fatalf("Victim after removal must be b, got %q", got.Key())
	}
	p.OnRemove(b)
	if got := p.Victim(); got != nil {
		t.Fatalf("Victim on empty policy must fall back to Back()=nil, got %v", got)
	}
}

// The bounded scan still returns a victim when membership exceeds the
// scan limit; it just may not be the global minimum.
func TestLFU_BoundedScan(t *testing.T) {
	t.Parallel()

	p := NewWithScanLimit[int](8).New(&mockHooks[int]{})

	nodes := make(map[policy.Node[int]]bool)
	for i := 0; i < 100; i++ {
		n := &testNode[int]{k: fmt.Sprintf("k%d", i), access: uint64(i)}
		nodes[n] = true
		p.OnAdd(n)
	}

	got := p.Victim()
	if got == nil {
		t.Fatal("Victim must not be nil with resident entries")
	}
	if !nodes[got] {
		t.Fatalf("Victim must be a resident member, got %q", got.Key())
	}
}
