package fifo

import (
	"testing"

	"github.com/dkrylovsk/tiercache/policy"
)

// --- test doubles ---

type testNode[V any] struct {
	k string
	v V
}

func (n *testNode[V]) Key() string         { return n.k }
func (n *testNode[V]) Value() *V           { return &n.v }
func (n *testNode[V]) AccessCount() uint64 { return 0 }
func (n *testNode[V]) CreatedAt() int64    { return 0 }
func (n *testNode[V]) ExpiresAt() int64    { return 0 }

type mockHooks[V any] struct {
	pushFrontCnt   int
	moveToFrontCnt int
	lastPush       policy.Node[V]
	backVal        policy.Node[V]
}

func (h *mockHooks[V]) MoveToFront(policy.Node[V]) { h.moveToFrontCnt++ }
func (h *mockHooks[V]) PushFront(n policy.Node[V]) { h.pushFrontCnt++; h.lastPush = n }
func (h *mockHooks[V]) Back() policy.Node[V]       { return h.backVal }
func (h *mockHooks[V]) Len() int                   { return 0 }

// --- tests ---

// OnAdd records insertion order via PushFront.
func TestFIFO_OnAdd_PushFront(t *testing.T) {
	t.Parallel()

	h := &mockHooks[int]{}
	p := New[int]().New(h)

	n := &testNode[int]{k: "k1", v: 1}
	p.OnAdd(n)

	if h.pushFrontCnt != 1 || h.lastPush != policy.Node[int](n) {
		t.Fatalf("OnAdd must call PushFront exactly once with the node")
	}
}

// Reads and updates must never reorder a FIFO list.
func TestFIFO_NoPromotion(t *testing.T) {
	t.Parallel()

	h := &mockHooks[int]{}
	p := New[int]().New(h)

	n := &testNode[int]{k: "k2", v: 2}
	p.OnGet(n)
	p.OnUpdate(n)
	p.OnRemove(n)

	if h.moveToFrontCnt != 0 {
		t.Fatalf("FIFO must never call MoveToFront, got %d calls", h.moveToFrontCnt)
	}
	if h.pushFrontCnt != 0 {
		t.Fatalf("OnGet/OnUpdate/OnRemove must not call PushFront")
	}
}

// Victim is the oldest insertion: the list tail.
func TestFIFO_Victim_Back(t *testing.T) {
	t.Parallel()

	tail := &testNode[int]{k: "oldest"}
	h := &mockHooks[int]{backVal: tail}
	p := New[int]().New(h)

	if got := p.Victim(); got != policy.Node[int](tail) {
		t.Fatalf("Victim must be the tail, got %v", got)
	}
}
