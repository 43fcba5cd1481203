package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestWarmup_LoadsAll(t *testing.T) {
	t.Parallel()

	c := newTestCache(t, Options[string]{Capacity: 500})

	items := make([]WarmupItem[string], 100)
	for i := range items {
		k := fmt.Sprintf("k%d", i)
		items[i] = WarmupItem[string]{
			Key:  k,
			Load: func(context.Context) (string, error) { return "v:" + k, nil },
		}
	}

	rep := c.Warmup(context.Background(), items)
	if rep.Loaded != 100 || rep.Failed != 0 {
		t.Fatalf("report = %+v", rep)
	}
	if c.Len() != 100 {
		t.Fatalf("Len()=%d, want 100", c.Len())
	}
	if v, ok := c.Get("k7"); !ok || v != "v:k7" {
		t.Fatalf("k7 = %q ok=%v", v, ok)
	}
}

// One failing or panicking loader must not take down its siblings.
func TestWarmup_FailureIsolation(t *testing.T) {
	t.Parallel()

	c := newTestCache(t, Options[string]{Capacity: 64})

	boom := errors.New("backend down")
	items := []WarmupItem[string]{
		{Key: "ok1", Load: func(context.Context) (string, error) { return "a", nil }},
		{Key: "bad", Load: func(context.Context) (string, error) { return "", boom }},
		{Key: "panics", Load: func(context.Context) (string, error) { panic("loader bug") }},
		{Key: " ", Load: func(context.Context) (string, error) { return "b", nil }},
		{Key: "nil-loader"},
		{Key: "ok2", Load: func(context.Context) (string, error) { return "c", nil }},
	}

	rep := c.Warmup(context.Background(), items)
	if rep.Loaded != 2 {
		t.Fatalf("want 2 loaded, got %d", rep.Loaded)
	}
	if rep.Failed != 4 {
		t.Fatalf("want 4 failed, got %d", rep.Failed)
	}
	if len(rep.Errs) != 4 {
		t.Fatalf("want 4 errors, got %d: %v", len(rep.Errs), rep.Errs)
	}

	joined := errors.Join(rep.Errs...)
	if !errors.Is(joined, boom) {
		t.Fatal("loader error must be preserved in the report")
	}
	if !errors.Is(joined, ErrInvalidKey) {
		t.Fatal("blank key must surface ErrInvalidKey")
	}
	if !errors.Is(joined, ErrNoLoader) {
		t.Fatal("missing loader must surface ErrNoLoader")
	}
	if !strings.Contains(joined.Error(), "loader panicked") {
		t.Fatalf("panic must be captured: %v", joined)
	}

	if !c.Has("ok1") || !c.Has("ok2") {
		t.Fatal("healthy items must be resident")
	}
	if c.Has("bad") || c.Has("panics") {
		t.Fatal("failed items must not be resident")
	}
}

// Per-item TTL: 0 inherits DefaultTTL, negative never expires.
func TestWarmup_TTL(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{}
	c := newTestCache(t, Options[string]{
		Capacity:   64,
		Clock:      clk,
		DefaultTTL: time.Minute,
	})

	items := []WarmupItem[string]{
		{Key: "default", Load: func(context.Context) (string, error) { return "d", nil }},
		{Key: "short", TTL: time.Second, Load: func(context.Context) (string, error) { return "s", nil }},
		{Key: "forever", TTL: -1, Load: func(context.Context) (string, error) { return "f", nil }},
	}
	if rep := c.Warmup(context.Background(), items); rep.Failed != 0 {
		t.Fatalf("report = %+v", rep)
	}

	clk.add(2 * time.Second)
	if c.Has("short") {
		t.Fatal("short must expire after its own TTL")
	}
	if !c.Has("default") {
		t.Fatal("default must still be within DefaultTTL")
	}

	clk.add(2 * time.Minute)
	if c.Has("default") {
		t.Fatal("default must expire after DefaultTTL")
	}
	if !c.Has("forever") {
		t.Fatal("negative TTL must never expire")
	}
}
