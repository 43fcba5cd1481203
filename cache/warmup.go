package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// warmupConcurrency bounds the number of loaders running at once.
const warmupConcurrency = 8

// WarmupItem describes one entry to preload: a key, a loader producing
// its value, and an optional per-key TTL (0 = DefaultTTL, negative =
// never expires).
type WarmupItem[V any] struct {
	Key  string
	TTL  time.Duration
	Load func(ctx context.Context) (V, error)
}

// WarmupReport aggregates the outcome of a Warmup call.
type WarmupReport struct {
	Loaded int
	Failed int
	// Errs holds one error per failed item, each annotated with its key.
	Errs []error
}

// Warmup bulk-loads entries concurrently. Item failures are isolated:
// one failing (or panicking) loader never aborts its siblings, and the
// report carries per-item errors instead of a combined failure.
func (c *cache[V]) Warmup(ctx context.Context, items []WarmupItem[V]) WarmupReport {
	var (
		mu     sync.Mutex
		report WarmupReport
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(warmupConcurrency)

	for _, item := range items {
		item := item
		g.Go(func() error {
			err := c.warmupOne(ctx, item)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed++
				report.Errs = append(report.Errs, fmt.Errorf("warmup %q: %w", item.Key, err))
			} else {
				report.Loaded++
			}
			// Always nil: a failed item must not cancel the group.
			return nil
		})
	}
	_ = g.Wait()
	return report
}

func (c *cache[V]) warmupOne(ctx context.Context, item WarmupItem[V]) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("loader panicked: %v", r)
		}
	}()

	if item.Load == nil {
		return ErrNoLoader
	}
	if err := validateKey(item.Key); err != nil {
		return err
	}
	v, err := item.Load(ctx)
	if err != nil {
		return err
	}
	return c.SetWithTTL(item.Key, v, item.TTL)
}
