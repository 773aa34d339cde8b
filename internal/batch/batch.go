// Package batch implements the batched-map-with-fallback pattern shared by
// the scoring and summarization stages.
package batch

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Item is one unit of work tagged with its position in the original input.
type Item[T any] struct {
	Index int
	Value T
}

// Batch is a bounded, ordered group of items sent together in one call.
type Batch[T any] struct {
	Number int
	Items  []Item[T]
}

// Job describes one batched stage.
type Job[T, R any] struct {
	Name        string
	BatchSize   int
	Concurrency int

	// Process handles a whole batch and returns results keyed by original index.
	Process func(ctx context.Context, b Batch[T]) (map[int]R, error)
	// Fallback produces the neutral result for an item whose batch failed.
	Fallback func(item Item[T]) R
	// OnBatch is notified once per finished batch.
	OnBatch func(ok bool)

	Logger *slog.Logger
}

// Index tags values with their positions.
func Index[T any](values []T) []Item[T] {
	items := make([]Item[T], len(values))
	for i, v := range values {
		items[i] = Item[T]{Index: i, Value: v}
	}
	return items
}

// Partition splits items into ceil(len/size) consecutive batches.
func Partition[T any](items []Item[T], size int) []Batch[T] {
	if size <= 0 {
		size = 1
	}

	batches := make([]Batch[T], 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		batches = append(batches, Batch[T]{
			Number: len(batches),
			Items:  items[start:end],
		})
	}
	return batches
}

// Limit calls fn for every i in [0,n) with at most limit calls in flight.
// A finished call frees its slot immediately.
func Limit(ctx context.Context, n, limit int, fn func(ctx context.Context, i int)) {
	if limit <= 0 {
		limit = 1
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			fn(ctx, i)
			return nil
		})
	}
	_ = g.Wait()
}

// Run processes every batch and returns exactly one result per input item.
// Failed batches and items the batch result omitted get Fallback values;
// results for indices outside their batch are discarded.
func Run[T, R any](ctx context.Context, job Job[T, R], items []Item[T]) map[int]R {
	logger := job.Logger
	if logger == nil {
		logger = slog.Default()
	}

	batches := Partition(items, job.BatchSize)
	results := make(map[int]R, len(items))
	if len(batches) == 0 {
		return results
	}

	logger.Info("batch stage started",
		"stage", job.Name,
		"items", len(items),
		"batches", len(batches),
		"concurrency", job.Concurrency)

	var (
		mu   sync.Mutex
		done int
	)

	Limit(ctx, len(batches), job.Concurrency, func(ctx context.Context, i int) {
		b := batches[i]
		out, err := job.Process(ctx, b)

		mu.Lock()
		defer mu.Unlock()

		if err != nil {
			logger.Warn("batch failed, using fallback",
				"stage", job.Name,
				"batch", b.Number,
				"items", len(b.Items),
				"error", err)
			for _, item := range b.Items {
				results[item.Index] = job.Fallback(item)
			}
		} else {
			merge(results, b, out, job, logger)
		}

		done++
		if job.OnBatch != nil {
			job.OnBatch(err == nil)
		}
		logger.Info("batch progress", "stage", job.Name, "done", done, "total", len(batches))
	})

	return results
}

func merge[T, R any](results map[int]R, b Batch[T], out map[int]R, job Job[T, R], logger *slog.Logger) {
	missing := 0
	for _, item := range b.Items {
		if r, ok := out[item.Index]; ok {
			results[item.Index] = r
			continue
		}
		results[item.Index] = job.Fallback(item)
		missing++
	}

	if extra := len(out) - (len(b.Items) - missing); extra > 0 {
		logger.Warn("batch returned unknown indices",
			"stage", job.Name,
			"batch", b.Number,
			"ignored", extra)
	}
	if missing > 0 {
		logger.Warn("batch omitted items, using fallback",
			"stage", job.Name,
			"batch", b.Number,
			"missing", missing)
	}
}
