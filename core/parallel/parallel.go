package parallel

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
)

// Workers resolves a requested worker count: n <= 0 means one worker per CPU core.
func Workers(n int) int {
	if n <= 0 {
		return runtime.NumCPU()
	}
	return n
}

// Parallelize divides the specified total number (items) according to the number of CPU cores,
// and executes the specified function (fn) in parallel for each range (start, end)
func Parallelize(items int, fn func(start, end int)) {
	ParallelizeN(items, runtime.NumCPU(), fn)
}

// ParallelizeN is Parallelize with an explicit upper bound on the number of workers.
func ParallelizeN(items, workers int, fn func(start, end int)) {
	if items == 0 {
		return
	}

	numWorkers := Workers(workers)
	if numWorkers > items {
		numWorkers = items // No need for more workers than items
	}

	// Calculate the number of items each worker handles (ceiling division)
	chunkSize := (items + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}

	wg.Wait()
}

// ParallelizeWithThreshold performs parallelization only when the number of items exceeds the threshold
// If below threshold, normal sequential processing is performed
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= threshold {
		fn(0, items)
		return
	}
	Parallelize(items, fn)
}

// ForEach calls fn(i) for every i in [0, items) on at most workers goroutines.
// Indices are handed out one at a time in increasing order, so uneven work
// per item still keeps every worker busy. Once ctx is done no new index is
// handed out and ctx.Err() is returned after the running calls finish.
func ForEach(ctx context.Context, items, workers int, fn func(i int)) error {
	if items == 0 {
		return ctx.Err()
	}

	numWorkers := Workers(workers)
	if numWorkers > items {
		numWorkers = items
	}

	if numWorkers == 1 {
		for i := 0; i < items; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			fn(i)
		}
		return nil
	}

	var (
		next int64 = -1
		wg   sync.WaitGroup
	)
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				if ctx.Err() != nil {
					return
				}
				i := int(atomic.AddInt64(&next, 1))
				if i >= items {
					return
				}
				fn(i)
			}
		}()
	}
	wg.Wait()

	if int(atomic.LoadInt64(&next)) < items-1 {
		return ctx.Err()
	}
	return nil
}
