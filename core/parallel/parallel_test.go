package parallel

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParallelizeCoversEveryItem(t *testing.T) {
	for _, items := range []int{0, 1, 7, 1000} {
		seen := make([]int32, items)
		ParallelizeN(items, 3, func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&seen[i], 1)
			}
		})
		for i, n := range seen {
			require.Equal(t, int32(1), n, "item %d of %d visited %d times", i, items, n)
		}
	}
}

func TestParallelizeWithThresholdSequential(t *testing.T) {
	var calls int
	ParallelizeWithThreshold(10, 100, func(start, end int) {
		calls++
		assert.Equal(t, 0, start)
		assert.Equal(t, 10, end)
	})
	assert.Equal(t, 1, calls)
}

func TestForEach(t *testing.T) {
	for _, workers := range []int{1, 4, 0} {
		var mu sync.Mutex
		seen := map[int]int{}
		err := ForEach(context.Background(), 25, workers, func(i int) {
			mu.Lock()
			seen[i]++
			mu.Unlock()
		})
		require.NoError(t, err)
		require.Len(t, seen, 25, "workers=%d", workers)
		for i, n := range seen {
			assert.Equal(t, 1, n, "index %d", i)
		}
	}
}

func TestForEachSequentialOrder(t *testing.T) {
	var order []int
	require.NoError(t, ForEach(context.Background(), 5, 1, func(i int) {
		order = append(order, i)
	}))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestForEachCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var calls int32
	err := ForEach(ctx, 100, 1, func(i int) {
		if atomic.AddInt32(&calls, 1) == 3 {
			cancel()
		}
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))

	err = ForEach(ctx, 100, 4, func(int) { atomic.AddInt32(&calls, 1) })
	assert.ErrorIs(t, err, context.Canceled)
}
