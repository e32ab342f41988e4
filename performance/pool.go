// Package performance provides allocation helpers for repeated fits.
package performance

import (
	"sync"
	"sync/atomic"

	"gonum.org/v1/gonum/mat"
)

// SymPool recycles the backing storage of N×N symmetric matrices. A grid
// search fits the same training set once per configuration, so every
// covariance matrix has the same size and can reuse the previous buffer.
//
// SymPool is safe for concurrent use.
type SymPool struct {
	pool sync.Pool

	created  atomic.Int64
	recycled atomic.Int64
	inUse    atomic.Int64

	mu   sync.Mutex
	peak int64
}

// PoolStats tracks pool usage
type PoolStats struct {
	TotalAllocated   int64
	TotalRecycled    int64
	CurrentInUse     int64
	PeakUsage        int64
	AverageReuseRate float64
}

// NewSymPool creates an empty pool
func NewSymPool() *SymPool {
	return &SymPool{}
}

// Get returns a zeroed n×n symmetric matrix.
func (p *SymPool) Get(n int) *mat.SymDense {
	size := n * n
	var data []float64
	if buf, ok := p.pool.Get().(*[]float64); ok && cap(*buf) >= size {
		data = (*buf)[:size]
		clear(data)
	} else {
		p.created.Add(1)
		data = make([]float64, size)
	}

	p.updatePeakUsage(p.inUse.Add(1))
	return mat.NewSymDense(n, data)
}

// Put returns s to the pool. s must not be used afterwards.
func (p *SymPool) Put(s *mat.SymDense) {
	if s == nil || s.IsEmpty() {
		return
	}
	data := s.RawSymmetric().Data
	p.inUse.Add(-1)
	p.recycled.Add(1)
	p.pool.Put(&data)
}

// Stats returns current pool statistics
func (p *SymPool) Stats() PoolStats {
	p.mu.Lock()
	peak := p.peak
	p.mu.Unlock()

	total := p.created.Load()
	recycled := p.recycled.Load()

	reuseRate := float64(0)
	if total > 0 {
		reuseRate = float64(recycled) / float64(total)
	}

	return PoolStats{
		TotalAllocated:   total,
		TotalRecycled:    recycled,
		CurrentInUse:     p.inUse.Load(),
		PeakUsage:        peak,
		AverageReuseRate: reuseRate,
	}
}

func (p *SymPool) updatePeakUsage(current int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if current > p.peak {
		p.peak = current
	}
}
