package memory

import (
	"errors"
	"fmt"
	"sync/atomic"
)

var ErrOutOfMemory = errors.New("allocation exceeds allocator limit")

// Allocator hands out byte regions to operators of a fragment.
type Allocator interface {
	Allocate(size int) ([]byte, error)
	Release(buf []byte)
}

// RootAllocator is a byte budget shared by every buffer of a fragment.
// A limit of zero or less disables the budget.
type RootAllocator struct {
	limit int64

	allocated   atomic.Int64
	peak        atomic.Int64
	allocations atomic.Int64
	failures    atomic.Int64
}

func NewRootAllocator(limit int64) *RootAllocator {
	return &RootAllocator{limit: limit}
}

func (a *RootAllocator) Allocate(size int) ([]byte, error) {
	if size < 0 {
		return nil, fmt.Errorf("negative allocation size %d", size)
	}

	newTotal := a.allocated.Add(int64(size))

	if a.limit > 0 && newTotal > a.limit {
		a.allocated.Add(-int64(size))
		a.failures.Add(1)
		return nil, fmt.Errorf("%w: requested %d bytes, %d of %d in use", ErrOutOfMemory, size, newTotal-int64(size), a.limit)
	}

	for {
		peak := a.peak.Load()
		if newTotal <= peak || a.peak.CompareAndSwap(peak, newTotal) {
			break
		}
	}

	a.allocations.Add(1)

	return make([]byte, size), nil
}

// Release returns the accounting of buf to the budget. buf must come from
// Allocate on the same allocator and must not be resliced beyond its
// original capacity.
func (a *RootAllocator) Release(buf []byte) {
	if buf == nil {
		return
	}
	a.allocated.Add(-int64(cap(buf)))
}

func (a *RootAllocator) Limit() int64 {
	return a.limit
}

func (a *RootAllocator) Stats() Stats {
	return Stats{
		Allocated:   a.allocated.Load(),
		Peak:        a.peak.Load(),
		Allocations: a.allocations.Load(),
		Failures:    a.failures.Load(),
	}
}
