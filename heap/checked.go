package heap

import (
	"sort"

	"github.com/dolthub/swiss"
	"github.com/pkg/errors"
)

// CheckedHeap wraps a Heap and tracks every outstanding allocation in a side
// table, so tests can detect leaks and double frees. The core allocator keeps
// no bookkeeping beyond the block-adjacent tags; this wrapper is the optional
// place where out-of-band tracking lives.
type CheckedHeap struct {
	inner *Heap
	live  *swiss.Map[int, int]
}

// NewChecked wraps the provided heap. The wrapped heap must not be used
// directly for allocations while the CheckedHeap is in play, or the side table
// will drift.
func NewChecked(inner *Heap) *CheckedHeap {
	return &CheckedHeap{
		inner: inner,
		live:  swiss.NewMap[int, int](42),
	}
}

// Heap returns the wrapped heap, for introspection and validation.
func (c *CheckedHeap) Heap() *Heap {
	return c.inner
}

// Allocate delegates to the wrapped heap and records the resulting block in
// the side table.
func (c *CheckedHeap) Allocate(size int) (int, error) {
	block, err := c.inner.Allocate(size)
	if err == nil && block != NoBlock {
		c.live.Put(block, size)
	}

	return block, err
}

// Free releases a block through the wrapped heap. Unlike Heap.Free, it rejects
// offsets that are not live allocations instead of corrupting the region.
func (c *CheckedHeap) Free(block int) error {
	if block == NoBlock {
		return nil
	}

	if _, ok := c.live.Get(block); !ok {
		return errors.Errorf("free of offset %d, which is not a live allocation", block)
	}

	c.live.Delete(block)
	c.inner.Free(block)
	return nil
}

// LiveCount returns the number of allocations that have not been freed.
func (c *CheckedHeap) LiveCount() int {
	return c.live.Count()
}

// CheckLeaks returns an error naming every outstanding allocation, or nil when
// everything allocated through this wrapper has been freed.
func (c *CheckedHeap) CheckLeaks() error {
	if c.live.Count() == 0 {
		return nil
	}

	leaked := make([]int, 0, c.live.Count())
	c.live.Iter(func(offset int, size int) bool {
		leaked = append(leaked, offset)
		return false
	})
	sort.Ints(leaked)

	return errors.Errorf("%d allocations were never freed (payload offsets %v)", len(leaked), leaked)
}
