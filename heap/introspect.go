package heap

import (
	"github.com/SirDamis/dynamic-memory-allocation/heaputils"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"golang.org/x/exp/slog"
)

// Size returns the current size of the region in bytes, including the fixed
// prefix and the epilogue header. It grows monotonically and never shrinks.
func (h *Heap) Size() int {
	return len(h.mem)
}

// Region returns the raw bytes of the whole region, including the prefix and
// epilogue, for interoperating with reference heap dumps. The view is only
// valid until the next Allocate call.
func (h *Heap) Region() []byte {
	return h.mem[:len(h.mem):len(h.mem)]
}

// GrantedBytes returns the total number of bytes obtained from the region
// growth provider since Init.
func (h *Heap) GrantedBytes() int {
	return h.granted
}

// AllocationCount returns the number of live allocations: successful Allocate
// calls minus Free calls.
func (h *Heap) AllocationCount() int {
	return h.allocCount
}

// IsEmpty returns true when the heap has no live allocations.
func (h *Heap) IsEmpty() bool {
	return h.allocCount == 0
}

// VisitAllRegions calls the provided callback once for every block between the
// prologue and the epilogue, in address order, with the block's payload offset,
// its total size including boundary tags, and whether it is free. The walk is
// linear over the whole region.
func (h *Heap) VisitAllRegions(visit func(offset, size int, free bool) error) error {
	if h.mem == nil {
		return ErrNotInitialized
	}

	for block := h.nextBlock(h.base); h.blockSize(block) > 0; block = h.nextBlock(block) {
		if err := visit(block, h.blockSize(block), !h.blockAllocated(block)); err != nil {
			return err
		}
	}

	return nil
}

// SumFreeSize returns the number of bytes held in free blocks, boundary tags
// included. Free-block membership is implicit in the tags, so this is a linear
// scan.
func (h *Heap) SumFreeSize() int {
	var sum int
	_ = h.VisitAllRegions(func(offset, size int, free bool) error {
		if free {
			sum += size
		}
		return nil
	})

	return sum
}

// FreeRegionsCount returns the number of free blocks in the region. Immediate
// coalescing guarantees no two of them are adjacent.
func (h *Heap) FreeRegionsCount() int {
	var count int
	_ = h.VisitAllRegions(func(offset, size int, free bool) error {
		if free {
			count++
		}
		return nil
	})

	return count
}

// AddStatistics sums this heap's occupancy numbers into the provided
// statistics object.
func (h *Heap) AddStatistics(stats *heaputils.Statistics) {
	stats.RegionBytes += h.Size()
	stats.GrantedBytes += h.granted
	stats.AllocationCount += h.allocCount

	var allocationBytes int
	_ = h.VisitAllRegions(func(offset, size int, free bool) error {
		if !free {
			allocationBytes += size
		}
		return nil
	})
	stats.AllocationBytes += allocationBytes
}

// AddDetailedStatistics sums this heap's occupancy numbers and per-block size
// extremes into the provided statistics object.
func (h *Heap) AddDetailedStatistics(stats *heaputils.DetailedStatistics) {
	stats.RegionBytes += h.Size()
	stats.GrantedBytes += h.granted

	_ = h.VisitAllRegions(func(offset, size int, free bool) error {
		if free {
			stats.AddUnusedRange(size)
		} else {
			stats.AddAllocation(size)
		}
		return nil
	})
}

// HeapJsonData populates a json object with the heap's occupancy numbers and a
// block-by-block map of the region.
func (h *Heap) HeapJsonData(json jwriter.ObjectState) {
	var stats heaputils.DetailedStatistics
	stats.Clear()
	h.AddDetailedStatistics(&stats)

	json.Name("TotalBytes").Int(h.Size())
	json.Name("GrantedBytes").Int(h.granted)
	json.Name("Allocations").Int(stats.AllocationCount)
	json.Name("AllocationBytes").Int(stats.AllocationBytes)
	json.Name("UnusedRanges").Int(stats.UnusedRangeCount)

	blocksJson := json.Name("Blocks").Array()
	defer blocksJson.End()

	_ = h.VisitAllRegions(func(offset, size int, free bool) error {
		obj := blocksJson.Object()
		defer obj.End()

		obj.Name("Offset").Int(offset)
		obj.Name("Size").Int(size)
		if free {
			obj.Name("Type").String("FREE")
		} else {
			obj.Name("Type").String("ALLOCATED")
		}

		return nil
	})
}

// DebugLogAllAllocations walks the region and calls logFunc for every live
// allocation, for diagnosing leaks at teardown.
func (h *Heap) DebugLogAllAllocations(logger *slog.Logger, logFunc func(log *slog.Logger, offset int, size int)) {
	_ = h.VisitAllRegions(func(offset, size int, free bool) error {
		if !free {
			logFunc(logger, offset, size)
		}
		return nil
	})
}
