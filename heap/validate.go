package heap

import (
	"github.com/pkg/errors"
)

// Validate performs a full consistency audit of the region: sentinel tags,
// per-block header/footer agreement, alignment, the coalescing invariant, and
// conservation of every byte the grower has granted. When the allocator is
// functioning correctly it cannot return an error, but it walks every block
// and so is only intended for tests and diagnostics.
func (h *Heap) Validate() error {
	if h.mem == nil {
		return ErrNotInitialized
	}

	if h.word(0) != 0 {
		return errors.Errorf("the alignment padding word is %#x, expected zero", h.word(0))
	}

	prologue := pack(AlignmentUnit, true)
	if h.word(WordSize) != prologue || h.word(2*WordSize) != prologue {
		return errors.Errorf("the prologue tags are %#x and %#x, expected both to be %#x", h.word(WordSize), h.word(2*WordSize), prologue)
	}

	var blockBytes, allocated int
	prevFree := false

	for block := h.nextBlock(h.base); ; block = h.nextBlock(block) {
		header := h.word(headerOf(block))
		size := unpackSize(header)

		if size == 0 {
			if header != pack(0, true) {
				return errors.Errorf("the epilogue header at offset %d is %#x, expected %#x", headerOf(block), header, pack(0, true))
			}

			if headerOf(block) != len(h.mem)-WordSize {
				return errors.Errorf("found an epilogue header at offset %d, before the end of the region at %d", headerOf(block), len(h.mem)-WordSize)
			}

			break
		}

		if block%AlignmentUnit != 0 {
			return errors.Errorf("block at offset %d is not aligned to %d bytes", block, AlignmentUnit)
		}

		if size%AlignmentUnit != 0 || size < MinBlockSize {
			return errors.Errorf("block at offset %d has impossible size %d", block, size)
		}

		if headerOf(block)+size > len(h.mem) {
			return errors.Errorf("block at offset %d with size %d runs past the end of the region", block, size)
		}

		footer := h.word(h.footerOf(block))
		if footer != header {
			return errors.Errorf("block at offset %d has header %#x but footer %#x", block, header, footer)
		}

		free := !unpackAllocated(header)
		if free && prevFree {
			return errors.Errorf("blocks at offsets %d and %d are both free but were never coalesced", h.prevBlock(block), block)
		}
		prevFree = free

		if !free {
			allocated++
		}

		blockBytes += size
	}

	if blockBytes != h.granted-heapPrefixBytes {
		return errors.Errorf("the blocks between prologue and epilogue total %d bytes, but the grower has granted %d beyond the prefix", blockBytes, h.granted-heapPrefixBytes)
	}

	if allocated != h.allocCount {
		return errors.Errorf("the heap's allocation count is %d, but only %d allocated blocks were found", h.allocCount, allocated)
	}

	return nil
}
