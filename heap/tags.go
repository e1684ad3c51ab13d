package heap

// The on-heap layout is word-oriented and little-endian, matching the reference
// heap dumps produced on x86:
//
//	+--------+---------------------------+--------+
//	| Header |         Payload           | Footer |
//	| 4 bytes|        (user data)        | 4 bytes|
//	+--------+---------------------------+--------+
//	         ^
//	         +-- payload offset handed out by Allocate
//
// Header and footer carry the same word: the total block size in bytes with the
// allocated flag packed into the lowest bit. Block sizes are always multiples
// of AlignmentUnit, so the low three bits of the size are zero and the lowest
// one is free to reuse as the flag.
const (
	// WordSize is the width in bytes of a boundary tag.
	WordSize = 4
	// AlignmentUnit is the doubleword boundary every payload offset and block
	// size is aligned to.
	AlignmentUnit = 2 * WordSize
	// MinBlockSize is the smallest block the heap will track independently:
	// header + footer plus enough padding to keep the next block aligned.
	MinBlockSize = 2 * AlignmentUnit
	// DefaultChunkSize is the number of bytes requested from the region growth
	// provider whenever the heap runs out of fitting free blocks, unless a
	// single allocation needs more than that.
	DefaultChunkSize = 1 << 12

	// tagOverhead is the portion of a block's size consumed by its two tags.
	tagOverhead = 2 * WordSize
	// heapPrefixBytes is the fixed region prefix written by Init: alignment
	// padding, prologue header, prologue footer, and the initial epilogue.
	heapPrefixBytes = 4 * WordSize
)

// NoBlock is the payload offset returned when no block was allocated. It is the
// documented result of Allocate(0) and of failed allocations, and is accepted
// by Free as a no-op.
const NoBlock = -1

const (
	allocatedBit = 0x1
	sizeMask     = ^uint32(0x7)
)

func pack(size int, allocated bool) uint32 {
	word := uint32(size)
	if allocated {
		word |= allocatedBit
	}
	return word
}

func unpackSize(word uint32) int {
	return int(word & sizeMask)
}

func unpackAllocated(word uint32) bool {
	return word&allocatedBit != 0
}

// headerOf converts a payload offset to the offset of the block's header tag.
func headerOf(block int) int {
	return block - WordSize
}
