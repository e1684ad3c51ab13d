// Package heap implements a dynamic memory allocator over a single contiguous,
// growable region of bytes. Every block in the region is self-describing via
// boundary tags, free blocks are found with a linear first-fit scan, blocks are
// split on allocation when the remainder can stand alone, and physically
// adjacent free blocks are merged immediately on every free.
//
// The allocator assumes a single logical owner: at most one call may be in
// flight at a time, and there is no internal locking.
package heap

import (
	"encoding/binary"

	"github.com/SirDamis/dynamic-memory-allocation/heaputils"
	cerrors "github.com/cockroachdb/errors"
	"github.com/pkg/errors"
)

// Heap manages one exclusively-owned region of memory. The region starts with
// a fixed allocated prologue block and ends with a zero-size allocated epilogue
// header; both exist so block traversal and coalescing never have to
// special-case the region boundaries. The region only ever grows, in whole
// extensions obtained from the RegionGrower.
//
// Allocations are identified by their payload offset within the region. The
// zero value is not usable; construct heaps with New or NewWithChunkSize and
// call Init before anything else.
type Heap struct {
	mem       []byte
	grower    RegionGrower
	chunkSize int

	// base is the payload offset of the prologue block, where every linear
	// scan of the block list starts.
	base       int
	granted    int
	allocCount int
}

var _ heaputils.Validatable = &Heap{}

// New creates an uninitialized Heap that obtains region extensions from the
// provided grower, using DefaultChunkSize as the extension granularity.
func New(grower RegionGrower) *Heap {
	return &Heap{
		grower:    grower,
		chunkSize: DefaultChunkSize,
	}
}

// NewWithChunkSize creates an uninitialized Heap with a custom extension chunk
// size. The chunk size must be a power of two no smaller than MinBlockSize.
func NewWithChunkSize(grower RegionGrower, chunkSize int) (*Heap, error) {
	if err := heaputils.CheckPow2(chunkSize, "chunkSize"); err != nil {
		return nil, err
	}

	if chunkSize < MinBlockSize {
		return nil, errors.Errorf("chunk size %d is smaller than the minimum block size %d", chunkSize, MinBlockSize)
	}

	return &Heap{
		grower:    grower,
		chunkSize: chunkSize,
	}, nil
}

// Init creates the heap region. It grows the region just enough for the fixed
// prefix (alignment padding, the prologue block, and the epilogue header) and
// then performs one bulk extension of the configured chunk size so the first
// allocation does not immediately trigger another growth request.
//
// Init must be called exactly once before any other operation. If either
// growth request fails, Init returns the grower's error and the heap must not
// be used.
func (h *Heap) Init() error {
	if h.mem != nil {
		return ErrAlreadyInitialized
	}

	prefix, err := h.grower.Grow(heapPrefixBytes)
	if err != nil {
		return cerrors.Wrap(err, "requesting the heap prefix")
	}

	h.mem = prefix[:heapPrefixBytes]
	h.granted = heapPrefixBytes
	h.base = 2 * WordSize

	h.putWord(0, 0) // alignment padding
	h.putWord(WordSize, pack(AlignmentUnit, true))
	h.putWord(2*WordSize, pack(AlignmentUnit, true))
	h.putWord(3*WordSize, pack(0, true))

	if _, err := h.extendHeap(h.chunkSize / WordSize); err != nil {
		h.mem = nil
		h.granted = 0
		return cerrors.Wrap(err, "sizing the initial free region")
	}

	heaputils.DebugValidate(h)
	return nil
}

// Allocate finds or creates a block whose payload can hold size bytes and
// returns its payload offset, which is always a multiple of AlignmentUnit.
// A size of zero is a documented no-op: it returns NoBlock and no error, and
// no block is reserved. Negative sizes are rejected with an error.
//
// When no free block fits, the region is extended by the larger of the chunk
// size and the needed block size. If the grower refuses that extension, the
// grower's error is returned and the heap is left unchanged.
func (h *Heap) Allocate(size int) (int, error) {
	if h.mem == nil {
		return NoBlock, ErrNotInitialized
	}

	if size < 0 {
		return NoBlock, errors.Errorf("requested a negative allocation size %d", size)
	}

	if size == 0 {
		return NoBlock, nil
	}

	needed := neededBlockSize(size)

	block := h.findFit(needed)
	if block == NoBlock {
		words := h.chunkSize / WordSize
		if needed > h.chunkSize {
			words = needed/WordSize + 1
		}

		var err error
		block, err = h.extendHeap(words)
		if err != nil {
			return NoBlock, err
		}
	}

	h.place(block, needed)
	h.allocCount++

	heaputils.DebugValidate(h)
	return block, nil
}

// Free releases the block at the provided payload offset and immediately
// merges it with any physically adjacent free neighbors. Passing NoBlock is a
// no-op. Passing any offset that was not returned by Allocate, or that was
// already freed, is undefined behavior: the heap does not validate ownership.
func (h *Heap) Free(block int) {
	if block == NoBlock {
		return
	}

	size := h.blockSize(block)
	h.putWord(headerOf(block), pack(size, false))
	h.putWord(h.footerOf(block), pack(size, false))
	h.allocCount--

	h.coalesce(block)
	heaputils.DebugValidate(h)
}

// PayloadSize returns the number of usable payload bytes in the block at the
// provided offset. It can exceed the size requested from Allocate because of
// alignment rounding and split suppression.
func (h *Heap) PayloadSize(block int) int {
	return h.blockSize(block) - tagOverhead
}

// Payload returns the block's usable bytes as a view into the region. The view
// is only valid until the next Allocate call: a region extension may relocate
// the backing array.
func (h *Heap) Payload(block int) []byte {
	end := block + h.PayloadSize(block)
	return h.mem[block:end:end]
}

// neededBlockSize converts a requested payload size into a block size:
// boundary-tag overhead added and the total rounded up to the alignment unit,
// with a floor of MinBlockSize.
func neededBlockSize(payloadSize int) int {
	if payloadSize <= AlignmentUnit {
		return MinBlockSize
	}
	return heaputils.AlignUp(payloadSize+tagOverhead, AlignmentUnit)
}

// findFit runs the first-fit search: a linear scan of every block from the
// prologue to the epilogue, returning the earliest free block large enough or
// NoBlock when none fits. Free-block membership is implicit in the tags; there
// is deliberately no free-list index to consult.
func (h *Heap) findFit(needed int) int {
	for block := h.base; h.blockSize(block) > 0; block = h.nextBlock(block) {
		if !h.blockAllocated(block) && h.blockSize(block) >= needed {
			return block
		}
	}

	return NoBlock
}

// place marks the free block at the provided offset as allocated. When the
// remainder is at least MinBlockSize the block is split and the tail becomes a
// new free block; otherwise the whole block is taken and the extra bytes are
// internal fragmentation.
func (h *Heap) place(block, needed int) {
	free := h.blockSize(block)
	remainder := free - needed

	if remainder >= MinBlockSize {
		h.putWord(headerOf(block), pack(needed, true))
		h.putWord(block+needed-AlignmentUnit, pack(needed, true))

		rest := block + needed
		h.putWord(headerOf(rest), pack(remainder, false))
		h.putWord(rest+remainder-AlignmentUnit, pack(remainder, false))
		return
	}

	h.putWord(headerOf(block), pack(free, true))
	h.putWord(block+free-AlignmentUnit, pack(free, true))
}

// coalesce merges the free block at the provided offset with its physical
// neighbors when they are free, in either or both directions, and returns the
// payload offset of the merged block. The prologue and epilogue are permanently
// allocated, so the neighbor probes never run off the region.
func (h *Heap) coalesce(block int) int {
	prevAllocated := unpackAllocated(h.word(block - AlignmentUnit))
	next := h.nextBlock(block)
	nextAllocated := unpackAllocated(h.word(headerOf(next)))
	size := h.blockSize(block)

	switch {
	case prevAllocated && nextAllocated:
		return block

	case prevAllocated:
		// Merge forward
		size += h.blockSize(next)
		h.putWord(headerOf(block), pack(size, false))
		h.putWord(block+size-AlignmentUnit, pack(size, false))
		return block

	case nextAllocated:
		// Merge backward
		prev := h.prevBlock(block)
		size += h.blockSize(prev)
		h.putWord(headerOf(prev), pack(size, false))
		h.putWord(prev+size-AlignmentUnit, pack(size, false))
		return prev

	default:
		// Merge in both directions at once
		prev := h.prevBlock(block)
		size += h.blockSize(prev) + h.blockSize(next)
		h.putWord(headerOf(prev), pack(size, false))
		h.putWord(prev+size-AlignmentUnit, pack(size, false))
		return prev
	}
}

// extendHeap grows the region by the requested word count, made even to keep
// the region a whole number of alignment units. The new bytes begin where the
// old epilogue header was: they become one free block, a fresh epilogue is
// written at the new high end, and the block is coalesced backward in case a
// free block ended exactly at the old epilogue.
func (h *Heap) extendHeap(words int) (int, error) {
	if words%2 != 0 {
		words++
	}
	size := words * WordSize

	grown, err := h.grower.Grow(size)
	if err != nil {
		return NoBlock, cerrors.Wrapf(err, "growing the region by %d bytes", size)
	}

	h.mem = append(h.mem, grown[:size]...)
	h.granted += size

	block := len(h.mem) - size
	h.putWord(headerOf(block), pack(size, false))
	h.putWord(block+size-AlignmentUnit, pack(size, false))
	h.putWord(block+size-WordSize, pack(0, true)) // relocated epilogue

	return h.coalesce(block), nil
}

func (h *Heap) word(offset int) uint32 {
	return binary.LittleEndian.Uint32(h.mem[offset : offset+WordSize])
}

func (h *Heap) putWord(offset int, value uint32) {
	binary.LittleEndian.PutUint32(h.mem[offset:offset+WordSize], value)
}

func (h *Heap) blockSize(block int) int {
	return unpackSize(h.word(headerOf(block)))
}

func (h *Heap) blockAllocated(block int) bool {
	return unpackAllocated(h.word(headerOf(block)))
}

func (h *Heap) footerOf(block int) int {
	return block + h.blockSize(block) - AlignmentUnit
}

func (h *Heap) nextBlock(block int) int {
	return block + h.blockSize(block)
}

func (h *Heap) prevBlock(block int) int {
	return block - unpackSize(h.word(block-AlignmentUnit))
}
