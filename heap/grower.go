package heap

import (
	cerrors "github.com/cockroachdb/errors"
	"github.com/pkg/errors"
)

// RegionGrower abstracts the operating system mechanism that extends a
// process's addressable memory upward. The heap calls Grow whenever it needs
// the region to become larger; the returned bytes are appended to the high end
// of the region, exactly where the previous epilogue was.
//
// Implementations must return exactly size zeroed bytes or an error, and may
// assume at most one call is in flight at a time. A failed Grow is terminal
// for the operation that triggered it; the heap never retries.
type RegionGrower interface {
	Grow(size int) ([]byte, error)
}

// BoundedGrower is a RegionGrower that grants zeroed byte runs from a fixed
// budget and refuses requests once the budget is exhausted, the way a real
// break pointer stops moving when the process hits its limit. It is the
// production grower for in-process heaps and doubles as a deterministic way
// to simulate memory pressure.
type BoundedGrower struct {
	budget  int
	granted int
}

// NewBoundedGrower creates a BoundedGrower that will grant up to budget bytes
// in total across all Grow calls.
func NewBoundedGrower(budget int) *BoundedGrower {
	return &BoundedGrower{budget: budget}
}

func (g *BoundedGrower) Grow(size int) ([]byte, error) {
	if size <= 0 {
		return nil, errors.Errorf("refusing a growth request for %d bytes", size)
	}

	if g.granted+size > g.budget {
		return nil, cerrors.Wrapf(ErrOutOfMemory, "budget is %d bytes with %d already granted, but %d more were requested", g.budget, g.granted, size)
	}

	g.granted += size
	return make([]byte, size), nil
}

// Granted returns the total number of bytes handed out so far.
func (g *BoundedGrower) Granted() int {
	return g.granted
}
