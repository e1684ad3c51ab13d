package heap

import "github.com/pkg/errors"

// ErrOutOfMemory is the error wrapped by growers when they cannot supply the requested bytes.
// Allocations that trigger a failed region extension surface it to the caller.
var ErrOutOfMemory error = errors.New("the region growth provider cannot supply more memory")

// ErrNotInitialized is returned when the heap is used before a successful Init.
var ErrNotInitialized error = errors.New("the heap has not been initialized")

// ErrAlreadyInitialized is returned when Init is called more than once on the same heap.
var ErrAlreadyInitialized error = errors.New("the heap has already been initialized")
