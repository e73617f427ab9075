package alloc

import "errors"

var (
	// ErrNoSpace indicates that no free block was large enough and the region could not grow.
	ErrNoSpace = errors.New("alloc: no free block large enough")

	// ErrBadPtr indicates a pointer outside the heap or not 8-byte aligned.
	ErrBadPtr = errors.New("alloc: bad pointer")

	// ErrNotAllocated indicates a free or resize of a block that is not allocated.
	ErrNotAllocated = errors.New("alloc: block not allocated")

	// ErrBadSize indicates a negative request size.
	ErrBadSize = errors.New("alloc: negative size")

	// ErrBadConfig indicates an invalid Config.
	ErrBadConfig = errors.New("alloc: bad config")

	// ErrClosed indicates use of an allocator after Close.
	ErrClosed = errors.New("alloc: closed")

	// ErrCorrupt indicates heap metadata that contradicts itself.
	ErrCorrupt = errors.New("alloc: heap corrupt")
)
