package region

import "errors"

var (
	// ErrOutOfMemory indicates the extension would push the region past its ceiling.
	ErrOutOfMemory = errors.New("region: out of memory")

	// ErrBadIncrement indicates a negative or non-8-aligned extension request.
	ErrBadIncrement = errors.New("region: increment must be a non-negative multiple of 8")

	// ErrClosed indicates use of a region after Close.
	ErrClosed = errors.New("region: closed")

	// ErrReserve indicates the backing memory could not be reserved or committed.
	ErrReserve = errors.New("region: reserve failed")
)
