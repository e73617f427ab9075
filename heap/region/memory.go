package region

import (
	"errors"

	"github.com/tetratelabs/wazero/experimental"
)

var errInvalidReallocation = errors.New("region: reallocation beyond reserved maximum")

// NonMoving returns a memory allocator whose linear memories reserve their
// maximum up front and never relocate when they grow.
func NonMoving() experimental.MemoryAllocator {
	return experimental.MemoryAllocatorFunc(nonMovingAlloc)
}

// Slice returns a memory allocator backed by an ordinary Go slice with its
// capacity fixed at the maximum. It never relocates either, but commits the
// whole ceiling lazily through the Go heap instead of the OS.
func Slice() experimental.MemoryAllocator {
	return experimental.MemoryAllocatorFunc(sliceAlloc)
}

func sliceAlloc(_, max uint64) experimental.LinearMemory {
	return &sliceMemory{buf: make([]byte, 0, max), max: max}
}

type sliceMemory struct {
	buf []byte
	max uint64
}

func (m *sliceMemory) Reallocate(size uint64) []byte {
	if size > m.max {
		panic(errInvalidReallocation)
	}
	m.buf = m.buf[:size]
	return m.buf
}

func (m *sliceMemory) Free() {
	m.buf = nil
}
