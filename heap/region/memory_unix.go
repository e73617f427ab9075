//go:build unix

package region

import (
	"fmt"
	"math"

	"github.com/tetratelabs/wazero/experimental"
	"golang.org/x/sys/unix"
)

var pageSize = unix.Getpagesize()

func nonMovingAlloc(_, max uint64) experimental.LinearMemory {
	rnd := uint64(pageSize - 1)
	reserved := (max + rnd) &^ rnd

	if reserved > math.MaxInt {
		// int(reserved) goes negative and Mmap fails with EINVAL.
		reserved = math.MaxUint64
	}

	// A protected, private, anonymous mapping reserves address space without
	// committing memory.
	b, err := unix.Mmap(-1, 0, int(reserved), unix.PROT_NONE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		panic(fmt.Errorf("region: failed to reserve memory: %w", err))
	}
	return &mappedMemory{buf: b[:0], max: max}
}

// len(buf) is the committed memory, cap(buf) the reserved address space.
type mappedMemory struct {
	buf []byte
	max uint64
}

func (m *mappedMemory) Reallocate(size uint64) []byte {
	if size > m.max {
		panic(errInvalidReallocation)
	}

	com := uint64(len(m.buf))
	if com < size {
		rnd := uint64(pageSize - 1)
		next := (size + rnd) &^ rnd

		if err := unix.Mprotect(m.buf[com:next], unix.PROT_READ|unix.PROT_WRITE); err != nil {
			panic(fmt.Errorf("region: failed to commit memory: %w", err))
		}
		m.buf = m.buf[:next]
	}
	// Bytes past len(m.buf) are not committed, so the capacity stops there.
	return m.buf[:size:len(m.buf)]
}

func (m *mappedMemory) Free() {
	if m.buf == nil {
		return
	}
	if err := unix.Munmap(m.buf[:cap(m.buf)]); err != nil {
		panic(fmt.Errorf("region: failed to release memory: %w", err))
	}
	m.buf = nil
}
