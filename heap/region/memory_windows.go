//go:build windows

package region

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/tetratelabs/wazero/experimental"
	"golang.org/x/sys/windows"
)

const pageSize = 4096

func nonMovingAlloc(_, max uint64) experimental.LinearMemory {
	rnd := uint64(pageSize) - 1
	reserved := (max + rnd) &^ rnd

	if reserved > math.MaxInt {
		reserved = math.MaxUint64
	}

	// Reserve without committing.
	addr, err := windows.VirtualAlloc(0, uintptr(reserved), windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		panic(fmt.Errorf("region: failed to reserve memory: %w", err))
	}

	b := unsafe.Slice((*byte)(unsafe.Pointer(addr)), int(reserved))
	return &virtualMemory{buf: b[:0], addr: addr, max: max}
}

// len(buf) is the committed memory, cap(buf) the reserved address space.
type virtualMemory struct {
	buf  []byte
	addr uintptr
	max  uint64
}

func (m *virtualMemory) Reallocate(size uint64) []byte {
	if size > m.max {
		panic(errInvalidReallocation)
	}

	com := uint64(len(m.buf))
	if com < size {
		rnd := uint64(pageSize) - 1
		next := (size + rnd) &^ rnd

		if _, err := windows.VirtualAlloc(m.addr, uintptr(next), windows.MEM_COMMIT, windows.PAGE_READWRITE); err != nil {
			panic(fmt.Errorf("region: failed to commit memory: %w", err))
		}
		m.buf = m.buf[:next]
	}
	return m.buf[:size:len(m.buf)]
}

func (m *virtualMemory) Free() {
	if m.addr == 0 {
		return
	}
	if err := windows.VirtualFree(m.addr, 0, windows.MEM_RELEASE); err != nil {
		panic(fmt.Errorf("region: failed to release memory: %w", err))
	}
	m.addr = 0
	m.buf = nil
}
