package block

import (
	"github.com/joshuapare/heapkit/internal/format"
)

// Addr is the region offset of a block header.
type Addr uint32

// Nil is the zero address. Offset 0 holds the alignment pad word, so no
// block ever lives there.
const Nil Addr = 0

// Pack builds a control word from a size and an allocated flag.
func Pack(size uint32, allocated bool) uint32 {
	if allocated {
		return size | format.AllocatedBit
	}
	return size
}

// SizeOf extracts the block size from a control word.
func SizeOf(word uint32) uint32 {
	return word &^ format.FlagMask
}

// IsAllocated extracts the allocated flag from a control word.
func IsAllocated(word uint32) bool {
	return word&format.AllocatedBit != 0
}

// Header returns the control word at a.
func Header(mem []byte, a Addr) uint32 {
	return format.ReadU32(mem, int(a))
}

// Footer returns the control word at the end of the block at a, as located
// by its header size.
func Footer(mem []byte, a Addr) uint32 {
	return format.ReadU32(mem, int(a)+int(Size(mem, a))-format.WordSize)
}

// Size returns the size recorded in the header at a.
func Size(mem []byte, a Addr) uint32 {
	return SizeOf(Header(mem, a))
}

// Allocated returns the allocated flag recorded in the header at a.
func Allocated(mem []byte, a Addr) bool {
	return IsAllocated(Header(mem, a))
}

// SetHeader writes the header word of the block at a.
// Callers changing a block's state must also call SetFooter; Stamp does both.
func SetHeader(mem []byte, a Addr, size uint32, allocated bool) {
	format.PutU32(mem, int(a), Pack(size, allocated))
}

// SetFooter writes the footer word of a block of the given size at a.
func SetFooter(mem []byte, a Addr, size uint32, allocated bool) {
	format.PutU32(mem, int(a)+int(size)-format.WordSize, Pack(size, allocated))
}

// Stamp writes matching header and footer words for the block at a.
func Stamp(mem []byte, a Addr, size uint32, allocated bool) {
	SetHeader(mem, a, size, allocated)
	SetFooter(mem, a, size, allocated)
}

// Payload returns the region offset of the first payload byte.
func Payload(a Addr) uint32 {
	return uint32(a) + format.WordSize
}

// FromPayload returns the block address owning the payload at off.
func FromPayload(off uint32) Addr {
	return Addr(off - format.WordSize)
}

// PayloadSize returns the usable bytes between header and footer.
func PayloadSize(mem []byte, a Addr) uint32 {
	return Size(mem, a) - format.TagOverhead
}

// Next returns the block physically after a.
func Next(mem []byte, a Addr) Addr {
	return a + Addr(Size(mem, a))
}

// Prev returns the block physically before a. a must not be the prologue.
func Prev(mem []byte, a Addr) Addr {
	prevFooter := int(a) - format.WordSize
	return a - Addr(SizeOf(format.ReadU32(mem, prevFooter)))
}
