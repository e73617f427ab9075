package alloc

import (
	"github.com/joshuapare/heapkit/heap/block"
)

// findFit scans the free list from the head and returns the first block of
// at least need bytes, or block.Nil.
func (a *Allocator) findFit(need uint32) block.Addr {
	mem := a.region.Bytes()
	for b := range a.free.All() {
		if block.Size(mem, b) >= need {
			return b
		}
	}
	return block.Nil
}

// place allocates exactly need bytes out of the free block b, which must
// hold at least need bytes, and returns the allocated block.
//
// A remainder below MinBlockSize is not split off. Otherwise small requests
// take the low end of b and leave the remainder above them; large requests
// take the high end and leave the remainder at b.
func (a *Allocator) place(b block.Addr, need uint32) (block.Addr, error) {
	mem := a.region.Bytes()
	size := block.Size(mem, b)
	if err := a.unlink(b); err != nil {
		return block.Nil, err
	}

	rem := size - need
	if rem < uint32(a.cfg.MinBlockSize) {
		block.Stamp(mem, b, size, true)
		return b, nil
	}
	a.stats.Splits++

	if need < uint32(a.cfg.SmallThreshold) {
		block.Stamp(mem, b, need, true)
		tail := b + block.Addr(need)
		block.Stamp(mem, tail, rem, false)
		a.free.Prepend(tail)
		return b, nil
	}

	block.Stamp(mem, b, rem, false)
	a.free.Prepend(b)
	used := b + block.Addr(rem)
	block.Stamp(mem, used, need, true)
	return used, nil
}
