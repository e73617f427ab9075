package alloc

import (
	"fmt"

	"github.com/joshuapare/heapkit/heap/block"
)

// coalesce marks b free, merges it with whichever physical neighbours are
// free, and prepends the merged block to the free list. It returns the
// merged block, which is b or its predecessor. This is the only place where
// free space enters the free list, so no two adjacent blocks are ever free
// once it returns.
func (a *Allocator) coalesce(b block.Addr) (block.Addr, error) {
	mem := a.region.Bytes()
	size := block.Size(mem, b)

	prev := block.Prev(mem, b)
	next := block.Next(mem, b)
	prevFree := !block.Allocated(mem, prev)
	nextFree := !block.Allocated(mem, next)

	// Both neighbours are checked before anything is written.
	if err := a.listed(prevFree, prev, nextFree, next); err != nil {
		return block.Nil, err
	}
	block.Stamp(mem, b, size, false)

	if nextFree {
		_ = a.free.Remove(next)
		size += block.Size(mem, next)
		a.stats.Coalesces++
	}
	if prevFree {
		_ = a.free.Remove(prev)
		size += block.Size(mem, prev)
		b = prev
		a.stats.Coalesces++
	}
	if prevFree || nextFree {
		block.Stamp(mem, b, size, false)
	}

	a.free.Prepend(b)
	return b, nil
}

// listed returns ErrCorrupt unless every neighbour flagged free is on the
// free list.
func (a *Allocator) listed(prevFree bool, prev block.Addr, nextFree bool, next block.Addr) error {
	for _, n := range [...]struct {
		free bool
		b    block.Addr
	}{{prevFree, prev}, {nextFree, next}} {
		if n.free && !a.free.Contains(n.b) {
			return fmt.Errorf("%w: free block %#x missing from free list", ErrCorrupt, uint32(n.b))
		}
	}
	return nil
}

// unlink removes a free block from the free list, reporting a list that
// does not contain it as heap corruption.
func (a *Allocator) unlink(b block.Addr) error {
	if err := a.free.Remove(b); err != nil {
		return fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return nil
}
