package alloc

import "github.com/joshuapare/heapkit/heap/block"

// Realloc resizes the allocation at p to size bytes and returns its
// (possibly new) pointer together with a slice over the first size bytes.
// The first min(old payload, size) bytes are preserved.
//
// Realloc(Nil, n) behaves as Alloc(n); Realloc(p, 0) frees p and returns Nil.
// A block that is already large enough is returned unchanged, shrinking
// included. Otherwise free neighbours are absorbed when they make enough
// room: the successor first (no copy), then the predecessor, then both. Only
// when they do not is the data moved to a fresh allocation. If that
// allocation fails the original block is left intact.
func (a *Allocator) Realloc(p Ptr, size int) (Ptr, []byte, error) {
	if a.region == nil {
		return Nil, nil, ErrClosed
	}
	a.stats.ReallocCalls++
	if p == Nil {
		return a.alloc(size)
	}
	if size == 0 {
		return Nil, nil, a.release(p)
	}
	if size < 0 {
		return Nil, nil, ErrBadSize
	}
	if err := a.checkPtr(p); err != nil {
		return Nil, nil, err
	}
	need, ok := a.requiredSize(size)
	if !ok {
		return Nil, nil, ErrNoSpace
	}

	mem := a.region.Bytes()
	b := block.FromPayload(uint32(p))
	cur := block.Size(mem, b)
	if need <= cur {
		a.stats.ReallocInPlace++
		return p, a.slice(p, size), nil
	}

	prev, next := block.Prev(mem, b), block.Next(mem, b)
	var prevSize, nextSize uint32
	if !block.Allocated(mem, prev) {
		prevSize = block.Size(mem, prev)
	}
	if !block.Allocated(mem, next) {
		nextSize = block.Size(mem, next)
	}
	keep := min(block.PayloadSize(mem, b), uint32(size))

	var (
		np  Ptr
		err error
	)
	switch {
	case nextSize > 0 && cur+nextSize >= need:
		err = a.growInto(b, block.Nil, next, b, cur+nextSize, need, keep)
		np = p
	case prevSize > 0 && prevSize+cur >= need:
		err = a.growInto(b, prev, block.Nil, prev, prevSize+cur, need, keep)
		np = Ptr(block.Payload(prev))
	case prevSize > 0 && nextSize > 0 && prevSize+cur+nextSize >= need:
		err = a.growInto(b, prev, next, prev, prevSize+cur+nextSize, need, keep)
		np = Ptr(block.Payload(prev))
	default:
		return a.relocate(p, size, keep)
	}
	if err != nil {
		return Nil, nil, err
	}

	if np == p {
		a.stats.ReallocInPlace++
	} else {
		a.stats.ReallocMoved++
	}
	if err := a.checkHeap(); err != nil {
		return Nil, nil, err
	}
	return np, a.slice(np, size), nil
}

// growInto merges b with the free neighbours prev and/or next (block.Nil
// when not absorbed) into one allocated block starting at dst, moving keep
// payload bytes when dst != b. A remainder of at least MinBlockSize beyond
// need is split off and freed.
func (a *Allocator) growInto(b, prev, next, dst block.Addr, total, need, keep uint32) error {
	if err := a.listed(prev != block.Nil, prev, next != block.Nil, next); err != nil {
		return err
	}
	if prev != block.Nil {
		_ = a.free.Remove(prev)
	}
	if next != block.Nil {
		_ = a.free.Remove(next)
	}

	mem := a.region.Bytes()
	if dst != b {
		// The ranges overlap whenever keep exceeds the predecessor's size;
		// copy has memmove semantics.
		from, to := block.Payload(b), block.Payload(dst)
		copy(mem[to:to+keep], mem[from:from+keep])
	}

	if total-need < uint32(a.cfg.MinBlockSize) {
		block.Stamp(mem, dst, total, true)
		return nil
	}
	block.Stamp(mem, dst, need, true)
	rest := dst + block.Addr(need)
	block.Stamp(mem, rest, total-need, true)
	a.stats.Splits++
	_, err := a.coalesce(rest)
	return err
}

// relocate moves the allocation to a fresh block and frees the old one.
func (a *Allocator) relocate(p Ptr, size int, keep uint32) (Ptr, []byte, error) {
	nb, err := a.allocate(size)
	if err != nil {
		a.log.Debug("realloc relocation failed", "ptr", uint32(p), "size", size, "err", err)
		return Nil, nil, err
	}
	np := Ptr(block.Payload(nb))

	// allocate may have extended the region; refetch the bytes.
	mem := a.region.Bytes()
	copy(mem[np:uint32(np)+keep], mem[p:uint32(p)+keep])
	if _, err := a.coalesce(block.FromPayload(uint32(p))); err != nil {
		return Nil, nil, err
	}
	a.stats.ReallocMoved++
	a.log.Debug("realloc relocated", "from", uint32(p), "to", uint32(np), "size", size)

	if err := a.checkHeap(); err != nil {
		return Nil, nil, err
	}
	return np, a.slice(np, size), nil
}
