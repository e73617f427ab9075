package alloc

import (
	"github.com/joshuapare/heapkit/heap/block"
	"github.com/joshuapare/heapkit/heap/freelist"
)

// Walk calls fn for every block between the prologue and the epilogue in
// address order. fn returning false stops the walk.
func (a *Allocator) Walk(fn func(block.Info) bool) {
	if a.region == nil {
		return
	}
	mem := a.region.Bytes()
	block.Walk(mem, block.Next(mem, a.base), fn)
}

// Bytes returns the region's current contents. The slice is only valid until
// the next call that may extend the region.
func (a *Allocator) Bytes() []byte {
	if a.region == nil {
		return nil
	}
	return a.region.Bytes()
}

// Base returns the prologue address.
func (a *Allocator) Base() block.Addr { return a.base }

// FreeList exposes the free list for inspection. Callers must not modify it.
func (a *Allocator) FreeList() *freelist.List { return a.free }
