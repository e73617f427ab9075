// Package alloc implements a general-purpose heap allocator over a single
// region: 8-byte aligned blocks, boundary tags, an explicit free list,
// first-fit search, splitting and immediate coalescing.
//
// # Overview
//
// The Allocator owns one region.Region. Init lays down the sentinels and an
// initial free block:
//
//	0x00  pad word
//	0x04  prologue   (8 bytes, allocated, permanent)
//	0x0C  free block (InitialHeap bytes)
//	 ...
//	end   epilogue   (header only, size 0, allocated)
//
// Alloc searches the free list first-fit, extends the region on a miss and
// carves the chosen block with place. Free marks the block free and merges it
// with free neighbours before linking it at the head of the free list.
// Realloc grows in place when a neighbouring free block makes room, and
// relocates otherwise.
//
// # Usage Example
//
//	a, err := alloc.New(nil)
//	if err != nil {
//	    return err
//	}
//	defer a.Close()
//
//	p, buf, err := a.Alloc(24)
//	if err != nil {
//	    return err // wraps ErrNoSpace and region.ErrOutOfMemory
//	}
//	copy(buf, "twenty-four bytes of data")
//
//	p, buf, err = a.Realloc(p, 64)
//	...
//	err = a.Free(p)
//
// # Placement Policy
//
// Requests whose block size is below Config.SmallThreshold are cut from the
// low end of the chosen free block; larger ones from the high end, leaving
// the remainder at the low address. A remainder smaller than
// Config.MinBlockSize is not split off and stays inside the allocation.
// Every block that becomes free is prepended to the free list.
//
// # Caller Contract
//
// Freeing or resizing a pointer that this allocator did not hand out, or one
// that is already free, is undefined. Config.Check turns on O(1) pointer
// assertions plus a full heap verification after every mutating call.
//
// # Thread Safety
//
// Allocator instances are not thread-safe. Callers must synchronize access
// externally.
package alloc
