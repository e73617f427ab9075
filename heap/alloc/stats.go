package alloc

import (
	"github.com/joshuapare/heapkit/heap/block"
	"github.com/joshuapare/heapkit/internal/format"
)

// Stats is a snapshot of heap occupancy and allocator activity.
type Stats struct {
	// RegionSize is the number of committed region bytes, sentinels included.
	RegionSize int `json:"region_size"`

	AllocatedBlocks int   `json:"allocated_blocks"`
	AllocatedBytes  int64 `json:"allocated_bytes"` // block sizes, tags included
	PayloadBytes    int64 `json:"payload_bytes"`   // usable bytes inside allocated blocks
	FreeBlocks      int   `json:"free_blocks"`
	FreeBytes       int64 `json:"free_bytes"`
	LargestFree     int64 `json:"largest_free"`

	// ExtendCalls and ExtendBytes count on-demand growth only; the initial
	// heap laid down by New and Reset is excluded.
	ExtendCalls  int   `json:"extend_calls"`
	ExtendBytes  int64 `json:"extend_bytes"`
	AllocCalls   int   `json:"alloc_calls"`
	FreeCalls    int   `json:"free_calls"`
	ReallocCalls int   `json:"realloc_calls"`
	// ReallocInPlace counts resizes that kept the address; ReallocMoved
	// counts those that changed it, whether by absorbing the predecessor or
	// by relocating.
	ReallocInPlace int `json:"realloc_in_place"`
	ReallocMoved   int `json:"realloc_moved"`
	Splits         int `json:"splits"`
	Coalesces      int `json:"coalesces"`
}

// Utilization returns payload bytes over region bytes, or 0 for an empty region.
func (s Stats) Utilization() float64 {
	if s.RegionSize == 0 {
		return 0
	}
	return float64(s.PayloadBytes) / float64(s.RegionSize)
}

// Fragmentation returns 1 - LargestFree/FreeBytes: 0 when all free space is
// one block, approaching 1 as it splinters.
func (s Stats) Fragmentation() float64 {
	if s.FreeBytes == 0 {
		return 0
	}
	return 1 - float64(s.LargestFree)/float64(s.FreeBytes)
}

// Stats walks the heap and returns the current statistics. It costs O(blocks).
func (a *Allocator) Stats() Stats {
	c := a.stats
	st := Stats{
		ExtendCalls:    c.ExtendCalls,
		ExtendBytes:    c.ExtendBytes,
		AllocCalls:     c.AllocCalls,
		FreeCalls:      c.FreeCalls,
		ReallocCalls:   c.ReallocCalls,
		ReallocInPlace: c.ReallocInPlace,
		ReallocMoved:   c.ReallocMoved,
		Splits:         c.Splits,
		Coalesces:      c.Coalesces,
	}
	if a.region == nil {
		return st
	}
	st.RegionSize = a.region.Size()

	a.Walk(func(b block.Info) bool {
		size := int64(b.Size)
		if b.Allocated {
			st.AllocatedBlocks++
			st.AllocatedBytes += size
			st.PayloadBytes += size - format.TagOverhead
		} else {
			st.FreeBlocks++
			st.FreeBytes += size
			st.LargestFree = max(st.LargestFree, size)
		}
		return true
	})
	return st
}
