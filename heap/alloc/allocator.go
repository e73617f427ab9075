package alloc

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/joshuapare/heapkit/heap/block"
	"github.com/joshuapare/heapkit/heap/freelist"
	"github.com/joshuapare/heapkit/heap/region"
	"github.com/joshuapare/heapkit/heap/verify"
	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
)

// Ptr is the region offset of an allocation's first payload byte.
type Ptr uint32

// Nil is the null pointer. It is returned for zero-size requests and
// accepted by Free and Realloc.
const Nil Ptr = 0

// Allocator manages one region. It is not safe for concurrent use.
type Allocator struct {
	cfg    Config
	region *region.Region
	free   *freelist.List
	log    *slog.Logger

	// base is the prologue; the first real block follows it.
	base block.Addr

	stats allocatorStats
}

// allocatorStats holds the event counters reported by Stats.
type allocatorStats struct {
	ExtendCalls    int
	ExtendBytes    int64
	AllocCalls     int
	FreeCalls      int
	ReallocCalls   int
	ReallocInPlace int
	ReallocMoved   int
	Splits         int
	Coalesces      int
}

// New reserves a region and initializes the heap in it: sentinels, an empty
// free list and, unless disabled, the initial free block.
func New(cfg *Config) (*Allocator, error) {
	if cfg == nil {
		cfg = &DefaultConfig
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r, err := region.New(cfg.Region)
	if err != nil {
		return nil, fmt.Errorf("alloc: %w", err)
	}

	a := &Allocator{
		cfg:    *cfg,
		region: r,
		free:   freelist.New(r),
		log:    cfg.logger(),
	}
	if err := a.init(); err != nil {
		_ = r.Close()
		return nil, err
	}
	return a, nil
}

// init lays down pad word, prologue and epilogue, then the initial heap.
func (a *Allocator) init() error {
	a.free.Init()

	off, err := a.region.Extend(format.SentinelSize)
	if err != nil {
		return fmt.Errorf("alloc: init sentinels: %w", a.noSpace(format.SentinelSize, err))
	}
	mem := a.region.Bytes()
	format.PutU32(mem, int(off), 0)
	a.base = block.Addr(off + format.PrologueOffset)
	block.Stamp(mem, a.base, format.PrologueSize, true)
	block.SetHeader(mem, block.Next(mem, a.base), 0, true)

	if a.cfg.InitialHeap > 0 {
		if _, err := a.extend(uint32(a.cfg.InitialHeap)); err != nil {
			return fmt.Errorf("alloc: init heap: %w", err)
		}
	}
	return nil
}

// Close tears the heap down and releases the region. Payload slices handed
// out earlier must not be used afterwards.
func (a *Allocator) Close() error {
	if a.region == nil {
		return ErrClosed
	}
	r := a.region
	a.region = nil
	return r.Close()
}

// Reset discards every allocation and rebuilds an empty heap in the same region.
func (a *Allocator) Reset() error {
	if a.region == nil {
		return ErrClosed
	}
	if err := a.region.Reset(); err != nil {
		return err
	}
	a.stats = allocatorStats{}
	return a.init()
}

// Alloc returns a pointer to at least size bytes, 8-byte aligned, together
// with a slice over the first size payload bytes (its capacity covers the
// whole payload). A zero size returns Nil and no error. When the region
// cannot grow the error wraps ErrNoSpace and region.ErrOutOfMemory and the
// heap is unchanged.
func (a *Allocator) Alloc(size int) (Ptr, []byte, error) {
	if a.region == nil {
		return Nil, nil, ErrClosed
	}
	a.stats.AllocCalls++
	return a.alloc(size)
}

// alloc is Alloc without the call accounting.
func (a *Allocator) alloc(size int) (Ptr, []byte, error) {
	b, err := a.allocate(size)
	if err != nil || b == block.Nil {
		return Nil, nil, err
	}
	p := Ptr(block.Payload(b))
	if err := a.checkHeap(); err != nil {
		return Nil, nil, err
	}
	return p, a.slice(p, size), nil
}

// allocate finds or makes room for size payload bytes and returns the
// allocated block, or block.Nil for size 0.
func (a *Allocator) allocate(size int) (block.Addr, error) {
	if size < 0 {
		return block.Nil, fmt.Errorf("%w: %d", ErrBadSize, size)
	}
	if size == 0 {
		return block.Nil, nil
	}
	need, ok := a.requiredSize(size)
	if !ok {
		return block.Nil, fmt.Errorf("%w: request of %d bytes exceeds addressable heap", ErrNoSpace, size)
	}

	b := a.findFit(need)
	if b == block.Nil {
		if _, err := a.extend(need); err != nil {
			return block.Nil, err
		}
		a.stats.ExtendCalls++
		a.stats.ExtendBytes += int64(need)
		if b = a.findFit(need); b == block.Nil {
			return block.Nil, fmt.Errorf("%w: no fit for %d bytes after extension", ErrCorrupt, need)
		}
	}
	return a.place(b, need)
}

// requiredSize converts a payload size into a block size: header and footer
// added, rounded up to 8, never below MinBlockSize.
func (a *Allocator) requiredSize(size int) (uint32, bool) {
	if uint64(size) > format.MaxAddressable-format.TagOverhead-format.SentinelSize {
		return 0, false
	}
	need := format.Align8U32(uint32(size) + format.TagOverhead)
	return max(need, uint32(a.cfg.MinBlockSize)), true
}

// extend grows the region by size bytes, turns the new space into a free
// block and coalesces it with a free last block. It returns the resulting
// free block.
func (a *Allocator) extend(size uint32) (block.Addr, error) {
	off, err := a.region.Extend(int(size))
	if err != nil {
		a.log.Debug("extend failed", "bytes", size, "region", a.region.Size(), "err", err)
		return block.Nil, a.noSpace(size, err)
	}
	mem := a.region.Bytes()
	// The old epilogue header becomes the new block's header.
	b := block.Addr(off - format.WordSize)
	block.Stamp(mem, b, size, false)
	block.SetHeader(mem, block.Next(mem, b), 0, true)

	a.log.Debug("extend", "bytes", size, "block", uint32(b), "region", a.region.Size())
	return a.coalesce(b)
}

// noSpace wraps a region failure so callers can match either ErrNoSpace or
// the region's own error.
func (a *Allocator) noSpace(need uint32, err error) error {
	if errors.Is(err, region.ErrOutOfMemory) {
		return fmt.Errorf("%w: need %d bytes: %w", ErrNoSpace, need, err)
	}
	return err
}

// Free releases the allocation at p. Nil is ignored.
func (a *Allocator) Free(p Ptr) error {
	if a.region == nil {
		return ErrClosed
	}
	a.stats.FreeCalls++
	return a.release(p)
}

// release is Free without the call accounting.
func (a *Allocator) release(p Ptr) error {
	if p == Nil {
		return nil
	}
	if err := a.checkPtr(p); err != nil {
		return err
	}
	if _, err := a.coalesce(block.FromPayload(uint32(p))); err != nil {
		return err
	}
	return a.checkHeap()
}

// Payload returns the whole payload of the live allocation at p, or nil for
// Nil or an out-of-range pointer.
func (a *Allocator) Payload(p Ptr) []byte {
	if a.region == nil || p == Nil || a.validPtr(p) != nil {
		return nil
	}
	mem := a.region.Bytes()
	n := block.PayloadSize(mem, block.FromPayload(uint32(p)))
	s, _ := buf.Slice(mem, int(p), int(n))
	return s
}

// slice returns size bytes at p with capacity up to the end of the payload.
func (a *Allocator) slice(p Ptr, size int) []byte {
	full := a.Payload(p)
	if full == nil {
		return nil
	}
	return full[:size]
}

// validPtr performs the O(1) checks every Free and Realloc pays for: the
// pointer must be 8-aligned and its block must lie between the prologue and
// the epilogue.
func (a *Allocator) validPtr(p Ptr) error {
	mem := a.region.Bytes()
	first := block.Next(mem, a.base)
	if !format.IsAligned8(int(p)) || block.FromPayload(uint32(p)) < first {
		return fmt.Errorf("%w: %#x", ErrBadPtr, uint32(p))
	}
	b := block.FromPayload(uint32(p))
	if !buf.Has(mem, int(b), format.WordSize) {
		return fmt.Errorf("%w: %#x beyond heap end", ErrBadPtr, uint32(p))
	}
	size := block.Size(mem, b)
	if size < format.MinBlockSize || !buf.Has(mem, int(b), int(size)+format.WordSize) {
		return fmt.Errorf("%w: %#x has no valid block header", ErrBadPtr, uint32(p))
	}
	return nil
}

// checkPtr adds the debug assertions of Config.Check to validPtr.
func (a *Allocator) checkPtr(p Ptr) error {
	if err := a.validPtr(p); err != nil {
		return err
	}
	if !a.cfg.Check {
		return nil
	}
	mem := a.region.Bytes()
	b := block.FromPayload(uint32(p))
	if !block.Allocated(mem, b) || block.Header(mem, b) != block.Footer(mem, b) {
		return fmt.Errorf("%w: %#x", ErrNotAllocated, uint32(p))
	}
	return nil
}

// checkHeap runs the full verification when Config.Check is set.
func (a *Allocator) checkHeap() error {
	if !a.cfg.Check {
		return nil
	}
	if err := verify.All(a); err != nil {
		return fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return nil
}
