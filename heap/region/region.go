package region

import (
	"fmt"

	"github.com/tetratelabs/wazero/experimental"

	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
)

// Config configures a Region.
type Config struct {
	// MaxSize is the hard ceiling on the cumulative region size in bytes.
	MaxSize int

	// Memory supplies the backing linear memory. It must not move memory
	// when it grows. Nil selects NonMoving().
	Memory experimental.MemoryAllocator
}

// DefaultConfig is used when New is given a nil config.
var DefaultConfig = Config{
	MaxSize: format.DefaultMaxHeap,
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.MaxSize <= 0 || !format.IsAligned8(c.MaxSize) || uint64(c.MaxSize) > format.MaxAddressable {
		return fmt.Errorf("region: bad max size %d", c.MaxSize)
	}
	return nil
}

// Region is a capped, append-only byte region.
type Region struct {
	mem experimental.LinearMemory
	buf []byte // committed bytes, len(buf) is the break
	max int
}

// New reserves a region of cfg.MaxSize bytes. The region starts empty.
func New(cfg *Config) (*Region, error) {
	if cfg == nil {
		cfg = &DefaultConfig
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	allocator := cfg.Memory
	if allocator == nil {
		allocator = NonMoving()
	}

	mem, err := reserve(allocator, uint64(cfg.MaxSize))
	if err != nil {
		return nil, err
	}
	return &Region{mem: mem, max: cfg.MaxSize}, nil
}

// Extend grows the region by n bytes and returns the offset where the new
// space starts. n must be a non-negative multiple of 8. On failure the region
// is unchanged.
func (r *Region) Extend(n int) (uint32, error) {
	if r.mem == nil {
		return 0, ErrClosed
	}
	if n < 0 || !format.IsAligned8(n) {
		return 0, fmt.Errorf("%w: %d", ErrBadIncrement, n)
	}

	old := len(r.buf)
	brk, ok := buf.AddOverflowSafe(old, n)
	if !ok || brk > r.max {
		return 0, fmt.Errorf("%w: extend by %d with %d of %d bytes used", ErrOutOfMemory, n, old, r.max)
	}
	if n == 0 {
		return uint32(old), nil
	}

	grown, err := commit(r.mem, uint64(brk))
	if err != nil {
		return 0, err
	}
	r.buf = grown
	return uint32(old), nil
}

// Bytes returns the committed region. The slice is only valid until the next
// Extend, Reset or Close; the bytes it covers stay put.
func (r *Region) Bytes() []byte { return r.buf }

// Low returns the offset of the first region byte.
func (r *Region) Low() uint32 { return 0 }

// High returns the offset of the last region byte, or -1 for an empty region.
func (r *Region) High() int { return len(r.buf) - 1 }

// Size returns the number of bytes handed out so far.
func (r *Region) Size() int { return len(r.buf) }

// Cap returns the region ceiling.
func (r *Region) Cap() int { return r.max }

// Reset moves the break back to the start. Committed memory is kept and its
// contents are left as they were.
func (r *Region) Reset() error {
	if r.mem == nil {
		return ErrClosed
	}
	r.buf = r.buf[:0]
	return nil
}

// Close releases the backing memory. Further calls return ErrClosed.
func (r *Region) Close() error {
	if r.mem == nil {
		return ErrClosed
	}
	mem := r.mem
	r.mem, r.buf = nil, nil
	return release(mem)
}

// The wazero LinearMemory contract reports failure by panicking; these
// helpers turn that back into errors at the region boundary.

func reserve(a experimental.MemoryAllocator, max uint64) (mem experimental.LinearMemory, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrReserve, p)
		}
	}()
	mem = a.Allocate(0, max)
	if mem == nil {
		return nil, ErrReserve
	}
	return mem, nil
}

func commit(mem experimental.LinearMemory, size uint64) (b []byte, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: commit %d bytes: %v", ErrReserve, size, p)
		}
	}()
	return mem.Reallocate(size), nil
}

func release(mem experimental.LinearMemory) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("region: release: %v", p)
		}
	}()
	mem.Free()
	return nil
}
