package alloc

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joshuapare/heapkit/heap/region"
	"github.com/joshuapare/heapkit/internal/format"
)

// Runtime debug flag for allocation logging - controlled by HEAP_LOG_ALLOC env var.
var logAlloc = os.Getenv("HEAP_LOG_ALLOC") != ""

// Config tunes the allocator. Start from DefaultConfig and adjust fields;
// zero values are not filled in.
type Config struct {
	// MinBlockSize is the smallest block ever created. A split remainder
	// below it stays inside the allocation. Multiple of 8, at least 16.
	MinBlockSize int

	// SmallThreshold is the block size below which place carves from the low
	// end of a free block. Larger requests are carved from the high end.
	SmallThreshold int

	// InitialHeap is the size of the free block created at init, so the first
	// requests do not extend the region. Multiple of 8; 0 disables it.
	InitialHeap int

	// Region configures the backing region. Nil selects region.DefaultConfig.
	Region *region.Config

	// Logger receives debug events (extensions, relocations, out-of-memory).
	// Nil discards them unless HEAP_LOG_ALLOC is set.
	Logger *slog.Logger

	// Check enables pointer assertions in Free and Realloc and a full heap
	// verification after every mutating call.
	Check bool
}

// DefaultConfig is used when New is given a nil config.
var DefaultConfig = Config{
	MinBlockSize:   format.MinBlockSize,
	SmallThreshold: format.DefaultSmallThreshold,
	InitialHeap:    format.DefaultInitialHeap,
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.MinBlockSize < format.MinBlockSize || !format.IsAligned8(c.MinBlockSize) {
		return fmt.Errorf("%w: min block size %d", ErrBadConfig, c.MinBlockSize)
	}
	if c.SmallThreshold < 0 {
		return fmt.Errorf("%w: small threshold %d", ErrBadConfig, c.SmallThreshold)
	}
	if c.InitialHeap < 0 || !format.IsAligned8(c.InitialHeap) {
		return fmt.Errorf("%w: initial heap %d", ErrBadConfig, c.InitialHeap)
	}
	if c.InitialHeap > 0 && c.InitialHeap < c.MinBlockSize {
		return fmt.Errorf("%w: initial heap %d below min block size", ErrBadConfig, c.InitialHeap)
	}
	return nil
}

func (c *Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	if logAlloc {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
