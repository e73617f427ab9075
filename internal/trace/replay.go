package trace

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/joshuapare/heapkit/heap/alloc"
)

var (
	// ErrDamaged indicates a live payload no longer holds what was written to it.
	ErrDamaged = errors.New("trace: payload damaged")

	// ErrOverlap indicates two live payloads share bytes.
	ErrOverlap = errors.New("trace: payloads overlap")
)

// Allocator is the allocator surface a replay drives.
type Allocator interface {
	Alloc(size int) (alloc.Ptr, []byte, error)
	Realloc(p alloc.Ptr, size int) (alloc.Ptr, []byte, error)
	Free(p alloc.Ptr) error
	Payload(p alloc.Ptr) []byte
	Stats() alloc.Stats
}

// Options controls a replay.
type Options struct {
	// Verify checks every live payload for damage and overlap after each
	// operation, not just the one being resized. O(live) per step.
	Verify bool

	// Logger receives one debug record per operation. Nil discards.
	Logger *slog.Logger
}

// Result summarizes a replay.
type Result struct {
	Ops      int
	Allocs   int
	Frees    int
	Reallocs int

	// PeakPayload is the largest total of requested bytes live at once.
	PeakPayload int64

	// RegionSize is the region size after the last operation.
	RegionSize int

	// Utilization is PeakPayload over RegionSize.
	Utilization float64

	Stats alloc.Stats
}

type liveBlock struct {
	ptr  alloc.Ptr
	size int
}

// Replay runs tr against a. It stops at the first allocator error or
// detected damage; the partial Result is returned alongside the error.
func Replay(a Allocator, tr *Trace, opts Options) (Result, error) {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var (
		res     Result
		live    = make(map[int]liveBlock, tr.IDs)
		payload int64
	)
	finish := func(err error) (Result, error) {
		res.Stats = a.Stats()
		res.RegionSize = res.Stats.RegionSize
		if res.RegionSize > 0 {
			res.Utilization = float64(res.PeakPayload) / float64(res.RegionSize)
		}
		return res, err
	}

	for _, op := range tr.Ops {
		res.Ops++
		switch op.Kind {
		case Alloc:
			res.Allocs++
			p, b, err := a.Alloc(op.Size)
			if err != nil {
				return finish(fmt.Errorf("line %d: alloc %d bytes for id %d: %w", op.Line, op.Size, op.ID, err))
			}
			fillPattern(b, op.ID, 0)
			live[op.ID] = liveBlock{ptr: p, size: op.Size}
			payload += int64(op.Size)
			log.Debug("alloc", "line", op.Line, "id", op.ID, "size", op.Size, "ptr", uint32(p))

		case Free:
			res.Frees++
			lb := live[op.ID]
			if err := a.Free(lb.ptr); err != nil {
				return finish(fmt.Errorf("line %d: free id %d: %w", op.Line, op.ID, err))
			}
			delete(live, op.ID)
			payload -= int64(lb.size)
			log.Debug("free", "line", op.Line, "id", op.ID, "ptr", uint32(lb.ptr))

		case Realloc:
			res.Reallocs++
			lb := live[op.ID]
			p, b, err := a.Realloc(lb.ptr, op.Size)
			if err != nil {
				return finish(fmt.Errorf("line %d: realloc id %d to %d bytes: %w", op.Line, op.ID, op.Size, err))
			}
			keep := min(lb.size, op.Size)
			if at := checkPattern(b[:keep], op.ID, 0); at >= 0 {
				return finish(fmt.Errorf("line %d: %w: id %d byte %d after realloc", op.Line, ErrDamaged, op.ID, at))
			}
			fillPattern(b[keep:], op.ID, keep)
			live[op.ID] = liveBlock{ptr: p, size: op.Size}
			payload += int64(op.Size - lb.size)
			log.Debug("realloc", "line", op.Line, "id", op.ID, "size", op.Size, "from", uint32(lb.ptr), "to", uint32(p))
		}
		res.PeakPayload = max(res.PeakPayload, payload)

		if opts.Verify {
			if err := verifyLive(a, live); err != nil {
				return finish(fmt.Errorf("line %d: %w", op.Line, err))
			}
		}
	}
	return finish(nil)
}

// verifyLive checks every live payload's pattern and that no two overlap.
func verifyLive(a Allocator, live map[int]liveBlock) error {
	type span struct {
		id     int
		lo, hi uint64
	}
	spans := make([]span, 0, len(live))
	for id, lb := range live {
		if lb.size == 0 {
			continue
		}
		b := a.Payload(lb.ptr)
		if len(b) < lb.size {
			return fmt.Errorf("%w: id %d payload shorter than %d bytes", ErrDamaged, id, lb.size)
		}
		if at := checkPattern(b[:lb.size], id, 0); at >= 0 {
			return fmt.Errorf("%w: id %d byte %d", ErrDamaged, id, at)
		}
		spans = append(spans, span{id, uint64(lb.ptr), uint64(lb.ptr) + uint64(lb.size)})
	}

	slices.SortFunc(spans, func(x, y span) int { return cmp.Compare(x.lo, y.lo) })
	for i := 1; i < len(spans); i++ {
		if spans[i].lo < spans[i-1].hi {
			return fmt.Errorf("%w: ids %d and %d", ErrOverlap, spans[i-1].id, spans[i].id)
		}
	}
	return nil
}

func patternByte(id, i int) byte {
	return byte(id*131 + i*7 + 1)
}

// fillPattern writes id's pattern into b, which starts at payload offset from.
func fillPattern(b []byte, id, from int) {
	for i := range b {
		b[i] = patternByte(id, from+i)
	}
}

// checkPattern returns the first offset at which b differs from id's
// pattern, or -1.
func checkPattern(b []byte, id, from int) int {
	for i := range b {
		if b[i] != patternByte(id, from+i) {
			return from + i
		}
	}
	return -1
}
