package verify

import (
	"fmt"

	"github.com/joshuapare/heapkit/heap/block"
	"github.com/joshuapare/heapkit/heap/freelist"
	"github.com/joshuapare/heapkit/internal/format"
)

// Heap is what the checks need to see.
type Heap interface {
	// Bytes returns the whole region.
	Bytes() []byte
	// Base returns the prologue address; the first block follows it.
	Base() block.Addr
	// FreeList returns the explicit free list.
	FreeList() *freelist.List
}

// ValidationError describes the first broken invariant.
type ValidationError struct {
	Type    string
	Message string
	Offset  int
	Details map[string]any
}

func (e *ValidationError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s at offset 0x%X: %s", e.Type, e.Offset, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// All runs every check and returns the first error, or nil.
func All(h Heap) error {
	if err := Sentinels(h); err != nil {
		return err
	}
	if err := BoundaryTags(h); err != nil {
		return err
	}
	if err := NoAdjacentFree(h); err != nil {
		return err
	}
	return FreeList(h)
}

// Sentinels checks the pad word, the prologue and the epilogue.
func Sentinels(h Heap) error {
	mem := h.Bytes()
	base := h.Base()
	if len(mem) < format.SentinelSize {
		return &ValidationError{
			Type:    "Sentinels",
			Message: fmt.Sprintf("region too small: %d bytes (need %d)", len(mem), format.SentinelSize),
			Offset:  -1,
		}
	}
	if base != format.PrologueOffset {
		return &ValidationError{
			Type:    "Sentinels",
			Message: fmt.Sprintf("prologue at 0x%X, expected 0x%X", uint32(base), format.PrologueOffset),
			Offset:  int(base),
		}
	}

	want := block.Pack(format.PrologueSize, true)
	head := block.Header(mem, base)
	foot := format.ReadU32(mem, int(base)+format.PrologueSize-format.WordSize)
	if head != want || foot != want {
		return &ValidationError{
			Type:    "Sentinels",
			Message: fmt.Sprintf("bad prologue: header=0x%X footer=0x%X, expected 0x%X", head, foot, want),
			Offset:  int(base),
			Details: map[string]any{"header": head, "footer": foot},
		}
	}

	end := len(mem) - format.WordSize
	if epi := format.ReadU32(mem, end); epi != block.Pack(0, true) {
		return &ValidationError{
			Type:    "Sentinels",
			Message: fmt.Sprintf("bad epilogue word 0x%X", epi),
			Offset:  end,
		}
	}
	return nil
}

// BoundaryTags walks the blocks from the prologue to the epilogue and checks
// each one's size, alignment and header/footer agreement.
func BoundaryTags(h Heap) error {
	mem := h.Bytes()
	end := len(mem) - format.WordSize
	a := int(block.Next(mem, h.Base()))

	for a < end {
		head := block.Header(mem, block.Addr(a))
		size := int(block.SizeOf(head))
		if (a+format.WordSize)%format.Alignment != 0 {
			return &ValidationError{
				Type:    "BoundaryTags",
				Message: "payload not 8-byte aligned",
				Offset:  a,
			}
		}
		if size < format.MinBlockSize || !format.IsAligned8(size) {
			return &ValidationError{
				Type:    "BoundaryTags",
				Message: fmt.Sprintf("invalid block size %d", size),
				Offset:  a,
			}
		}
		if a+size > end {
			return &ValidationError{
				Type:    "BoundaryTags",
				Message: fmt.Sprintf("block crosses epilogue: block_end=0x%X, epilogue=0x%X", a+size, end),
				Offset:  a,
			}
		}
		if foot := block.Footer(mem, block.Addr(a)); foot != head {
			return &ValidationError{
				Type:    "BoundaryTags",
				Message: fmt.Sprintf("header/footer mismatch: header=0x%X footer=0x%X", head, foot),
				Offset:  a,
				Details: map[string]any{"header": head, "footer": foot},
			}
		}
		a += size
	}
	if a != end {
		return &ValidationError{
			Type:    "BoundaryTags",
			Message: fmt.Sprintf("walk ended at 0x%X, epilogue at 0x%X", a, end),
			Offset:  a,
		}
	}
	return nil
}

// NoAdjacentFree checks that coalescing left no two neighbouring free blocks.
// It assumes BoundaryTags passed.
func NoAdjacentFree(h Heap) error {
	mem := h.Bytes()
	var (
		err      error
		prevFree bool
		prev     block.Addr
	)
	block.Walk(mem, block.Next(mem, h.Base()), func(b block.Info) bool {
		if !b.Allocated && prevFree {
			err = &ValidationError{
				Type:    "NoAdjacentFree",
				Message: fmt.Sprintf("free blocks 0x%X and 0x%X are adjacent", uint32(prev), uint32(b.Addr)),
				Offset:  int(b.Addr),
			}
			return false
		}
		prevFree, prev = !b.Allocated, b.Addr
		return true
	})
	return err
}

// FreeList checks that the free list contains every free block exactly once,
// nothing else, and that its back links, head, tail and length agree. It
// assumes BoundaryTags passed.
func FreeList(h Heap) error {
	mem := h.Bytes()
	l := h.FreeList()

	free := make(map[block.Addr]bool)
	block.Walk(mem, block.Next(mem, h.Base()), func(b block.Info) bool {
		if !b.Allocated {
			free[b.Addr] = false
		}
		return true
	})

	if l.Len() != len(free) {
		return &ValidationError{
			Type:    "FreeList",
			Message: fmt.Sprintf("list length %d, heap has %d free blocks", l.Len(), len(free)),
			Offset:  -1,
		}
	}
	if l.Head() != block.Nil && l.Prev(l.Head()) != block.Nil {
		return &ValidationError{
			Type:    "FreeList",
			Message: "head has a prev link",
			Offset:  int(l.Head()),
		}
	}

	prev := block.Nil
	count := 0
	for a := l.Head(); a != block.Nil; a = l.Next(a) {
		seen, ok := free[a]
		if !ok {
			return &ValidationError{
				Type:    "FreeList",
				Message: "listed block is not a free block",
				Offset:  int(a),
			}
		}
		if seen {
			return &ValidationError{
				Type:    "FreeList",
				Message: "block listed twice",
				Offset:  int(a),
			}
		}
		free[a] = true
		if p := l.Prev(a); p != prev {
			return &ValidationError{
				Type:    "FreeList",
				Message: fmt.Sprintf("prev link 0x%X, expected 0x%X", uint32(p), uint32(prev)),
				Offset:  int(a),
			}
		}
		prev = a
		count++
	}
	if l.Tail() != prev {
		return &ValidationError{
			Type:    "FreeList",
			Message: fmt.Sprintf("tail 0x%X, last listed block 0x%X", uint32(l.Tail()), uint32(prev)),
			Offset:  int(l.Tail()),
		}
	}
	if count != len(free) {
		return &ValidationError{
			Type:    "FreeList",
			Message: fmt.Sprintf("%d of %d free blocks listed", count, len(free)),
			Offset:  -1,
		}
	}
	return nil
}
