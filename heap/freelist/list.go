// Package freelist keeps the explicit, doubly linked list of free blocks.
//
// The list owns no nodes. A free block's first two payload words hold its
// prev and next links:
//
//	+0  header
//	+4  prev free block (block.Nil at the head)
//	+8  next free block (block.Nil at the tail)
//
// so the links are only meaningful while the block is free. Order is
// whatever the callers' insertion policy produces; the list itself never
// sorts.
package freelist

import (
	"errors"
	"fmt"
	"iter"

	"github.com/joshuapare/heapkit/heap/block"
	"github.com/joshuapare/heapkit/internal/format"
)

// ErrNotMember indicates Remove was handed a block that is not linked into the list.
var ErrNotMember = errors.New("freelist: block not in list")

// Memory exposes the region bytes the links are stored in.
type Memory interface {
	Bytes() []byte
}

// Bytes adapts a plain byte slice to Memory.
type Bytes []byte

// Bytes implements Memory.
func (b Bytes) Bytes() []byte { return b }

// List is the free list. The zero value is not usable; call New.
type List struct {
	mem  Memory
	head block.Addr
	tail block.Addr
	n    int
}

// New returns an empty list storing its links in mem.
func New(mem Memory) *List {
	return &List{mem: mem}
}

// Init empties the list. Link words left in former members are ignored.
func (l *List) Init() {
	l.head, l.tail, l.n = block.Nil, block.Nil, 0
}

// Head returns the first free block or block.Nil.
func (l *List) Head() block.Addr { return l.head }

// Tail returns the last free block or block.Nil.
func (l *List) Tail() block.Addr { return l.tail }

// Len returns the number of free blocks in the list.
func (l *List) Len() int { return l.n }

// Next returns the free block after a.
func (l *List) Next(a block.Addr) block.Addr {
	return block.Addr(format.ReadU32(l.mem.Bytes(), int(a)+format.LinkNextOffset))
}

// Prev returns the free block before a.
func (l *List) Prev(a block.Addr) block.Addr {
	return block.Addr(format.ReadU32(l.mem.Bytes(), int(a)+format.LinkPrevOffset))
}

func (l *List) setNext(a, next block.Addr) {
	format.PutU32(l.mem.Bytes(), int(a)+format.LinkNextOffset, uint32(next))
}

func (l *List) setPrev(a, prev block.Addr) {
	format.PutU32(l.mem.Bytes(), int(a)+format.LinkPrevOffset, uint32(prev))
}

// Prepend links a at the head.
func (l *List) Prepend(a block.Addr) {
	l.setPrev(a, block.Nil)
	l.setNext(a, l.head)
	if l.head == block.Nil {
		l.tail = a
	} else {
		l.setPrev(l.head, a)
	}
	l.head = a
	l.n++
}

// Append links a at the tail.
func (l *List) Append(a block.Addr) {
	l.setNext(a, block.Nil)
	l.setPrev(a, l.tail)
	if l.tail == block.Nil {
		l.head = a
	} else {
		l.setNext(l.tail, a)
	}
	l.tail = a
	l.n++
}

// Remove unlinks a in O(1). It returns ErrNotMember, leaving the list
// untouched, when a's links do not agree with its neighbours.
func (l *List) Remove(a block.Addr) error {
	if err := l.check(a); err != nil {
		return err
	}
	prev, next := l.Prev(a), l.Next(a)

	if prev == block.Nil {
		l.head = next
	} else {
		l.setNext(prev, next)
	}
	if next == block.Nil {
		l.tail = prev
	} else {
		l.setPrev(next, prev)
	}
	l.n--
	return nil
}

// Contains reports whether a is linked into the list, using the same O(1)
// test Remove applies.
func (l *List) Contains(a block.Addr) bool {
	return l.check(a) == nil
}

// check verifies a is linked where its own link words say it is.
func (l *List) check(a block.Addr) error {
	if a == block.Nil || l.n == 0 {
		return fmt.Errorf("%w: %#x", ErrNotMember, uint32(a))
	}
	if !l.inRange(a) {
		return fmt.Errorf("%w: %#x", ErrNotMember, uint32(a))
	}
	prev, next := l.Prev(a), l.Next(a)
	if (prev != block.Nil && !l.inRange(prev)) || (next != block.Nil && !l.inRange(next)) {
		return fmt.Errorf("%w: %#x", ErrNotMember, uint32(a))
	}

	linkedFromPrev := (prev == block.Nil && l.head == a) || (prev != block.Nil && l.Next(prev) == a)
	linkedFromNext := (next == block.Nil && l.tail == a) || (next != block.Nil && l.Prev(next) == a)
	if !linkedFromPrev || !linkedFromNext {
		return fmt.Errorf("%w: %#x", ErrNotMember, uint32(a))
	}
	return nil
}

// inRange reports whether a block at a has room for its link words.
func (l *List) inRange(a block.Addr) bool {
	return int(a)+format.LinkNextOffset+format.WordSize <= len(l.mem.Bytes())
}

// All yields the free blocks from head to tail.
func (l *List) All() iter.Seq[block.Addr] {
	return func(yield func(block.Addr) bool) {
		for a := l.head; a != block.Nil; a = l.Next(a) {
			if !yield(a) {
				return
			}
		}
	}
}
