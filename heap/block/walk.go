package block

import "github.com/joshuapare/heapkit/internal/format"

// Info describes one block seen during a walk.
type Info struct {
	Addr      Addr
	Size      uint32
	Allocated bool
}

// Walk visits every block from first in address order and stops after the
// zero-size epilogue has been reached (the epilogue itself is not visited).
// fn returning false ends the walk early. A walk that would leave mem also
// stops, so a damaged region cannot run it out of bounds.
func Walk(mem []byte, first Addr, fn func(Info) bool) {
	for a := first; int(a)+format.WordSize <= len(mem); {
		word := Header(mem, a)
		size := SizeOf(word)
		if size == 0 {
			return
		}
		if !fn(Info{Addr: a, Size: size, Allocated: IsAllocated(word)}) {
			return
		}
		a += Addr(size)
	}
}
