package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap/block"
)

func TestRealloc_NilAllocates(t *testing.T) {
	a := newAllocator(t)

	p, b, err := a.Realloc(Nil, 24)
	require.NoError(t, err)
	require.Equal(t, Ptr(16), p)
	require.Len(t, b, 24)
}

func TestRealloc_ZeroFrees(t *testing.T) {
	a := newAllocator(t)
	p, _ := mustAlloc(t, a, 24)

	q, b, err := a.Realloc(p, 0)
	require.NoError(t, err)
	require.Equal(t, Nil, q)
	require.Nil(t, b)
	require.Equal(t, []block.Addr{12}, freeBlocks(a))
	require.Equal(t, uint32(528), blockSize(a, 12))
}

func TestRealloc_NegativeSize(t *testing.T) {
	a := newAllocator(t)
	p, _ := mustAlloc(t, a, 24)

	_, _, err := a.Realloc(p, -5)
	require.ErrorIs(t, err, ErrBadSize)
}

func TestRealloc_ShrinkKeepsBlock(t *testing.T) {
	a := newAllocator(t)
	p, b := mustAlloc(t, a, 100)
	fill(b, 0x31)
	size := blockSize(a, blockOf(p))

	q, nb, err := a.Realloc(p, 10)
	require.NoError(t, err)
	require.Equal(t, p, q)
	require.Len(t, nb, 10)
	requireFilled(t, nb, 0x31)
	require.Equal(t, size, blockSize(a, blockOf(p)))
	require.Equal(t, 1, a.Stats().ReallocInPlace)
}

func TestRealloc_AbsorbsNext(t *testing.T) {
	a := newAllocator(t)
	p, b := mustAlloc(t, a, 16)
	fill(b, 0x41)

	q, nb, err := a.Realloc(p, 100)
	require.NoError(t, err)
	require.Equal(t, p, q, "growth into the free successor must not move")
	require.Len(t, nb, 100)
	requireFilled(t, nb[:16], 0x41)

	require.Equal(t, uint32(112), blockSize(a, 12))
	require.Equal(t, []block.Addr{124}, freeBlocks(a))
	require.Equal(t, uint32(416), blockSize(a, 124))

	st := a.Stats()
	require.Equal(t, 1, st.ReallocInPlace)
	require.Zero(t, st.ReallocMoved)
}

func TestRealloc_AbsorbsPrev(t *testing.T) {
	a := newAllocator(t)
	p1, _ := mustAlloc(t, a, 16)
	p2, b2 := mustAlloc(t, a, 16)
	mustAlloc(t, a, 16)
	fill(b2, 0x51)
	require.NoError(t, a.Free(p1))

	q, nb, err := a.Realloc(p2, 40)
	require.NoError(t, err)
	require.Equal(t, p1, q, "block must start at the absorbed predecessor")
	requireFilled(t, nb[:16], 0x51)

	require.Equal(t, uint32(48), blockSize(a, 12))
	require.True(t, isAllocated(a, 12))
	require.Equal(t, []block.Addr{84}, freeBlocks(a))

	st := a.Stats()
	require.Equal(t, 1, st.ReallocMoved, "absorbing the predecessor changes the address")
	require.Zero(t, st.ReallocInPlace)
}

func TestRealloc_AbsorbsBoth(t *testing.T) {
	a := newAllocator(t)
	p1, _ := mustAlloc(t, a, 16)
	p2, b2 := mustAlloc(t, a, 16)
	p3, _ := mustAlloc(t, a, 16)
	mustAlloc(t, a, 16)
	fill(b2, 0x61)
	require.NoError(t, a.Free(p1))
	require.NoError(t, a.Free(p3))

	q, nb, err := a.Realloc(p2, 56)
	require.NoError(t, err)
	require.Equal(t, p1, q)
	requireFilled(t, nb[:16], 0x61)

	// 24+24+24 = 72; the 8 spare bytes stay inside the block.
	require.Equal(t, uint32(72), blockSize(a, 12))
	require.Equal(t, []block.Addr{108}, freeBlocks(a))
}

func TestRealloc_Relocates(t *testing.T) {
	a := newAllocator(t)
	p1, b1 := mustAlloc(t, a, 16)
	mustAlloc(t, a, 16)
	fill(b1, 0x71)

	q, nb, err := a.Realloc(p1, 200)
	require.NoError(t, err)
	require.Equal(t, Ptr(336), q)
	require.Len(t, nb, 200)
	requireFilled(t, nb[:16], 0x71)

	require.False(t, isAllocated(a, 12), "old block must be released")
	require.Equal(t, []block.Addr{12, 60}, freeBlocks(a))
	require.Equal(t, 1, a.Stats().ReallocMoved)
}

func TestRealloc_RelocationFailureKeepsOriginal(t *testing.T) {
	a := newAllocator(t, withMaxHeap(1024))
	p, b := mustAlloc(t, a, 16)
	mustAlloc(t, a, 16)
	fill(b, 0x81)
	before := append([]byte(nil), a.Bytes()...)

	_, _, err := a.Realloc(p, 4000)
	require.ErrorIs(t, err, ErrNoSpace)
	require.Equal(t, before, a.Bytes())
	requireFilled(t, a.Payload(p)[:16], 0x81)
	requireValid(t, a)
}

func TestRealloc_NotAllocated(t *testing.T) {
	a := newAllocator(t)
	p, _ := mustAlloc(t, a, 16)
	require.NoError(t, a.Free(p))

	_, _, err := a.Realloc(p, 32)
	require.ErrorIs(t, err, ErrNotAllocated)
}
