package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/internal/format"
)

func TestControlWord(t *testing.T) {
	w := Pack(16, true)
	assert.Equal(t, uint32(17), w)
	assert.Equal(t, uint32(16), SizeOf(w))
	assert.True(t, IsAllocated(w))

	w = Pack(4096, false)
	assert.Equal(t, uint32(4096), SizeOf(w))
	assert.False(t, IsAllocated(w))

	// Bits 1 and 2 are never part of the size.
	assert.Equal(t, uint32(24), SizeOf(24|0x6))
}

func TestHeaderFooter(t *testing.T) {
	mem := make([]byte, 64)
	a := Addr(4)

	Stamp(mem, a, 16, true)
	require.Equal(t, uint32(16), Size(mem, a))
	require.True(t, Allocated(mem, a))

	// Footer is the last word of the block.
	footer := format.ReadU32(mem, int(a)+16-format.WordSize)
	require.Equal(t, Header(mem, a), footer)
	require.Equal(t, footer, Footer(mem, a))
	require.Equal(t, uint32(8), PayloadSize(mem, a))
}

func TestSetHeaderAloneLeavesFooter(t *testing.T) {
	mem := make([]byte, 32)
	a := Addr(4)
	Stamp(mem, a, 24, false)

	SetHeader(mem, a, 24, true)
	require.True(t, Allocated(mem, a))
	require.False(t, IsAllocated(Footer(mem, a)), "footer only changes through SetFooter")

	SetFooter(mem, a, 24, true)
	require.True(t, IsAllocated(Footer(mem, a)))
}

func TestPayloadAddress(t *testing.T) {
	a := Addr(12)
	require.Equal(t, uint32(16), Payload(a))
	require.Equal(t, a, FromPayload(Payload(a)))
	require.True(t, format.IsAligned8(int(Payload(a))))
}

func TestPrevNext(t *testing.T) {
	mem := make([]byte, 64)

	// 32-byte free block followed by a 16-byte allocated one.
	first := Addr(4)
	Stamp(mem, first, 32, false)
	require.False(t, Allocated(mem, first))
	require.False(t, IsAllocated(Footer(mem, first)))

	second := Next(mem, first)
	require.Equal(t, Addr(36), second)
	Stamp(mem, second, 16, true)

	require.Equal(t, second, Next(mem, first))
	require.Equal(t, first, Prev(mem, second))
}

func TestWalk(t *testing.T) {
	mem := make([]byte, 64)
	Stamp(mem, 4, 8, true)    // prologue
	Stamp(mem, 12, 24, false) // free
	Stamp(mem, 36, 16, true)  // allocated
	SetHeader(mem, 52, 0, true)

	var seen []Info
	Walk(mem, 4, func(b Info) bool {
		seen = append(seen, b)
		return true
	})
	require.Equal(t, []Info{
		{Addr: 4, Size: 8, Allocated: true},
		{Addr: 12, Size: 24, Allocated: false},
		{Addr: 36, Size: 16, Allocated: true},
	}, seen)

	count := 0
	Walk(mem, 4, func(Info) bool {
		count++
		return count < 2
	})
	require.Equal(t, 2, count, "returning false stops the walk")
}

func TestWalkStopsAtRegionEnd(t *testing.T) {
	// No epilogue: the walk must not read past the slice.
	mem := make([]byte, 24)
	Stamp(mem, 4, 8, true)
	Stamp(mem, 12, 8, false)

	n := 0
	Walk(mem, 4, func(Info) bool { n++; return true })
	require.Equal(t, 2, n)
}
