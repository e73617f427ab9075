package freelist

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap/block"
)

// newTestList lays out n free 16-byte blocks back to back and returns an
// empty list over them plus their addresses. Payload words are poisoned so
// stale links would show.
func newTestList(t *testing.T, n int) (*List, []block.Addr) {
	t.Helper()
	mem := make(Bytes, 4+16*n+4)
	addrs := make([]block.Addr, n)
	for i := range n {
		a := block.Addr(4 + 16*i)
		block.Stamp(mem, a, 16, false)
		for j := 4; j < 12; j++ {
			mem[int(a)+j] = 0x03
		}
		addrs[i] = a
	}
	return New(mem), addrs
}

func members(l *List) []block.Addr {
	return slices.Collect(l.All())
}

func TestAppendEmpty(t *testing.T) {
	l, b := newTestList(t, 1)
	require.Equal(t, block.Nil, l.Head())
	require.Equal(t, block.Nil, l.Tail())

	l.Append(b[0])
	require.Equal(t, b[0], l.Head())
	require.Equal(t, b[0], l.Tail())
	require.Equal(t, block.Nil, l.Next(b[0]))
	require.Equal(t, block.Nil, l.Prev(b[0]))
	require.Equal(t, 1, l.Len())
}

func TestPrependEmpty(t *testing.T) {
	l, b := newTestList(t, 1)
	l.Prepend(b[0])
	require.Equal(t, b[0], l.Head())
	require.Equal(t, b[0], l.Tail())
	require.Equal(t, block.Nil, l.Next(b[0]))
	require.Equal(t, block.Nil, l.Prev(b[0]))
}

func TestAppendNonEmpty(t *testing.T) {
	l, b := newTestList(t, 2)
	l.Append(b[0])
	l.Append(b[1])

	require.Equal(t, b[0], l.Head())
	require.Equal(t, block.Nil, l.Prev(b[0]))
	require.Equal(t, b[1], l.Next(b[0]))
	require.Equal(t, b[0], l.Prev(b[1]))
	require.Equal(t, block.Nil, l.Next(b[1]))
	require.Equal(t, b[1], l.Tail())
}

func TestPrependNonEmpty(t *testing.T) {
	l, b := newTestList(t, 2)
	l.Prepend(b[0])
	l.Prepend(b[1])

	require.Equal(t, b[1], l.Head())
	require.Equal(t, block.Nil, l.Prev(b[1]))
	require.Equal(t, b[0], l.Next(b[1]))
	require.Equal(t, b[1], l.Prev(b[0]))
	require.Equal(t, block.Nil, l.Next(b[0]))
	require.Equal(t, b[0], l.Tail())
}

func TestRemoveSingle(t *testing.T) {
	l, b := newTestList(t, 1)
	l.Append(b[0])
	require.NoError(t, l.Remove(b[0]))
	require.Equal(t, block.Nil, l.Head())
	require.Equal(t, block.Nil, l.Tail())
	require.Zero(t, l.Len())
}

func TestRemoveEnds(t *testing.T) {
	cases := []struct {
		name   string
		remove int
		want   []int
	}{
		{name: "head", remove: 0, want: []int{1, 2}},
		{name: "middle", remove: 1, want: []int{0, 2}},
		{name: "tail", remove: 2, want: []int{0, 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l, b := newTestList(t, 3)
			for _, a := range b {
				l.Append(a)
			}
			require.NoError(t, l.Remove(b[tc.remove]))

			want := []block.Addr{b[tc.want[0]], b[tc.want[1]]}
			require.Equal(t, want, members(l))
			require.Equal(t, want[0], l.Head())
			require.Equal(t, want[1], l.Tail())
			require.Equal(t, block.Nil, l.Prev(l.Head()))
			require.Equal(t, block.Nil, l.Next(l.Tail()))
			require.Equal(t, want[0], l.Prev(want[1]))
		})
	}
}

func TestRemoveNotMember(t *testing.T) {
	l, b := newTestList(t, 3)

	require.ErrorIs(t, l.Remove(b[0]), ErrNotMember, "empty list")

	l.Append(b[0])
	l.Append(b[1])
	before := members(l)

	// b[2] has never been linked; its link words hold poison.
	require.ErrorIs(t, l.Remove(b[2]), ErrNotMember)
	require.ErrorIs(t, l.Remove(block.Nil), ErrNotMember)
	require.Equal(t, before, members(l), "failed remove leaves the list untouched")
	require.Equal(t, 2, l.Len())
}

func TestContains(t *testing.T) {
	l, b := newTestList(t, 3)
	require.False(t, l.Contains(b[0]), "empty list")

	l.Append(b[0])
	l.Append(b[1])
	require.True(t, l.Contains(b[0]))
	require.True(t, l.Contains(b[1]))
	require.False(t, l.Contains(b[2]))
	require.False(t, l.Contains(block.Nil))

	require.NoError(t, l.Remove(b[0]))
	require.False(t, l.Contains(b[0]))
	require.True(t, l.Contains(b[1]))
}

func TestInitEmptiesList(t *testing.T) {
	l, b := newTestList(t, 2)
	l.Append(b[0])
	l.Prepend(b[1])
	l.Init()
	require.Equal(t, block.Nil, l.Head())
	require.Equal(t, block.Nil, l.Tail())
	require.Empty(t, members(l))
}

func TestAllStopsEarly(t *testing.T) {
	l, b := newTestList(t, 3)
	for _, a := range b {
		l.Prepend(a)
	}
	var got []block.Addr
	for a := range l.All() {
		got = append(got, a)
		if len(got) == 2 {
			break
		}
	}
	require.Equal(t, []block.Addr{b[2], b[1]}, got)
}
