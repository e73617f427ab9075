package alloc

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap/block"
	"github.com/joshuapare/heapkit/heap/region"
	"github.com/joshuapare/heapkit/heap/verify"
)

type option func(*Config)

func withInitialHeap(n int) option {
	return func(c *Config) { c.InitialHeap = n }
}

func withMaxHeap(n int) option {
	return func(c *Config) { c.Region = &region.Config{MaxSize: n} }
}

func withoutCheck() option {
	return func(c *Config) { c.Check = false }
}

// newAllocator builds an allocator with Check enabled, so every mutating call
// in a test also verifies the whole heap.
func newAllocator(t *testing.T, opts ...option) *Allocator {
	t.Helper()
	cfg := DefaultConfig
	cfg.Check = true
	for _, o := range opts {
		o(&cfg)
	}
	a, err := New(&cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func mustAlloc(t *testing.T, a *Allocator, size int) (Ptr, []byte) {
	t.Helper()
	p, b, err := a.Alloc(size)
	require.NoError(t, err)
	require.NotEqual(t, Nil, p)
	require.Len(t, b, size)
	return p, b
}

// fill writes a pattern derived from seed so overlapping writes are detectable.
func fill(b []byte, seed byte) {
	for i := range b {
		b[i] = seed + byte(i*7)
	}
}

func requireFilled(t *testing.T, b []byte, seed byte) {
	t.Helper()
	for i := range b {
		require.Equal(t, seed+byte(i*7), b[i], "byte %d", i)
	}
}

func requireValid(t *testing.T, a *Allocator) {
	t.Helper()
	require.NoError(t, verify.All(a))
}

func blockOf(p Ptr) block.Addr {
	return block.FromPayload(uint32(p))
}

func freeBlocks(a *Allocator) []block.Addr {
	return slices.Collect(a.free.All())
}

func blockSize(a *Allocator, b block.Addr) uint32 {
	return block.Size(a.Bytes(), b)
}

func isAllocated(a *Allocator, b block.Addr) bool {
	return block.Allocated(a.Bytes(), b)
}
