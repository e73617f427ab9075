package alloc

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap/block"
)

type liveAlloc struct {
	size int
	seed byte
}

func pattern(size int, seed byte) []byte {
	b := make([]byte, size)
	fill(b, seed)
	return b
}

// Test_RandomOps_Invariants runs a seeded mix of alloc, free and realloc with
// Check enabled and verifies after every step that live payloads are aligned,
// never overlap and still hold what was written to them.
func Test_RandomOps_Invariants(t *testing.T) {
	a := newAllocator(t)
	rng := rand.New(rand.NewSource(42)) // Fixed seed for reproducibility
	live := make(map[Ptr]liveAlloc)

	pick := func() Ptr {
		keys := make([]Ptr, 0, len(live))
		for p := range live {
			keys = append(keys, p)
		}
		slices.Sort(keys)
		return keys[rng.Intn(len(keys))]
	}

	for step := range 1500 {
		switch op := rng.Intn(10); {
		case op < 5 || len(live) == 0:
			size := 1 + rng.Intn(600)
			seed := byte(rng.Intn(256))
			p, b := mustAlloc(t, a, size)
			require.Zero(t, uint32(p)%8, "step %d", step)
			require.NotContains(t, live, p, "step %d: address handed out twice", step)
			fill(b, seed)
			live[p] = liveAlloc{size: size, seed: seed}

		case op < 8:
			p := pick()
			require.NoError(t, a.Free(p), "step %d", step)
			delete(live, p)

		default:
			p := pick()
			old := live[p]
			size := 1 + rng.Intn(800)
			q, b, err := a.Realloc(p, size)
			require.NoError(t, err, "step %d", step)
			keep := min(old.size, size)
			require.Equal(t, pattern(old.size, old.seed)[:keep], b[:keep], "step %d: realloc lost data", step)

			delete(live, p)
			seed := byte(rng.Intn(256))
			fill(b, seed)
			live[q] = liveAlloc{size: size, seed: seed}
		}

		if step%25 == 0 {
			requireLiveIntact(t, a, live)
		}
	}
	requireLiveIntact(t, a, live)
}

func requireLiveIntact(t *testing.T, a *Allocator, live map[Ptr]liveAlloc) {
	t.Helper()
	type span struct{ lo, hi uint32 }
	spans := make([]span, 0, len(live))
	for p, l := range live {
		require.Equal(t, pattern(l.size, l.seed), a.Payload(p)[:l.size], "payload at 0x%X", uint32(p))
		n := block.PayloadSize(a.Bytes(), blockOf(p))
		spans = append(spans, span{uint32(p), uint32(p) + n})
	}
	slices.SortFunc(spans, func(x, y span) int { return int(x.lo) - int(y.lo) })
	for i := 1; i < len(spans); i++ {
		require.LessOrEqual(t, spans[i-1].hi, spans[i].lo, "payloads overlap")
	}
	requireValid(t, a)
}
