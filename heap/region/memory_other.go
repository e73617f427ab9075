//go:build !unix && !windows

package region

import "github.com/tetratelabs/wazero/experimental"

func nonMovingAlloc(cap, max uint64) experimental.LinearMemory {
	return sliceAlloc(cap, max)
}
