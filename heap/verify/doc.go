// Package verify checks the structural invariants of an allocator heap.
//
// # Overview
//
// The checks read the region bytes and the free list directly, so they work
// on any heap laid out with boundary tags, whether it came from a live
// allocator or was built by hand in a test:
//   - Sentinels: pad word, prologue and epilogue are where they belong
//   - BoundaryTags: every block is aligned, at least the minimum size, has
//     matching header and footer words and the walk ends on the epilogue
//   - NoAdjacentFree: no two physically adjacent blocks are both free
//   - FreeList: the free list holds exactly the free blocks, once each, with
//     back links that agree with forward links
//
// # Usage
//
//	if err := verify.All(a); err != nil {
//	    var verr *verify.ValidationError
//	    if errors.As(err, &verr) {
//	        fmt.Printf("%s at 0x%X: %s\n", verr.Type, verr.Offset, verr.Message)
//	    }
//	}
//
// All stops at the first failure. The allocator runs it after every mutating
// call when its Check option is set.
package verify
