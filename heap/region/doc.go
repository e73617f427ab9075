// Package region provides the backing store for the heap: one contiguous,
// capped, append-only byte region that can be extended but never shrunk.
//
// # Overview
//
// A Region reserves its full capacity up front through a wazero
// experimental.MemoryAllocator and commits memory as Extend moves the break.
// The default allocator (NonMoving) reserves address space with mmap on unix
// and VirtualAlloc on windows, so slices handed out over the region stay valid
// for the region's lifetime. Other platforms fall back to a slice whose
// capacity is the whole ceiling.
//
//	r, err := region.New(nil) // 40 MiB ceiling, non-moving memory
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	off, err := r.Extend(528)
//	if errors.Is(err, region.ErrOutOfMemory) {
//	    // ceiling reached
//	}
//
// Offsets returned by Extend are relative to Low(), which is always 0.
//
// # Thread Safety
//
// A Region is not safe for concurrent use.
package region
