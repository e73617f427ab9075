// Package format holds the low-level layout of the managed heap region: word
// size, alignment, sentinel placement and the little-endian word accessors
// every other package uses to touch block metadata.
package format

const (
	// WordSize is the width of a control word (header or footer) and of a
	// free-list link word.
	WordSize = 4

	// TagOverhead is the per-block metadata cost: one header plus one footer.
	TagOverhead = 2 * WordSize

	// Alignment is the required alignment of block sizes and payload offsets.
	Alignment = 8

	// AlignmentMask is the bitmask used for aligning to 8-byte boundaries (Alignment - 1).
	AlignmentMask = Alignment - 1

	// FlagMask selects the low bits of a control word that never carry size.
	FlagMask = 0x7

	// AllocatedBit is the control word bit set on allocated blocks.
	AllocatedBit = 0x1

	// MinBlockSize is the smallest block that can exist outside the sentinels:
	// header, two link words (or 8 payload bytes), footer.
	MinBlockSize = TagOverhead + 2*WordSize

	// PrologueSize is the size of the prologue sentinel (header + footer only).
	PrologueSize = TagOverhead

	// SentinelSize is the initial region extension:
	//   0x00  pad word (keeps payloads 8-aligned)
	//   0x04  prologue header (size 8, allocated)
	//   0x08  prologue footer (size 8, allocated)
	//   0x0C  epilogue header (size 0, allocated)
	SentinelSize = 4 * WordSize

	// PrologueOffset is the region offset of the prologue header.
	PrologueOffset = WordSize

	// EpilogueOffset is the region offset of the epilogue header right after init.
	EpilogueOffset = PrologueOffset + PrologueSize

	// LinkPrevOffset and LinkNextOffset locate the free-list links relative
	// to a free block's header.
	LinkPrevOffset = WordSize
	LinkNextOffset = 2 * WordSize
)

const (
	// DefaultInitialHeap is the first extension after the sentinels.
	DefaultInitialHeap = 528

	// DefaultSmallThreshold separates small block requests (carved from the
	// low end of a free block) from large ones (carved from the high end).
	DefaultSmallThreshold = 96

	// DefaultMaxHeap is the region capacity ceiling (40 MiB).
	DefaultMaxHeap = 40 << 20

	// MaxAddressable is the largest region a uint32 offset can describe.
	MaxAddressable = 1<<32 - Alignment
)
