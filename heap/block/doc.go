// Package block encodes and decodes heap blocks directly inside the region.
//
// Every block carries the same control word at both ends:
//
//	+--------+----------------------------+--------+
//	| header |  payload / free-list links | footer |
//	+--------+----------------------------+--------+
//	  4 bytes                               4 bytes
//
// The control word stores the block size (a multiple of 8) with the
// allocated flag in bit 0. Because the footer of a block sits right before
// the header of the next one, both neighbours are reachable in O(1):
// Next adds the block size, Prev reads the preceding footer.
//
// All functions take the raw region bytes and a block address (the header's
// offset in the region). They never search and never fail; passing an
// address that is not a block header is a caller error.
package block
