package cache

// Addresses split into three fields, highest bits first:
//
//	| tag | set index | block offset |
//
// BlockBits low bits select a byte inside the block and never influence
// hit or miss. The next SetBits bits select the set, and everything
// above them is the tag stored in the line.

// SetIndex extracts the set-index field of addr.
func SetIndex(addr uint64, setBits, blockBits int) uint64 {
	return (addr >> uint(blockBits)) & mask(setBits)
}

// Tag extracts the tag field of addr.
func Tag(addr uint64, setBits, blockBits int) uint64 {
	return (addr >> uint(setBits+blockBits)) & mask(64-setBits-blockBits)
}

// mask returns a value with the low n bits set. n may be the full 64:
// Go zeroes a uint64 shifted by 64, and 0-1 wraps to all ones.
func mask(n int) uint64 {
	return (uint64(1) << uint(n)) - 1
}
