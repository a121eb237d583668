/*
Package morton interleaves three 16-bit axis coordinates into a single
48-bit Z-order code and back.

Bit 3*b+i of a code is bit b of axis i, where axis 0 is x, 1 is y and 2
is z. The most significant triplet is therefore the coarsest octree
level and the least significant triplet the finest, so sorting codes
numerically groups cells by every enclosing power-of-two region.
*/
package morton

// Bits is the width of one axis coordinate.
const Bits = 16

// CodeBits is the width of an encoded code.
const CodeBits = 3 * Bits

// Mask covers every bit an encoded code can use.
const Mask = uint64(1)<<CodeBits - 1

// Encode interleaves x, y and z into a 48-bit code.
func Encode(x, y, z uint16) uint64 {
	return part1By2(uint64(x)) |
		(part1By2(uint64(y)) << 1) |
		(part1By2(uint64(z)) << 2)
}

// Decode is the exact inverse of Encode. Bits above CodeBits are ignored.
func Decode(code uint64) (x, y, z uint16) {
	code &= Mask
	x = uint16(compact1By2(code))
	y = uint16(compact1By2(code >> 1))
	z = uint16(compact1By2(code >> 2))
	return
}

// Octant returns the 3-bit child index of code at the given level, where
// level 0 is the finest.
func Octant(code uint64, level uint) uint8 {
	return uint8((code >> (3 * level)) & 0b111)
}

func part1By2(x uint64) uint64 {
	x &= 0xffff
	x = (x | (x << 32)) & 0x1f00000000ffff
	x = (x | (x << 16)) & 0x1f0000ff0000ff
	x = (x | (x << 8)) & 0x100f00f00f00f00f
	x = (x | (x << 4)) & 0x10c30c30c30c30c3
	x = (x | (x << 2)) & 0x1249249249249249
	return x
}

func compact1By2(x uint64) uint64 {
	x &= 0x1249249249249249
	x = (x ^ (x >> 2)) & 0x10c30c30c30c30c3
	x = (x ^ (x >> 4)) & 0x100f00f00f00f00f
	x = (x ^ (x >> 8)) & 0x1f0000ff0000ff
	x = (x ^ (x >> 16)) & 0x1f00000000ffff
	x = (x ^ (x >> 32)) & 0x1fffff
	return x
}
