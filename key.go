package svo

import (
	"fmt"

	"github.com/jrhy/svo/morton"
)

// MaxLevel is the largest compression level a Key can carry.
const MaxLevel = 15

const (
	levelBits   = 4
	levelMask   = uint64(1)<<levelBits - 1
	controlBits = 16
	maxDepth    = morton.Bits
)

// Coord is a full-resolution cell position.
type Coord struct {
	X, Y, Z uint16
}

// CoordOf converts signed coordinates, reporting false if any axis falls
// outside [0, 65536).
func CoordOf(x, y, z int) (Coord, bool) {
	if x < 0 || y < 0 || z < 0 || x > 0xffff || y > 0xffff || z > 0xffff {
		return Coord{}, false
	}
	return Coord{uint16(x), uint16(y), uint16(z)}, true
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Z)
}

// Morton returns the 48-bit interleaved code of c.
func (c Coord) Morton() uint64 {
	return morton.Encode(c.X, c.Y, c.Z)
}

// A Key orders entries of a Store. Bits [0,4) hold the compression level,
// bits [4,16) are zero and bits [16,64) hold the Morton code. An entry
// at level L covers the 2^L-sided cube whose minimum corner is Coord(),
// and the L least significant triplets of its code are zero.
type Key uint64

// MakeKey returns the key of the level-sized region containing c.
// Levels above MaxLevel are a programming error.
func MakeKey(c Coord, level uint8) Key {
	return keyFromMorton(c.Morton(), level)
}

func keyFromMorton(code uint64, level uint8) Key {
	if level > MaxLevel {
		panic(fmt.Sprintf("compression level %d exceeds %d", level, MaxLevel))
	}
	code &= morton.Mask &^ (uint64(1)<<(3*uint(level)) - 1)
	return Key(code<<controlBits | uint64(level))
}

// Level is the number of compaction steps this entry represents.
func (k Key) Level() uint8 {
	return uint8(uint64(k) & levelMask)
}

// Morton returns the 48-bit code stored in the key.
func (k Key) Morton() uint64 {
	return uint64(k) >> controlBits
}

// Coord returns the minimum corner of the region the key covers.
func (k Key) Coord() Coord {
	x, y, z := morton.Decode(k.Morton())
	return Coord{x, y, z}
}

// CellSize is the edge length of the region the key covers.
func (k Key) CellSize() int {
	return 1 << k.Level()
}

// Prefix returns the code shared by every cell of the depth-sized region
// containing the key.
func (k Key) Prefix(depth uint) uint64 {
	return uint64(k) >> (controlBits + 3*depth)
}

// Covers reports whether c lies inside the region the key represents.
func (k Key) Covers(c Coord) bool {
	return k.Prefix(uint(k.Level())) == MakeKey(c, 0).Prefix(uint(k.Level()))
}

func (k Key) String() string {
	return fmt.Sprintf("%v@%d", k.Coord(), k.Level())
}

// regionRange returns the inclusive range of Morton codes in the
// depth-sized region containing code.
func regionRange(code uint64, depth uint) (lo, hi uint64) {
	span := uint64(1)<<(3*depth) - 1
	lo = code &^ span
	return lo, lo | span
}
