package svo

import (
	"fmt"
	"slices"

	"github.com/jrhy/svo/morton"
)

// Neighbour is one result of NeighboursCross.
type Neighbour[T any] struct {
	Pos   Coord
	Value T
	// Found is false when the cell is absent or lies outside the grid.
	Found bool
}

var crossOffsets = [6][3]int{
	{-1, 0, 0}, {1, 0, 0},
	{0, -1, 0}, {0, 1, 0},
	{0, 0, -1}, {0, 0, 1},
}

// NeighboursCross looks up the six axis-aligned unit neighbours of c, in
// the order -x, +x, -y, +y, -z, +z, with the same semantics as Get.
func (s *Store[T]) NeighboursCross(c Coord) [6]Neighbour[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out [6]Neighbour[T]
	for i, d := range crossOffsets {
		pos, ok := CoordOf(int(c.X)+d[0], int(c.Y)+d[1], int(c.Z)+d[2])
		if !ok {
			continue
		}
		out[i].Pos = pos
		if e, ok := s.resolve(pos); ok {
			out[i].Value = e.Value
			out[i].Found = true
		}
	}
	return out
}

// NeighboursPrefix returns, in ascending key order, every entry inside the
// aligned cube of edge 2^depth containing c, plus any compacted entry
// enclosing that cube. It is the way to read values that compaction has
// folded into coarser entries. depth must not exceed 16.
func (s *Store[T]) NeighboursPrefix(c Coord, depth uint) []Entry[T] {
	if depth > maxDepth {
		panic(fmt.Sprintf("prefix depth %d exceeds %d", depth, maxDepth))
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefixLocked(c.Morton(), depth, nil)
}

func (s *Store[T]) prefixLocked(code uint64, depth uint, out []Entry[T]) []Entry[T] {
	lo, hi := regionRange(code, depth)
	// Enclosing entries whose key sorts before lo would be missed by the scan.
	for level := uint(MaxLevel); level > depth; level-- {
		alo, _ := regionRange(code, level)
		if alo == lo {
			continue
		}
		if e, ok := s.data.Get(Entry[T]{Key: keyFromMorton(code, uint8(level))}); ok {
			out = append(out, e)
		}
	}
	s.ascendRegion(lo, hi, func(e Entry[T]) bool {
		out = append(out, e)
		return true
	})
	return out
}

// NeighboursArea returns every entry within Chebyshev distance radius of
// (x, y, z), sorted by key. A compacted entry qualifies when any cell it
// covers is within range. The store is over-fetched with prefix scans of
// the aligned cubes overlapping the query box and then filtered. An
// out-of-range centre or negative radius yields nothing.
func (s *Store[T]) NeighboursArea(x, y, z, radius int) []Entry[T] {
	center, ok := CoordOf(x, y, z)
	if !ok || radius < 0 {
		return nil
	}
	var lo, hi [3]int
	for axis, v := range [3]int{x, y, z} {
		lo[axis] = max(v-radius, 0)
		hi[axis] = min(v+radius, 0xffff)
	}
	depth := areaDepth(radius)

	s.mu.RLock()
	var fetched []Entry[T]
	for bx := lo[0] >> depth; bx <= hi[0]>>depth; bx++ {
		for by := lo[1] >> depth; by <= hi[1]>>depth; by++ {
			for bz := lo[2] >> depth; bz <= hi[2]>>depth; bz++ {
				code := morton.Encode(uint16(bx<<depth), uint16(by<<depth), uint16(bz<<depth))
				fetched = s.prefixLocked(code, depth, fetched)
			}
		}
	}
	s.mu.RUnlock()

	seen := make(map[Key]struct{}, len(fetched))
	out := fetched[:0]
	for _, e := range fetched {
		if _, dup := seen[e.Key]; dup {
			continue
		}
		seen[e.Key] = struct{}{}
		if chebyshev(center, e.Key) <= radius {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b Entry[T]) int {
		switch {
		case a.Key < b.Key:
			return -1
		case a.Key > b.Key:
			return 1
		}
		return 0
	})
	return out
}

// areaDepth is the smallest depth whose cube edge spans 2*radius+1 cells.
func areaDepth(radius int) uint {
	depth := uint(0)
	for depth < maxDepth && 1<<depth < 2*radius+1 {
		depth++
	}
	return depth
}

// chebyshev is the distance from c to the nearest cell covered by k.
func chebyshev(c Coord, k Key) int {
	corner := k.Coord()
	lows := [3]int{int(corner.X), int(corner.Y), int(corner.Z)}
	size := k.CellSize()
	d := 0
	for axis, v := range [3]int{int(c.X), int(c.Y), int(c.Z)} {
		lo := lows[axis]
		hi := lo + size - 1
		switch {
		case v < lo:
			d = max(d, lo-v)
		case v > hi:
			d = max(d, v-hi)
		}
	}
	return d
}
