package octree

import (
	"math"
	"slices"
)

// Vec3 is a point or direction in the tree's space.
type Vec3 struct {
	X, Y, Z float32
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vec3) Scale(s float32) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

func (v Vec3) axis(i int) float32 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	}
	return v.Z
}

// slab intersects the ray with the cube [corner, corner+size] and returns the
// parametric distance at which the ray enters it, clamped to 0 when the
// origin is inside.
func slab(origin, dir, corner Vec3, size float32) (float32, bool) {
	tmin := float32(math.Inf(-1))
	tmax := float32(math.Inf(1))
	for i := 0; i < 3; i++ {
		o, d := origin.axis(i), dir.axis(i)
		lo, hi := corner.axis(i), corner.axis(i)+size
		if d == 0 {
			if o < lo || o > hi {
				return 0, false
			}
			continue
		}
		t1, t2 := (lo-o)/d, (hi-o)/d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = max(tmin, t1)
		tmax = min(tmax, t2)
	}
	if tmax < 0 || tmin > tmax {
		return 0, false
	}
	return max(tmin, 0), true
}

// Visit describes a node popped during Traverse.
type Visit struct {
	Index    NodeIndex
	Node     Node
	Min      Vec3
	Size     float32
	Distance float32
}

// Traverse walks the nodes the ray passes through, nearest first, calling
// fn for each one popped. A node's children are only expanded when fn
// returns true for it. Siblings are pushed farthest first so the nearest
// is popped next, which makes the pop order front to back along the ray.
func (t *Octree) Traverse(origin, dir Vec3, fn func(Visit) bool) {
	rootSize := float32(t.size)
	dist, hit := slab(origin, dir, t.corner, rootSize)
	if !hit {
		return
	}
	stack := []Visit{{Index: rootIndex, Min: t.corner, Size: rootSize, Distance: dist}}
	var candidates []Visit
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		v.Node = t.nodes[v.Index]
		if !fn(v) || v.Node.IsLeaf() {
			continue
		}
		half := v.Size / 2
		candidates = candidates[:0]
		for octant, child := range v.Node.Children {
			if child == rootIndex {
				continue
			}
			childMin := v.Min
			if octant&1 != 0 {
				childMin.X += half
			}
			if octant&2 != 0 {
				childMin.Y += half
			}
			if octant&4 != 0 {
				childMin.Z += half
			}
			d, ok := slab(origin, dir, childMin, half)
			if !ok {
				continue
			}
			candidates = append(candidates, Visit{Index: child, Min: childMin, Size: half, Distance: d})
		}
		slices.SortFunc(candidates, func(a, b Visit) int {
			switch {
			case a.Distance > b.Distance:
				return -1
			case a.Distance < b.Distance:
				return 1
			}
			return 0
		})
		stack = append(stack, candidates...)
	}
}

// Hit is the result of a successful Raycast.
type Hit struct {
	Index    NodeIndex
	Material Material
	Point    Vec3
	Distance float32
}

// Raycast returns the nearest leaf along the ray that holds a material.
// Leaves carrying Empty or Unassigned are passed through.
func (t *Octree) Raycast(origin, dir Vec3) (Hit, bool) {
	var hit Hit
	found := false
	t.Traverse(origin, dir, func(v Visit) bool {
		if found {
			return false
		}
		if !v.Node.IsLeaf() {
			return true
		}
		if v.Node.Material == Empty || v.Node.Material == Unassigned {
			return false
		}
		hit = Hit{
			Index:    v.Index,
			Material: v.Node.Material,
			Point:    origin.Add(dir.Scale(v.Distance)),
			Distance: v.Distance,
		}
		found = true
		return false
	})
	return hit, found
}
