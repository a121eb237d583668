// Package octree is a pointer octree whose nodes live in one growable
// arena and refer to their children by index, with a front-to-back
// ray traversal.
package octree

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/jrhy/svo/morton"
)

// Material tags a node's contents.
type Material uint32

const (
	// Empty marks a cleared cell. Leaves carrying it are pruned on Remove
	// and ignored by Raycast.
	Empty Material = 0
	// Unassigned is the root's material until something is written.
	Unassigned Material = math.MaxUint32
)

// NodeIndex addresses a node in the arena. Index 0 is always the root,
// which is never anyone's child, so 0 also means "no child".
type NodeIndex uint32

const rootIndex NodeIndex = 0

// Node is an arena slot.
type Node struct {
	Children [8]NodeIndex
	Material Material
}

// IsLeaf reports whether the node has no children.
func (n Node) IsLeaf() bool {
	for _, c := range n.Children {
		if c != rootIndex {
			return false
		}
	}
	return true
}

// Octree covers a cube of Size cells per axis, anchored at its minimum corner. It has a
// single writer; see Deferred for concurrent producers.
type Octree struct {
	nodes  []Node
	size   uint32
	depth  uint
	corner Vec3
}

// New returns an empty tree of the given edge length anchored at the
// origin. size must be a power of two no larger than 65536.
func New(size uint32) *Octree {
	return NewAt(size, Vec3{})
}

// NewAt is New with the cube's minimum corner at corner.
func NewAt(size uint32, corner Vec3) *Octree {
	if size == 0 || size&(size-1) != 0 || size > 1<<morton.Bits {
		panic(fmt.Sprintf("octree size %d is not a power of two in [1, %d]", size, 1<<morton.Bits))
	}
	return &Octree{
		nodes:  []Node{{Material: Unassigned}},
		size:   size,
		depth:  uint(bits.TrailingZeros32(size)),
		corner: corner,
	}
}

// Size returns the edge length in cells.
func (t *Octree) Size() uint32 { return t.size }

// Depth returns log2(Size), the number of levels below the root.
func (t *Octree) Depth() uint { return t.depth }

// Len returns the number of arena slots ever allocated. Removal abandons
// slots rather than reclaiming them, so Len never decreases.
func (t *Octree) Len() int { return len(t.nodes) }

// Node returns a copy of the node at idx.
func (t *Octree) Node(idx NodeIndex) Node { return t.nodes[idx] }

// Root returns a copy of the root node.
func (t *Octree) Root() Node { return t.nodes[rootIndex] }

func (t *Octree) code(x, y, z uint32) uint64 {
	if x >= t.size || y >= t.size || z >= t.size {
		panic(fmt.Sprintf("coordinate (%d,%d,%d) outside octree of size %d", x, y, z, t.size))
	}
	return morton.Encode(uint16(x), uint16(y), uint16(z))
}

// Insert sets the material of the cell at (x, y, z), allocating the path
// to it as needed.
func (t *Octree) Insert(x, y, z uint32, m Material) {
	code := t.code(x, y, z)
	idx := rootIndex
	for level := int(t.depth) - 1; level >= 0; level-- {
		slot := morton.Octant(code, uint(level))
		child := t.nodes[idx].Children[slot]
		if child == rootIndex {
			child = NodeIndex(len(t.nodes))
			t.nodes = append(t.nodes, Node{})
			t.nodes[idx].Children[slot] = child
		}
		idx = child
	}
	t.nodes[idx].Material = m
}

type pathStep struct {
	parent NodeIndex
	slot   uint8
}

// Remove clears the cell at (x, y, z) and unlinks every ancestor left
// childless and Empty, stopping at the first one that is not.
func (t *Octree) Remove(x, y, z uint32) {
	code := t.code(x, y, z)
	path := make([]pathStep, 0, t.depth)
	idx := rootIndex
	for level := int(t.depth) - 1; level >= 0; level-- {
		slot := morton.Octant(code, uint(level))
		child := t.nodes[idx].Children[slot]
		if child == rootIndex {
			return
		}
		path = append(path, pathStep{idx, slot})
		idx = child
	}
	t.nodes[idx].Material = Empty
	for i := len(path) - 1; i >= 0; i-- {
		n := &t.nodes[idx]
		if !n.IsLeaf() || n.Material != Empty {
			break
		}
		step := path[i]
		t.nodes[step.parent].Children[step.slot] = rootIndex
		idx = step.parent
	}
}

// Get returns the node holding the cell at (x, y, z), or false as soon as
// the path to it is missing.
func (t *Octree) Get(x, y, z uint32) (Node, bool) {
	code := t.code(x, y, z)
	idx := rootIndex
	for level := int(t.depth) - 1; level >= 0; level-- {
		child := t.nodes[idx].Children[morton.Octant(code, uint(level))]
		if child == rootIndex {
			return Node{}, false
		}
		idx = child
	}
	return t.nodes[idx], true
}
