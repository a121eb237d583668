package octree

import (
	"fmt"
	"sync"

	"github.com/jrhy/svo"
)

// Deferred lets many goroutines queue writes to an Octree without locking
// it. Writes take effect at the next Apply; readers go through View.
type Deferred struct {
	mu    sync.RWMutex
	tree  *Octree
	queue *svo.MutationQueue[Material]
}

// NewDeferred wraps t. t must not be modified directly afterwards.
func NewDeferred(t *Octree) *Deferred {
	return &Deferred{tree: t, queue: svo.NewMutationQueue[Material]()}
}

func (d *Deferred) coord(x, y, z uint32) svo.Coord {
	if x >= d.tree.size || y >= d.tree.size || z >= d.tree.size {
		panic(fmt.Sprintf("coordinate (%d,%d,%d) outside octree of size %d", x, y, z, d.tree.size))
	}
	return svo.Coord{X: uint16(x), Y: uint16(y), Z: uint16(z)}
}

// Insert queues t.Insert(x, y, z, m).
func (d *Deferred) Insert(x, y, z uint32, m Material) {
	d.queue.Insert(d.coord(x, y, z), m)
}

// Remove queues t.Remove(x, y, z).
func (d *Deferred) Remove(x, y, z uint32) {
	d.queue.Remove(d.coord(x, y, z))
}

// Pending returns the number of queued writes.
func (d *Deferred) Pending() int {
	return d.queue.Len()
}

// Apply performs every queued write in order and returns how many there were.
func (d *Deferred) Apply() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.queue.Drain(func(m svo.Mutation[Material]) {
		x, y, z := uint32(m.Pos.X), uint32(m.Pos.Y), uint32(m.Pos.Z)
		switch m.Kind {
		case svo.OpInsert:
			d.tree.Insert(x, y, z, m.Value)
		case svo.OpRemove:
			d.tree.Remove(x, y, z)
		}
	})
}

// View calls f with the tree while holding off Apply. f must not modify it.
func (d *Deferred) View(f func(*Octree)) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	f(d.tree)
}
