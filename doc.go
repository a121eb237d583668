/*
Package svo provides a sparse voxel store: an ordered map from packed
Morton keys to payloads, with a lock-free mutation queue in front of it,
prefix and radius queries over the key space, and compaction of
homogeneous octree regions into single coarse entries.

Keys

A Key packs a 48-bit Morton code of a cell's x, y and z (16 bits each)
above a 4-bit compression level. Because the code interleaves the axes
from the coarsest bit down, every aligned power-of-two cube of cells is
one contiguous range of keys, so "everything near this cell" is a range
scan rather than a geometric search.

Writes

Insert and Remove never touch the map. They append to a MutationQueue,
which any number of goroutines may do at once, and ApplyMutations drains
the queue in FIFO order while holding the store's write lock. Readers see
what has been applied, never what is still queued.

Compaction

CompressFunc walks levels 1 through maxDepth. A region whose entries
cover all of its cells with equal payloads is replaced by one entry
tagged with the region's level. By default Get only finds full-resolution
entries, so values folded into a coarse entry are read with
NeighboursPrefix; Config.Lookup and Config.Regions select the alternative
behaviours for lookups and for mutations that land inside a compacted
region.

Persistence

Serialize and Deserialize convert a store to three index-aligned
sequences of coordinates, levels and payloads. EncodeSnapshot frames
those for transport, and Save/LoadStore write them through a Persist
under a content-addressed name.
*/
package svo
