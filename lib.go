package svo

import (
	"sync"

	"github.com/google/btree"
	"go.uber.org/zap"
)

// DefaultDegree is the B-tree degree used for the ordered map.
const DefaultDegree = 32

// Entry is a stored key and its payload.
type Entry[T any] struct {
	Key   Key
	Value T
}

func lessEntry[T any](a, b Entry[T]) bool {
	return a.Key < b.Key
}

// Store is a sparse voxel map ordered by Key. Insert and Remove only queue
// work; ApplyMutations and compaction are the only writers of the map and
// serialize against each other and against readers.
type Store[T any] struct {
	mu      sync.RWMutex
	data    *btree.BTreeG[Entry[T]]
	queue   *MutationQueue[T]
	lookup  LookupPolicy
	regions RegionPolicy
	logger  *zap.Logger
	metrics *metrics
}

func newStore[T any](cfg *Config) *Store[T] {
	s := &Store[T]{
		data:    btree.NewG[Entry[T]](DefaultDegree, lessEntry[T]),
		queue:   NewMutationQueue[T](),
		logger:  cfg.logger(),
		metrics: newMetrics(cfg.registerer()),
	}
	if cfg != nil {
		s.lookup = cfg.Lookup
		s.regions = cfg.Regions
	}
	return s
}

// applyLocked drains the queue into the map. Callers hold s.mu for writing.
func (s *Store[T]) applyLocked() int {
	n := s.queue.Drain(func(m Mutation[T]) {
		switch m.Kind {
		case OpInsert:
			s.insertCell(m.Pos, m.Value)
		case OpRemove:
			s.removeCell(m.Pos)
		default:
			panic("unknown mutation kind")
		}
		s.metrics.applied.WithLabelValues(m.Kind.String()).Inc()
	})
	s.metrics.entries.Set(float64(s.data.Len()))
	if n > 0 {
		s.logger.Debug("applied mutations",
			zap.Int("count", n),
			zap.Int("entries", s.data.Len()))
	}
	return n
}

// ancestor returns the smallest compacted entry covering c.
func (s *Store[T]) ancestor(c Coord) (Entry[T], bool) {
	code := c.Morton()
	for level := uint8(1); level <= MaxLevel; level++ {
		if e, ok := s.data.Get(Entry[T]{Key: keyFromMorton(code, level)}); ok {
			return e, true
		}
	}
	return Entry[T]{}, false
}

// splitAround replaces the compacted entry anc with the sub-regions that
// do not contain c, leaving c itself absent. Descends one level at a time,
// emitting the seven siblings of c's octant at each level.
func (s *Store[T]) splitAround(anc Entry[T], c Coord) {
	s.data.Delete(anc)
	code := c.Morton()
	for level := anc.Key.Level(); level > 0; level-- {
		childShift := 3 * uint(level-1)
		parent := code &^ (uint64(1)<<(3*uint(level)) - 1)
		own := (code >> childShift) & 0b111
		for octant := uint64(0); octant < 8; octant++ {
			if octant == own {
				continue
			}
			child := parent | octant<<childShift
			s.data.ReplaceOrInsert(Entry[T]{Key: keyFromMorton(child, level-1), Value: anc.Value})
		}
	}
	s.metrics.split.Inc()
	s.logger.Debug("split compacted region",
		zap.Stringer("region", anc.Key),
		zap.Stringer("cell", c))
}

// ascendRegion calls f for every entry whose code lies in [lo, hi].
func (s *Store[T]) ascendRegion(lo, hi uint64, f func(Entry[T]) bool) {
	from := Entry[T]{Key: Key(lo << controlBits)}
	if hi == uint64(1)<<(3*maxDepth)-1 {
		s.data.AscendGreaterOrEqual(from, f)
		return
	}
	s.data.AscendRange(from, Entry[T]{Key: Key((hi + 1) << controlBits)}, f)
}
