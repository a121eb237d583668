package svo

import (
	"fmt"

	"go.uber.org/zap"
)

// CompactionStats summarizes a compaction run.
type CompactionStats struct {
	// Regions is the number of regions collapsed into one entry.
	Regions int
	// Removed is the number of finer entries those regions replaced.
	Removed int
	// Applied is the number of queued mutations drained along the way.
	Applied int
}

// Compress collapses homogeneous regions of a store whose payloads are
// comparable with ==. See CompressFunc.
func Compress[T comparable](s *Store[T], maxDepth int) CompactionStats {
	return s.CompressFunc(maxDepth, func(a, b T) bool { return a == b })
}

// CompressFunc collapses every fully-populated region whose payloads are
// all equal into a single entry tagged with the region's level, for levels
// 1 through maxDepth in turn. A region at level L is fully populated when
// the union of its entries covers all 2^(3L) cells; a full-resolution
// entry overlaying a compacted one is counted once. The mutation queue is
// drained before and after every level, so nothing queued concurrently is
// lost. Running it again without intervening mutations changes nothing.
func (s *Store[T]) CompressFunc(maxDepth int, equal func(a, b T) bool) CompactionStats {
	if maxDepth > MaxLevel {
		panic(fmt.Sprintf("compaction depth %d exceeds %d", maxDepth, MaxLevel))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var stats CompactionStats
	for level := uint8(1); int(level) <= maxDepth; level++ {
		stats.Applied += s.applyLocked()
		regions, removed := s.compactLevel(level, equal)
		stats.Regions += regions
		stats.Removed += removed
		stats.Applied += s.applyLocked()
		s.logger.Debug("compaction pass",
			zap.Uint8("level", level),
			zap.Int("regions", regions),
			zap.Int("removed", removed))
	}
	s.metrics.entries.Set(float64(s.data.Len()))
	return stats
}

type region[T any] struct {
	prefix  uint64
	keys    []Key
	covered uint64
	end     uint64
	value   T
	uniform bool
}

// cover adds the cells of k not already covered by earlier entries of the
// region. Keys arrive in ascending order, so spans arrive sorted by their
// first code, and a finer entry sharing a coarser one's corner comes first.
func (r *region[T]) cover(k Key) {
	start := k.Morton()
	stop := start + uint64(1)<<(3*uint(k.Level()))
	if stop <= r.end {
		return
	}
	r.covered += stop - max(start, r.end)
	r.end = stop
}

// compactLevel makes one pass over the map at the given level. Entries of
// one region are contiguous in key order, so a single ordered scan groups
// them; the map is mutated only after the scan.
func (s *Store[T]) compactLevel(level uint8, equal func(a, b T) bool) (regions, removed int) {
	full := uint64(1) << (3 * uint(level))
	var candidates []region[T]
	var cur *region[T]
	flush := func() {
		if cur != nil && cur.uniform && cur.covered == full && len(cur.keys) > 1 {
			candidates = append(candidates, *cur)
		}
		cur = nil
	}
	s.data.Ascend(func(e Entry[T]) bool {
		prefix := e.Key.Prefix(uint(level))
		if cur == nil || cur.prefix != prefix {
			flush()
			cur = &region[T]{prefix: prefix, value: e.Value, uniform: true}
		}
		cur.keys = append(cur.keys, e.Key)
		cur.cover(e.Key)
		if cur.uniform && !equal(cur.value, e.Value) {
			cur.uniform = false
		}
		return true
	})
	flush()

	for _, r := range candidates {
		for _, k := range r.keys {
			s.data.Delete(Entry[T]{Key: k})
		}
		code := r.prefix << (3 * uint(level))
		s.data.ReplaceOrInsert(Entry[T]{Key: keyFromMorton(code, level), Value: r.value})
		removed += len(r.keys)
	}
	s.metrics.compacted.Add(float64(len(candidates)))
	return len(candidates), removed
}
