package svo

// LookupPolicy decides what Get returns for a cell that was absorbed into
// a compacted region.
type LookupPolicy uint8

const (
	// LookupExact only finds entries stored at full resolution. Values
	// absorbed by compaction are reachable through NeighboursPrefix.
	LookupExact LookupPolicy = iota
	// LookupCovering falls back to the smallest compacted region covering
	// the cell.
	LookupCovering
)

// RegionPolicy decides how a mutation of a single cell affects the
// compacted region containing it.
type RegionPolicy uint8

const (
	// RegionCoarse deletes the whole enclosing region on Remove, and lets
	// Insert place a full-resolution entry alongside it.
	RegionCoarse RegionPolicy = iota
	// RegionSplit breaks the enclosing region into the sub-regions that
	// do not contain the cell before applying the mutation, so every
	// other cell keeps its value and entries never overlap.
	RegionSplit
)

// resolve finds the entry Get reports for c.
func (s *Store[T]) resolve(c Coord) (Entry[T], bool) {
	if e, ok := s.data.Get(Entry[T]{Key: MakeKey(c, 0)}); ok {
		return e, true
	}
	if s.lookup == LookupCovering {
		return s.ancestor(c)
	}
	return Entry[T]{}, false
}

// removeCell applies an OpRemove for c.
func (s *Store[T]) removeCell(c Coord) {
	if _, ok := s.data.Delete(Entry[T]{Key: MakeKey(c, 0)}); ok {
		return
	}
	anc, ok := s.ancestor(c)
	if !ok {
		return
	}
	switch s.regions {
	case RegionSplit:
		s.splitAround(anc, c)
	default:
		s.data.Delete(anc)
	}
}

// insertCell applies an OpInsert for c.
func (s *Store[T]) insertCell(c Coord, value T) {
	key := MakeKey(c, 0)
	if s.regions == RegionSplit && !s.data.Has(Entry[T]{Key: key}) {
		if anc, ok := s.ancestor(c); ok {
			s.splitAround(anc, c)
		}
	}
	s.data.ReplaceOrInsert(Entry[T]{Key: key, Value: value})
}
