package svo

// New returns an empty store configured by cfg, which may be nil.
func New[T any](cfg *Config) *Store[T] {
	return newStore[T](cfg)
}

// NewInMemory returns an empty store with the default policies.
func NewInMemory[T any]() *Store[T] {
	return newStore[T](nil)
}

// Insert queues an overwrite-or-create of the cell at pos. It never blocks
// and is safe to call from any number of goroutines; the change becomes
// visible after the next ApplyMutations or compaction.
func (s *Store[T]) Insert(pos Coord, value T) {
	s.queue.Insert(pos, value)
	s.metrics.enqueued.WithLabelValues(OpInsert.String()).Inc()
}

// Remove queues a removal of the cell at pos. See Insert.
func (s *Store[T]) Remove(pos Coord) {
	s.queue.Remove(pos)
	s.metrics.enqueued.WithLabelValues(OpRemove.String()).Inc()
}

// ApplyMutations drains the queue first-in-first-out into the map and
// returns the number of mutations applied.
func (s *Store[T]) ApplyMutations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyLocked()
}

// Get returns the value stored for pos. Under LookupExact, the default,
// only full-resolution entries are found: a value absorbed into a
// compacted region is reported absent and must be read with
// NeighboursPrefix.
func (s *Store[T]) Get(pos Coord) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.resolve(pos)
	return e.Value, ok
}

// Len returns the number of stored entries, compacted or not.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Len()
}

// Pending returns the number of queued mutations not yet applied.
func (s *Store[T]) Pending() int {
	return s.queue.Len()
}

// Iter calls f for every entry in ascending key order until f returns false.
// f must not call methods that mutate the store.
func (s *Store[T]) Iter(f func(Entry[T]) bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.data.Ascend(f)
}

// Entries returns every stored entry in ascending key order.
func (s *Store[T]) Entries() []Entry[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry[T], 0, s.data.Len())
	s.data.Ascend(func(e Entry[T]) bool {
		out = append(out, e)
		return true
	})
	return out
}
