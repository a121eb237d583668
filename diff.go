package svo

import "fmt"

// DiffIter invokes f for every entry that differs between s and old, in
// ascending key order. The iteration stops if f returns keepGoing==false
// or an error. Invocation with added==removed==true signifies an entry
// whose value changed. Both stores are read under their read locks, so f
// must not mutate either of them.
func (s *Store[T]) DiffIter(
	old *Store[T],
	equal func(a, b T) bool,
	f func(added, removed bool, key Key, addedValue, removedValue T) (bool, error),
) error {
	newEntries := s.Entries()
	var oldEntries []Entry[T]
	if old != nil {
		oldEntries = old.Entries()
	}
	var zero T
	i, j := 0, 0
	for i < len(newEntries) || j < len(oldEntries) {
		var keepGoing bool
		var err error
		switch {
		case j == len(oldEntries) || i < len(newEntries) && newEntries[i].Key < oldEntries[j].Key:
			keepGoing, err = f(true, false, newEntries[i].Key, newEntries[i].Value, zero)
			i++
		case i == len(newEntries) || oldEntries[j].Key < newEntries[i].Key:
			keepGoing, err = f(false, true, oldEntries[j].Key, zero, oldEntries[j].Value)
			j++
		default:
			keepGoing = true
			if !equal(newEntries[i].Value, oldEntries[j].Value) {
				keepGoing, err = f(true, true, newEntries[i].Key, newEntries[i].Value, oldEntries[j].Value)
			}
			i++
			j++
		}
		if err != nil {
			return fmt.Errorf("callback: %w", err)
		}
		if !keepGoing {
			return nil
		}
	}
	return nil
}
