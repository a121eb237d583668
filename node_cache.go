package svo

import lru "github.com/hashicorp/golang-lru"

// SnapshotCache caches decoded snapshots by name. It is also used to
// avoid re-storing snapshots, so care should be taken to switch caches
// when the Persist is changed.
type SnapshotCache interface {
	// Add adds a freshly-persisted or freshly-loaded snapshot to the cache.
	Add(key, value interface{})
	// Contains indicates the snapshot with the given name has already been persisted.
	Contains(key interface{}) bool
	// Get retrieves the already-decoded snapshot with the given name, if cached.
	Get(key interface{}) (value interface{}, ok bool)
}

// NewSnapshotCache creates a new ARC cache holding up to size snapshots.
// One cache can be shared by any number of stores.
func NewSnapshotCache(size int) SnapshotCache {
	cache, err := lru.NewARC(size)
	if err != nil {
		panic(err)
	}
	return cache
}
