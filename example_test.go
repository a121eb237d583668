package svo

import (
	"context"
	"fmt"
)

func ExampleStore_DiffIter() {
	v1 := NewInMemory[string]()
	v1.Insert(Coord{0, 0, 0}, "foo")
	v1.Insert(Coord{1, 0, 0}, "asdf")
	v1.ApplyMutations()
	v2 := NewInMemory[string]()
	v2.Insert(Coord{0, 0, 0}, "bar")
	v2.Insert(Coord{2, 0, 0}, "qwerty")
	v2.ApplyMutations()
	v2.DiffIter(v1, func(a, b string) bool { return a == b },
		func(added, removed bool, key Key, addedValue, removedValue string) (bool, error) {
			if added && removed {
				fmt.Printf("changed %v   from '%v' to '%v'\n", key, removedValue, addedValue)
			} else if removed {
				fmt.Printf("removed %v value '%v'\n", key, removedValue)
			} else if added {
				fmt.Printf("added   %v value '%v'\n", key, addedValue)
			}
			return true, nil
		})
	// Output:
	// changed (0,0,0)@0   from 'foo' to 'bar'
	// removed (1,0,0)@0 value 'asdf'
	// added   (2,0,0)@0 value 'qwerty'
}

func ExampleCompress() {
	s := NewInMemory[string]()
	for x := uint16(0); x < 2; x++ {
		for y := uint16(0); y < 2; y++ {
			for z := uint16(0); z < 2; z++ {
				s.Insert(Coord{x, y, z}, "stone")
			}
		}
	}
	s.ApplyMutations()
	fmt.Println(s.Len())
	stats := Compress(s, 2)
	fmt.Println(stats.Regions, s.Len())
	_, ok := s.Get(Coord{1, 1, 1})
	fmt.Println(ok)
	for _, e := range s.NeighboursPrefix(Coord{1, 1, 1}, 0) {
		fmt.Println(e.Key, e.Value)
	}
	// Output:
	// 8
	// 1 1
	// false
	// (0,0,0)@1 stone
}

func ExampleStore_NeighboursArea() {
	s := NewInMemory[string]()
	s.Insert(Coord{0, 0, 0}, "a")
	s.Insert(Coord{1, 1, 1}, "b")
	s.Insert(Coord{5, 5, 5}, "c")
	s.ApplyMutations()
	for _, e := range s.NeighboursArea(0, 1, 1, 1) {
		fmt.Println(e.Key.Coord(), e.Value)
	}
	// Output:
	// (0,0,0) a
	// (1,1,1) b
}

func ExampleSave() {
	ctx := context.Background()
	rc := &RemoteConfig[int]{StoreImmutablePartsWith: NewInMemoryStore()}
	s := NewInMemory[int]()
	s.Insert(Coord{3, 4, 5}, 42)
	s.ApplyMutations()
	root, err := Save(ctx, s, rc)
	if err != nil {
		panic(err)
	}
	loaded, err := LoadStore(ctx, root, rc)
	if err != nil {
		panic(err)
	}
	fmt.Println(loaded.Get(Coord{3, 4, 5}))
	// Output:
	// 42 true
}
