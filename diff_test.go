package svo

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type change struct {
	added, removed bool
	key            Key
	now, was       string
}

func collectDiff(t *testing.T, s, old *Store[string]) []change {
	var out []change
	err := s.DiffIter(old, func(a, b string) bool { return a == b },
		func(added, removed bool, key Key, addedValue, removedValue string) (bool, error) {
			out = append(out, change{added, removed, key, addedValue, removedValue})
			return true, nil
		})
	require.NoError(t, err)
	return out
}

func TestDiffIter(t *testing.T) {
	t.Parallel()
	v1 := storeWith(t, nil, map[Coord]string{at(0, 0, 0): "foo", at(1, 0, 0): "asdf", at(4, 4, 4): "same"})
	v2 := storeWith(t, nil, map[Coord]string{at(0, 0, 0): "bar", at(2, 0, 0): "qwerty", at(4, 4, 4): "same"})

	require.Equal(t, []change{
		{true, true, MakeKey(at(0, 0, 0), 0), "bar", "foo"},
		{false, true, MakeKey(at(1, 0, 0), 0), "", "asdf"},
		{true, false, MakeKey(at(2, 0, 0), 0), "qwerty", ""},
	}, collectDiff(t, v2, v1))
	require.Empty(t, collectDiff(t, v1, v1))
	require.Len(t, collectDiff(t, v1, nil), 3)
}

func TestDiffIterSeesCompaction(t *testing.T) {
	t.Parallel()
	before := storeWith(t, nil, cube(at(0, 0, 0), 2, "x"))
	after := storeWith(t, nil, cube(at(0, 0, 0), 2, "x"))
	Compress(after, 1)
	changes := collectDiff(t, after, before)
	require.Len(t, changes, 9)
	require.Equal(t, change{false, true, MakeKey(at(0, 0, 0), 0), "", "x"}, changes[0])
	require.Equal(t, change{true, false, MakeKey(at(0, 0, 0), 1), "x", ""}, changes[1])
}

func TestDiffIterStops(t *testing.T) {
	t.Parallel()
	s := storeWith(t, nil, map[Coord]string{at(0, 0, 0): "a", at(1, 0, 0): "b"})
	calls := 0
	err := s.DiffIter(nil, func(a, b string) bool { return a == b },
		func(bool, bool, Key, string, string) (bool, error) {
			calls++
			return false, nil
		})
	require.NoError(t, err)
	require.Equal(t, 1, calls)

	boom := errors.New("boom")
	err = s.DiffIter(nil, func(a, b string) bool { return a == b },
		func(bool, bool, Key, string, string) (bool, error) {
			return true, boom
		})
	require.ErrorIs(t, err, boom)
}
