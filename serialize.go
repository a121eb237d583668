package svo

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/jrhy/svo/morton"
)

// ErrMalformed reports serialized input that does not describe a store.
var ErrMalformed = errors.New("malformed serialized store")

// Serialized is the flat form of a store: three index-aligned sequences,
// one element per entry in ascending key order. Coords holds big-endian
// x, y and z byte pairs of each entry's minimum corner, Levels its
// compression level and Payloads its encoded value.
type Serialized struct {
	Coords   [][3][2]byte
	Levels   []uint8
	Payloads [][]byte
}

// Len returns the number of entries.
func (s *Serialized) Len() int {
	return len(s.Levels)
}

// Serialize encodes every applied entry of s. Queued mutations are not
// included.
func Serialize[T any](s *Store[T], codec PayloadCodec[T]) (*Serialized, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := s.data.Len()
	out := &Serialized{
		Coords:   make([][3][2]byte, 0, n),
		Levels:   make([]uint8, 0, n),
		Payloads: make([][]byte, 0, n),
	}
	var err error
	s.data.Ascend(func(e Entry[T]) bool {
		var payload []byte
		payload, err = codec.EncodePayload(e.Value)
		if err != nil {
			err = fmt.Errorf("encode payload %v: %w", e.Key, err)
			return false
		}
		c := e.Key.Coord()
		var coords [3][2]byte
		binary.BigEndian.PutUint16(coords[0][:], c.X)
		binary.BigEndian.PutUint16(coords[1][:], c.Y)
		binary.BigEndian.PutUint16(coords[2][:], c.Z)
		out.Coords = append(out.Coords, coords)
		out.Levels = append(out.Levels, e.Key.Level())
		out.Payloads = append(out.Payloads, payload)
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Deserialize rebuilds a store from ser. Every payload is decoded before
// the store is built, so a single bad payload rejects the whole batch.
func Deserialize[T any](ser *Serialized, codec PayloadCodec[T], cfg *Config) (*Store[T], error) {
	entries, err := decodeEntries(ser, codec)
	if err != nil {
		return nil, err
	}
	s := newStore[T](cfg)
	for _, e := range entries {
		s.data.ReplaceOrInsert(e)
	}
	s.metrics.entries.Set(float64(s.data.Len()))
	return s, nil
}

func decodeEntries[T any](ser *Serialized, codec PayloadCodec[T]) ([]Entry[T], error) {
	if len(ser.Coords) != len(ser.Levels) || len(ser.Payloads) != len(ser.Levels) {
		return nil, fmt.Errorf("%w: %d coords, %d levels, %d payloads",
			ErrMalformed, len(ser.Coords), len(ser.Levels), len(ser.Payloads))
	}
	entries := make([]Entry[T], len(ser.Levels))
	for i, level := range ser.Levels {
		if level > MaxLevel {
			return nil, fmt.Errorf("%w: entry %d has level %d", ErrMalformed, i, level)
		}
		c := ser.Coords[i]
		code := morton.Encode(
			binary.BigEndian.Uint16(c[0][:]),
			binary.BigEndian.Uint16(c[1][:]),
			binary.BigEndian.Uint16(c[2][:]))
		if code&(uint64(1)<<(3*uint(level))-1) != 0 {
			return nil, fmt.Errorf("%w: entry %d is not aligned to level %d", ErrMalformed, i, level)
		}
		value, err := codec.DecodePayload(ser.Payloads[i])
		if err != nil {
			return nil, fmt.Errorf("decode payload %d: %w", i, err)
		}
		entries[i] = Entry[T]{Key: keyFromMorton(code, level), Value: value}
	}
	return entries, nil
}
