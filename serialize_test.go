package svo

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type block struct {
	Name  string `json:"name" cbor:"1,keyasint"`
	Solid bool   `json:"solid" cbor:"2,keyasint"`
}

func sampleStore(t *testing.T) *Store[block] {
	t.Helper()
	cells := cube(at(0, 0, 0), 2, block{"dirt", true})
	cells[at(0x0102, 0x0304, 0x0506)] = block{"ore", true}
	cells[at(9, 9, 9)] = block{"air", false}
	s := storeWith(t, nil, cells)
	Compress(s, 1)
	require.Equal(t, 3, s.Len())
	return s
}

func requireSameQueries[T any](t *testing.T, want, got *Store[T], probes []Coord) {
	t.Helper()
	require.Equal(t, want.Entries(), got.Entries())
	for _, pos := range probes {
		wv, wok := want.Get(pos)
		gv, gok := got.Get(pos)
		require.Equal(t, wok, gok, "%v", pos)
		require.Equal(t, wv, gv, "%v", pos)
		for depth := uint(0); depth <= 4; depth++ {
			require.Equal(t, want.NeighboursPrefix(pos, depth), got.NeighboursPrefix(pos, depth), "%v depth %d", pos, depth)
		}
	}
}

var probes = []Coord{at(0, 0, 0), at(1, 1, 0), at(9, 9, 9), at(0x0102, 0x0304, 0x0506), at(3, 3, 3)}

func TestSerializeRoundTrip(t *testing.T) {
	t.Parallel()
	s := sampleStore(t)
	ser, err := Serialize[block](s, JSONCodec[block]{})
	require.NoError(t, err)
	require.Equal(t, 3, ser.Len())
	require.Equal(t, []uint8{1, 0, 0}, ser.Levels)
	require.Equal(t, [3][2]byte{{0, 0}, {0, 0}, {0, 0}}, ser.Coords[0])
	require.Equal(t, [3][2]byte{{0x01, 0x02}, {0x03, 0x04}, {0x05, 0x06}}, ser.Coords[2])
	require.JSONEq(t, `{"name":"dirt","solid":true}`, string(ser.Payloads[0]))

	got, err := Deserialize[block](ser, JSONCodec[block]{}, nil)
	require.NoError(t, err)
	requireSameQueries(t, s, got, probes)
}

func TestSerializeSkipsPending(t *testing.T) {
	t.Parallel()
	s := NewInMemory[int]()
	s.Insert(at(1, 1, 1), 1)
	ser, err := Serialize[int](s, JSONCodec[int]{})
	require.NoError(t, err)
	require.Equal(t, 0, ser.Len())
	require.Equal(t, 1, s.Pending())
}

func TestDeserializeRejectsWholeBatch(t *testing.T) {
	t.Parallel()
	s := sampleStore(t)
	ser, err := Serialize[block](s, JSONCodec[block]{})
	require.NoError(t, err)
	ser.Payloads[2] = []byte("{not json")
	got, err := Deserialize[block](ser, JSONCodec[block]{}, nil)
	require.Error(t, err)
	require.Nil(t, got)
}

func TestDeserializeMalformed(t *testing.T) {
	t.Parallel()
	valid := func() *Serialized {
		return &Serialized{
			Coords:   [][3][2]byte{{{0, 0}, {0, 0}, {0, 4}}},
			Levels:   []uint8{2},
			Payloads: [][]byte{[]byte("1")},
		}
	}
	_, err := Deserialize[int](valid(), JSONCodec[int]{}, nil)
	require.NoError(t, err)

	for name, mutate := range map[string]func(*Serialized){
		"short levels":   func(s *Serialized) { s.Levels = nil },
		"short payloads": func(s *Serialized) { s.Payloads = append(s.Payloads, nil) },
		"level too big":  func(s *Serialized) { s.Levels[0] = MaxLevel + 1 },
		"unaligned":      func(s *Serialized) { s.Coords[0][0] = [2]byte{0, 1} },
	} {
		ser := valid()
		mutate(ser)
		_, err := Deserialize[int](ser, JSONCodec[int]{}, nil)
		require.ErrorIs(t, err, ErrMalformed, name)
	}
}

func TestCBORCodec(t *testing.T) {
	t.Parallel()
	s := sampleStore(t)
	ser, err := Serialize[block](s, CBORCodec[block]{})
	require.NoError(t, err)
	got, err := Deserialize[block](ser, CBORCodec[block]{}, nil)
	require.NoError(t, err)
	requireSameQueries(t, s, got, probes)
}

func TestProtoCodec(t *testing.T) {
	t.Parallel()
	s := NewInMemory[*wrapperspb.StringValue]()
	s.Insert(at(1, 2, 3), wrapperspb.String("glass"))
	s.Insert(at(3, 2, 1), wrapperspb.String("sand"))
	s.ApplyMutations()
	codec := ProtoCodec[*wrapperspb.StringValue]{New: func() *wrapperspb.StringValue { return &wrapperspb.StringValue{} }}

	ser, err := Serialize[*wrapperspb.StringValue](s, codec)
	require.NoError(t, err)
	got, err := Deserialize[*wrapperspb.StringValue](ser, codec, nil)
	require.NoError(t, err)
	for _, pos := range []Coord{at(1, 2, 3), at(3, 2, 1)} {
		want, _ := s.Get(pos)
		v, ok := got.Get(pos)
		require.True(t, ok)
		require.True(t, proto.Equal(want, v), "%v: %v != %v", pos, want, v)
	}

	_, err = ProtoCodec[*wrapperspb.StringValue]{}.DecodePayload(ser.Payloads[0])
	require.Error(t, err)
}

func TestSnapshotRoundTrip(t *testing.T) {
	t.Parallel()
	s := sampleStore(t)
	ser, err := Serialize[block](s, JSONCodec[block]{})
	require.NoError(t, err)
	for _, comp := range []Compression{CompressionNone, CompressionZstd} {
		b, err := EncodeSnapshot(ser, comp)
		require.NoError(t, err)
		require.Equal(t, "SVOS", string(b[:4]))
		require.Equal(t, byte(comp), b[5])
		decoded, err := DecodeSnapshot(b)
		require.NoError(t, err)
		require.Equal(t, ser.Coords, decoded.Coords)
		require.Equal(t, ser.Levels, decoded.Levels)
		require.Equal(t, ser.Payloads, decoded.Payloads)
	}
}

func TestSnapshotEmpty(t *testing.T) {
	t.Parallel()
	b, err := EncodeSnapshot(&Serialized{}, CompressionNone)
	require.NoError(t, err)
	decoded, err := DecodeSnapshot(b)
	require.NoError(t, err)
	require.Equal(t, 0, decoded.Len())
}

func TestSnapshotCorruption(t *testing.T) {
	t.Parallel()
	s := sampleStore(t)
	ser, err := Serialize[block](s, JSONCodec[block]{})
	require.NoError(t, err)
	b, err := EncodeSnapshot(ser, CompressionNone)
	require.NoError(t, err)

	flipped := append([]byte(nil), b...)
	flipped[len(flipped)/2] ^= 0x40
	_, err = DecodeSnapshot(flipped)
	require.ErrorIs(t, err, ErrChecksum)

	_, err = DecodeSnapshot(b[:5])
	require.ErrorIs(t, err, ErrMalformed)

	bad := append([]byte("XVOS"), b[4:]...)
	_, err = DecodeSnapshot(bad)
	require.ErrorIs(t, err, ErrMalformed)

	reframed := append([]byte(nil), b[:len(b)-checksumSize]...)
	reframed[5] = 9
	reframed = binary.LittleEndian.AppendUint64(reframed, xxhash.Sum64(reframed))
	_, err = DecodeSnapshot(reframed)
	require.ErrorIs(t, err, ErrUnknownCompression)

	reframed = append([]byte(nil), b[:len(b)-checksumSize-1]...)
	reframed = binary.LittleEndian.AppendUint64(reframed, xxhash.Sum64(reframed))
	_, err = DecodeSnapshot(reframed)
	require.True(t, errors.Is(err, ErrMalformed), "truncated body: %v", err)

	_, err = EncodeSnapshot(ser, Compression(7))
	require.ErrorIs(t, err, ErrUnknownCompression)
}
