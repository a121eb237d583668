package svo

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"
)

// Compression selects how EncodeSnapshot packs the entry body.
type Compression uint8

const (
	// CompressionNone stores the entry body as is.
	CompressionNone Compression = iota
	// CompressionZstd compresses the entry body with zstd.
	CompressionZstd
)

const (
	snapshotMagic   = "SVOS"
	snapshotVersion = 1
	headerSize      = len(snapshotMagic) + 2
	checksumSize    = 8
	coordBytes      = 6
)

var (
	// ErrChecksum reports a snapshot whose trailing checksum does not match.
	ErrChecksum = errors.New("snapshot checksum mismatch")
	// ErrUnknownCompression reports an unsupported compression byte.
	ErrUnknownCompression = errors.New("unknown snapshot compression")
)

var errShortBuffer = errors.New("short buffer")

// readUvarint consumes a uvarint from the front of buf.
func readUvarint(buf []byte) (uint64, []byte, error) {
	v, n := binary.Uvarint(buf)
	if n <= 0 {
		return 0, nil, errors.New("bad uvarint")
	}
	return v, buf[n:], nil
}

// readBlob consumes a uvarint length and that many bytes. The result
// aliases buf with its capacity clipped.
func readBlob(buf []byte) ([]byte, []byte, error) {
	n, rest, err := readUvarint(buf)
	if err != nil {
		return nil, nil, err
	}
	if n > uint64(len(rest)) {
		return nil, nil, errShortBuffer
	}
	return rest[:n:n], rest[n:], nil
}

// EncodeSnapshot frames ser for storage or transport: magic, version,
// compression byte, the entry body, and an xxhash64 of all preceding bytes.
func EncodeSnapshot(ser *Serialized, comp Compression) ([]byte, error) {
	if len(ser.Coords) != ser.Len() || len(ser.Payloads) != ser.Len() {
		return nil, fmt.Errorf("%w: sequences differ in length", ErrMalformed)
	}
	body := binary.AppendUvarint(nil, uint64(ser.Len()))
	for i := range ser.Levels {
		for _, pair := range ser.Coords[i] {
			body = append(body, pair[:]...)
		}
		body = append(body, ser.Levels[i])
		body = binary.AppendUvarint(body, uint64(len(ser.Payloads[i])))
		body = append(body, ser.Payloads[i]...)
	}
	switch comp {
	case CompressionNone:
	case CompressionZstd:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("zstd writer: %w", err)
		}
		body = enc.EncodeAll(body, nil)
		enc.Close()
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, comp)
	}
	out := make([]byte, 0, headerSize+len(body)+checksumSize)
	out = append(out, snapshotMagic...)
	out = append(out, snapshotVersion, byte(comp))
	out = append(out, body...)
	return binary.LittleEndian.AppendUint64(out, xxhash.Sum64(out)), nil
}

// DecodeSnapshot verifies and unpacks bytes produced by EncodeSnapshot.
// Payload slices alias b.
func DecodeSnapshot(b []byte) (*Serialized, error) {
	if len(b) < headerSize+checksumSize || string(b[:len(snapshotMagic)]) != snapshotMagic {
		return nil, fmt.Errorf("%w: not a snapshot", ErrMalformed)
	}
	split := len(b) - checksumSize
	if xxhash.Sum64(b[:split]) != binary.LittleEndian.Uint64(b[split:]) {
		return nil, ErrChecksum
	}
	if v := b[len(snapshotMagic)]; v != snapshotVersion {
		return nil, fmt.Errorf("%w: version %d", ErrMalformed, v)
	}
	body := b[headerSize:split]
	switch comp := Compression(b[len(snapshotMagic)+1]); comp {
	case CompressionNone:
	case CompressionZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("zstd reader: %w", err)
		}
		defer dec.Close()
		body, err = dec.DecodeAll(body, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, comp)
	}
	return decodeBody(body)
}

func decodeBody(buf []byte) (*Serialized, error) {
	count, buf, err := readUvarint(buf)
	if err != nil {
		return nil, fmt.Errorf("%w: entry count: %s", ErrMalformed, err)
	}
	// every entry takes at least coordBytes+2 bytes
	if count > uint64(len(buf)/(coordBytes+2)) {
		return nil, fmt.Errorf("%w: entry count %d", ErrMalformed, count)
	}
	total := int(count)
	ser := &Serialized{
		Coords:   make([][3][2]byte, total),
		Levels:   make([]uint8, total),
		Payloads: make([][]byte, total),
	}
	for i := 0; i < total; i++ {
		if len(buf) < coordBytes+1 {
			return nil, fmt.Errorf("%w: entry %d truncated", ErrMalformed, i)
		}
		for axis := 0; axis < 3; axis++ {
			copy(ser.Coords[i][axis][:], buf[2*axis:2*axis+2])
		}
		ser.Levels[i] = buf[coordBytes]
		ser.Payloads[i], buf, err = readBlob(buf[coordBytes+1:])
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d payload: %s", ErrMalformed, i, err)
		}
	}
	if len(buf) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrMalformed, len(buf))
	}
	return ser, nil
}
