package svo

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/minio/blake2b-simd"
	"go.uber.org/zap"
)

// ErrNotFound is wrapped by Persist implementations when a name is unknown.
var ErrNotFound = errors.New("snapshot not found")

// RemoteConfig controls how stores are saved to and loaded from a Persist.
type RemoteConfig[T any] struct {
	// StoreImmutablePartsWith stores and loads framed snapshots.
	StoreImmutablePartsWith Persist

	// Codec encodes payloads. Defaults to JSONCodec.
	Codec PayloadCodec[T]

	// Compression applied to saved snapshots.
	Compression Compression

	// SnapshotCache caches decoded snapshots and may be shared across stores.
	SnapshotCache SnapshotCache

	// Store configures stores returned by LoadStore.
	Store *Config
}

func (rc *RemoteConfig[T]) codec() PayloadCodec[T] {
	if rc.Codec == nil {
		return JSONCodec[T]{}
	}
	return rc.Codec
}

// Root identifies a saved version of a store.
type Root struct {
	Link        string
	Size        uint64
	Compression Compression
}

// snapshotName is the content address of an encoded snapshot.
func snapshotName(encoded []byte) string {
	hashBytes := blake2b.Sum256(encoded)
	return base64.RawURLEncoding.EncodeToString(hashBytes[:])
}

// Save writes the applied contents of s to the configured Persist and
// returns the root that loads them back. Identical contents map to the
// same name; a name already in the SnapshotCache is not stored again.
func Save[T any](ctx context.Context, s *Store[T], rc *RemoteConfig[T]) (*Root, error) {
	if rc.StoreImmutablePartsWith == nil {
		return nil, fmt.Errorf("no persistence mechanism set; set RemoteConfig.StoreImmutablePartsWith")
	}
	ser, err := Serialize(s, rc.codec())
	if err != nil {
		return nil, fmt.Errorf("serialize: %w", err)
	}
	encoded, err := EncodeSnapshot(ser, rc.Compression)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	name := snapshotName(encoded)
	root := &Root{Link: name, Size: uint64(ser.Len()), Compression: rc.Compression}
	if rc.SnapshotCache != nil && rc.SnapshotCache.Contains(name) {
		return root, nil
	}
	err = rc.StoreImmutablePartsWith.Store(ctx, name, encoded)
	if err != nil {
		return nil, fmt.Errorf("persist store: %w", err)
	}
	if rc.SnapshotCache != nil {
		rc.SnapshotCache.Add(name, ser)
	}
	s.logger.Debug("saved snapshot",
		zap.String("link", name),
		zap.Int("entries", ser.Len()),
		zap.Int("bytes", len(encoded)))
	return root, nil
}

// LoadStore rebuilds the store saved under r.
func LoadStore[T any](ctx context.Context, r *Root, rc *RemoteConfig[T]) (*Store[T], error) {
	ser, err := loadSerialized(ctx, r, rc)
	if err != nil {
		return nil, err
	}
	if uint64(ser.Len()) != r.Size {
		return nil, fmt.Errorf("%w: root expects %d entries, snapshot has %d", ErrMalformed, r.Size, ser.Len())
	}
	s, err := Deserialize(ser, rc.codec(), rc.Store)
	if err != nil {
		return nil, fmt.Errorf("deserialize %s: %w", r.Link, err)
	}
	s.logger.Debug("loaded snapshot",
		zap.String("link", r.Link),
		zap.Int("entries", ser.Len()))
	return s, nil
}

func loadSerialized[T any](ctx context.Context, r *Root, rc *RemoteConfig[T]) (*Serialized, error) {
	if rc.SnapshotCache != nil {
		if cached, ok := rc.SnapshotCache.Get(r.Link); ok {
			return cached.(*Serialized), nil
		}
	}
	if rc.StoreImmutablePartsWith == nil {
		return nil, fmt.Errorf("no persistence mechanism set; set RemoteConfig.StoreImmutablePartsWith")
	}
	encoded, err := rc.StoreImmutablePartsWith.Load(ctx, r.Link)
	if err != nil {
		return nil, fmt.Errorf("persist load %s: %w", r.Link, err)
	}
	if snapshotName(encoded) != r.Link {
		return nil, fmt.Errorf("%w: content of %s does not match its name", ErrChecksum, r.Link)
	}
	ser, err := DecodeSnapshot(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.Link, err)
	}
	if rc.SnapshotCache != nil {
		rc.SnapshotCache.Add(r.Link, ser)
	}
	return ser, nil
}
