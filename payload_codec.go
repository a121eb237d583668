package svo

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"google.golang.org/protobuf/proto"
)

// PayloadCodec converts payloads to and from opaque bytes for Serialize
// and Deserialize.
type PayloadCodec[T any] interface {
	EncodePayload(T) ([]byte, error)
	DecodePayload([]byte) (T, error)
}

// JSONCodec encodes payloads with encoding/json.
type JSONCodec[T any] struct{}

func (JSONCodec[T]) EncodePayload(v T) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONCodec[T]) DecodePayload(b []byte) (T, error) {
	var v T
	err := json.Unmarshal(b, &v)
	return v, err
}

// CBORCodec encodes payloads as CBOR.
type CBORCodec[T any] struct{}

func (CBORCodec[T]) EncodePayload(v T) ([]byte, error) {
	return cbor.Marshal(v)
}

func (CBORCodec[T]) DecodePayload(b []byte) (T, error) {
	var v T
	err := cbor.Unmarshal(b, &v)
	return v, err
}

// ProtoCodec encodes protobuf message payloads. New must return an empty
// message to decode into.
type ProtoCodec[T proto.Message] struct {
	New func() T
}

func (c ProtoCodec[T]) EncodePayload(v T) ([]byte, error) {
	return proto.Marshal(v)
}

func (c ProtoCodec[T]) DecodePayload(b []byte) (T, error) {
	if c.New == nil {
		var zero T
		return zero, fmt.Errorf("ProtoCodec.New is unset")
	}
	v := c.New()
	err := proto.Unmarshal(b, v)
	return v, err
}
