// Package serialization encodes job states as positional tuples and decodes them
// tag-first: the job type is read before any argument, and its descriptor supplies the
// types used to decode the rest of the payload.
package serialization

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec is the wire format underneath the tuple encoding.
type Codec interface {
	// Name returns the codec identifier ("json", "msgpack").
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	// SplitArray splits an encoded array into its encoded elements.
	SplitArray(data []byte) ([][]byte, error)
	// IsNull reports whether data is the encoded null value.
	IsNull(data []byte) bool
}

const (
	CodecNameJSON    = "json"
	CodecNameMsgpack = "msgpack"
)

// GetCodec returns a codec by name. An empty name selects JSON.
func GetCodec(name string) (Codec, error) {
	switch name {
	case CodecNameJSON, "":
		return JSONCodec{}, nil
	case CodecNameMsgpack:
		return MsgpackCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
}

// JSONCodec encodes with encoding/json.
type JSONCodec struct{}

func (JSONCodec) Name() string                       { return CodecNameJSON }
func (JSONCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (JSONCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

func (JSONCodec) SplitArray(data []byte) ([][]byte, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, err
	}
	out := make([][]byte, len(raws))
	for i, r := range raws {
		out[i] = r
	}
	return out, nil
}

func (JSONCodec) IsNull(data []byte) bool {
	return len(data) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}

// MsgpackCodec encodes with MessagePack.
type MsgpackCodec struct{}

func (MsgpackCodec) Name() string                       { return CodecNameMsgpack }
func (MsgpackCodec) Marshal(v any) ([]byte, error)      { return msgpack.Marshal(v) }
func (MsgpackCodec) Unmarshal(data []byte, v any) error { return msgpack.Unmarshal(data, v) }

func (MsgpackCodec) SplitArray(data []byte) ([][]byte, error) {
	var raws []msgpack.RawMessage
	if err := msgpack.Unmarshal(data, &raws); err != nil {
		return nil, err
	}
	out := make([][]byte, len(raws))
	for i, r := range raws {
		out[i] = r
	}
	return out, nil
}

func (MsgpackCodec) IsNull(data []byte) bool {
	return len(data) == 0 || (len(data) == 1 && data[0] == 0xc0)
}
