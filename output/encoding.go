package output

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

type encodingMethod int

const (
	MsgPack encodingMethod = iota
	JSON
)

func (enc encodingMethod) EncodeValue(buf []byte, v any) []byte {
	switch enc {
	case MsgPack:
		bb := bytesBuilder{buf}
		enc := msgpack.GetEncoder()
		enc.Reset(&bb)
		enc.SetSortMapKeys(true)
		err := enc.Encode(v)
		msgpack.PutEncoder(enc)
		if err != nil {
			panic(fmt.Errorf("failed to encode %T using MsgPack: %w", v, err))
		}
		return bb.Buf
	case JSON:
		bb := bytesBuilder{buf}
		if err := json.NewEncoder(&bb).Encode(v); err != nil {
			panic(fmt.Errorf("failed to encode %T to JSON: %w", v, err))
		}
		return bytes.TrimSuffix(bb.Buf, []byte{'\n'})
	default:
		panic("unsupported encoding")
	}
}

func (enc encodingMethod) DecodeValue(buf []byte, ptr any) error {
	switch enc {
	case MsgPack:
		var r bytes.Reader
		r.Reset(buf)
		dec := msgpack.GetDecoder()
		dec.Reset(&r)
		err := dec.Decode(ptr)
		msgpack.PutDecoder(dec)
		if err != nil {
			return fmt.Errorf("failed to decode msgpack into %T: %w", ptr, err)
		}
		return nil
	case JSON:
		if err := json.Unmarshal(buf, ptr); err != nil {
			return fmt.Errorf("failed to decode JSON into %T: %w", ptr, err)
		}
		return nil
	default:
		panic("unsupported encoding")
	}
}

// idKey encodes an entity id so that keys sort in id order, negative ids
// (used by editors for new objects) first.
func idKey(id int64) []byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], uint64(id)^(1<<63))
	return k[:]
}

func idFromKey(k []byte) int64 {
	return int64(binary.BigEndian.Uint64(k) ^ (1 << 63))
}

type bytesBuilder struct {
	Buf []byte
}

var _ io.Writer = (*bytesBuilder)(nil)

func (bb *bytesBuilder) Write(b []byte) (int, error) {
	bb.Buf = append(bb.Buf, b...)
	return len(b), nil
}

func (bb *bytesBuilder) WriteByte(v byte) error {
	bb.Buf = append(bb.Buf, v)
	return nil
}
