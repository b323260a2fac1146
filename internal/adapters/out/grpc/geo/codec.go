package geo

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// codecName keeps the standard content-subtype, so a protobuf server reads
// these messages as its own.
const codecName = "proto"

var errTruncated = errors.New("truncated message")

// getGeolocationRequest mirrors `message GetGeolocationRequest { string Street = 1; }`.
type getGeolocationRequest struct {
	Street string
}

// getGeolocationReply mirrors
// `message GetGeolocationReply { Location Location = 1; }` with
// `message Location { int32 x = 1; int32 y = 2; }`.
type getGeolocationReply struct {
	HasLocation bool
	X           int32
	Y           int32
}

// wireCodec encodes the two geo messages with protowire.
type wireCodec struct{}

func (wireCodec) Name() string { return codecName }

func (wireCodec) Marshal(v any) ([]byte, error) {
	switch m := v.(type) {
	case *getGeolocationRequest:
		var b []byte
		if m.Street != "" {
			b = protowire.AppendTag(b, 1, protowire.BytesType)
			b = protowire.AppendString(b, m.Street)
		}
		return b, nil
	case *getGeolocationReply:
		if !m.HasLocation {
			return nil, nil
		}
		var loc []byte
		if m.X != 0 {
			loc = protowire.AppendTag(loc, 1, protowire.VarintType)
			loc = protowire.AppendVarint(loc, uint64(int64(m.X)))
		}
		if m.Y != 0 {
			loc = protowire.AppendTag(loc, 2, protowire.VarintType)
			loc = protowire.AppendVarint(loc, uint64(int64(m.Y)))
		}
		b := protowire.AppendTag(nil, 1, protowire.BytesType)
		return protowire.AppendBytes(b, loc), nil
	default:
		return nil, fmt.Errorf("geo codec: cannot marshal %T", v)
	}
}

func (wireCodec) Unmarshal(data []byte, v any) error {
	switch m := v.(type) {
	case *getGeolocationRequest:
		*m = getGeolocationRequest{}
		return walk(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
			if num == 1 && typ == protowire.BytesType {
				s, n := protowire.ConsumeString(b)
				m.Street = s
				return n, protowire.ParseError(n)
			}
			return skip(num, typ, b)
		})
	case *getGeolocationReply:
		*m = getGeolocationReply{}
		return walk(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
			if num == 1 && typ == protowire.BytesType {
				loc, n := protowire.ConsumeBytes(b)
				if n < 0 {
					return n, protowire.ParseError(n)
				}
				m.HasLocation = true
				return n, unmarshalLocation(loc, m)
			}
			return skip(num, typ, b)
		})
	default:
		return fmt.Errorf("geo codec: cannot unmarshal into %T", v)
	}
}

func unmarshalLocation(data []byte, m *getGeolocationReply) error {
	return walk(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if (num == 1 || num == 2) && typ == protowire.VarintType {
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return n, protowire.ParseError(n)
			}
			if num == 1 {
				m.X = int32(v)
			} else {
				m.Y = int32(v)
			}
			return n, nil
		}
		return skip(num, typ, b)
	})
}

// walk calls field for every field of data. field consumes the value that
// follows the tag and returns its length.
func walk(data []byte, field func(protowire.Number, protowire.Type, []byte) (int, error)) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("geo codec: %w", protowire.ParseError(n))
		}
		data = data[n:]

		n, err := field(num, typ, data)
		if err != nil {
			return fmt.Errorf("geo codec: field %d: %w", num, err)
		}
		if n > len(data) {
			return fmt.Errorf("geo codec: field %d: %w", num, errTruncated)
		}
		data = data[n:]
	}
	return nil
}

func skip(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	n := protowire.ConsumeFieldValue(num, typ, b)
	if n < 0 {
		return n, protowire.ParseError(n)
	}
	return n, nil
}
