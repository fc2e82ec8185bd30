// Package field implements the proto3 scalar codecs (spec.md section
// 4.4) and the per-kind field accumulators and merge rules (section 3's
// data model table, section 4.6). It is grounded on
// codec.DecodeSimpleField/codec.DecodeLengthDelimitedField in the
// teacher, split into one function per wire shape (varint, fixed32,
// fixed64, length-delimited) instead of one switch per wire type,
// since this module's scalar codecs are driven incrementally by the
// message package rather than from a single in-memory buffer.
package field

import (
	"math"
	"unicode/utf8"

	"github.com/kcheng/pbstream/pberr"
	"github.com/kcheng/pbstream/schema"
	"github.com/kcheng/pbstream/wire"
)

// DecodeVarintScalar converts a 64-bit varint payload to the in-memory
// representation of scalar type t, per spec.md section 4.4's decode
// column for varint-wire types (bool, int32/64, uint32/64, sint32/64).
func DecodeVarintScalar(t schema.ScalarType, n uint64) (interface{}, error) {
	switch t {
	case schema.Bool:
		return n != 0, nil
	case schema.Uint32:
		if n > math.MaxUint32 {
			return nil, pberr.Newf(pberr.Invalid, "uint32: value %d overflows 32 bits", n)
		}
		return uint32(n), nil
	case schema.Uint64:
		return n, nil
	case schema.Int32:
		s := int64(n)
		if s > math.MaxInt32 || s < math.MinInt32 {
			return nil, pberr.Newf(pberr.Invalid, "int32: value %d out of range", s)
		}
		return int32(s), nil
	case schema.Int64:
		return int64(n), nil
	case schema.Sint32:
		if n > math.MaxUint32 {
			return nil, pberr.Newf(pberr.Invalid, "sint32: value %d overflows 32 bits", n)
		}
		return wire.ZigZagDecode32(uint32(n)), nil
	case schema.Sint64:
		return wire.ZigZagDecode64(n), nil
	default:
		return nil, pberr.Newf(pberr.Invalid, "%s: requires varint wire type", t)
	}
}

// EncodeVarintScalar is DecodeVarintScalar's dual: it converts an
// in-memory scalar value to the 64-bit integer AppendVarint should
// encode. Negative int32/int64 values are not masked down to 32 bits
// first -- casting straight through int64 sign-extends them, which is
// exactly the 10-byte wire form spec.md section 4.4 requires.
func EncodeVarintScalar(t schema.ScalarType, v interface{}) (uint64, error) {
	switch t {
	case schema.Bool:
		if v.(bool) {
			return 1, nil
		}
		return 0, nil
	case schema.Uint32:
		return uint64(v.(uint32)), nil
	case schema.Uint64:
		return v.(uint64), nil
	case schema.Int32:
		return uint64(int64(v.(int32))), nil
	case schema.Int64:
		return uint64(v.(int64)), nil
	case schema.Sint32:
		return uint64(wire.ZigZagEncode32(v.(int32))), nil
	case schema.Sint64:
		return wire.ZigZagEncode64(v.(int64)), nil
	default:
		return 0, pberr.Newf(pberr.Invalid, "%s: requires varint wire type", t)
	}
}

// DecodeFixed32Scalar converts a little-endian 32-bit payload to the
// in-memory representation of scalar type t (fixed32, sfixed32, float).
func DecodeFixed32Scalar(t schema.ScalarType, v uint32) (interface{}, error) {
	switch t {
	case schema.Fixed32:
		return v, nil
	case schema.Sfixed32:
		return int32(v), nil
	case schema.Float:
		return math.Float32frombits(v), nil
	default:
		return nil, pberr.Newf(pberr.Invalid, "%s: requires bit32 wire type", t)
	}
}

// EncodeFixed32Scalar is DecodeFixed32Scalar's dual.
func EncodeFixed32Scalar(t schema.ScalarType, v interface{}) (uint32, error) {
	switch t {
	case schema.Fixed32:
		return v.(uint32), nil
	case schema.Sfixed32:
		return uint32(v.(int32)), nil
	case schema.Float:
		return math.Float32bits(v.(float32)), nil
	default:
		return 0, pberr.Newf(pberr.Invalid, "%s: requires bit32 wire type", t)
	}
}

// DecodeFixed64Scalar converts a little-endian 64-bit payload to the
// in-memory representation of scalar type t (fixed64, sfixed64,
// double).
func DecodeFixed64Scalar(t schema.ScalarType, v uint64) (interface{}, error) {
	switch t {
	case schema.Fixed64:
		return v, nil
	case schema.Sfixed64:
		return int64(v), nil
	case schema.Double:
		return math.Float64frombits(v), nil
	default:
		return nil, pberr.Newf(pberr.Invalid, "%s: requires bit64 wire type", t)
	}
}

// EncodeFixed64Scalar is DecodeFixed64Scalar's dual.
func EncodeFixed64Scalar(t schema.ScalarType, v interface{}) (uint64, error) {
	switch t {
	case schema.Fixed64:
		return v.(uint64), nil
	case schema.Sfixed64:
		return uint64(v.(int64)), nil
	case schema.Double:
		return math.Float64bits(v.(float64)), nil
	default:
		return 0, pberr.Newf(pberr.Invalid, "%s: requires bit64 wire type", t)
	}
}

// DecodeBytesScalar converts a length-delimited payload to the
// in-memory representation of scalar type t (string or bytes). It does
// not handle Message, which the message package decodes recursively
// with schema context this package does not have.
func DecodeBytesScalar(t schema.ScalarType, data []byte) (interface{}, error) {
	switch t {
	case schema.Bytes:
		// Defensive copy: data may be a view into a reusable decode
		// buffer that the caller will overwrite on the next Feed.
		cp := make([]byte, len(data))
		copy(cp, data)
		return cp, nil
	case schema.String:
		if !utf8.Valid(data) {
			return nil, pberr.New(pberr.Invalid, "string: payload is not valid UTF-8")
		}
		return string(data), nil
	default:
		return nil, pberr.Newf(pberr.Invalid, "%s: requires length-delimited wire type", t)
	}
}

// EncodeBytesScalar is DecodeBytesScalar's dual: it returns the raw
// payload bytes a length-delimited field should carry.
func EncodeBytesScalar(t schema.ScalarType, v interface{}) ([]byte, error) {
	switch t {
	case schema.Bytes:
		return v.([]byte), nil
	case schema.String:
		return []byte(v.(string)), nil
	default:
		return nil, pberr.Newf(pberr.Invalid, "%s: requires length-delimited wire type", t)
	}
}

// ZeroValue returns the default (zero) in-memory value for scalar type
// t, used as a Singular field's accumulator default and as the default
// for an absent map key or value (spec.md section 4.5's map-entry
// defaulting rule).
func ZeroValue(t schema.ScalarType) interface{} {
	switch t {
	case schema.Bool:
		return false
	case schema.Int32, schema.Sint32, schema.Sfixed32:
		return int32(0)
	case schema.Int64, schema.Sint64, schema.Sfixed64:
		return int64(0)
	case schema.Uint32, schema.Fixed32:
		return uint32(0)
	case schema.Uint64, schema.Fixed64:
		return uint64(0)
	case schema.Float:
		return float32(0)
	case schema.Double:
		return float64(0)
	case schema.String:
		return ""
	case schema.Bytes:
		return []byte(nil)
	default:
		return nil
	}
}
