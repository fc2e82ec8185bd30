// Package wire implements the suspendable byte-level and wire-level
// primitives of the protobuf binary format: varints, fixed-width
// integers, length-delimited framing, and the tag varint that ties a
// field number to a wire type. Every decode primitive in this package
// is a poll-style state machine: Poll is handed whatever bytes are
// currently available plus an end-of-stream flag, and returns how many
// of those bytes it consumed this call and whether it is done -- it
// never blocks waiting for more input.
package wire

import "github.com/kcheng/pbstream/pberr"

// Type is the 3-bit wire type suffix of a tag varint.
type Type uint8

const (
	Varint          Type = 0
	Bit64           Type = 1
	LengthDelimited Type = 2
	startGroup      Type = 3
	endGroup        Type = 4
	Bit32           Type = 5
)

func (t Type) String() string {
	switch t {
	case Varint:
		return "varint"
	case Bit64:
		return "bit64"
	case LengthDelimited:
		return "length-delimited"
	case startGroup:
		return "start-group"
	case endGroup:
		return "end-group"
	case Bit32:
		return "bit32"
	default:
		return "unknown"
	}
}

// IsGroup reports whether t is one of the two group wire types (3, 4).
// Proto3 has no group support; the dispatcher reports these as
// pberr.Unsupported rather than Invalid, matching spec.md's
// distinction between "recognized but unsupported" and "malformed".
func (t Type) IsGroup() bool { return t == startGroup || t == endGroup }

// Known reports whether t is one of the four wire types this library
// can actually decode a value for (0, 1, 2, 5).
func (t Type) Known() bool {
	switch t {
	case Varint, Bit64, LengthDelimited, Bit32:
		return true
	default:
		return false
	}
}

// Tag is a decoded (field number, wire type) pair, the payload of the
// key varint (number<<3)|wireType that precedes every field's value on
// the wire.
type Tag struct {
	Number uint32
	Type   Type
}

// MaxTagNumber is the largest field number DecodeTagValue accepts from
// a key varint: 2^32-1, so that every decoded number fits a uint32. The
// narrower, proto3-legal band ([1, 2^29-1] minus the reserved range) is
// enforced by schema.FieldNumber, not here -- this is only the raw wire
// constraint from spec.md section 3.
const MaxTagNumber = 1<<32 - 1

// DecodeTagValue splits a decoded key varint into its field number and
// wire type. It enforces only the raw wire-level constraint that the
// field number is nonzero and fits in 32 bits; schema-level validity
// (the [1, 2^29-1] band, the reserved [19000,19999] band) is checked
// separately when a decoded tag is matched against a schema.
func DecodeTagValue(v uint64) (Tag, error) {
	wt := Type(v & 7)
	num := v >> 3
	if num == 0 {
		return Tag{}, pberr.New(pberr.Invalid, "field number 0 is not valid")
	}
	if num > MaxTagNumber {
		return Tag{}, pberr.Newf(pberr.Invalid, "field number %d out of range", num)
	}
	return Tag{Number: uint32(num), Type: wt}, nil
}

// EncodeTagValue packs a field number and wire type into the key
// varint's integer value, ready for VarintOp/AppendVarint.
func EncodeTagValue(number uint32, wt Type) uint64 {
	return uint64(number)<<3 | uint64(wt&7)
}
