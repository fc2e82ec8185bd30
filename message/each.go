package message

import (
	"github.com/kcheng/pbstream/pberr"
	"github.com/kcheng/pbstream/wire"
)

// RawValue is one field occurrence read off the wire without any
// schema: just enough information to inspect or re-skip it. It mirrors
// molecule.Value (other_examples/.../molecule.go) -- a "here is whatever
// came next" view used to walk a message's top-level fields without a
// schema.
type RawValue struct {
	WireType wire.Type
	// Scalar holds the decoded payload for Varint (the raw varint),
	// Bit32, and Bit64 wire types.
	Scalar uint64
	// Bytes holds the payload for LengthDelimited values, copied out of
	// the buffer handed to EachField into a slice of its own.
	Bytes []byte
}

// EachFieldFunc is called once per top-level field found by EachField.
// Returning false stops iteration early.
type EachFieldFunc func(number uint32, value RawValue) bool

// EachField walks every top-level field in a fully-buffered message
// payload and invokes fn for each, without consulting any schema --
// grounded on molecule.MessageEach, useful for ad hoc inspection of a
// message whose schema isn't known to the caller (e.g. a debugging
// tool, or a proxy that needs to read one field without decoding the
// whole message).
func EachField(payload []byte, fn EachFieldFunc) error {
	src := wire.FromBytes(payload)
	for {
		avail, eof := src.Peek()
		if len(avail) == 0 && eof {
			return nil
		}
		var tagOp wire.VarintOp
		consumed, done, err := tagOp.Poll(avail, eof)
		src.Advance(consumed)
		if err != nil {
			return err
		}
		if !done {
			return pberr.New(pberr.UnexpectedEos, "EachField: truncated tag")
		}
		tag, err := wire.DecodeTagValue(tagOp.Value())
		if err != nil {
			return err
		}
		if tag.Type.IsGroup() {
			return pberr.Newf(pberr.Unsupported, "EachField: field %d uses group wire type", tag.Number)
		}
		val, err := readRawValue(src, tag.Type)
		if err != nil {
			return err
		}
		if !fn(tag.Number, val) {
			return nil
		}
	}
}

func readRawValue(src *wire.ByteSource, wt wire.Type) (RawValue, error) {
	avail, eof := src.Peek()
	switch wt {
	case wire.Varint:
		var op wire.VarintOp
		consumed, done, err := op.Poll(avail, eof)
		src.Advance(consumed)
		if err != nil {
			return RawValue{}, err
		}
		if !done {
			return RawValue{}, pberr.New(pberr.UnexpectedEos, "EachField: truncated varint")
		}
		return RawValue{WireType: wt, Scalar: op.Value()}, nil
	case wire.Bit32:
		op := wire.NewFixed32Op()
		consumed, done, err := op.Poll(avail, eof)
		src.Advance(consumed)
		if err != nil {
			return RawValue{}, err
		}
		if !done {
			return RawValue{}, pberr.New(pberr.UnexpectedEos, "EachField: truncated fixed32")
		}
		return RawValue{WireType: wt, Scalar: uint64(op.Uint32())}, nil
	case wire.Bit64:
		op := wire.NewFixed64Op()
		consumed, done, err := op.Poll(avail, eof)
		src.Advance(consumed)
		if err != nil {
			return RawValue{}, err
		}
		if !done {
			return RawValue{}, pberr.New(pberr.UnexpectedEos, "EachField: truncated fixed64")
		}
		return RawValue{WireType: wt, Scalar: op.Uint64()}, nil
	case wire.LengthDelimited:
		var op wire.LengthDelimitedOp
		consumed, done, err := op.Poll(avail, eof)
		src.Advance(consumed)
		if err != nil {
			return RawValue{}, err
		}
		if !done {
			return RawValue{}, pberr.New(pberr.UnexpectedEos, "EachField: truncated length-delimited value")
		}
		return RawValue{WireType: wt, Bytes: op.Bytes()}, nil
	default:
		return RawValue{}, pberr.Newf(pberr.Invalid, "EachField: unrecognized wire type %d", wt)
	}
}

// PackedArrayEach walks each scalar element of a packed-repeated
// field's payload, calling fn for each. wt selects which fixed-width or
// varint shape the elements use. Grounded on molecule.PackedArrayEach.
func PackedArrayEach(payload []byte, wt wire.Type, fn func(v uint64) bool) error {
	src := wire.FromBytes(payload)
	for {
		avail, eof := src.Peek()
		if len(avail) == 0 && eof {
			return nil
		}
		val, err := readRawValue(src, wt)
		if err != nil {
			return err
		}
		if !fn(val.Scalar) {
			return nil
		}
	}
}
