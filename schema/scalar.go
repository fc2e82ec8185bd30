package schema

import "github.com/kcheng/pbstream/wire"

// ScalarType enumerates the fifteen proto3 scalar types plus Message,
// the one composite leaf kind a field's value can hold; enums have no
// constant of their own and are carried as Int32. It mirrors protoc-gen-go/descriptor.FieldDescriptorProto_Type
// (the enum the teacher's codec package switches on throughout
// codec.go) closely enough that a schema built from real descriptors
// converts to it with a single switch.
type ScalarType uint8

const (
	Bool ScalarType = iota
	Int32
	Int64
	Uint32
	Uint64
	Sint32
	Sint64
	Fixed32
	Fixed64
	Sfixed32
	Sfixed64
	Float
	Double
	String
	Bytes
	Message
)

func (t ScalarType) String() string {
	switch t {
	case Bool:
		return "bool"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Uint32:
		return "uint32"
	case Uint64:
		return "uint64"
	case Sint32:
		return "sint32"
	case Sint64:
		return "sint64"
	case Fixed32:
		return "fixed32"
	case Fixed64:
		return "fixed64"
	case Sfixed32:
		return "sfixed32"
	case Sfixed64:
		return "sfixed64"
	case Float:
		return "float"
	case Double:
		return "double"
	case String:
		return "string"
	case Bytes:
		return "bytes"
	case Message:
		return "message"
	default:
		return "unknown"
	}
}

// WireType returns the wire type a Singular/Repeated field of this
// scalar type is naturally encoded with (spec.md section 4.4's table).
// For PackedRepeated fields the *packed* form always uses
// wire.LengthDelimited regardless of this value; the natural wire type
// below is what the legacy unpacked form uses instead.
func (t ScalarType) WireType() wire.Type {
	switch t {
	case Bool, Int32, Int64, Uint32, Uint64, Sint32, Sint64:
		return wire.Varint
	case Fixed32, Sfixed32, Float:
		return wire.Bit32
	case Fixed64, Sfixed64, Double:
		return wire.Bit64
	case String, Bytes, Message:
		return wire.LengthDelimited
	default:
		return wire.Varint
	}
}

// Packable reports whether this scalar type may appear in a
// PackedRepeated field. Only types with a varint or fixed-width wire
// type are packable; string/bytes/message cannot be (spec.md's
// PackedRepeated row only applies to scalars with a natural
// fixed-width or varint encoding).
func (t ScalarType) Packable() bool {
	switch t {
	case String, Bytes, Message:
		return false
	default:
		return true
	}
}
