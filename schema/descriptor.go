package schema

import (
	descriptor "github.com/golang/protobuf/protoc-gen-go/descriptor"

	"github.com/kcheng/pbstream/pberr"
)

// FromDescriptorType converts a FieldDescriptorProto_Type -- the enum
// a real .proto-driven schema builder parses out of a FileDescriptorProto
// -- to the ScalarType this package's codecs dispatch on. It is
// grounded on the teacher's codec.go, which switches on exactly this
// enum (its varintTypes/fixed32Types/fixed64Types tables and the
// switch in decodeLengthDelimitedField) to pick a wire shape; this
// function is schema's equivalent lookup, used by any caller building
// a MessageSchema from parsed descriptors rather than from literals.
func FromDescriptorType(t descriptor.FieldDescriptorProto_Type) (ScalarType, error) {
	switch t {
	case descriptor.FieldDescriptorProto_TYPE_BOOL:
		return Bool, nil
	case descriptor.FieldDescriptorProto_TYPE_INT32:
		return Int32, nil
	case descriptor.FieldDescriptorProto_TYPE_INT64:
		return Int64, nil
	case descriptor.FieldDescriptorProto_TYPE_UINT32:
		return Uint32, nil
	case descriptor.FieldDescriptorProto_TYPE_UINT64:
		return Uint64, nil
	case descriptor.FieldDescriptorProto_TYPE_SINT32:
		return Sint32, nil
	case descriptor.FieldDescriptorProto_TYPE_SINT64:
		return Sint64, nil
	case descriptor.FieldDescriptorProto_TYPE_FIXED32:
		return Fixed32, nil
	case descriptor.FieldDescriptorProto_TYPE_FIXED64:
		return Fixed64, nil
	case descriptor.FieldDescriptorProto_TYPE_SFIXED32:
		return Sfixed32, nil
	case descriptor.FieldDescriptorProto_TYPE_SFIXED64:
		return Sfixed64, nil
	case descriptor.FieldDescriptorProto_TYPE_FLOAT:
		return Float, nil
	case descriptor.FieldDescriptorProto_TYPE_DOUBLE:
		return Double, nil
	case descriptor.FieldDescriptorProto_TYPE_STRING:
		return String, nil
	case descriptor.FieldDescriptorProto_TYPE_BYTES:
		return Bytes, nil
	case descriptor.FieldDescriptorProto_TYPE_MESSAGE, descriptor.FieldDescriptorProto_TYPE_GROUP:
		return Message, nil
	case descriptor.FieldDescriptorProto_TYPE_ENUM:
		// Proto3 enums are wire-compatible with int32 (varint, no range
		// check beyond int32 overflow); callers needing symbolic enum
		// values layer that on top of the decoded int32 themselves.
		return Int32, nil
	default:
		return 0, pberr.Newf(pberr.Invalid, "schema: unrecognized FieldDescriptorProto_Type %s", t)
	}
}

// ToDescriptorType is FromDescriptorType's inverse, for callers
// rendering a ScalarType back into descriptor form (e.g. a schema
// printer). Message always yields TYPE_MESSAGE; since FromDescriptorType
// converts TYPE_GROUP to Message as well, a group type does not survive
// the round trip and comes back as TYPE_MESSAGE.
func ToDescriptorType(t ScalarType) descriptor.FieldDescriptorProto_Type {
	switch t {
	case Bool:
		return descriptor.FieldDescriptorProto_TYPE_BOOL
	case Int32:
		return descriptor.FieldDescriptorProto_TYPE_INT32
	case Int64:
		return descriptor.FieldDescriptorProto_TYPE_INT64
	case Uint32:
		return descriptor.FieldDescriptorProto_TYPE_UINT32
	case Uint64:
		return descriptor.FieldDescriptorProto_TYPE_UINT64
	case Sint32:
		return descriptor.FieldDescriptorProto_TYPE_SINT32
	case Sint64:
		return descriptor.FieldDescriptorProto_TYPE_SINT64
	case Fixed32:
		return descriptor.FieldDescriptorProto_TYPE_FIXED32
	case Fixed64:
		return descriptor.FieldDescriptorProto_TYPE_FIXED64
	case Sfixed32:
		return descriptor.FieldDescriptorProto_TYPE_SFIXED32
	case Sfixed64:
		return descriptor.FieldDescriptorProto_TYPE_SFIXED64
	case Float:
		return descriptor.FieldDescriptorProto_TYPE_FLOAT
	case Double:
		return descriptor.FieldDescriptorProto_TYPE_DOUBLE
	case String:
		return descriptor.FieldDescriptorProto_TYPE_STRING
	case Bytes:
		return descriptor.FieldDescriptorProto_TYPE_BYTES
	default: // Message
		return descriptor.FieldDescriptorProto_TYPE_MESSAGE
	}
}
