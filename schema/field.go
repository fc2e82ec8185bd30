package schema

// Kind is the field-schema kind enumeration from spec.md section 3's
// accumulator table.
type Kind uint8

const (
	// Singular replaces on every occurrence; last value on the wire
	// wins.
	Singular Kind = iota
	// Repeated appends every occurrence to an ordered list, using the
	// scalar's natural (unpacked) wire type.
	Repeated
	// PackedRepeated appends every occurrence to an ordered list, but
	// accepts both the packed (single length-delimited, concatenated
	// values) and legacy unpacked encodings.
	PackedRepeated
	// Map merges per-entry by key; each wire occurrence is a two-field
	// embedded message {1: key, 2: value}.
	Map
	// Oneof holds at most one variant at a time; receiving any variant
	// clears whichever was previously stored.
	Oneof
	// Embedded is a singular nested message merged recursively.
	Embedded
	// Ignore accepts and discards any wire type for this field number
	// -- a no-op merge, with no wire-type check at all.
	Ignore
	// ReservedTag marks a field number as reserved for future use. Like
	// Ignore it is a no-op on decode, but expresses author intent
	// distinctly: a reserved tag is a placeholder that must never be
	// reused for a new field, whereas Ignore is "this field exists on
	// the wire but this schema doesn't care about its value".
	ReservedTag
	// ReservedName reserves a field *name* so it cannot be reused by a
	// future schema revision. It has no wire presence at all (no field
	// number), so it never participates in dispatch; it exists purely
	// as an authoring-time record.
	ReservedName
)

func (k Kind) String() string {
	switch k {
	case Singular:
		return "singular"
	case Repeated:
		return "repeated"
	case PackedRepeated:
		return "packed-repeated"
	case Map:
		return "map"
	case Oneof:
		return "oneof"
	case Embedded:
		return "embedded"
	case Ignore:
		return "ignore"
	case ReservedTag:
		return "reserved-tag"
	case ReservedName:
		return "reserved-name"
	default:
		return "unknown"
	}
}

// Field is one declared field-schema entry: the tuple of (kind, field
// number, value-type descriptor, optional name) from spec.md section 3.
type Field struct {
	Number FieldNumber
	Kind   Kind
	Name   string

	// Optional suppresses encoding of a Singular field that was never
	// explicitly set. By default a Singular field always emits, default
	// value included; Optional is the schema-level wrapper that hands
	// "should this encode at all" back to the caller.
	Optional bool

	// Type is the scalar type for Singular/Repeated/PackedRepeated
	// fields (including Message, for a singular/repeated embedded
	// message) and is unused for Map, Oneof, Ignore, and the reserved
	// kinds.
	Type ScalarType
	// Message is the nested schema when Type == Message.
	Message *MessageSchema

	// MapKey/MapValue/MapValueMessage are used only when Kind == Map.
	MapKey          ScalarType
	MapValue        ScalarType
	MapValueMessage *MessageSchema
}

// OneofGroup is a set of Singular variant fields of which at most one
// is present at a time (spec.md's Oneof row). All variants implicitly
// have Kind Singular; Field.Kind is ignored for variants and treated
// as Singular.
type OneofGroup struct {
	Name     string
	Variants []Field
}

// Entry is one slot in a MessageSchema's declaration order: exactly
// one of Field or Oneof is set. Keeping regular fields and oneof groups
// in a single ordered slice preserves the single declaration order
// spec.md section 4.5/5 requires for both dispatch priority and
// encoder byte-output order.
type Entry struct {
	Field *Field
	Oneof *OneofGroup
}

// MessageSchema is a fixed-shape, ordered list of field-schema entries
// (spec.md's "Message value" data model) bound once at construction.
type MessageSchema struct {
	entries []Entry
}
