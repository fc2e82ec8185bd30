package schema

import "github.com/kcheng/pbstream/pberr"

// NewMessageSchema builds a MessageSchema from entries in declaration
// order, validating that no two entries (including oneof variants)
// share a field number -- spec.md section 4.5: "Two schema entries
// with the same field number are a schema-construction error."
// ReservedName entries carry no field number and are exempt from this
// check.
func NewMessageSchema(entries ...Entry) (*MessageSchema, error) {
	seen := make(map[FieldNumber]string, len(entries))
	check := func(n FieldNumber, where string) error {
		if prev, ok := seen[n]; ok {
			return pberr.Newf(pberr.Invalid, "schema: field number %d declared twice (%s and %s)", n.Uint32(), prev, where)
		}
		seen[n] = where
		return nil
	}
	for i, e := range entries {
		switch {
		case e.Field != nil && e.Oneof != nil:
			return nil, pberr.Newf(pberr.Invalid, "schema: entry %d sets both Field and Oneof", i)
		case e.Field != nil:
			if e.Field.Kind == ReservedName {
				continue
			}
			if err := check(e.Field.Number, e.Field.Name); err != nil {
				return nil, err
			}
		case e.Oneof != nil:
			for _, v := range e.Oneof.Variants {
				if err := check(v.Number, e.Oneof.Name+"."+v.Name); err != nil {
					return nil, err
				}
			}
		default:
			return nil, pberr.Newf(pberr.Invalid, "schema: entry %d sets neither Field nor Oneof", i)
		}
	}
	return &MessageSchema{entries: append([]Entry(nil), entries...)}, nil
}

// Entries returns the schema's entries in declaration order.
func (m *MessageSchema) Entries() []Entry { return m.entries }

// Match is what FindField returns: the matched field (or oneof variant)
// plus enough context to merge a decoded value into the right
// accumulator slot.
type Match struct {
	Field      *Field      // the matching field, or the matching oneof variant
	OneofGroup *OneofGroup // non-nil if Field is a oneof variant
}

// FindField scans entries in declaration order for the first one whose
// field number matches tag, per spec.md section 4.5's "first match
// wins" tie-breaking rule. Oneof variants are scanned in their group's
// declaration order, nested at the position their group occupies in
// the outer declaration order.
func (m *MessageSchema) FindField(tag FieldNumber) (Match, bool) {
	for _, e := range m.entries {
		if e.Field != nil {
			if e.Field.Kind == ReservedName {
				continue
			}
			if e.Field.Number == tag {
				return Match{Field: e.Field}, true
			}
			continue
		}
		for i := range e.Oneof.Variants {
			if e.Oneof.Variants[i].Number == tag {
				return Match{Field: &e.Oneof.Variants[i], OneofGroup: e.Oneof}, true
			}
		}
	}
	return Match{}, false
}
