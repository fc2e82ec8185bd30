package field

import "github.com/kcheng/pbstream/schema"

// Message is the in-memory accumulator for one message value: a
// fixed-shape record whose components are field accumulators, one per
// declared schema entry (spec.md section 3, "Message value"). It plays
// the role the teacher's dynamic.Message plays, but stores each kind's
// accumulator using the Go-native shape the merge rule actually needs
// (a slice for Repeated, a map for Map, a tagged union for Oneof)
// rather than a single untyped value per field number.
type Message struct {
	schema *schema.MessageSchema

	// values holds, per non-oneof field number: the scalar value for
	// Singular, *Message for Embedded, []interface{} for
	// Repeated/PackedRepeated, map[interface{}]interface{} for Map.
	// Ignore/ReservedTag/ReservedName never have an entry here.
	values map[schema.FieldNumber]interface{}

	// oneofs holds, per oneof group, which variant is currently set (if
	// any) and its value.
	oneofs map[*schema.OneofGroup]oneofState
}

type oneofState struct {
	number  schema.FieldNumber
	value   interface{}
	present bool
}

// NewMessage returns a new, empty Message bound to s.
func NewMessage(s *schema.MessageSchema) *Message {
	return &Message{
		schema: s,
		values: make(map[schema.FieldNumber]interface{}),
		oneofs: make(map[*schema.OneofGroup]oneofState),
	}
}

// Schema returns the schema this message was constructed with.
func (m *Message) Schema() *schema.MessageSchema { return m.schema }

// GetSingular returns f's stored value, or its scalar zero value if
// f has never been set.
func (m *Message) GetSingular(f *schema.Field) interface{} {
	if v, ok := m.values[f.Number]; ok {
		return v
	}
	return ZeroValue(f.Type)
}

// Has reports whether f has been explicitly set (or, for composite
// kinds, has accumulated at least one occurrence) on this message.
func (m *Message) Has(f *schema.Field) bool {
	_, ok := m.values[f.Number]
	return ok
}

// SetSingular replaces f's value -- the Singular merge rule.
func (m *Message) SetSingular(f *schema.Field, v interface{}) {
	m.values[f.Number] = v
}

// GetEmbedded returns f's nested message, or nil if it was never set
// (the "default message" zero value spec.md describes).
func (m *Message) GetEmbedded(f *schema.Field) *Message {
	if v, ok := m.values[f.Number]; ok {
		return v.(*Message)
	}
	return nil
}

// MergeEmbedded merges src into f's current value, creating it if this
// is the field's first occurrence -- the recursive-merge rule for
// Embedded fields (spec.md section 4.6).
func (m *Message) MergeEmbedded(f *schema.Field, src *Message) {
	if existing, ok := m.values[f.Number]; ok {
		Merge(existing.(*Message), src)
		return
	}
	m.values[f.Number] = src
}

// AppendRepeated appends v to f's list -- the Repeated/PackedRepeated
// merge rule (append in wire order).
func (m *Message) AppendRepeated(f *schema.Field, v interface{}) {
	m.values[f.Number] = append(m.getRepeatedRaw(f.Number), v)
}

// AppendRepeatedAll appends every element of vs, used when a packed
// payload decodes to several values in one occurrence.
func (m *Message) AppendRepeatedAll(f *schema.Field, vs []interface{}) {
	m.values[f.Number] = append(m.getRepeatedRaw(f.Number), vs...)
}

// GetRepeated returns f's accumulated list (nil if never set).
func (m *Message) GetRepeated(f *schema.Field) []interface{} {
	return m.getRepeatedRaw(f.Number)
}

func (m *Message) getRepeatedRaw(n schema.FieldNumber) []interface{} {
	if v, ok := m.values[n]; ok {
		return v.([]interface{})
	}
	return nil
}

// PutMapEntry stores (or overwrites) key -> val in f's map -- the Map
// merge rule (per-entry replace by key).
func (m *Message) PutMapEntry(f *schema.Field, key, val interface{}) {
	mp := m.getOrCreateMap(f.Number)
	mp[key] = val
}

// GetMap returns f's accumulated map (nil if never set).
func (m *Message) GetMap(f *schema.Field) map[interface{}]interface{} {
	if v, ok := m.values[f.Number]; ok {
		return v.(map[interface{}]interface{})
	}
	return nil
}

func (m *Message) getOrCreateMap(n schema.FieldNumber) map[interface{}]interface{} {
	if v, ok := m.values[n]; ok {
		return v.(map[interface{}]interface{})
	}
	mp := make(map[interface{}]interface{})
	m.values[n] = mp
	return mp
}

// SetOneof records that variant is now the selected member of g,
// clearing whatever variant (if any) was previously selected -- the
// "last-wins across variants" rule (spec.md section 4.6).
func (m *Message) SetOneof(g *schema.OneofGroup, variant *schema.Field, v interface{}) {
	m.oneofs[g] = oneofState{number: variant.Number, value: v, present: true}
}

// GetOneof returns which variant (if any) is currently selected in g.
func (m *Message) GetOneof(g *schema.OneofGroup) (number schema.FieldNumber, value interface{}, present bool) {
	st := m.oneofs[g]
	return st.number, st.value, st.present
}

// Merge recursively merges src into dst field-by-field, per dst's
// schema, applying each entry's merge rule (spec.md section 4.6's
// "Singular embedded message: recursive merge" row, generalized to
// every kind since a Singular embedded message is itself just another
// Message whose own fields each follow their own rule).
func Merge(dst, src *Message) {
	for _, e := range dst.schema.Entries() {
		if e.Oneof != nil {
			if st, ok := src.oneofs[e.Oneof]; ok && st.present {
				dst.oneofs[e.Oneof] = st
			}
			continue
		}
		f := e.Field
		switch f.Kind {
		case schema.Singular:
			if v, ok := src.values[f.Number]; ok {
				dst.values[f.Number] = v
			}
		case schema.Embedded:
			if v, ok := src.values[f.Number]; ok {
				dst.MergeEmbedded(f, v.(*Message))
			}
		case schema.Repeated, schema.PackedRepeated:
			if v, ok := src.values[f.Number]; ok {
				dst.AppendRepeatedAll(f, v.([]interface{}))
			}
		case schema.Map:
			if v, ok := src.values[f.Number]; ok {
				dm := dst.getOrCreateMap(f.Number)
				for k, val := range v.(map[interface{}]interface{}) {
					dm[k] = val
				}
			}
		case schema.Ignore, schema.ReservedTag, schema.ReservedName:
			// no-op: unit accumulator.
		}
	}
}
